package apiclient

import (
	"errors"
	"time"

	"grandson-client/internal/model"

	"github.com/cenkalti/backoff/v4"
)

// linearBackOff waits step, 2*step, 3*step... between attempts. The wait
// grows with the attempt number rather than doubling; flaky mobile
// networks recover better with short early retries.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func newLinearBackOff(step time.Duration) backoff.BackOff {
	return &linearBackOff{step: step}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// isAPIError reports whether err carries a normalized API error, storing
// it in target.
func isAPIError(err error, target **model.APIError) bool {
	return errors.As(err, target)
}
