// Package apiclient wraps the backend REST API behind four JSON verbs plus
// a multipart upload. It injects bearer tokens, normalizes every response
// into one envelope shape, and retries idempotent reads with linear
// backoff. Mutating verbs are never retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"grandson-client/internal/config"
	"grandson-client/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	maxGetAttempts = 3
	backoffStep    = time.Second

	// Per-attempt timeouts; mobile networks get more slack.
	mobileAttemptTimeout  = 15 * time.Second
	desktopAttemptTimeout = 5 * time.Second

	// mobileMarkerHeader tags requests from the mobile build so the
	// backend can distinguish them in logs.
	mobileMarkerHeader = "X-Grandson-Mobile"

	maxBodySize = 10 * 1024 * 1024
)

// TokenSource provides the current bearer token. An empty string means no
// session; the Authorization header is then omitted and the server decides.
type TokenSource interface {
	Token() string
}

// Config holds the client construction parameters.
type Config struct {
	// BaseURL is the resolved backend base URL.
	BaseURL string
	// UserAgent drives the mobile heuristic and is sent with requests.
	UserAgent string
	// Tokens supplies bearer tokens; nil disables authentication.
	Tokens TokenSource
	// HTTPClient overrides the underlying transport, mainly for tests.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client is the authenticated fetch client for the storefront backend.
type Client struct {
	baseURL    string
	userAgent  string
	tokens     TokenSource
	httpClient *http.Client
	mobile     bool
	timeout    time.Duration
	retryStep  time.Duration
	logger     zerolog.Logger
}

// New creates a client. The per-attempt timeout follows the mobile
// heuristic on the configured user agent.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	mobile := config.IsMobileUserAgent(cfg.UserAgent)
	timeout := desktopAttemptTimeout
	if mobile {
		timeout = mobileAttemptTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		tokens:     cfg.Tokens,
		httpClient: httpClient,
		mobile:     mobile,
		timeout:    timeout,
		retryStep:  backoffStep,
		logger:     cfg.Logger.With().Str("component", "api-client").Logger(),
	}
}

// RequestOption customizes a single request.
type RequestOption func(*http.Request)

// WithHeader sets an extra header on the request.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// Get issues a GET request. Timeouts and network failures are retried up
// to three attempts with linearly growing waits; HTTP error responses are
// not retried.
func (c *Client) Get(ctx context.Context, path string, authenticated bool) (*Envelope, error) {
	var envelope *Envelope

	operation := func() error {
		env, err := c.do(ctx, http.MethodGet, path, nil, authenticated)
		if err != nil {
			var apiErr *model.APIError
			if isAPIError(err, &apiErr) {
				// The server answered; retrying will not change it.
				return backoff.Permanent(err)
			}
			return err
		}
		envelope = env
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newLinearBackOff(c.retryStep), maxGetAttempts-1),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		var apiErr *model.APIError
		if isAPIError(err, &apiErr) {
			return nil, err
		}
		c.logger.Error().Err(err).Str("path", path).Msg("request failed after retries")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return envelope, nil
}

// Post issues a POST request with a JSON body. No implicit retries.
func (c *Client) Post(ctx context.Context, path string, body any, authenticated bool, opts ...RequestOption) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, path, body, authenticated, opts...)
}

// Put issues a PUT request with a JSON body. No implicit retries.
func (c *Client) Put(ctx context.Context, path string, body any, authenticated bool, opts ...RequestOption) (*Envelope, error) {
	return c.do(ctx, http.MethodPut, path, body, authenticated, opts...)
}

// Delete issues a DELETE request. No implicit retries.
func (c *Client) Delete(ctx context.Context, path string, authenticated bool, opts ...RequestOption) (*Envelope, error) {
	return c.do(ctx, http.MethodDelete, path, nil, authenticated, opts...)
}

// Upload sends a multipart form body (contentType must carry the boundary,
// from multipart.Writer.FormDataContentType). Only the bearer header is
// attached. A success response with an unparseable body yields an empty
// envelope rather than an error.
func (c *Client) Upload(ctx context.Context, path string, form io.Reader, contentType string) (*Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, form)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.attachAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp.StatusCode, body)
	}

	var parsed any
	if json.Unmarshal(body, &parsed) != nil {
		return &Envelope{}, nil
	}
	return normalize(body)
}

// do performs one attempt of a request bound to the per-attempt timeout.
func (c *Client) do(ctx context.Context, method, path string, body any, authenticated bool, opts ...RequestOption) (*Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if authenticated {
		c.attachAuth(req)
	}
	if c.mobile {
		// Mobile browsers aggressively cache API responses; force
		// revalidation on every request type.
		req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		req.Header.Set("Pragma", "no-cache")
		req.Header.Set("Expires", "0")
		req.Header.Set(mobileMarkerHeader, "1")
	}
	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Msg("request attempt failed")
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp.StatusCode, respBody)
	}

	return normalize(respBody)
}

// attachAuth sets the bearer header when a token is available. Without one
// the header is simply omitted; the server answers 401 if it cares.
func (c *Client) attachAuth(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
