// Package checkout drives a single checkout attempt over the client cart:
// stock validation against live backend data, periodic revalidation while
// the checkout view is open, and order submission.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"grandson-client/internal/apiclient"
	"grandson-client/internal/cart"
	"grandson-client/internal/model"
	"grandson-client/internal/transform"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the position of a checkout attempt in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateReady      State = "ready"
	StateBlocked    State = "blocked"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
	StateFailed     State = "failed"
)

// revalidateInterval is how often stock is re-checked while the checkout
// stays open. Stock changes concurrently with other customers, so a check
// at submit time alone is not enough.
const revalidateInterval = 30 * time.Second

// idempotencyHeader carries the client-generated submission key so a
// retried POST after a network failure cannot create a duplicate order.
const idempotencyHeader = "X-Idempotency-Key"

// User-facing failure messages.
const (
	msgInsufficientStock = "Stock insuffisant pour un ou plusieurs articles de votre panier"
	msgSubmissionFailed  = "La commande n'a pas pu être envoyée. Veuillez réessayer."
	msgCartBlocked       = "Certains articles ne sont plus disponibles en quantité demandée"
	msgEmptyCart         = "Votre panier est vide"
)

// API is the slice of the fetch client the checkout consumes.
type API interface {
	Get(ctx context.Context, path string, authenticated bool) (*apiclient.Envelope, error)
	Post(ctx context.Context, path string, body any, authenticated bool, opts ...apiclient.RequestOption) (*apiclient.Envelope, error)
}

// CustomerInfo carries the contact and delivery fields of a submission.
type CustomerInfo struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// Result is a confirmed submission.
type Result struct {
	OrderNumber string
	TotalAmount int
}

// Checkout is one checkout attempt over the cart. Safe for concurrent use;
// the revalidation loop and UI handlers share it.
type Checkout struct {
	api    API
	basket *cart.Cart
	zone   model.DeliveryZone
	logger zerolog.Logger

	interval time.Duration
	newKey   func() string

	mu          sync.Mutex
	state       State
	issues      []model.StockIssue
	failReason  string
	orderNumber string

	cancel      context.CancelFunc
	unsubscribe func()
}

// New creates a checkout for the cart and selected delivery zone.
func New(api API, basket *cart.Cart, zone model.DeliveryZone, logger zerolog.Logger) *Checkout {
	return &Checkout{
		api:      api,
		basket:   basket,
		zone:     zone,
		logger:   logger.With().Str("component", "checkout").Logger(),
		interval: revalidateInterval,
		newKey:   uuid.NewString,
		state:    StateIdle,
	}
}

// Open starts automatic stock revalidation: immediately, on every cart
// mutation, and on a fixed interval until ctx is cancelled or Close is
// called.
func (c *Checkout) Open(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	unsubscribe := c.basket.OnChange(func() {
		go c.Validate(ctx)
	})

	c.mu.Lock()
	c.cancel = cancel
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, _, err := c.Validate(ctx); err != nil {
					c.logger.Warn().Err(err).Msg("periodic stock validation failed")
				}
			}
		}
	}()

	if _, _, err := c.Validate(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("initial stock validation failed")
	}
}

// Close stops the revalidation loop and cart subscription. The checkout
// state itself is kept so a confirmation can still be read.
func (c *Checkout) Close() {
	c.mu.Lock()
	cancel := c.cancel
	unsubscribe := c.unsubscribe
	c.cancel = nil
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
}

// State returns the current state and, when blocked, the offending lines.
func (c *Checkout) State() (State, []model.StockIssue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	issues := make([]model.StockIssue, len(c.issues))
	copy(issues, c.issues)
	return c.state, issues
}

// FailReason returns the user-facing message of the latest failure.
func (c *Checkout) FailReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failReason
}

// OrderNumber returns the confirmed order number, or an empty string.
func (c *Checkout) OrderNumber() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderNumber
}

// Total returns what the submitted order will amount to: line subtotals
// plus the delivery fee.
func (c *Checkout) Total() int {
	return c.basket.Subtotal() + c.zone.Price
}

// Validate checks every cart line against current backend stock. The
// checkout moves to Ready when all lines are fulfillable, or to Blocked
// with one issue per offending product. Terminal and in-flight states are
// left alone.
func (c *Checkout) Validate(ctx context.Context) (State, []model.StockIssue, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting, StateConfirmed:
		state := c.state
		c.mu.Unlock()
		return state, nil, nil
	}
	prev := c.state
	c.state = StateValidating
	c.mu.Unlock()

	items := c.basket.Items()
	if len(items) == 0 {
		return c.transition(StateIdle, nil), nil, nil
	}

	issues, err := c.checkStock(ctx, items)
	if err != nil {
		// A transient fetch failure must not block checkout, and a
		// Blocked checkout must keep surfacing its offending lines.
		c.restore(prev)
		return prev, nil, err
	}

	if len(issues) > 0 {
		return c.transition(StateBlocked, issues), issues, nil
	}
	return c.transition(StateReady, nil), nil, nil
}

// Submit validates once more if needed, then posts the order. On success
// the cart is cleared and the checkout confirms with the backend-assigned
// order number.
func (c *Checkout) Submit(ctx context.Context, customer CustomerInfo) (*Result, error) {
	items := c.basket.Items()
	if len(items) == 0 {
		return nil, c.fail(model.ErrCodeRequestFailed, msgEmptyCart)
	}

	state, _ := c.State()
	if state != StateReady {
		state, issues, err := c.Validate(ctx)
		if err != nil {
			return nil, c.fail(model.ErrCodeRequestFailed, msgSubmissionFailed)
		}
		if state == StateBlocked {
			c.logger.Warn().Int("issues", len(issues)).Msg("submission blocked by stock")
			return nil, model.NewAPIError(model.ErrCodeInsufficientStock, msgCartBlocked)
		}
	}

	c.setState(StateSubmitting)

	total := c.Total()
	payload := c.orderPayload(items, customer, total)

	env, err := c.api.Post(ctx, "/api/orders", payload, false,
		apiclient.WithHeader(idempotencyHeader, c.newKey()))
	if err != nil {
		// Validation passing and submission still hitting a stock
		// error is an expected race with other customers.
		if model.IsCode(err, model.ErrCodeInsufficientStock) {
			return nil, c.fail(model.ErrCodeInsufficientStock, msgInsufficientStock)
		}
		c.logger.Error().Err(err).Msg("order submission failed")
		return nil, c.fail(model.ErrCodeRequestFailed, msgSubmissionFailed)
	}

	order, err := decodeOrder(env)
	if err != nil {
		return nil, c.fail(model.ErrCodeRequestFailed, msgSubmissionFailed)
	}

	c.basket.Clear()

	c.mu.Lock()
	c.state = StateConfirmed
	c.issues = nil
	c.failReason = ""
	c.orderNumber = order.OrderNumber
	c.mu.Unlock()

	c.logger.Info().
		Str("order_number", order.OrderNumber).
		Int("total_amount", total).
		Msg("order confirmed")

	return &Result{OrderNumber: order.OrderNumber, TotalAmount: total}, nil
}

func (c *Checkout) orderPayload(items []model.CartItem, customer CustomerInfo, total int) map[string]any {
	lines := make([]map[string]any, len(items))
	for i, item := range items {
		lines[i] = map[string]any{
			"product_id": item.ProductID,
			"name":       item.Name,
			"size":       item.Size,
			"quantity":   item.Quantity,
			"price":      item.Price,
		}
	}

	return map[string]any{
		"customer_name":    customer.Name,
		"customer_phone":   customer.Phone,
		"customer_email":   customer.Email,
		"delivery_address": customer.Address,
		"delivery_zone":    c.zone.Name,
		"delivery_fee":     c.zone.Price,
		"total_amount":     total,
		"items":            lines,
	}
}

// decodeOrder reads the created order out of the response, tolerating both
// `{order: {...}}` and a bare order object.
func decodeOrder(env *apiclient.Envelope) (*model.Order, error) {
	var raw map[string]any
	if err := env.Decode(&raw); err != nil {
		return nil, err
	}
	if nested, ok := raw["order"].(map[string]any); ok {
		raw = nested
	}

	order := transform.Order(raw)
	if order.OrderNumber == "" {
		return nil, fmt.Errorf("response carries no order number")
	}
	return &order, nil
}

func (c *Checkout) transition(state State, issues []model.StockIssue) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A submission may have started while validation was in flight; do
	// not clobber it.
	if c.state != StateValidating {
		return c.state
	}
	c.state = state
	c.issues = issues
	return state
}

// restore puts the pre-validation state back after a failed stock check,
// keeping the recorded issues intact.
func (c *Checkout) restore(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateValidating {
		return
	}
	c.state = state
}

func (c *Checkout) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *Checkout) fail(code, message string) error {
	c.mu.Lock()
	c.state = StateFailed
	c.failReason = message
	c.mu.Unlock()
	return model.NewAPIError(code, message)
}
