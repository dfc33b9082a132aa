package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"grandson-client/internal/apiclient"
	"grandson-client/internal/cart"
	"grandson-client/internal/model"
	"grandson-client/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPI is a mock implementation of the API interface. Request options
// of the last Post are kept so tests can inspect the headers they set.
type MockAPI struct {
	mock.Mock
	lastPostOpts []apiclient.RequestOption
}

func (m *MockAPI) Get(ctx context.Context, path string, authenticated bool) (*apiclient.Envelope, error) {
	args := m.Called(ctx, path, authenticated)
	if env, ok := args.Get(0).(*apiclient.Envelope); ok {
		return env, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPI) Post(ctx context.Context, path string, body any, authenticated bool, opts ...apiclient.RequestOption) (*apiclient.Envelope, error) {
	m.lastPostOpts = opts
	args := m.Called(ctx, path, body, authenticated)
	if env, ok := args.Get(0).(*apiclient.Envelope); ok {
		return env, args.Error(1)
	}
	return nil, args.Error(1)
}

var testZone = model.DeliveryZone{ID: "z-1", Name: "Dakar Plateau", Price: 10000, IsActive: true}

func newBasket(t *testing.T, items ...model.CartItem) *cart.Cart {
	t.Helper()

	basket := cart.Load(store.NewMemStore(), zerolog.Nop())
	for _, item := range items {
		basket.Add(item)
	}
	return basket
}

func productEnvelope(t *testing.T, id, name string, stock int, active bool) *apiclient.Envelope {
	t.Helper()

	data, err := json.Marshal(map[string]any{
		"id": id, "name": name, "stock": stock, "is_active": active,
	})
	require.NoError(t, err)
	return &apiclient.Envelope{Data: data}
}

func orderEnvelope(t *testing.T, orderNumber string) *apiclient.Envelope {
	t.Helper()

	data, err := json.Marshal(map[string]any{
		"order": map[string]any{"order_number": orderNumber, "status": "pending"},
	})
	require.NoError(t, err)
	return &apiclient.Envelope{Data: data}
}

func TestValidate_AllLinesInStock(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 2, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())

	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 5, true), nil)

	state, issues, err := c.Validate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateReady, state)
	assert.Empty(t, issues)
	api.AssertExpectations(t)
}

func TestValidate_BlockedReportsOffendingLine(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 2, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())

	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 1, true), nil)

	state, issues, err := c.Validate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateBlocked, state)
	require.Len(t, issues, 1)
	assert.Equal(t, "p-1", issues[0].ProductID)
	assert.Equal(t, 2, issues[0].RequestedQuantity)
	assert.Equal(t, 1, issues[0].AvailableStock)
}

func TestValidate_AggregatesSizesOfSameProduct(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t,
		model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 2, Price: 50000},
		model.CartItem{ProductID: "p-1", Name: "Tee", Size: "L", Quantity: 2, Price: 50000},
	)
	c := New(api, basket, testZone, zerolog.Nop())

	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 3, true), nil).Once()

	state, issues, err := c.Validate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateBlocked, state)
	require.Len(t, issues, 1)
	assert.Equal(t, 4, issues[0].RequestedQuantity)
	assert.Equal(t, 3, issues[0].AvailableStock)
}

func TestValidate_InactiveProductCountsAsNoStock(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 1, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())

	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 10, false), nil)

	state, issues, err := c.Validate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateBlocked, state)
	require.Len(t, issues, 1)
	assert.Equal(t, 0, issues[0].AvailableStock)
}

// A transient stock-fetch failure must leave a Blocked checkout exactly as
// it was: same state, same offending lines for the UI to act on.
func TestValidate_FetchFailureKeepsBlockedIssues(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 2, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())

	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 1, true), nil).Once()
	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(nil, errors.New("connection reset"))

	state, issues, err := c.Validate(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateBlocked, state)
	require.Len(t, issues, 1)

	_, _, err = c.Validate(context.Background())
	require.Error(t, err)

	state, issues = c.State()
	assert.Equal(t, StateBlocked, state)
	require.Len(t, issues, 1)
	assert.Equal(t, "p-1", issues[0].ProductID)
	assert.Equal(t, 2, issues[0].RequestedQuantity)
	assert.Equal(t, 1, issues[0].AvailableStock)
}

func TestValidate_EmptyCartIsIdle(t *testing.T) {
	api := new(MockAPI)
	c := New(api, newBasket(t), testZone, zerolog.Nop())

	state, issues, err := c.Validate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
	assert.Empty(t, issues)
}

func TestSubmit_ConfirmsAndClearsCart(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "1", Name: "Tee", Size: "M", Quantity: 2, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())

	api.On("Get", mock.Anything, "/api/products/1", false).
		Return(productEnvelope(t, "1", "Tee", 5, true), nil)
	api.On("Post", mock.Anything, "/api/orders", mock.MatchedBy(func(body any) bool {
		payload, ok := body.(map[string]any)
		return ok && payload["total_amount"] == 110000 && payload["delivery_fee"] == 10000
	}), false).Return(orderEnvelope(t, "GRP-20241105-0001"), nil)

	result, err := c.Submit(context.Background(), CustomerInfo{
		Name:    "Awa Diop",
		Phone:   "+221770000000",
		Address: "Sicap Liberté 3",
	})

	require.NoError(t, err)
	assert.Equal(t, "GRP-20241105-0001", result.OrderNumber)
	assert.Equal(t, 110000, result.TotalAmount)
	assert.Equal(t, 0, basket.Len())

	state, _ := c.State()
	assert.Equal(t, StateConfirmed, state)
	assert.Equal(t, "GRP-20241105-0001", c.OrderNumber())
	api.AssertExpectations(t)
}

func TestSubmit_BlockedCartIsRejectedWithoutPost(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 5, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())

	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 1, true), nil)

	_, err := c.Submit(context.Background(), CustomerInfo{Name: "Awa"})

	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.ErrCodeInsufficientStock))
	api.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Stock can vanish between validation and submission; the backend signal
// must map to a stock-specific failure, not a generic one.
func TestSubmit_InsufficientStockRaceFails(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 1, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())

	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 1, true), nil)
	api.On("Post", mock.Anything, "/api/orders", mock.Anything, false).
		Return(nil, model.NewAPIError(model.ErrCodeInsufficientStock, "insufficient stock"))

	_, err := c.Submit(context.Background(), CustomerInfo{Name: "Awa"})

	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.ErrCodeInsufficientStock))

	state, _ := c.State()
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, msgInsufficientStock, c.FailReason())
	assert.Equal(t, 1, basket.Len())
}

func TestSubmit_GenericFailure(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 1, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())

	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 5, true), nil)
	api.On("Post", mock.Anything, "/api/orders", mock.Anything, false).
		Return(nil, model.NewAPIError(model.ErrCodeInternalError, "boom"))

	_, err := c.Submit(context.Background(), CustomerInfo{Name: "Awa"})

	require.Error(t, err)

	state, _ := c.State()
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, msgSubmissionFailed, c.FailReason())
}

func TestOpen_RevalidatesOnCartMutation(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 1, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())
	c.interval = time.Hour // only mutations trigger revalidation here

	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 2, true), nil)

	c.Open(context.Background())
	defer c.Close()

	state, _ := c.State()
	assert.Equal(t, StateReady, state)

	// Raising the quantity beyond stock must flip the state without any
	// explicit Validate call.
	basket.UpdateQuantity(basket.Items()[0].ID, 5)

	assert.Eventually(t, func() bool {
		state, issues := c.State()
		return state == StateBlocked && len(issues) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestOpen_PeriodicRevalidation(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 2, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())
	c.interval = 20 * time.Millisecond

	// Out of stock at first; restocked on later polls.
	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 1, true), nil).Once()
	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 5, true), nil)

	c.Open(context.Background())
	defer c.Close()

	state, _ := c.State()
	assert.Equal(t, StateBlocked, state)

	assert.Eventually(t, func() bool {
		state, _ := c.State()
		return state == StateReady
	}, time.Second, 10*time.Millisecond)
}

func TestSubmit_SendsIdempotencyKey(t *testing.T) {
	api := new(MockAPI)
	basket := newBasket(t, model.CartItem{ProductID: "p-1", Name: "Tee", Size: "M", Quantity: 1, Price: 50000})
	c := New(api, basket, testZone, zerolog.Nop())
	c.newKey = func() string { return "key-1" }

	api.On("Get", mock.Anything, "/api/products/p-1", false).
		Return(productEnvelope(t, "p-1", "Tee", 5, true), nil)
	api.On("Post", mock.Anything, "/api/orders", mock.Anything, false).
		Return(orderEnvelope(t, "GRP-20241105-0002"), nil)

	_, err := c.Submit(context.Background(), CustomerInfo{Name: "Awa"})

	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	for _, opt := range api.lastPostOpts {
		opt(req)
	}
	assert.Equal(t, "key-1", req.Header.Get("X-Idempotency-Key"))
}
