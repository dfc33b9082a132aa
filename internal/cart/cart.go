// Package cart holds the client-owned shopping cart. Lines live only on
// this device until checkout; mutations persist under a fixed storage key
// and notify subscribers so open checkout views can revalidate stock.
package cart

import (
	"encoding/json"
	"sync"

	"grandson-client/internal/model"
	"grandson-client/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// storageKey is the fixed key the cart is persisted under.
const storageKey = "grandson_cart"

// Cart is the client-side cart. All methods are safe for concurrent use
// from UI event handlers and the checkout revalidation loop.
type Cart struct {
	store  store.Store
	logger zerolog.Logger

	mu        sync.Mutex
	items     []model.CartItem
	listeners map[int]func()
	nextID    int
}

// Load creates a cart backed by the given store, restoring any persisted
// lines. A corrupt record starts an empty cart rather than failing.
func Load(s store.Store, logger zerolog.Logger) *Cart {
	c := &Cart{
		store:     s,
		logger:    logger.With().Str("component", "cart").Logger(),
		listeners: make(map[int]func()),
	}

	raw, ok, err := s.Get(storageKey)
	if err != nil || !ok {
		return c
	}
	if err := json.Unmarshal([]byte(raw), &c.items); err != nil {
		c.logger.Warn().Err(err).Msg("corrupt cart record, starting empty")
		c.items = nil
	}
	return c
}

// Add inserts a line, merging quantities when a line for the same product
// and size already exists.
func (c *Cart) Add(item model.CartItem) {
	c.mu.Lock()
	for i, existing := range c.items {
		if existing.ProductID == item.ProductID && existing.Size == item.Size {
			c.items[i].Quantity += item.Quantity
			c.persistLocked()
			c.mu.Unlock()
			c.notify()
			return
		}
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	c.items = append(c.items, item)
	c.persistLocked()
	c.mu.Unlock()
	c.notify()
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.Remove(id)
		return
	}

	c.mu.Lock()
	for i, item := range c.items {
		if item.ID == id {
			c.items[i].Quantity = quantity
			break
		}
	}
	c.persistLocked()
	c.mu.Unlock()
	c.notify()
}

// Remove deletes a line by ID.
func (c *Cart) Remove(id string) {
	c.mu.Lock()
	items := c.items[:0]
	for _, item := range c.items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	c.items = items
	c.persistLocked()
	c.mu.Unlock()
	c.notify()
}

// RemoveProduct deletes every line referencing a product, used when stock
// validation reports the product as unavailable.
func (c *Cart) RemoveProduct(productID string) {
	c.mu.Lock()
	items := c.items[:0]
	for _, item := range c.items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.items = items
	c.persistLocked()
	c.mu.Unlock()
	c.notify()
}

// Clear empties the cart, typically after a confirmed order.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.persistLocked()
	c.mu.Unlock()
	c.notify()
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]model.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Subtotal returns the sum of line subtotals, excluding delivery fees.
func (c *Cart) Subtotal() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, item := range c.items {
		total += item.Price * item.Quantity
	}
	return total
}

// OnChange registers a callback invoked after every mutation. The returned
// function unregisters it.
func (c *Cart) OnChange(fn func()) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Cart) notify() {
	c.mu.Lock()
	listeners := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// persistLocked writes the cart to the store; the caller holds the lock.
// Persistence failures are logged, not surfaced: the in-memory cart stays
// authoritative for the session.
func (c *Cart) persistLocked() {
	data, err := json.Marshal(c.items)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to encode cart")
		return
	}
	if err := c.store.Set(storageKey, string(data)); err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist cart")
	}
}
