// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrLineBusy is returned when a mutation targets a product id whose
// previous mutation has not resolved yet.
var ErrLineBusy = errors.New("cart line busy: mutation already in flight for this product")

// API is the subset of the shop API the cart cache talks to.
// Every mutation returns the full recomputed cart snapshot.
type API interface {
	FetchCart(ctx context.Context) (*Snapshot, error)
	AddItem(ctx context.Context, productID uint, quantity int, override bool) (*Snapshot, error)
	UpdateQuantity(ctx context.Context, productID uint, quantity int) (*Snapshot, error)
	RemoveItem(ctx context.Context, productID uint) (*Snapshot, error)
	ClearCart(ctx context.Context) (*Snapshot, error)
}

// Cache holds one session's view of the server cart. The server owns the
// cart; every successful round trip replaces the cached snapshot wholesale.
// A failed round trip leaves the prior snapshot fully intact.
type Cache struct {
	mu       sync.Mutex
	snapshot Snapshot
	busy     map[uint]struct{}
	api      API
	logger   *logrus.Logger
}

// NewCache creates a cart cache bound to one session's API client
func NewCache(api API, logger *logrus.Logger) *Cache {
	return &Cache{
		busy:   make(map[uint]struct{}),
		api:    api,
		logger: logger,
	}
}

// Load refreshes the snapshot from the server. On failure the cache is
// reset to empty and the error is returned; callers treat it as non-fatal.
func (c *Cache) Load(ctx context.Context) error {
	snap, err := c.api.FetchCart(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.snapshot = Snapshot{}
		return fmt.Errorf("failed to load cart: %w", err)
	}
	c.snapshot = snap.Clone()
	return nil
}

// AddItem adds a product to the cart. With override set, the quantity
// replaces the existing line quantity instead of incrementing it.
func (c *Cache) AddItem(ctx context.Context, productID uint, quantity int, override bool) (Snapshot, error) {
	return c.mutate(ctx, productID, "add item", func(ctx context.Context) (*Snapshot, error) {
		return c.api.AddItem(ctx, productID, quantity, override)
	})
}

// UpdateQuantity sets the quantity of an existing line
func (c *Cache) UpdateQuantity(ctx context.Context, productID uint, quantity int) (Snapshot, error) {
	return c.mutate(ctx, productID, "update quantity", func(ctx context.Context) (*Snapshot, error) {
		return c.api.UpdateQuantity(ctx, productID, quantity)
	})
}

// RemoveItem removes a line from the cart
func (c *Cache) RemoveItem(ctx context.Context, productID uint) (Snapshot, error) {
	return c.mutate(ctx, productID, "remove item", func(ctx context.Context) (*Snapshot, error) {
		return c.api.RemoveItem(ctx, productID)
	})
}

// Clear empties the cart on the server and replaces the snapshot with the
// returned empty one
func (c *Cache) Clear(ctx context.Context) error {
	snap, err := c.api.ClearCart(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snap.Clone()
	return nil
}

// Snapshot returns a copy of the current cached cart state
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Clone()
}

// IsBusy reports whether a mutation is in flight for the given product id
func (c *Cache) IsBusy(productID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.busy[productID]
	return busy
}

// Reset drops the cached snapshot. Used on session disposal.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = Snapshot{}
	c.busy = make(map[uint]struct{})
}

// mutate runs one server round trip for a product id under its busy
// marker. The lock is not held across the network call, so mutations on
// distinct product ids proceed concurrently; the last response to arrive
// wins the snapshot.
func (c *Cache) mutate(ctx context.Context, productID uint, op string, call func(context.Context) (*Snapshot, error)) (Snapshot, error) {
	c.mu.Lock()
	if _, busy := c.busy[productID]; busy {
		prev := c.snapshot.Clone()
		c.mu.Unlock()
		return prev, ErrLineBusy
	}
	c.busy[productID] = struct{}{}
	c.mu.Unlock()

	snap, err := call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.busy, productID)

	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"product_id": productID,
			"operation":  op,
		}).WithError(err).Warn("Cart mutation failed, snapshot retained")
		return c.snapshot.Clone(), fmt.Errorf("failed to %s: %w", op, err)
	}

	c.snapshot = snap.Clone()
	return c.snapshot.Clone(), nil
}
