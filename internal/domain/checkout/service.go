// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/order"
)

// State is the coordinator's lifecycle state. Failed behaves like Draft
// with the last submission error retained for display.
type State string

const (
	StateDraft      State = "draft"
	StateSubmitting State = "submitting"
	StateCreated    State = "created"
	StateFailed     State = "failed"
)

var (
	// ErrCartEmpty rejects submission of an empty cart before any network call
	ErrCartEmpty = errors.New("cannot submit checkout: cart is empty")
	// ErrSubmitInFlight rejects a second submit while one is running
	ErrSubmitInFlight = errors.New("checkout submission already in flight")
	// ErrAlreadyCreated rejects input after the order has been created
	ErrAlreadyCreated = errors.New("checkout already completed")
)

// Fields is the customer form sent on submission. Line items are never
// part of it; the server builds the order from its own cart state.
type Fields struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email" binding:"omitempty,email"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

// isBlank reports whether all fields are empty, the precondition for
// profile prefill
func (f *Fields) isBlank() bool {
	return f.FirstName == "" && f.LastName == "" && f.Email == "" &&
		f.Address == "" && f.PostalCode == "" && f.City == ""
}

// Profile is the authenticated user profile used for prefill
type Profile struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

// ProfileAPI fetches the session user's profile
type ProfileAPI interface {
	FetchProfile(ctx context.Context) (*Profile, error)
}

// OrderAPI creates the order upstream from the customer fields only
type OrderAPI interface {
	CreateOrder(ctx context.Context, fields Fields) (*order.Order, error)
}

// Cart is the view of the cart cache the coordinator needs: the non-empty
// gate, the summary, and the post-creation clear
type Cart interface {
	Snapshot() cart.Snapshot
	Clear(ctx context.Context) error
}

// Summary is the coordinator state handed to the rendering layer
type Summary struct {
	State      State         `json:"state"`
	Fields     Fields        `json:"fields"`
	Autofilled bool          `json:"autofilled"`
	Cart       cart.Snapshot `json:"cart"`
	OrderID    uint          `json:"order_id,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Coordinator drives one session's checkout: a draft form, a one-shot
// profile prefill, and a guarded submission that hands the created order
// id off to the order views.
type Coordinator struct {
	mu         sync.Mutex
	state      State
	fields     Fields
	autofilled bool
	touched    bool
	prefilled  bool
	orderID    uint
	lastErr    error

	profiles ProfileAPI
	orders   OrderAPI
	cart     Cart
	logger   *logrus.Logger
}

// NewCoordinator creates a checkout coordinator in the draft state
func NewCoordinator(profiles ProfileAPI, orders OrderAPI, c Cart, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		state:    StateDraft,
		profiles: profiles,
		orders:   orders,
		cart:     c,
		logger:   logger,
	}
}

// Prefill populates the form from the user profile. It runs at most once
// per checkout, and only while the form is completely untouched. A fetch
// failure is non-fatal; the user just types the fields in.
func (c *Coordinator) Prefill(ctx context.Context) {
	c.mu.Lock()
	if c.prefilled || c.touched || !c.fields.isBlank() || c.state != StateDraft {
		c.mu.Unlock()
		return
	}
	c.prefilled = true
	c.mu.Unlock()

	profile, err := c.profiles.FetchProfile(ctx)
	if err != nil {
		c.logger.WithError(err).Debug("Profile prefill skipped")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// The user may have started typing while the fetch was in flight
	if c.touched || !c.fields.isBlank() {
		return
	}
	c.fields = Fields{
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Email:      profile.Email,
		Address:    profile.Address,
		PostalCode: profile.PostalCode,
		City:       profile.City,
	}
	c.autofilled = true
}

// UpdateFields replaces the draft form with a manual edit. Any manual edit
// clears the autofilled flag for the whole form.
func (c *Coordinator) UpdateFields(fields Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateSubmitting:
		return ErrSubmitInFlight
	case StateCreated:
		return ErrAlreadyCreated
	}
	c.fields = fields
	c.touched = true
	c.autofilled = false
	return nil
}

// Submit sends the customer fields upstream and returns the created order
// id. The empty-cart guard runs before any network call. On failure the
// coordinator keeps the form and the error so the user can correct and retry.
func (c *Coordinator) Submit(ctx context.Context) (uint, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return 0, ErrSubmitInFlight
	case StateCreated:
		c.mu.Unlock()
		return 0, ErrAlreadyCreated
	}
	snap := c.cart.Snapshot()
	if snap.IsEmpty() {
		c.state = StateFailed
		c.lastErr = ErrCartEmpty
		c.mu.Unlock()
		return 0, ErrCartEmpty
	}
	c.state = StateSubmitting
	c.lastErr = nil
	fields := c.fields
	c.mu.Unlock()

	o, err := c.orders.CreateOrder(ctx, fields)

	c.mu.Lock()
	if err != nil {
		c.state = StateFailed
		c.lastErr = err
		c.mu.Unlock()
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	c.state = StateCreated
	c.orderID = o.ID
	c.mu.Unlock()

	// The server already rebuilt its cart; clearing the cache is cosmetic
	// and must not fail the completed checkout
	if err := c.cart.Clear(ctx); err != nil {
		c.logger.WithField("order_id", o.ID).WithError(err).Warn("Cart clear after order creation failed")
	}

	c.logger.WithField("order_id", o.ID).Info("Order created")
	return o.ID, nil
}

// Summary returns the current coordinator state plus the cart summary
func (c *Coordinator) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{
		State:      c.state,
		Fields:     c.fields,
		Autofilled: c.autofilled,
		Cart:       c.cart.Snapshot(),
		OrderID:    c.orderID,
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
	}
	return s
}

// Reset returns the coordinator to a fresh draft. Called when a completed
// checkout is revisited and on session disposal.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateDraft
	c.fields = Fields{}
	c.autofilled = false
	c.touched = false
	c.prefilled = false
	c.orderID = 0
	c.lastErr = nil
}
