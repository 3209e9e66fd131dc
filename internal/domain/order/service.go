// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// API is the subset of the shop API the order views are read from
type API interface {
	GetOrder(ctx context.Context, orderID uint) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
}

// paymentMark is the per-order payment view state held by one session.
// displayed status has two phases: an optimistic mark set on a paid
// return signal, and a confirmed mark set once the upstream reports paid.
type paymentMark struct {
	optimisticPaid bool
	confirmedPaid  bool
	pending        bool
	cancelNotice   bool
}

// ViewService fetches orders upstream and merges them with this session's
// optimistic payment marks. The merge is monotonic: once an order has been
// displayed as paid, an upstream unpaid read never downgrades it.
type ViewService struct {
	mu     sync.Mutex
	marks  map[uint]*paymentMark
	api    API
	logger *logrus.Logger
}

// NewViewService creates an order view service bound to one session's API client
func NewViewService(api API, logger *logrus.Logger) *ViewService {
	return &ViewService{
		marks:  make(map[uint]*paymentMark),
		api:    api,
		logger: logger,
	}
}

// Get fetches one order and returns it with payment marks applied
func (s *ViewService) Get(ctx context.Context, orderID uint) (*View, error) {
	o, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	view := s.merge(*o)
	return &view, nil
}

// List fetches all of the session user's orders with payment marks applied
func (s *ViewService) List(ctx context.Context) ([]View, error) {
	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	views := make([]View, 0, len(orders))
	for _, o := range orders {
		views = append(views, s.merge(o))
	}
	return views, nil
}

// MarkPaidOptimistic records a paid display for the order before the
// upstream has confirmed it
func (s *ViewService) MarkPaidOptimistic(orderID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.mark(orderID)
	m.optimisticPaid = true
	m.pending = false
}

// MarkConfirmedPaid records that the upstream now reports the order paid
func (s *ViewService) MarkConfirmedPaid(orderID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.mark(orderID)
	m.optimisticPaid = true
	m.confirmedPaid = true
	m.pending = false
}

// SetPaymentPending records that the user has been handed off to the
// external payment page. Never persisted beyond this session's memory.
func (s *ViewService) SetPaymentPending(orderID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mark(orderID).pending = true
}

// RecordCancelNotice stores a one-shot cancellation notice and clears the
// pending flag. Order status is never touched.
func (s *ViewService) RecordCancelNotice(orderID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.mark(orderID)
	m.cancelNotice = true
	m.pending = false
}

// ConsumeCancelNotice returns whether a cancellation notice is pending for
// the order and clears it, so a reload does not show it again
func (s *ViewService) ConsumeCancelNotice(orderID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.marks[orderID]
	if !ok || !m.cancelNotice {
		return false
	}
	m.cancelNotice = false
	return true
}

// Reset drops all payment marks. Used on session disposal.
func (s *ViewService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks = make(map[uint]*paymentMark)
}

// mark returns the mark for an order id, creating it if needed. Caller
// holds the lock.
func (s *ViewService) mark(orderID uint) *paymentMark {
	m, ok := s.marks[orderID]
	if !ok {
		m = &paymentMark{}
		s.marks[orderID] = m
	}
	return m
}

// merge applies the session's payment marks to a freshly fetched order
func (s *ViewService) merge(o Order) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{Order: o}
	m, ok := s.marks[o.ID]
	if !ok {
		return view
	}

	if o.IsPaid() {
		// Upstream caught up, the optimistic phase is over
		m.confirmedPaid = true
		m.pending = false
	} else if m.optimisticPaid {
		view.Status = StatusPaid
	}

	view.PaymentPending = m.pending && view.Status != StatusPaid
	return view
}
