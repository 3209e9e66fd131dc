// internal/domain/payment/service.go
package payment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-gateway/internal/domain/order"
)

// CheckoutSession is the external payment session created upstream
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// API is the subset of the shop API the reconciler talks to
type API interface {
	// ConfirmOrderPaid asks the upstream to move the order to paid.
	// Idempotent: repeat calls and calls for already-paid orders succeed.
	ConfirmOrderPaid(ctx context.Context, orderID uint) (*order.Order, error)
	CreatePaymentSession(ctx context.Context, orderID uint) (*CheckoutSession, error)
}

// Reconciler consumes return-navigation signals and squares the displayed
// payment status with the upstream. The upstream webhook from the payment
// provider remains the source of truth; the confirm call here only hides
// its latency.
type Reconciler struct {
	api    API
	views  *order.ViewService
	logger *logrus.Logger
}

// NewReconciler creates a payment reconciler for one session
func NewReconciler(api API, views *order.ViewService, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		api:    api,
		views:  views,
		logger: logger,
	}
}

// HandleReturn consumes one return signal for an order.
//
// A paid signal marks the displayed status paid immediately, then issues
// the idempotent upstream confirm. A confirm failure is logged and
// swallowed: the optimistic display stands and the webhook will settle the
// authoritative state. A canceled signal records a one-shot notice and
// never touches order status.
func (r *Reconciler) HandleReturn(ctx context.Context, orderID uint, sig Signal) {
	switch sig {
	case SignalPaid:
		r.views.MarkPaidOptimistic(orderID)
		o, err := r.api.ConfirmOrderPaid(ctx, orderID)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"order_id": orderID,
			}).WithError(err).Warn("Payment confirm failed, keeping optimistic paid display")
			return
		}
		if o.IsPaid() {
			r.views.MarkConfirmedPaid(orderID)
		}
	case SignalCanceled:
		r.logger.WithField("order_id", orderID).Info("Payment canceled by user")
		r.views.RecordCancelNotice(orderID)
	case SignalNone:
	}
}

// InitiatePayment creates an external payment session for the order and
// returns the provider URL to redirect the user to. On failure the order
// stays unpaid and the user may retry.
func (r *Reconciler) InitiatePayment(ctx context.Context, orderID uint) (string, error) {
	sess, err := r.api.CreatePaymentSession(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("failed to create payment session for order %d: %w", orderID, err)
	}

	r.views.SetPaymentPending(orderID)
	r.logger.WithFields(logrus.Fields{
		"order_id":   orderID,
		"session_id": sess.SessionID,
	}).Info("Payment session created")
	return sess.URL, nil
}
