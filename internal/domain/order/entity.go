// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the authoritative payment status of an order. Transitions are
// monotonic: unpaid to paid only.
type Status string

const (
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"
)

// Customer holds the checkout form fields the order was created with
type Customer struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

// Item is a price-locked order line, immutable after order creation
type Item struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Order is the upstream order as the shop API reports it
type Order struct {
	ID        uint            `json:"id"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Customer  Customer        `json:"customer"`
	Items     []Item          `json:"items"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// IsPaid returns true when the upstream status is paid
func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// View is what the storefront renders: the upstream order with the
// session's optimistic payment state merged in. Status carries the
// displayed status, which may read paid before the upstream confirms it.
type View struct {
	Order
	PaymentPending bool `json:"payment_pending"`
}
