// internal/domain/cart/entity.go
package cart

import (
	"github.com/shopspring/decimal"
)

// Quantity bounds enforced at the API surface before any upstream call
const (
	MinLineQuantity = 1
	MaxLineQuantity = 10
)

// Line represents a single product entry in a server-built cart snapshot.
// All price fields are computed upstream and carried as-is.
type Line struct {
	ProductID       uint             `json:"product_id"`
	ProductName     string           `json:"product_name"`
	ProductSlug     string           `json:"product_slug"`
	Quantity        int              `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	LineTotal       decimal.Decimal  `json:"line_total"`
}

// EffectiveUnitPrice returns the discounted price when one is present
func (l *Line) EffectiveUnitPrice() decimal.Decimal {
	if l.DiscountedPrice != nil {
		return *l.DiscountedPrice
	}
	return l.UnitPrice
}

// Snapshot is the complete cart state returned by the shop API.
// Totals are never recomputed locally.
type Snapshot struct {
	Lines         []Line          `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalQuantity int             `json:"total_quantity"`
}

// IsEmpty returns true when the snapshot contains no lines
func (s *Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Line returns the line for the given product id, if present
func (s *Snapshot) Line(productID uint) (*Line, bool) {
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID {
			return &s.Lines[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers cannot mutate the cached state
func (s *Snapshot) Clone() Snapshot {
	out := Snapshot{
		TotalPrice:    s.TotalPrice,
		TotalQuantity: s.TotalQuantity,
	}
	if s.Lines != nil {
		out.Lines = make([]Line, len(s.Lines))
		copy(out.Lines, s.Lines)
	}
	return out
}
