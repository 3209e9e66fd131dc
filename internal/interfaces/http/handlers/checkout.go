// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	config *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		config: cfg,
	}
}

// GetCheckout handles GET /checkout. A completed checkout starts over as
// a fresh draft; an untouched draft gets one profile prefill attempt.
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	co := state.Checkout
	if co.Summary().State == checkout.StateCreated {
		co.Reset()
	}
	co.Prefill(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"data": co.Summary(),
	})
}

// UpdateFields handles PUT /checkout/fields
func (h *CheckoutHandler) UpdateFields(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	var fields checkout.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := state.Checkout.UpdateFields(fields); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout fields updated",
		"data":    state.Checkout.Summary(),
	})
}

// Submit handles POST /checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	orderID, err := state.Checkout.Submit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data": gin.H{
			"order_id": orderID,
		},
	})
}
