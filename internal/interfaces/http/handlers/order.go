// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/payment"
	"github.com/your-org/storefront-gateway/internal/pkg/pdf"
	"github.com/your-org/storefront-gateway/internal/shopapi"
)

// OrderHandler handles order view and payment endpoints
type OrderHandler struct {
	config     *config.Config
	pdfService *pdf.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(cfg *config.Config) *OrderHandler {
	return &OrderHandler{
		config:     cfg,
		pdfService: pdf.NewService(),
	}
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	views, err := state.Orders.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    views,
	})
}

// GetOrder handles GET /orders/:id.
//
// A return navigation from the payment provider lands here carrying a
// paid or canceled signal. The signal is consumed exactly once, then the
// request is redirected to the bare order URL so refresh and
// back-navigation cannot replay it.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	if sig := payment.ParseSignal(c.Request.URL.Query()); sig != payment.SignalNone {
		state.Payments.HandleReturn(c.Request.Context(), orderID, sig)
		c.Redirect(http.StatusSeeOther, payment.StripReturnParams(c.Request.URL))
		return
	}

	view, err := state.Orders.Get(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, shopapi.ErrNotFound) {
			// Not the user's order or it does not exist; send the client
			// back to a safe view
			c.JSON(http.StatusNotFound, gin.H{
				"error":    "Order not found",
				"redirect": "/orders",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":          view,
		"cancel_notice": state.Orders.ConsumeCancelNotice(orderID),
	})
}

// Pay handles POST /orders/:id/pay and returns the external payment URL
func (h *OrderHandler) Pay(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	redirectURL, err := state.Payments.InitiatePayment(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment session created",
		"data": gin.H{
			"url": redirectURL,
		},
	})
}

// Receipt handles GET /orders/:id/receipt and streams the order receipt PDF
func (h *OrderHandler) Receipt(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	view, err := state.Orders.Get(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := h.pdfService.RenderReceipt(&view.Order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate receipt",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=order_%d_receipt.pdf", orderID))
	c.Data(http.StatusOK, "application/pdf", data)
}

// orderIDParam parses the :id path parameter
func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return 0, false
	}
	return uint(id), true
}
