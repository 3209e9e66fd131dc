// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-gateway/internal/session"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	config *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cfg *config.Config) *CartHandler {
	return &CartHandler{
		config: cfg,
	}
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
	Override  bool `json:"override_quantity"`
}

// UpdateItemRequest represents a quantity update request
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart handles GET /cart. With ?refresh=true the snapshot is reloaded
// from the shop first; a reload failure falls back to an empty cart.
func (h *CartHandler) GetCart(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	if c.Query("refresh") == "true" {
		if err := state.Cart.Load(c.Request.Context()); err != nil {
			c.JSON(http.StatusOK, gin.H{
				"message": "Cart is temporarily unavailable",
				"data":    state.Cart.Snapshot(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    state.Cart.Snapshot(),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if !validQuantity(c, req.Quantity) {
		return
	}

	snapshot, err := state.Cart.AddItem(c.Request.Context(), req.ProductID, req.Quantity, req.Override)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    snapshot,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if !validQuantity(c, req.Quantity) {
		return
	}

	snapshot, err := state.Cart.UpdateQuantity(c.Request.Context(), productID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    snapshot,
	})
}

// RemoveCartItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	snapshot, err := state.Cart.RemoveItem(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    snapshot,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	state, ok := sessionState(c)
	if !ok {
		return
	}

	if err := state.Cart.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    state.Cart.Snapshot(),
	})
}

// sessionState pulls the session from context, rejecting the request if
// the middleware did not attach one
func sessionState(c *gin.Context) (*session.State, bool) {
	state, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Sign in required",
		})
		return nil, false
	}
	return state, true
}

// validQuantity enforces the line quantity bounds before any upstream call
func validQuantity(c *gin.Context, quantity int) bool {
	if quantity < cart.MinLineQuantity || quantity > cart.MaxLineQuantity {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Quantity must be between %d and %d", cart.MinLineQuantity, cart.MaxLineQuantity),
		})
		return false
	}
	return true
}

// productIDParam parses the :id path parameter
func productIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return 0, false
	}
	return uint(id), true
}
