// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
	"github.com/your-org/storefront-gateway/internal/shopapi"
)

// respondError maps domain and upstream errors onto HTTP responses.
// Upstream validation payloads pass through verbatim; transient upstream
// failures come back as a retryable gateway error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrLineBusy):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Another update for this item is still in progress",
		})
	case errors.Is(err, checkout.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Your cart is empty",
		})
	case errors.Is(err, checkout.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Checkout is already being submitted",
		})
	case errors.Is(err, checkout.ErrAlreadyCreated):
		c.JSON(http.StatusConflict, gin.H{
			"error": "This checkout has already completed",
		})
	case errors.Is(err, shopapi.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Sign in required",
		})
	case errors.Is(err, shopapi.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
		})
	default:
		var apiErr *shopapi.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Kind == shopapi.KindFieldErrors {
				c.JSON(apiErr.StatusCode, gin.H{
					"error":        "Validation failed",
					"field_errors": apiErr.Fields,
				})
				return
			}
			c.JSON(apiErr.StatusCode, gin.H{
				"error": apiErr.Error(),
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "The shop is temporarily unavailable, please try again",
		})
	}
}
