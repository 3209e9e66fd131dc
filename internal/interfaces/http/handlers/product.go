// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/shopapi"
)

// ProductHandler proxies the upstream catalog untouched. The gateway adds
// no logic here; the storefront just needs a single origin to talk to.
type ProductHandler struct {
	api    *shopapi.Client
	config *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(api *shopapi.Client, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		api:    api,
		config: cfg,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	raw, err := h.api.ListProducts(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

// GetProductBySlug handles GET /products/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	raw, err := h.api.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}
