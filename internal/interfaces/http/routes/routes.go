// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-gateway/internal/session"
	"github.com/your-org/storefront-gateway/internal/shopapi"
)

// SetupRoutes wires all gateway routes
func SetupRoutes(rg *gin.RouterGroup, manager *session.Manager, api *shopapi.Client, cfg *config.Config) {
	SetupSessionRoutes(rg, manager, cfg)
	SetupCartRoutes(rg, manager, cfg)
	SetupCheckoutRoutes(rg, manager, cfg)
	SetupOrderRoutes(rg, manager, cfg)
	SetupProductRoutes(rg, api, cfg)
}

// SetupSessionRoutes sets up sign-in and session routes
func SetupSessionRoutes(rg *gin.RouterGroup, manager *session.Manager, cfg *config.Config) {
	sessionHandler := handlers.NewSessionHandler(manager, cfg)

	sess := rg.Group("/session")
	{
		sess.POST("/login", sessionHandler.Login)

		protected := sess.Group("")
		protected.Use(middleware.Session(manager, cfg))
		{
			protected.POST("/logout", sessionHandler.Logout)
			protected.GET("/me", sessionHandler.Me)
		}
	}
}

// SetupCartRoutes sets up cart routes
func SetupCartRoutes(rg *gin.RouterGroup, manager *session.Manager, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.Session(manager, cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveCartItem)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, manager *session.Manager, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(cfg)

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.Session(manager, cfg))
	{
		checkout.GET("", checkoutHandler.GetCheckout)
		checkout.PUT("/fields", checkoutHandler.UpdateFields)
		checkout.POST("", checkoutHandler.Submit)
	}
}

// SetupOrderRoutes sets up order view and payment routes
func SetupOrderRoutes(rg *gin.RouterGroup, manager *session.Manager, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.Session(manager, cfg))
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("/:id/pay", orderHandler.Pay)
		orders.GET("/:id/receipt", orderHandler.Receipt)
	}
}

// SetupProductRoutes sets up the catalog proxy routes. The catalog is
// public upstream, so no session is required.
func SetupProductRoutes(rg *gin.RouterGroup, api *shopapi.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(api, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:slug", productHandler.GetProductBySlug)
	}
}
