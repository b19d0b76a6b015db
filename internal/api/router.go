package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/api/handlers"
	"github.com/kosuite/shopcore/internal/config"
	"github.com/kosuite/shopcore/internal/metrics"
	"github.com/kosuite/shopcore/internal/repository"
	"github.com/kosuite/shopcore/internal/service"
	"github.com/kosuite/shopcore/internal/webhook"
)

// Dependencies carries the constructed collaborators into the router.
// Everything here is built once in cmd/server and reused across requests.
type Dependencies struct {
	Carts     *service.CartService
	Checkout  *service.CheckoutService
	Lifecycle *service.LifecycleService
	Orders    repository.OrderRepository
	Verifier  *webhook.Verifier
	Metrics   *metrics.Metrics
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		cart := v1.Group("/cart")
		{
			cart.GET("", handlers.HandleGetCart(deps.Carts, logger))
			cart.POST("/items", handlers.HandleAddItem(deps.Carts, logger))
			cart.PATCH("/items/:variantId", handlers.HandleUpdateQuantity(deps.Carts, logger))
			cart.DELETE("/items/:variantId", handlers.HandleRemoveItem(deps.Carts, logger))
			cart.PUT("/destination", handlers.HandleSetDestination(deps.Carts, logger))
		}

		v1.POST("/checkout", handlers.HandleCheckout(deps.Checkout, logger))
		v1.GET("/orders/:number", handlers.HandleGetOrder(deps.Orders, logger))

		// The gateway authenticates by HMAC signature, not by session.
		v1.POST("/webhooks/payment", handlers.HandlePaymentWebhook(deps.Verifier, deps.Lifecycle, deps.Metrics, logger))
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
