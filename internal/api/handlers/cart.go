package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/domain"
	"github.com/kosuite/shopcore/internal/service"
)

// sessionID extracts the browser session. Carts are per-session state; a
// request without a session has no cart to act on.
func sessionID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-Session-ID")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Session-ID header is required"})
		return "", false
	}
	return id, true
}

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID     string           `json:"product_id" binding:"required"`
	VariantID     string           `json:"variant_id" binding:"required"`
	VariantName   string           `json:"variant_name" binding:"required"`
	Price         decimal.Decimal  `json:"price" binding:"required"`
	PricePerLabel *decimal.Decimal `json:"price_per_label,omitempty"`
	PricePerProbe *decimal.Decimal `json:"price_per_probe,omitempty"`
	Quantity      int              `json:"quantity" binding:"required,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type SetDestinationRequest struct {
	Country     string `json:"country" binding:"required"`
	IsVatExempt bool   `json:"is_vat_exempt"`
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(carts *service.CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}

		cart, err := carts.Get(c.Request.Context(), sid)
		if err != nil {
			logger.Error("Failed to load cart", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// HandleAddItem handles POST /v1/cart/items
func HandleAddItem(carts *service.CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}

		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		cart, err := carts.AddItem(c.Request.Context(), sid, domain.CartItem{
			ProductID:     req.ProductID,
			VariantID:     req.VariantID,
			VariantName:   req.VariantName,
			Price:         req.Price,
			PricePerLabel: req.PricePerLabel,
			PricePerProbe: req.PricePerProbe,
			Quantity:      req.Quantity,
		})
		if err != nil {
			logger.Error("Failed to add cart item", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// HandleUpdateQuantity handles PATCH /v1/cart/items/:variantId
func HandleUpdateQuantity(carts *service.CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}

		var req UpdateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		cart, err := carts.UpdateQuantity(c.Request.Context(), sid, c.Param("variantId"), req.Quantity)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// HandleRemoveItem handles DELETE /v1/cart/items/:variantId
func HandleRemoveItem(carts *service.CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}

		cart, err := carts.RemoveItem(c.Request.Context(), sid, c.Param("variantId"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// HandleSetDestination handles PUT /v1/cart/destination
func HandleSetDestination(carts *service.CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}

		var req SetDestinationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		cart, err := carts.SetDestination(c.Request.Context(), sid, req.Country, req.IsVatExempt)
		if err != nil {
			logger.Error("Failed to set destination", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}
