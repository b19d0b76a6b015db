package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/domain"
	"github.com/kosuite/shopcore/internal/repository"
	"github.com/kosuite/shopcore/pkg/errors"
)

// OrderResponse represents the order response
type OrderResponse struct {
	OrderNumber   string              `json:"order_number"`
	Status        domain.OrderStatus  `json:"status"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ShippingCost  decimal.Decimal     `json:"shipping_cost"`
	TaxAmount     decimal.Decimal     `json:"tax_amount"`
	Total         decimal.Decimal     `json:"total"`
	CreatedAt     string              `json:"created_at"`
	PaidAt        *string             `json:"paid_at,omitempty"`
	CancelledAt   *string             `json:"cancelled_at,omitempty"`
}

type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	VariantID   string          `json:"variant_id"`
	VariantName string          `json:"variant_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// HandleGetOrder handles GET /v1/orders/:number
//
// Read-only status lookup for the post-checkout page. The response omits
// customer details on purpose: the order number is a bearer reference.
func HandleGetOrder(repo repository.OrderRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := repo.FindByNumber(c.Request.Context(), c.Param("number"))
		if err != nil {
			var nf *errors.ErrNotFound
			if stderrors.As(err, &nf) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to get order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		items := make([]OrderItemResponse, len(order.Items))
		for i, item := range order.Items {
			items[i] = OrderItemResponse{
				ProductID:   item.ProductID,
				VariantID:   item.VariantID,
				VariantName: item.VariantName,
				Price:       item.Price,
				Quantity:    item.Quantity,
			}
		}

		response := OrderResponse{
			OrderNumber:   order.OrderNumber,
			Status:        order.Status,
			PaymentMethod: order.PaymentMethod,
			Items:         items,
			Subtotal:      order.Summary.Subtotal,
			ShippingCost:  order.Summary.ShippingCost,
			TaxAmount:     order.Summary.TaxAmount,
			Total:         order.Summary.Total,
			CreatedAt:     order.CreatedAt.Format(time.RFC3339),
		}
		if order.PaidAt != nil {
			s := order.PaidAt.Format(time.RFC3339)
			response.PaidAt = &s
		}
		if order.CancelledAt != nil {
			s := order.CancelledAt.Format(time.RFC3339)
			response.CancelledAt = &s
		}

		c.JSON(http.StatusOK, response)
	}
}
