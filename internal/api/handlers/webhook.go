package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/domain"
	"github.com/kosuite/shopcore/internal/metrics"
	"github.com/kosuite/shopcore/internal/service"
	"github.com/kosuite/shopcore/internal/webhook"
	"github.com/kosuite/shopcore/pkg/errors"
)

// HandlePaymentWebhook handles POST /v1/webhooks/payment
func HandlePaymentWebhook(verifier *webhook.Verifier, lifecycle *service.LifecycleService, m *metrics.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The signature covers the bytes on the wire; read them before any
		// parsing so a re-encoded body cannot sneak past verification.
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read webhook body", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if err := verifier.Verify(
			c.GetHeader(webhook.TimestampHeader),
			c.GetHeader(webhook.SignatureHeader),
			body,
		); err != nil {
			// Security-relevant: somebody sent an unauthenticated event.
			logger.Warn("Rejected webhook",
				zap.String("remote_addr", c.ClientIP()),
				zap.Error(err),
			)
			m.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		var evt domain.PaymentEvent
		if err := json.Unmarshal(body, &evt); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}
		if evt.MerchantOrderExtRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "merchant_order_ext_ref is required"})
			return
		}

		if err := lifecycle.Apply(c.Request.Context(), evt); err != nil {
			var nf *errors.ErrNotFound
			if stderrors.As(err, &nf) {
				// Correlation failure: the gateway references an order this
				// system never created. Needs manual reconciliation.
				logger.Error("Webhook references unknown order",
					zap.String("order_number", evt.MerchantOrderExtRef),
					zap.String("event", evt.Event),
				)
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to process webhook", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
