package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/usecase/commands"
)

const maxWebhookBodyBytes = int64(65536)

var errMissingSignature = errors.New("signature header missing")

// WebhookHandler receives payment provider callbacks. The route is
// unauthenticated; the signature header is the only trust anchor.
type WebhookHandler struct {
	orderCommands commands.OrderCommands
}

func NewWebhookHandler(orderCommands commands.OrderCommands) *WebhookHandler {
	return &WebhookHandler{orderCommands: orderCommands}
}

func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Failed to read request body", nil)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errMissingSignature, "Missing signature header", nil)
		return
	}

	if err := h.orderCommands.ConfirmPayment(c.Request.Context(), payload, signature); err != nil {
		// A non-2xx tells the provider to retry the delivery.
		slog.Warn("payment webhook processing failed", "error", err)
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Webhook processing failed", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
