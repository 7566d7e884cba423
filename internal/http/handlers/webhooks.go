package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"paylink.dev/app/internal/modules/payments"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	Logger     *slog.Logger
	WebhookSvc *payments.WebhookService
}

func NewWebhookHandler(logger *slog.Logger, svc *payments.WebhookService) *WebhookHandler {
	return &WebhookHandler{Logger: logger, WebhookSvc: svc}
}

// POST /api/webhooks/paypal
// Everything except a rejected signature is acknowledged with 200 so the
// processor does not redeliver.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.Logger.WarnContext(c.Request.Context(), "webhook body unreadable", "err", err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.WebhookSvc.Handle(c.Request.Context(), c.Request.Header, body); err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		h.Logger.ErrorContext(c.Request.Context(), "webhook handling failed", "err", err)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
