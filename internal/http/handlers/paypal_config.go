package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PayPalConfigHandler struct {
	ClientID string
	Mode     string
	Currency string
}

// GET /api/paypal-config
func (h *PayPalConfigHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"clientId":       h.ClientID,
		"mode":           h.Mode,
		"currency":       h.Currency,
		"disableFunding": "paylater",
	})
}
