package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PaymentCallbackRequest struct {
	Payload string `json:"payload"`
	Locale  string `json:"locale,omitempty"`
}

// PaymentCallback is hit by the bot after a successful provider payment.
// The bot authenticates with the shared secret header; the payload encodes
// what was bought: "<kind>-<userId>-<itemId>".
func (h *Handler) PaymentCallback(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Payment-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "bad payment secret"})
			return
		}

		cfg, ok := h.currentConfig(c)
		if !ok {
			return
		}

		var req PaymentCallbackRequest
		if err := c.BindJSON(&req); err != nil || req.Payload == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payload required"})
			return
		}

		locale := req.Locale
		if locale != "ru" {
			locale = "en"
		}

		if err := h.Payments.Confirm(c.Request.Context(), req.Payload, locale, cfg); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
