package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BuyUpgrade purchases the next level of an upgrade card.
func (h *Handler) BuyUpgrade(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	player, err := h.Progression.BuyUpgrade(c.Request.Context(), uid, c.Param("id"), cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

// BuyBoost purchases the next level of a boost, subject to the daily limit.
func (h *Handler) BuyBoost(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	player, err := h.Progression.BuyBoost(c.Request.Context(), uid, c.Param("id"), cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}
