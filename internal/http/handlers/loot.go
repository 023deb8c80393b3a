package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpenLootbox opens a coin-priced lootbox. Star-priced boxes go through the
// payment callback instead.
func (h *Handler) OpenLootbox(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	item, player, err := h.Loot.OpenCoinBox(c.Request.Context(), uid, clientLocale(c), cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "player": player})
}

// clientLocale picks the penalty-message language for this request.
func clientLocale(c *gin.Context) string {
	if loc := c.Query("locale"); loc == "ru" {
		return "ru"
	}
	return "en"
}
