package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ActiveBattle returns the battle currently in its window, if any.
func (h *Handler) ActiveBattle(c *gin.Context) {
	battle, err := h.Battles.Active(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"battle": battle})
}

// JoinBattle enters the caller's cell into the active battle, paying the
// ticket cost from the cell's ticket pool.
func (h *Handler) JoinBattle(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	battle, err := h.Battles.Join(c.Request.Context(), uid, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"battle": battle})
}

// BattleStandings returns the scoreboard, redis-first with a database
// fallback.
func (h *Handler) BattleStandings(c *gin.Context) {
	battleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || battleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad battle id"})
		return
	}

	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := h.Battles.Standings(c.Request.Context(), battleID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"battle_id": battleID, "standings": entries})
}
