package handlers

import (
	"net/http"
	"strconv"
	"time"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// PublishConfig stores a new game config version and makes it live.
func (h *Handler) PublishConfig(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	var cfg content.GameConfig
	if err := c.BindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid config json"})
		return
	}

	version, err := h.Content.Publish(c.Request.Context(), &cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version})
}

type SetDailyEventRequest struct {
	Date         string   `json:"date"` // YYYY-MM-DD
	Combo        []string `json:"combo"`
	ComboReward  int64    `json:"combo_reward"`
	Cipher       string   `json:"cipher"`
	CipherReward int64    `json:"cipher_reward"`
}

// SetDailyEvent installs the combo and cipher for a date.
func (h *Handler) SetDailyEvent(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	var req SetDailyEventRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	err = h.Admin.SetDailyEvent(c.Request.Context(), &domain.DailyEvent{
		EventDate:    date,
		Combo:        req.Combo,
		ComboReward:  req.ComboReward,
		Cipher:       req.Cipher,
		CipherReward: req.CipherReward,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeletePlayer removes a user and all their game state.
func (h *Handler) DeletePlayer(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad user id"})
		return
	}

	if err := h.Admin.DeletePlayer(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ForceStartBattle opens a battle immediately, bypassing the schedule.
func (h *Handler) ForceStartBattle(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	battle, err := h.Battles.ForceStart(c.Request.Context(), cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"battle": battle})
}

// ForceEndBattle closes the active battle now and settles it.
func (h *Handler) ForceEndBattle(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	battle, err := h.Battles.ForceEnd(c.Request.Context(), cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"battle": battle})
}
