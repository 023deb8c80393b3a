package handlers

import (
	"context"
	"net/http"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type glitchFn func(ctx context.Context, userID int64, code string, cfg *content.GameConfig) (*domain.Player, error)

type ClaimTaskRequest struct {
	Code string `json:"code,omitempty"`
}

// ClaimTask claims a daily or special task reward.
func (h *Handler) ClaimTask(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	var req ClaimTaskRequest
	_ = c.BindJSON(&req) // body optional for tasks without a code

	player, err := h.Progression.ClaimTask(c.Request.Context(), uid, c.Param("id"), req.Code, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

// ClaimCombo pays out the daily combo once all three upgrades were bought today.
func (h *Handler) ClaimCombo(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	player, err := h.Progression.ClaimCombo(c.Request.Context(), uid, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

type ClaimCipherRequest struct {
	Guess string `json:"guess"`
}

// ClaimCipher checks the daily cipher word, case-insensitively.
func (h *Handler) ClaimCipher(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	var req ClaimCipherRequest
	if err := c.BindJSON(&req); err != nil || req.Guess == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guess required"})
		return
	}

	player, err := h.Progression.ClaimCipher(c.Request.Context(), uid, req.Guess, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

type GlitchRequest struct {
	Code string `json:"code"`
}

// DiscoverGlitch marks a hidden glitch event as found.
func (h *Handler) DiscoverGlitch(c *gin.Context) {
	h.glitch(c, h.Progression.DiscoverGlitch)
}

// ClaimGlitch pays out a discovered glitch event, once.
func (h *Handler) ClaimGlitch(c *gin.Context) {
	h.glitch(c, h.Progression.ClaimGlitch)
}

func (h *Handler) glitch(c *gin.Context, fn glitchFn) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	var req GlitchRequest
	if err := c.BindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code required"})
		return
	}

	player, err := fn(c.Request.Context(), uid, req.Code, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}
