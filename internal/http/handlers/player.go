package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the caller's player document.
func (h *Handler) Me(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	player, err := h.Progression.Get(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

type TapSyncRequest struct {
	Taps int `json:"taps"`
}

// TapSync applies a batch of taps accumulated on the client.
func (h *Handler) TapSync(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	var req TapSyncRequest
	if err := c.BindJSON(&req); err != nil || req.Taps <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taps must be positive"})
		return
	}

	res, err := h.Progression.TapSync(c.Request.Context(), uid, req.Taps, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type RestoreEnergyRequest struct {
	Seconds int `json:"seconds"`
}

// RestoreEnergy regenerates energy for the elapsed offline window.
func (h *Handler) RestoreEnergy(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var req RestoreEnergyRequest
	if err := c.BindJSON(&req); err != nil || req.Seconds <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seconds must be positive"})
		return
	}

	player, err := h.Progression.RestoreEnergy(c.Request.Context(), uid, req.Seconds)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

type SelectSkinRequest struct {
	SkinID string `json:"skin_id"`
}

// SelectSkin switches the active coin skin to an owned one.
func (h *Handler) SelectSkin(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var req SelectSkinRequest
	if err := c.BindJSON(&req); err != nil || req.SkinID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skin_id required"})
		return
	}

	player, err := h.Progression.SelectSkin(c.Request.Context(), uid, req.SkinID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

// GameConfig returns the current content version and payload.
func (h *Handler) GameConfig(c *gin.Context) {
	version, cfg := h.Content.Current()
	if cfg == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "game config not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version, "config": cfg})
}
