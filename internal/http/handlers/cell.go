package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CreateCellRequest struct {
	Name string `json:"name"`
}

// CreateCell founds a new cell; the creation cost is debited from the caller.
func (h *Handler) CreateCell(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	var req CreateCellRequest
	if err := c.BindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	cell, err := h.Social.CreateCell(c.Request.Context(), uid, req.Name, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cell": cell})
}

type JoinCellRequest struct {
	InviteCode string `json:"invite_code"`
}

// JoinCell joins by invite code, subject to the roster cap.
func (h *Handler) JoinCell(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	var req JoinCellRequest
	if err := c.BindJSON(&req); err != nil || req.InviteCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invite_code required"})
		return
	}

	cell, err := h.Social.JoinCell(c.Request.Context(), uid, req.InviteCode, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cell": cell})
}

// LeaveCell removes the caller from their cell. The last member leaving
// dissolves the cell.
func (h *Handler) LeaveCell(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Social.LeaveCell(c.Request.Context(), uid); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetCell returns a cell with its roster, after accruing the bank.
func (h *Handler) GetCell(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	cellID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || cellID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad cell id"})
		return
	}

	cell, members, err := h.Social.GetCell(c.Request.Context(), cellID, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cell": cell, "member_ids": members})
}

// RecruitInformant buys one informant for the caller's cell.
func (h *Handler) RecruitInformant(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	cell, err := h.Social.RecruitInformant(c.Request.Context(), uid, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cell": cell})
}

type BuyTicketsRequest struct {
	Count int `json:"count"`
}

// BuyBattleTickets converts the caller's coins into cell battle tickets.
func (h *Handler) BuyBattleTickets(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	var req BuyTicketsRequest
	if err := c.BindJSON(&req); err != nil || req.Count <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be positive"})
		return
	}

	cell, err := h.Social.BuyBattleTickets(c.Request.Context(), uid, req.Count, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cell": cell})
}
