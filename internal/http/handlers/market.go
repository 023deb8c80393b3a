package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// BrowseMarket returns open listings.
func (h *Handler) BrowseMarket(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	listings, err := h.Market.Browse(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

type CreateListingRequest struct {
	SkinID string `json:"skin_id"`
	Price  int64  `json:"price"`
}

// CreateListing puts one of the caller's skins on the market. Purchases
// settle through the payment callback, not this API.
func (h *Handler) CreateListing(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	cfg, ok := h.currentConfig(c)
	if !ok {
		return
	}

	var req CreateListingRequest
	if err := c.BindJSON(&req); err != nil || req.SkinID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skin_id required"})
		return
	}

	listing, err := h.Market.List(c.Request.Context(), uid, req.SkinID, req.Price, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// CancelListing retires the caller's own listing.
func (h *Handler) CancelListing(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || listingID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad listing id"})
		return
	}

	if err := h.Market.Cancel(c.Request.Context(), uid, listingID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
