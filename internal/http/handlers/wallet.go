package handlers

import (
	"net/http"
	"os"

	"clicker_backend/internal/ton"

	"github.com/gin-gonic/gin"
)

type ConnectWalletRequest struct {
	Account ton.WalletAccount `json:"account"`
	Proof   ton.ConnectProof  `json:"proof"`
}

// ConnectWallet verifies a TON Connect ownership proof and stores the
// normalized address on the player document.
func (h *Handler) ConnectWallet(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var req ConnectWalletRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if !ton.ValidateAddress(req.Account.Address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	if err := ton.VerifyProof(req.Account, req.Proof, os.Getenv("TON_PROOF_DOMAIN")); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wallet proof rejected: " + err.Error()})
		return
	}

	address, err := ton.NormalizeAddress(req.Account.Address)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.Progression.ConnectWallet(c.Request.Context(), uid, address)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}

// DisconnectWallet removes the linked TON wallet.
func (h *Handler) DisconnectWallet(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	player, err := h.Progression.DisconnectWallet(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player})
}
