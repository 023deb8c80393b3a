package handlers

import (
	"clicker_backend/internal/ws"

	"github.com/gin-gonic/gin"
)

// WS upgrades to a live battle-standings subscription.
func (h *Handler) WS(hub *ws.Hub) gin.HandlerFunc {
	return ws.HandleWS(hub)
}
