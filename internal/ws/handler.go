package ws

import (
	"net/http"
	"os"
	"strconv"

	"clicker_backend/internal/logger"
	"clicker_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades the connection and subscribes the caller to live
// standings of one battle. Auth token and battle id come as query params
// because browsers cannot set headers on websocket upgrades.
func HandleWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		userID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		battleID, err := strconv.ParseInt(c.Query("battle_id"), 10, 64)
		if err != nil || battleID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "battle_id required"})
			return
		}

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Get().Warn("ws upgrade failed", "err", err)
			return
		}

		client := newClient(userID, battleID, conn, hub)
		go client.run()
	}
}
