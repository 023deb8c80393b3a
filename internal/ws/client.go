package ws

import (
	"time"

	"clicker_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one standings subscriber. Traffic is one-way: the server pushes
// snapshots, the client only answers pings.
type Client struct {
	UserID   int64
	BattleID int64

	conn *websocket.Conn
	hub  *Hub
	send chan []byte
}

func newClient(userID, battleID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:   userID,
		BattleID: battleID,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, 16),
	}
}

func (c *Client) run() {
	c.hub.register(c)
	go c.writePump()
	c.readPump()
}

// readPump only services control frames; any data frame from the client is
// ignored. Returning tears the connection down.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
		close(c.send)
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Get().Warn("standings write failed", "user_id", c.UserID, "err", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
