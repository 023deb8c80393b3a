package ws

import (
	"encoding/json"
	"sync"

	"clicker_backend/internal/logger"
	"clicker_backend/internal/redisboard"
)

// Hub fans standings snapshots out to subscribed clients. Clients subscribe
// to one battle; a broadcast for that battle is pushed to each of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{} // battle id -> subscribers
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.BattleID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.BattleID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.BattleID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.BattleID)
	}
}

// BroadcastStandings pushes a standings snapshot to every subscriber of the
// battle. Slow clients are skipped, not waited on.
func (h *Hub) BroadcastStandings(battleID int64, entries []redisboard.Entry) {
	msg, err := json.Marshal(Message{
		Type:    MsgStandings,
		Payload: StandingsPayload{BattleID: battleID, Entries: entries},
	})
	if err != nil {
		logger.Get().Error("standings marshal failed", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[battleID] {
		select {
		case c.send <- msg:
		default:
			// backed-up client misses this snapshot
		}
	}
}

// Subscribers returns the current subscriber count for a battle.
func (h *Hub) Subscribers(battleID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[battleID])
}
