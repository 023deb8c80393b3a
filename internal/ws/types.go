package ws

import "clicker_backend/internal/redisboard"

const (
	// server - client
	MsgStandings = "standings"
	MsgError     = "error"
)

// Message is the envelope for every server frame.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type StandingsPayload struct {
	BattleID int64              `json:"battle_id"`
	Entries  []redisboard.Entry `json:"entries"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
