package domain

import "time"

// Recalc event kinds processed by the outbox worker.
const (
	RecalcReferral = "referral" // target = referrer user id
	RecalcCell     = "cell"     // target = cell id
)

// RecalcEvent is one queued cross-entity propagation. The primary
// transaction inserts it; the outbox worker applies it with retries.
type RecalcEvent struct {
	ID        int64      `db:"id" json:"id"`
	Kind      string     `db:"kind" json:"kind"`
	TargetID  int64      `db:"target_id" json:"target_id"`
	Attempts  int        `db:"attempts" json:"attempts"`
	LastError string     `db:"last_error" json:"last_error,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	DoneAt    *time.Time `db:"done_at" json:"done_at,omitempty"`
}
