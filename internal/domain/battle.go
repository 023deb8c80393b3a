package domain

import "time"

// Battle is a scheduled time window in which cells compete by member taps.
// winner_details is written exactly once at settlement; RewardsDistributed
// is the idempotency guard.
type Battle struct {
	ID                 int64          `db:"id" json:"id"`
	StartTime          time.Time      `db:"start_time" json:"start_time"`
	EndTime            time.Time      `db:"end_time" json:"end_time"`
	RewardsDistributed bool           `db:"rewards_distributed" json:"rewards_distributed"`
	WinnerDetails      []WinnerDetail `db:"winner_details" json:"winner_details,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}

// Active reports whether now falls inside [start, end).
func (b *Battle) Active(now time.Time) bool {
	return !now.Before(b.StartTime) && now.Before(b.EndTime)
}

// Ended reports whether the window has closed.
func (b *Battle) Ended(now time.Time) bool {
	return !now.Before(b.EndTime)
}

// BattleParticipant is one cell's entry with its accrued score.
type BattleParticipant struct {
	BattleID int64 `db:"battle_id" json:"battle_id"`
	CellID   int64 `db:"cell_id" json:"cell_id"`
	Score    int64 `db:"score" json:"score"`
}

// WinnerDetail records one of the top-3 cells at settlement.
type WinnerDetail struct {
	Place  int   `json:"place"`
	CellID int64 `json:"cell_id"`
	Score  int64 `json:"score"`
}
