package domain

import "time"

// User - учётная запись Telegram; владеет одним документом Player
type User struct {
	ID         int64     `db:"id" json:"id"`
	TgID       int64     `db:"tg_id" json:"tg_id"`
	Username   string    `db:"username" json:"username"`
	FirstName  string    `db:"first_name" json:"first_name"`
	Language   string    `db:"language" json:"language"`
	Country    string    `db:"country" json:"country"`
	ReferredBy *int64    `db:"referred_by" json:"referred_by,omitempty"`
	LastSeenAt time.Time `db:"last_seen_at" json:"last_seen_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
