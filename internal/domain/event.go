package domain

import "time"

// DailyEvent - запись на календарную дату: комбо из трёх апгрейдов и шифр.
// Состояние получения наград живёт в документе игрока, не здесь.
type DailyEvent struct {
	EventDate    time.Time `db:"event_date" json:"event_date"`
	Combo        []string  `db:"combo" json:"combo"`
	ComboReward  int64     `db:"combo_reward" json:"combo_reward"`
	Cipher       string    `db:"cipher" json:"cipher"`
	CipherReward int64     `db:"cipher_reward" json:"cipher_reward"`
}
