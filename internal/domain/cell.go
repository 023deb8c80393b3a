package domain

import "time"

// Cell - группа игроков с общим банком и рекрутируемыми информаторами
type Cell struct {
	ID               int64     `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	OwnerID          int64     `db:"owner_id" json:"owner_id"`
	InviteCode       string    `db:"invite_code" json:"invite_code"`
	Balance          int64     `db:"balance" json:"balance"`
	Tickets          int       `db:"tickets" json:"tickets"`
	Informants       int       `db:"informants" json:"informants"`
	LastProfitUpdate time.Time `db:"last_profit_update" json:"last_profit_update"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// CellMember is one row of the explicit membership table.
type CellMember struct {
	CellID   int64     `db:"cell_id" json:"cell_id"`
	PlayerID int64     `db:"player_id" json:"player_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
