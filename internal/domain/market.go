package domain

import "time"

// MarketListing is a sell order for one skin unit priced in hard currency.
type MarketListing struct {
	ID        int64     `db:"id" json:"id"`
	SellerID  int64     `db:"seller_id" json:"seller_id"`
	SkinID    string    `db:"skin_id" json:"skin_id"`
	Price     int64     `db:"price" json:"price"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
