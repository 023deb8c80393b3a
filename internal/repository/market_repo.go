package repository

import (
	"context"
	"errors"

	"clicker_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MarketRepository struct {
	db *pgxpool.Pool
}

func NewMarketRepository(db *pgxpool.Pool) *MarketRepository {
	return &MarketRepository{db: db}
}

const listingColumns = `id, seller_id, skin_id, price, active, created_at`

func scanListing(row pgx.Row) (*domain.MarketListing, error) {
	var l domain.MarketListing
	if err := row.Scan(&l.ID, &l.SellerID, &l.SkinID, &l.Price, &l.Active, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

// CreateTx lists one skin unit for sale.
func (r *MarketRepository) CreateTx(ctx context.Context, tx pgx.Tx, sellerID int64, skinID string, price int64) (*domain.MarketListing, error) {
	row := tx.QueryRow(ctx,
		`INSERT INTO market_listings (seller_id, skin_id, price, active)
		 VALUES ($1, $2, $3, true)
		 RETURNING `+listingColumns,
		sellerID, skinID, price,
	)
	return scanListing(row)
}

// GetActiveTx locks an active listing for purchase.
func (r *MarketRepository) GetActiveTx(ctx context.Context, tx pgx.Tx, listingID int64) (*domain.MarketListing, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM market_listings
		 WHERE id = $1 AND active = true FOR UPDATE`,
		listingID,
	)
	return scanListing(row)
}

// Get reads one listing without locking.
func (r *MarketRepository) Get(ctx context.Context, listingID int64) (*domain.MarketListing, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM market_listings WHERE id = $1`, listingID)
	return scanListing(row)
}

// DeactivateTx retires a listing after sale or cancellation.
func (r *MarketRepository) DeactivateTx(ctx context.Context, tx pgx.Tx, listingID int64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE market_listings SET active = false WHERE id = $1 AND active = true`,
		listingID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// ListActive returns the open order book, newest first.
func (r *MarketRepository) ListActive(ctx context.Context, limit int) ([]domain.MarketListing, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+listingColumns+` FROM market_listings
		 WHERE active = true ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MarketListing
	for rows.Next() {
		var l domain.MarketListing
		if err := rows.Scan(&l.ID, &l.SellerID, &l.SkinID, &l.Price, &l.Active, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
