package service

import (
	"context"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
	"clicker_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MarketService runs the skin market. Listings are priced in hard currency;
// the buyer pays through the payment provider and the seller is credited in
// market credits on the player document.
type MarketService struct {
	db       *pgxpool.Pool
	players  *repository.PlayerRepository
	listings *repository.MarketRepository
}

func NewMarketService(db *pgxpool.Pool) *MarketService {
	return &MarketService{
		db:       db,
		players:  repository.NewPlayerRepository(db),
		listings: repository.NewMarketRepository(db),
	}
}

// List puts one owned skin unit up for sale.
func (s *MarketService) List(ctx context.Context, sellerID int64, skinID string, price int64, cfg *content.GameConfig) (*domain.MarketListing, error) {
	if price <= 0 {
		return nil, domain.Validation("price must be positive")
	}
	if cfg.FindSkin(skinID) == nil {
		return nil, domain.ErrItemNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := s.players.GetTx(ctx, tx, sellerID)
	if err != nil {
		return nil, err
	}
	if !p.UnlockedSkins[skinID] {
		return nil, domain.Validation("skin is not owned")
	}

	listing, err := s.listings.CreateTx(ctx, tx, sellerID, skinID, price)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return listing, nil
}

// Buy transfers the skin to the buyer and credits the seller. The hard
// currency changed hands upstream; this call atomically moves ownership.
// Buyer and seller rows are locked in ascending id order.
func (s *MarketService) Buy(ctx context.Context, buyerID, listingID int64) (*domain.MarketListing, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	listing, err := s.listings.GetActiveTx(ctx, tx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID == buyerID {
		return nil, domain.Validation("cannot buy own listing")
	}

	firstID, secondID := buyerID, listing.SellerID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}
	first, err := s.players.GetTx(ctx, tx, firstID)
	if err != nil {
		return nil, err
	}
	second, err := s.players.GetTx(ctx, tx, secondID)
	if err != nil {
		return nil, err
	}

	buyer, seller := first, second
	if buyer.UserID != buyerID {
		buyer, seller = second, first
	}

	if !seller.UnlockedSkins[listing.SkinID] {
		// listing went stale (skin already sold elsewhere), retire it
		if err := s.listings.DeactivateTx(ctx, tx, listing.ID); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return nil, domain.ErrListingNotFound
	}

	delete(seller.UnlockedSkins, listing.SkinID)
	if seller.CurrentSkin == listing.SkinID {
		seller.CurrentSkin = ""
	}
	seller.MarketCredits += listing.Price
	buyer.UnlockedSkins[listing.SkinID] = true

	if err = s.listings.DeactivateTx(ctx, tx, listing.ID); err != nil {
		return nil, err
	}
	if err = s.players.SaveTx(ctx, tx, first); err != nil {
		return nil, err
	}
	if err = s.players.SaveTx(ctx, tx, second); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	listing.Active = false
	return listing, nil
}

// Cancel retires the seller's own listing.
func (s *MarketService) Cancel(ctx context.Context, sellerID, listingID int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	listing, err := s.listings.GetActiveTx(ctx, tx, listingID)
	if err != nil {
		return err
	}
	if listing.SellerID != sellerID {
		return domain.Validation("not your listing")
	}
	if err = s.listings.DeactivateTx(ctx, tx, listingID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Browse returns the open order book.
func (s *MarketService) Browse(ctx context.Context, limit int) ([]domain.MarketListing, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.listings.ListActive(ctx, limit)
}
