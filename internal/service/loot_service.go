package service

import (
	"context"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
	"clicker_backend/internal/economy"
	"clicker_backend/internal/loot"
	"clicker_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LootService resolves lootbox openings. Coin boxes debit the player's soft
// balance; star boxes arrive through the payment provider with the cost
// already settled externally.
type LootService struct {
	db      *pgxpool.Pool
	players *repository.PlayerRepository
	outbox  *repository.OutboxRepository
	rnd     loot.RandSource
}

func NewLootService(db *pgxpool.Pool) *LootService {
	return &LootService{
		db:      db,
		players: repository.NewPlayerRepository(db),
		outbox:  repository.NewOutboxRepository(db),
		rnd:     loot.CryptoRand,
	}
}

// SetRandSource overrides the random source, for tests.
func (s *LootService) SetRandSource(rnd loot.RandSource) {
	s.rnd = rnd
}

// OpenCoinBox charges the coin price and resolves a draw. When the filtered
// pool comes back empty the charge is kept: the debit commits and the caller
// gets ErrNoItemsAvailable. Long-standing product behavior, do not "fix".
func (s *LootService) OpenCoinBox(ctx context.Context, userID int64, locale string, cfg *content.GameConfig) (*loot.Item, *domain.Player, error) {
	return s.open(ctx, userID, locale, content.BoxTypeCoin, cfg.LootboxCostCoins, cfg)
}

// OpenStarBox resolves a star-box draw; payment happened upstream.
func (s *LootService) OpenStarBox(ctx context.Context, userID int64, locale string, cfg *content.GameConfig) (*loot.Item, *domain.Player, error) {
	return s.open(ctx, userID, locale, content.BoxTypeStar, 0, cfg)
}

func (s *LootService) open(ctx context.Context, userID int64, locale, boxType string, cost int64, cfg *content.GameConfig) (*loot.Item, *domain.Player, error) {
	circulating, err := s.circulation(ctx, cfg, boxType)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := s.players.GetTx(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}

	if cost > 0 {
		if p.Balance < cost {
			return nil, nil, domain.ErrInsufficientFunds
		}
		p.Balance -= cost
	}

	pool := loot.BuildPool(cfg, boxType, p, circulating)
	if len(pool) == 0 {
		// commit the debit anyway: no refund on an empty pool
		if err = s.players.SaveTx(ctx, tx, p); err != nil {
			return nil, nil, err
		}
		if err = tx.Commit(ctx); err != nil {
			return nil, nil, err
		}
		return nil, p, domain.ErrNoItemsAvailable
	}

	won := loot.Draw(pool, s.rnd)

	switch won.Kind {
	case loot.KindCard:
		level := p.Upgrades[won.ID]
		p.Upgrades[won.ID] = level + 1
		p.BaseProfitPerHour += economy.UpgradeProfitGain(won.ProfitPerHour, level)
		p.RecomputeProfit()
		if err = s.enqueueReferralRecalc(ctx, tx, p.UserID); err != nil {
			return nil, nil, err
		}
	case loot.KindSkin:
		p.UnlockedSkins[won.ID] = true // idempotent union
	}

	economy.ApplySuspicion(p, won.SuspicionModifier, locale, nowFunc())

	if err = s.players.SaveTx(ctx, tx, p); err != nil {
		return nil, nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return won, p, nil
}

func (s *LootService) enqueueReferralRecalc(ctx context.Context, tx pgx.Tx, userID int64) error {
	referrer, err := s.players.ReferrerOfTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	if referrer == nil {
		return nil
	}
	return s.outbox.EnqueueTx(ctx, tx, domain.RecalcReferral, *referrer)
}

// circulation counts current owners for every supply-capped skin of the box.
// The scan runs outside the draw transaction and locks nothing, so two
// concurrent draws can both see maxSupply-1 owners and over-issue a capped
// skin by one. The cap is a rarity throttle, not an inventory guarantee;
// moving the count into the tx would not close the window either (the scan
// reads an MVCC snapshot, not locked rows).
func (s *LootService) circulation(ctx context.Context, cfg *content.GameConfig, boxType string) (map[string]int, error) {
	var capped []string
	for _, skin := range cfg.CoinSkins {
		if skin.BoxType == boxType && skin.MaxSupply > 0 {
			capped = append(capped, skin.ID)
		}
	}
	if len(capped) == 0 {
		return map[string]int{}, nil
	}
	return s.players.SkinCirculation(ctx, capped)
}
