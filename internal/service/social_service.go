package service

import (
	"context"
	"time"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
	"clicker_backend/internal/economy"
	"clicker_backend/internal/logger"
	"clicker_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SocialService owns the referral graph and cell (group) operations.
// Cross-entity lock order is fixed: cell row first, then player rows in
// ascending id.
type SocialService struct {
	db      *pgxpool.Pool
	players *repository.PlayerRepository
	cells   *repository.CellRepository
	outbox  *repository.OutboxRepository
}

func NewSocialService(db *pgxpool.Pool) *SocialService {
	return &SocialService{
		db:      db,
		players: repository.NewPlayerRepository(db),
		cells:   repository.NewCellRepository(db),
		outbox:  repository.NewOutboxRepository(db),
	}
}

// ApplyReferralJoinBonus credits the flat one-time bonus and bumps the
// referral counter. Called once, at the referred player's registration;
// failure must not break registration, the caller only logs it.
func (s *SocialService) ApplyReferralJoinBonus(ctx context.Context, referrerID int64) error {
	_, err := s.players.WithPlayer(ctx, referrerID, func(tx pgx.Tx, p *domain.Player) error {
		p.Balance += economy.ReferralJoinBonus
		p.Referrals++
		return nil
	})
	return err
}

// RecalcReferralProfit recomputes a referrer's referral component from the
// current own profit of every direct referral, then re-derives the total.
// Repeated invocation with no new referral activity is idempotent.
func (s *SocialService) RecalcReferralProfit(ctx context.Context, referrerID int64) error {
	referralIDs, err := s.players.DirectReferrals(ctx, referrerID)
	if err != nil {
		return err
	}

	_, err = s.players.WithPlayer(ctx, referrerID, func(tx pgx.Tx, p *domain.Player) error {
		ownProfits := make([]int64, 0, len(referralIDs))
		for _, id := range referralIDs {
			// referrals are only read; locking them after the referrer
			// row would break the ascending lock order whenever a
			// referral id is below the referrer's
			ref, err := s.players.ReadTx(ctx, tx, id)
			if err != nil {
				if domain.IsNotFound(err) {
					continue
				}
				return err
			}
			ownProfits = append(ownProfits, ref.OwnProfit())
		}
		p.ReferralProfitPerHour = economy.ReferralProfit(ownProfits)
		p.RecomputeProfit()
		return nil
	})
	return err
}

// CreateCell debits the creation cost and founds a cell with the creator as
// owner and first member.
func (s *SocialService) CreateCell(ctx context.Context, userID int64, name string, cfg *content.GameConfig) (*domain.Cell, error) {
	if name == "" {
		return nil, domain.Validation("cell name is required")
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := s.players.GetTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if p.CellID != nil {
		return nil, domain.ErrAlreadyInCell
	}
	if p.Balance < cfg.CellCreationCost {
		return nil, domain.ErrInsufficientFunds
	}
	p.Balance -= cfg.CellCreationCost

	cell, err := s.cells.CreateTx(ctx, tx, name, userID)
	if err != nil {
		return nil, err
	}
	p.CellID = &cell.ID

	if err = s.players.SaveTx(ctx, tx, p); err != nil {
		return nil, err
	}
	if err = s.outbox.EnqueueTx(ctx, tx, domain.RecalcCell, cell.ID); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cell, nil
}

// JoinCell adds the player to the cell behind an invite code, enforcing the
// roster cap.
func (s *SocialService) JoinCell(ctx context.Context, userID int64, inviteCode string, cfg *content.GameConfig) (*domain.Cell, error) {
	cell, err := s.cells.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// cell before player: canonical lock order
	locked, err := s.cells.GetTx(ctx, tx, cell.ID)
	if err != nil {
		return nil, err
	}

	count, err := s.cells.MemberCountTx(ctx, tx, locked.ID)
	if err != nil {
		return nil, err
	}
	if count >= cfg.CellMaxMembers {
		return nil, domain.ErrCellFull
	}

	p, err := s.players.GetTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if p.CellID != nil {
		return nil, domain.ErrAlreadyInCell
	}
	p.CellID = &locked.ID

	if err = s.cells.AddMemberTx(ctx, tx, locked.ID, userID); err != nil {
		return nil, err
	}
	if err = s.players.SaveTx(ctx, tx, p); err != nil {
		return nil, err
	}
	if err = s.outbox.EnqueueTx(ctx, tx, domain.RecalcCell, locked.ID); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return locked, nil
}

// LeaveCell removes the player from their cell. An emptied cell is deleted.
func (s *SocialService) LeaveCell(ctx context.Context, userID int64) error {
	p, err := s.players.Get(ctx, userID)
	if err != nil {
		return err
	}
	if p.CellID == nil {
		return domain.ErrNotInCell
	}
	cellID := *p.CellID

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = s.cells.GetTx(ctx, tx, cellID); err != nil {
		return err
	}

	locked, err := s.players.GetTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	locked.CellID = nil
	locked.CellProfitBonus = 0
	locked.RecomputeProfit()

	if err = s.cells.RemoveMemberTx(ctx, tx, cellID, userID); err != nil {
		return err
	}
	if err = s.players.SaveTx(ctx, tx, locked); err != nil {
		return err
	}

	remaining, err := s.cells.MemberCountTx(ctx, tx, cellID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		if err = s.cells.DeleteTx(ctx, tx, cellID); err != nil {
			return err
		}
	} else if err = s.outbox.EnqueueTx(ctx, tx, domain.RecalcCell, cellID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RecruitInformant debits the recruiting member and increments the cell's
// informant count. The profit effect lands through the queued recalculation.
func (s *SocialService) RecruitInformant(ctx context.Context, userID int64, cfg *content.GameConfig) (*domain.Cell, error) {
	p, err := s.players.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.CellID == nil {
		return nil, domain.ErrNotInCell
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cell, err := s.cells.GetTx(ctx, tx, *p.CellID)
	if err != nil {
		return nil, err
	}

	locked, err := s.players.GetTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if locked.Balance < cfg.InformantRecruitCost {
		return nil, domain.ErrInsufficientFunds
	}
	locked.Balance -= cfg.InformantRecruitCost
	cell.Informants++

	if err = s.players.SaveTx(ctx, tx, locked); err != nil {
		return nil, err
	}
	if err = s.cells.SaveTx(ctx, tx, cell); err != nil {
		return nil, err
	}
	if err = s.outbox.EnqueueTx(ctx, tx, domain.RecalcCell, cell.ID); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cell, nil
}

// BuyBattleTickets converts a member's coins into cell battle tickets.
func (s *SocialService) BuyBattleTickets(ctx context.Context, userID int64, count int, cfg *content.GameConfig) (*domain.Cell, error) {
	if count <= 0 {
		return nil, domain.Validation("ticket count must be positive")
	}
	p, err := s.players.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.CellID == nil {
		return nil, domain.ErrNotInCell
	}

	cost := int64(cfg.CellBattleTicketCost) * int64(count)

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cell, err := s.cells.GetTx(ctx, tx, *p.CellID)
	if err != nil {
		return nil, err
	}
	locked, err := s.players.GetTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if locked.Balance < cost {
		return nil, domain.ErrInsufficientFunds
	}
	locked.Balance -= cost
	cell.Tickets += count

	if err = s.players.SaveTx(ctx, tx, locked); err != nil {
		return nil, err
	}
	if err = s.cells.SaveTx(ctx, tx, cell); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cell, nil
}

// GetCell reads a cell, lazily accruing the bank first so the stored balance
// is exact at read time.
func (s *SocialService) GetCell(ctx context.Context, cellID int64, cfg *content.GameConfig) (*domain.Cell, []int64, error) {
	cell, err := s.accrueBank(ctx, cellID, cfg)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.cells.MemberIDs(ctx, cellID)
	if err != nil {
		return nil, nil, err
	}
	return cell, members, nil
}

// accrueBank advances the cell bank by the elapsed share of the roster's
// combined profit. Pull-based: exact at read time, zero between reads.
func (s *SocialService) accrueBank(ctx context.Context, cellID int64, cfg *content.GameConfig) (*domain.Cell, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cell, err := s.cells.GetTx(ctx, tx, cellID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	elapsed := now.Sub(cell.LastProfitUpdate)
	if elapsed > 0 {
		total, err := s.cells.MembersProfitSumTx(ctx, tx, cellID)
		if err != nil {
			return nil, err
		}
		cell.Balance += economy.BankAccrual(total, cfg.CellBankProfitShare, elapsed)
		cell.LastProfitUpdate = now
		if err = s.cells.SaveTx(ctx, tx, cell); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cell, nil
}

// RecalcCellBonus re-derives every member's cell component after a roster or
// informant change. The bank is accrued first so the pre-change roster paid
// in at the old rate.
func (s *SocialService) RecalcCellBonus(ctx context.Context, cellID int64, cfg *content.GameConfig) error {
	if _, err := s.accrueBank(ctx, cellID, cfg); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cell, err := s.cells.GetTx(ctx, tx, cellID)
	if err != nil {
		return err
	}
	members, err := s.cells.MemberIDsTx(ctx, tx, cellID)
	if err != nil {
		return err
	}

	// members come back in ascending id order, which is also the lock order
	for _, id := range members {
		p, err := s.players.GetTx(ctx, tx, id)
		if err != nil {
			if domain.IsNotFound(err) {
				logger.Warn("cell member without player document", "cell_id", cellID, "player_id", id)
				continue
			}
			return err
		}
		p.CellProfitBonus = economy.CellBonus(p.OwnProfit(), cell.Informants, cfg.InformantProfitBonus)
		p.RecomputeProfit()
		if err = s.players.SaveTx(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
