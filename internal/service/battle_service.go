package service

import (
	"context"
	"sort"
	"time"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
	"clicker_backend/internal/logger"
	"clicker_backend/internal/redisboard"
	"clicker_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Minimum quiet period between battles enforced by the scheduler.
const battleCooldown = 24 * time.Hour

// StandingsNotifier pushes live standings snapshots to connected clients.
type StandingsNotifier interface {
	BroadcastStandings(battleID int64, entries []redisboard.Entry)
}

// BattleService runs the cell-battle lifecycle: scheduled creation, joins,
// score accrual, and exactly-once settlement.
type BattleService struct {
	db        *pgxpool.Pool
	battles   *repository.BattleRepository
	cells     *repository.CellRepository
	players   *repository.PlayerRepository
	standings *redisboard.Standings
	notifier  StandingsNotifier
	loc       *time.Location
}

func NewBattleService(db *pgxpool.Pool, standings *redisboard.Standings, loc *time.Location) *BattleService {
	if loc == nil {
		loc = time.UTC
	}
	return &BattleService{
		db:        db,
		battles:   repository.NewBattleRepository(db),
		cells:     repository.NewCellRepository(db),
		players:   repository.NewPlayerRepository(db),
		standings: standings,
		loc:       loc,
	}
}

// SetNotifier wires the live-standings broadcast hook.
func (s *BattleService) SetNotifier(n StandingsNotifier) {
	s.notifier = n
}

// Tick is the idempotent periodic sweep: settle any ended battle awaiting
// rewards, then open a new one when the weekly schedule says so. Returns
// the number of battles settled on this pass.
func (s *BattleService) Tick(ctx context.Context, cfg *content.GameConfig) (int, error) {
	now := nowFunc()

	settled := 0
	for {
		ended, err := s.battles.UnsettledEnded(ctx, now)
		if err != nil {
			if domain.IsNotFound(err) {
				break
			}
			return settled, err
		}
		if err := s.Settle(ctx, ended.ID, cfg); err != nil {
			return settled, err
		}
		settled++
	}

	return settled, s.maybeSchedule(ctx, cfg, now)
}

func (s *BattleService) maybeSchedule(ctx context.Context, cfg *content.GameConfig, now time.Time) error {
	if _, err := s.battles.Active(ctx, now); err == nil {
		return nil
	} else if !domain.IsNotFound(err) {
		return err
	}

	local := now.In(s.loc)
	sched := cfg.BattleSchedule
	if int(local.Weekday()) != sched.DayOfWeek || local.Hour() < sched.StartHour {
		return nil
	}

	start := time.Date(local.Year(), local.Month(), local.Day(), sched.StartHour, 0, 0, 0, s.loc)
	end := start.Add(time.Duration(sched.DurationHours) * time.Hour)
	if !now.Before(end) {
		return nil // this week's window already passed
	}

	if last, err := s.battles.Latest(ctx); err == nil {
		if now.Sub(last.EndTime) < battleCooldown {
			return nil
		}
	} else if !domain.IsNotFound(err) {
		return err
	}

	b, err := s.battles.Create(ctx, start, end)
	if err != nil {
		return err
	}
	logger.Info("battle scheduled", "battle_id", b.ID, "start", b.StartTime, "end", b.EndTime)
	return nil
}

// ForceStart opens a battle immediately, bypassing the weekly schedule.
// Rejected while another battle is running.
func (s *BattleService) ForceStart(ctx context.Context, cfg *content.GameConfig) (*domain.Battle, error) {
	now := nowFunc()
	if _, err := s.battles.Active(ctx, now); err == nil {
		return nil, domain.ErrBattleActive
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	end := now.Add(time.Duration(cfg.BattleSchedule.DurationHours) * time.Hour)
	b, err := s.battles.Create(ctx, now, end)
	if err != nil {
		return nil, err
	}
	logger.Info("battle force-started", "battle_id", b.ID, "end", b.EndTime)
	return b, nil
}

// ForceEnd closes the active battle now and settles it through the regular
// settlement path. Rejected when nothing is running.
func (s *BattleService) ForceEnd(ctx context.Context, cfg *content.GameConfig) (*domain.Battle, error) {
	now := nowFunc()
	active, err := s.battles.Active(ctx, now)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrNoActiveBattle
		}
		return nil, err
	}

	if err := s.battles.EndNow(ctx, active.ID, now); err != nil {
		return nil, err
	}
	if err := s.Settle(ctx, active.ID, cfg); err != nil {
		return nil, err
	}
	return s.battles.Get(ctx, active.ID)
}

// Join enters the player's cell into the active battle, spending tickets.
func (s *BattleService) Join(ctx context.Context, userID int64, cfg *content.GameConfig) (*domain.Battle, error) {
	now := nowFunc()
	battle, err := s.battles.Active(ctx, now)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrNoActiveBattle
		}
		return nil, err
	}

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
	if cell.Tickets < cfg.CellBattleTicketCost {
		return nil, domain.Validation("not enough battle tickets")
	}
	cell.Tickets -= cfg.CellBattleTicketCost

	if err = s.cells.SaveTx(ctx, tx, cell); err != nil {
		return nil, err
	}
	if err = s.battles.JoinTx(ctx, tx, battle.ID, cell.ID); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return battle, nil
}

// AddScore accrues taps to the cell's score in the active battle. Best
// effort: callers never fail their own operation over it.
func (s *BattleService) AddScore(ctx context.Context, cellID int64, taps int64) {
	now := nowFunc()
	battle, err := s.battles.Active(ctx, now)
	if err != nil {
		return // no battle running, taps just don't count
	}

	joined, err := s.battles.IsParticipant(ctx, battle.ID, cellID)
	if err != nil || !joined {
		return
	}

	if _, err := s.battles.AddScore(ctx, battle.ID, cellID, taps); err != nil {
		logger.Error("battle score accrual failed", "battle_id", battle.ID, "cell_id", cellID, "error", err)
		return
	}

	s.standings.Add(ctx, battle.ID, cellID, taps)
	if s.notifier != nil {
		if top, err := s.standings.Top(ctx, battle.ID, 10); err == nil && top != nil {
			s.notifier.BroadcastStandings(battle.ID, top)
		}
	}
}

// Standings returns live standings, preferring the redis mirror and falling
// back to the transactional store.
func (s *BattleService) Standings(ctx context.Context, battleID int64, limit int) ([]redisboard.Entry, error) {
	if s.standings.Enabled() {
		if top, err := s.standings.Top(ctx, battleID, limit); err == nil && len(top) > 0 {
			return top, nil
		}
	}

	participants, err := s.battles.Participants(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if len(participants) > limit {
		participants = participants[:limit]
	}
	entries := make([]redisboard.Entry, 0, len(participants))
	for _, bp := range participants {
		entries = append(entries, redisboard.Entry{CellID: bp.CellID, Score: bp.Score})
	}
	return entries, nil
}

// Active returns the battle currently running, if any.
func (s *BattleService) Active(ctx context.Context) (*domain.Battle, error) {
	b, err := s.battles.Active(ctx, nowFunc())
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrNoActiveBattle
		}
		return nil, err
	}
	return b, nil
}

// Settle distributes rewards for an ended battle exactly once. The
// rewards_distributed flag is the only guard: the elapsed-time check
// happened when the battle was selected, never here.
func (s *BattleService) Settle(ctx context.Context, battleID int64, cfg *content.GameConfig) error {
	participants, err := s.battles.Participants(ctx, battleID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := s.battles.LockTx(ctx, tx, battleID); err != nil {
		return err
	}

	winners := make([]domain.WinnerDetail, 0, 3)
	for i := 0; i < len(participants) && i < 3; i++ {
		winners = append(winners, domain.WinnerDetail{
			Place:  i + 1,
			CellID: participants[i].CellID,
			Score:  participants[i].Score,
		})
	}

	claimed, err := s.battles.MarkSettledTx(ctx, tx, battleID, winners)
	if err != nil {
		return err
	}
	if !claimed {
		return nil // already settled, guaranteed no-op
	}

	rosters := make(map[int64][]int64, len(participants))
	for _, bp := range participants {
		members, err := s.cells.MemberIDsTx(ctx, tx, bp.CellID)
		if err != nil {
			return err
		}
		rosters[bp.CellID] = members
	}

	// payouts are flattened first so member rows lock in ascending id
	// regardless of which cell ranked where
	payees, shares := settlementShares(participants, rosters, cfg.BattleRewards)
	for _, memberID := range payees {
		p, err := s.players.GetTx(ctx, tx, memberID)
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return err
		}
		p.Balance += shares[memberID]
		if err = s.players.SaveTx(ctx, tx, p); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	s.standings.Drop(ctx, battleID)
	logger.Info("battle settled", "battle_id", battleID, "participants", len(participants))
	return nil
}

// settlementShares flattens ranked cell prizes into per-member payouts.
// Each cell's prize is floor-split across its roster; a member of several
// prize positions is impossible (one cell per player) but summing keeps the
// function total-preserving anyway. The returned ids are ascending — the
// canonical lock order the payout loop must follow.
func settlementShares(participants []domain.BattleParticipant, rosters map[int64][]int64, prizes content.BattleRewards) ([]int64, map[int64]int64) {
	shares := make(map[int64]int64)
	for rank, bp := range participants {
		var prize int64
		switch rank {
		case 0:
			prize = prizes.First
		case 1:
			prize = prizes.Second
		case 2:
			prize = prizes.Third
		default:
			prize = prizes.Participant
		}
		if prize <= 0 {
			continue
		}
		members := rosters[bp.CellID]
		if len(members) == 0 {
			continue
		}
		share := prize / int64(len(members))
		if share <= 0 {
			continue
		}
		for _, id := range members {
			shares[id] += share
		}
	}

	ids := make([]int64, 0, len(shares))
	for id := range shares {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, shares
}
