package service

import (
	"context"
	"strings"
	"time"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
	"clicker_backend/internal/economy"
	"clicker_backend/internal/logger"
	"clicker_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Anti-cheat thresholds for a single tap sync.
const (
	maxTapsPerSync   = 2000
	cheaterStrikeCap = 3
)

// ScoreSink receives battle score accruals from tap syncs. Wired to the
// battle service at startup; fire-and-forget from the tap path.
type ScoreSink interface {
	AddScore(ctx context.Context, cellID int64, taps int64)
}

// ProgressionService owns per-player progression: login, the lazy daily
// reset, tap syncs, task claims, upgrade and boost purchases, skins and
// glitch codes.
type ProgressionService struct {
	db      *pgxpool.Pool
	players *repository.PlayerRepository
	events  *repository.EventRepository
	outbox  *repository.OutboxRepository
	social  *SocialService

	loc    *time.Location
	scores ScoreSink
}

func NewProgressionService(db *pgxpool.Pool, social *SocialService, loc *time.Location) *ProgressionService {
	if loc == nil {
		loc = time.UTC
	}
	return &ProgressionService{
		db:      db,
		players: repository.NewPlayerRepository(db),
		events:  repository.NewEventRepository(db),
		outbox:  repository.NewOutboxRepository(db),
		social:  social,
		loc:     loc,
	}
}

// SetScoreSink wires the battle score accrual hook.
func (s *ProgressionService) SetScoreSink(sink ScoreSink) {
	s.scores = sink
}

// Login fetches or registers the player for a Telegram identity. The
// one-time referral join bonus is applied at registration; its failure is
// logged, never surfaced.
func (s *ProgressionService) Login(ctx context.Context, tg *domain.User, referrerID *int64) (*domain.User, *domain.Player, error) {
	user, err := s.players.GetUserByTgID(ctx, tg.TgID)
	if err == nil {
		_ = s.players.TouchLastSeen(ctx, user.ID)
		p, err := s.players.WithPlayer(ctx, user.ID, func(tx pgx.Tx, p *domain.Player) error {
			s.maybeDailyReset(p, time.Now())
			return nil
		})
		return user, p, err
	}
	if !domain.IsNotFound(err) {
		return nil, nil, err
	}

	// валидируем реферера до создания записи
	if referrerID != nil {
		if _, err := s.players.GetUserByID(ctx, *referrerID); err != nil {
			referrerID = nil
		}
	}

	p, err := s.players.CreateUser(ctx, tg, referrerID)
	if err != nil {
		return nil, nil, err
	}

	if referrerID != nil {
		if err := s.social.ApplyReferralJoinBonus(ctx, *referrerID); err != nil {
			logger.Error("referral join bonus failed", "referrer_id", *referrerID, "error", err)
		}
	}
	return tg, p, nil
}

// sameDay compares calendar dates in the fixed reference timezone.
func (s *ProgressionService) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(s.loc).Date()
	by, bm, bd := b.In(s.loc).Date()
	return ay == by && am == bm && ad == bd
}

// maybeDailyReset zeroes the daily-cycle fields when the stored reset date
// differs from today. Idempotent within a calendar day.
func (s *ProgressionService) maybeDailyReset(p *domain.Player, now time.Time) {
	if s.sameDay(p.Daily.LastReset, now) {
		return
	}
	p.Daily.CompletedTasks = make(map[string]bool)
	p.Daily.DailyTaps = 0
	p.Daily.ComboClaimed = false
	p.Daily.CipherClaimed = false
	p.Daily.UpgradedToday = make(map[string]bool)
	p.Daily.BoostPurchases = make(map[string]int)
	p.Daily.LastReset = now
}

// TapSyncResult describes the applied slice of a tap batch.
type TapSyncResult struct {
	Player  *domain.Player `json:"player"`
	Applied int            `json:"applied"`
	Earned  int64          `json:"earned"`
}

// TapSync applies a batch of taps: each tap costs one energy and earns
// 1 + tapGuruLevel coins. Taps beyond the available energy are dropped, and
// an oversized batch records an anti-cheat violation.
func (s *ProgressionService) TapSync(ctx context.Context, userID int64, taps int, cfg *content.GameConfig) (*TapSyncResult, error) {
	if taps <= 0 {
		return nil, domain.Validation("taps must be positive")
	}

	res := &TapSyncResult{}
	var cellID *int64

	p, err := s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		now := time.Now()
		s.maybeDailyReset(p, now)

		if taps > maxTapsPerSync {
			p.Cheat.Strikes++
			p.Cheat.Violations = append(p.Cheat.Violations, domain.Violation{
				Kind:      "oversized_tap_batch",
				CreatedAt: now,
			})
			if p.Cheat.Strikes >= cheaterStrikeCap {
				p.Cheat.IsCheater = true
			}
			taps = maxTapsPerSync
		}

		if p.Energy <= 0 {
			return domain.ErrNotEnoughEnergy
		}
		applied := taps
		if applied > p.Energy {
			applied = p.Energy
		}

		earned := int64(applied) * int64(1+p.TapGuruLevel)
		p.Balance += earned
		p.Energy -= applied
		p.ClampEnergy()
		p.Daily.DailyTaps += applied

		res.Applied = applied
		res.Earned = earned
		cellID = p.CellID
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Player = p

	// battle score accrual is best-effort, outside the primary transaction
	if s.scores != nil && cellID != nil && res.Applied > 0 {
		s.scores.AddScore(ctx, *cellID, int64(res.Applied))
	}
	return res, nil
}

// RestoreEnergy refills energy from elapsed time, one point per second.
func (s *ProgressionService) RestoreEnergy(ctx context.Context, userID int64, seconds int) (*domain.Player, error) {
	if seconds <= 0 {
		return nil, domain.Validation("seconds must be positive")
	}
	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		p.Energy += seconds
		p.ClampEnergy()
		return nil
	})
}

// ClaimTask validates and claims a task reward. Daily tasks and one-time
// "special" tasks are tracked in separate completed sets; claiming the same
// id twice is rejected.
func (s *ProgressionService) ClaimTask(ctx context.Context, userID int64, taskID, code string, cfg *content.GameConfig) (*domain.Player, error) {
	task, special := cfg.FindTask(taskID)
	if task == nil {
		return nil, domain.ErrItemNotFound
	}

	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		s.maybeDailyReset(p, time.Now())

		completed := p.Daily.CompletedTasks
		if special {
			completed = p.Daily.CompletedSpecialTasks
		}
		if completed[task.ID] {
			return domain.ErrAlreadyCompleted
		}

		switch task.Type {
		case content.TaskTypeTaps:
			if p.Daily.DailyTaps < task.RequiredTaps {
				return domain.Validation("not enough taps")
			}
		case content.TaskTypeVideoCode:
			if !strings.EqualFold(code, task.Code) {
				return domain.Validation("wrong code")
			}
		}

		completed[task.ID] = true
		economy.ApplyReward(p, task.Reward)

		if task.Reward.Type == "profit" {
			return s.enqueueReferralRecalc(ctx, tx, p.UserID)
		}
		return nil
	})
}

// GrantPaidTask completes a special task once its payment is confirmed.
// The provider callback is the authorization; no extra validation runs.
func (s *ProgressionService) GrantPaidTask(ctx context.Context, userID int64, taskID string, cfg *content.GameConfig) (*domain.Player, error) {
	task, special := cfg.FindTask(taskID)
	if task == nil {
		return nil, domain.ErrItemNotFound
	}
	if !special {
		return nil, domain.Validation("task is not purchasable")
	}

	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		s.maybeDailyReset(p, time.Now())

		if p.Daily.CompletedSpecialTasks[task.ID] {
			return domain.ErrAlreadyCompleted
		}
		p.Daily.CompletedSpecialTasks[task.ID] = true
		economy.ApplyReward(p, task.Reward)

		if task.Reward.Type == "profit" {
			return s.enqueueReferralRecalc(ctx, tx, p.UserID)
		}
		return nil
	})
}

// enqueueReferralRecalc queues the referrer's recalculation when this
// player's own profit changed. No-op for organic players.
func (s *ProgressionService) enqueueReferralRecalc(ctx context.Context, tx pgx.Tx, userID int64) error {
	referrer, err := s.players.ReferrerOfTx(ctx, tx, userID)
	if err != nil {
		return err
	}
	if referrer == nil {
		return nil
	}
	return s.outbox.EnqueueTx(ctx, tx, domain.RecalcReferral, *referrer)
}

// BuyUpgrade purchases the next level of an upgrade at the exponential
// price curve and adds its profit gain to the base component.
func (s *ProgressionService) BuyUpgrade(ctx context.Context, userID int64, upgradeID string, cfg *content.GameConfig) (*domain.Player, error) {
	upgrade := cfg.FindUpgrade(upgradeID)
	if upgrade == nil {
		return nil, domain.ErrItemNotFound
	}

	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		s.maybeDailyReset(p, time.Now())

		level := p.Upgrades[upgrade.ID]
		price := economy.UpgradePrice(upgrade.BasePrice, level)
		if p.Balance < price {
			return domain.ErrInsufficientFunds
		}

		p.Balance -= price
		p.Upgrades[upgrade.ID] = level + 1
		p.BaseProfitPerHour += economy.UpgradeProfitGain(upgrade.BaseProfitPerHour, level)
		p.RecomputeProfit()
		p.Daily.UpgradedToday[upgrade.ID] = true

		return s.enqueueReferralRecalc(ctx, tx, p.UserID)
	})
}

// BuyBoost purchases one boost level, respecting the per-boost daily cap.
func (s *ProgressionService) BuyBoost(ctx context.Context, userID int64, boostID string, cfg *content.GameConfig) (*domain.Player, error) {
	boost := cfg.FindBoost(boostID)
	if boost == nil {
		return nil, domain.ErrItemNotFound
	}

	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		s.maybeDailyReset(p, time.Now())

		if boost.DailyLimit > 0 && p.Daily.BoostPurchases[boost.ID] >= boost.DailyLimit {
			return domain.Validation("daily boost limit reached")
		}

		var level int
		switch boost.ID {
		case content.BoostTapGuru:
			level = p.TapGuruLevel
		case content.BoostEnergyLimit:
			level = p.EnergyLimitLevel
		case content.BoostSuspicionLimit:
			level = p.SuspicionLimitLevel
		default:
			return domain.ErrItemNotFound
		}

		price := economy.BoostCost(boost.ID, boost.BasePrice, level)
		if p.Balance < price {
			return domain.ErrInsufficientFunds
		}
		p.Balance -= price

		switch boost.ID {
		case content.BoostTapGuru:
			p.TapGuruLevel++
		case content.BoostEnergyLimit:
			p.EnergyLimitLevel++
			p.Energy = p.MaxEnergy() // refill on capacity raise
		case content.BoostSuspicionLimit:
			p.SuspicionLimitLevel++
		}
		p.Daily.BoostPurchases[boost.ID]++
		return nil
	})
}

// SelectSkin switches the active skin; it must be in the unlocked set.
func (s *ProgressionService) SelectSkin(ctx context.Context, userID int64, skinID string) (*domain.Player, error) {
	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		if skinID != "" && !p.UnlockedSkins[skinID] {
			return domain.Validation("skin is not unlocked")
		}
		p.CurrentSkin = skinID
		return nil
	})
}

// ClaimCombo pays out the daily combo once all three combo upgrades were
// bought today.
func (s *ProgressionService) ClaimCombo(ctx context.Context, userID int64, cfg *content.GameConfig) (*domain.Player, error) {
	event, err := s.events.GetByDate(ctx, time.Now().In(s.loc))
	if err != nil {
		return nil, err
	}

	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		s.maybeDailyReset(p, time.Now())

		if p.Daily.ComboClaimed {
			return domain.ErrAlreadyClaimed
		}
		for _, upgradeID := range event.Combo {
			if !p.Daily.UpgradedToday[upgradeID] {
				return domain.Validation("combo is not complete")
			}
		}
		p.Daily.ComboClaimed = true
		p.Balance += event.ComboReward
		return nil
	})
}

// ClaimCipher pays out the daily cipher on a case-insensitive match.
func (s *ProgressionService) ClaimCipher(ctx context.Context, userID int64, guess string, cfg *content.GameConfig) (*domain.Player, error) {
	event, err := s.events.GetByDate(ctx, time.Now().In(s.loc))
	if err != nil {
		return nil, err
	}

	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		s.maybeDailyReset(p, time.Now())

		if p.Daily.CipherClaimed {
			return domain.ErrAlreadyClaimed
		}
		if !strings.EqualFold(guess, event.Cipher) {
			return domain.Validation("wrong cipher")
		}
		p.Daily.CipherClaimed = true
		p.Balance += event.CipherReward
		return nil
	})
}

// DiscoverGlitch marks a glitch code as found and shown, once.
func (s *ProgressionService) DiscoverGlitch(ctx context.Context, userID int64, code string, cfg *content.GameConfig) (*domain.Player, error) {
	glitch := findGlitch(cfg, code)
	if glitch == nil {
		return nil, domain.ErrItemNotFound
	}

	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		p.Glitch.Discovered[glitch.Code] = true
		p.Glitch.Shown[glitch.Code] = true
		return nil
	})
}

// ClaimGlitch redeems a discovered glitch code exactly once.
func (s *ProgressionService) ClaimGlitch(ctx context.Context, userID int64, code string, cfg *content.GameConfig) (*domain.Player, error) {
	glitch := findGlitch(cfg, code)
	if glitch == nil {
		return nil, domain.ErrItemNotFound
	}

	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		if !p.Glitch.Discovered[glitch.Code] {
			return domain.Validation("glitch code is not discovered")
		}
		if p.Glitch.Claimed[glitch.Code] {
			return domain.ErrAlreadyClaimed
		}
		p.Glitch.Claimed[glitch.Code] = true
		p.Balance += glitch.Reward
		return nil
	})
}

func findGlitch(cfg *content.GameConfig, code string) *content.GlitchEvent {
	for i := range cfg.GlitchEvents {
		if strings.EqualFold(cfg.GlitchEvents[i].Code, code) {
			return &cfg.GlitchEvents[i]
		}
	}
	return nil
}

// ConnectWallet stores a verified TON wallet address on the player.
func (s *ProgressionService) ConnectWallet(ctx context.Context, userID int64, address string) (*domain.Player, error) {
	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		p.TonWalletAddress = address
		return nil
	})
}

// DisconnectWallet clears the stored TON wallet address.
func (s *ProgressionService) DisconnectWallet(ctx context.Context, userID int64) (*domain.Player, error) {
	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		p.TonWalletAddress = ""
		return nil
	})
}

// Get returns the player document, running the lazy daily reset first.
func (s *ProgressionService) Get(ctx context.Context, userID int64) (*domain.Player, error) {
	return s.players.WithPlayer(ctx, userID, func(tx pgx.Tx, p *domain.Player) error {
		s.maybeDailyReset(p, time.Now())
		return nil
	})
}
