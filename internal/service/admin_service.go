package service

import (
	"context"
	"time"

	"clicker_backend/internal/domain"
	"clicker_backend/internal/logger"
	"clicker_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminService bundles the operator-only mutations: daily event rotation
// and player removal. Battle overrides live on BattleService, content
// publishing on ContentService.
type AdminService struct {
	players *repository.PlayerRepository
	events  *repository.EventRepository
}

func NewAdminService(db *pgxpool.Pool) *AdminService {
	return &AdminService{
		players: repository.NewPlayerRepository(db),
		events:  repository.NewEventRepository(db),
	}
}

// SetDailyEvent installs the combo and cipher for a calendar date,
// replacing any existing entry for that date.
func (s *AdminService) SetDailyEvent(ctx context.Context, e *domain.DailyEvent) error {
	if len(e.Combo) != 3 {
		return domain.Validation("combo must list exactly 3 upgrade ids")
	}
	if e.Cipher == "" {
		return domain.Validation("cipher word is required")
	}
	if err := s.events.Upsert(ctx, e); err != nil {
		return err
	}
	logger.Get().Info("daily event set", "date", e.EventDate.Format("2006-01-02"))
	return nil
}

// DailyEvent returns the event for a date, if one is configured.
func (s *AdminService) DailyEvent(ctx context.Context, date time.Time) (*domain.DailyEvent, error) {
	return s.events.GetByDate(ctx, date)
}

// DeletePlayer removes a user and all of their game state.
func (s *AdminService) DeletePlayer(ctx context.Context, userID int64) error {
	if err := s.players.Delete(ctx, userID); err != nil {
		return err
	}
	logger.Get().Warn("player deleted by admin", "user_id", userID)
	return nil
}
