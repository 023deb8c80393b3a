package repository

import (
	"context"
	"errors"
	"time"

	"clicker_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository stores the per-date combo/cipher rows. Claim state lives on
// the player document, not here.
type EventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// GetByDate возвращает событие на календарную дату
func (r *EventRepository) GetByDate(ctx context.Context, date time.Time) (*domain.DailyEvent, error) {
	var e domain.DailyEvent
	err := r.db.QueryRow(ctx,
		`SELECT event_date, combo, combo_reward, cipher, cipher_reward
		 FROM daily_events WHERE event_date = $1`,
		date.Format("2006-01-02"),
	).Scan(&e.EventDate, &e.Combo, &e.ComboReward, &e.Cipher, &e.CipherReward)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Upsert записывает событие дня (админ)
func (r *EventRepository) Upsert(ctx context.Context, e *domain.DailyEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO daily_events (event_date, combo, combo_reward, cipher, cipher_reward)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (event_date) DO UPDATE
		 SET combo = $2, combo_reward = $3, cipher = $4, cipher_reward = $5`,
		e.EventDate.Format("2006-01-02"), e.Combo, e.ComboReward, e.Cipher, e.CipherReward,
	)
	return err
}
