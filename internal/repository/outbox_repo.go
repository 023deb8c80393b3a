package repository

import (
	"context"
	"time"

	"clicker_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxRepository queues cross-entity recalculation events. Enqueue happens
// inside the primary transaction so an event exists iff the mutation that
// needs it committed.
type OutboxRepository struct {
	db *pgxpool.Pool
}

func NewOutboxRepository(db *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// EnqueueTx inserts a pending event in the caller's transaction.
func (r *OutboxRepository) EnqueueTx(ctx context.Context, tx pgx.Tx, kind string, targetID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO recalc_outbox (kind, target_id) VALUES ($1, $2)`,
		kind, targetID,
	)
	return err
}

// FetchPending returns up to limit unprocessed events that still have
// retries left.
func (r *OutboxRepository) FetchPending(ctx context.Context, limit int, maxAttempts int) ([]domain.RecalcEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, kind, target_id, attempts, COALESCE(last_error, ''), created_at
		 FROM recalc_outbox
		 WHERE done_at IS NULL AND attempts < $2
		 ORDER BY id
		 LIMIT $1`,
		limit, maxAttempts,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RecalcEvent
	for rows.Next() {
		var e domain.RecalcEvent
		if err := rows.Scan(&e.ID, &e.Kind, &e.TargetID, &e.Attempts, &e.LastError, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkDone stamps an event processed.
func (r *OutboxRepository) MarkDone(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE recalc_outbox SET done_at = $1 WHERE id = $2`,
		time.Now(), id,
	)
	return err
}

// MarkFailed counts an attempt and keeps the event pending for retry.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id int64, cause string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE recalc_outbox SET attempts = attempts + 1, last_error = $1 WHERE id = $2`,
		cause, id,
	)
	return err
}
