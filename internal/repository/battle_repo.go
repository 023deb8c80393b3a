package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"clicker_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BattleRepository struct {
	db *pgxpool.Pool
}

func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

func scanBattle(row pgx.Row) (*domain.Battle, error) {
	var b domain.Battle
	var details []byte
	if err := row.Scan(&b.ID, &b.StartTime, &b.EndTime, &b.RewardsDistributed, &details, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBattleNotFound
		}
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &b.WinnerDetails); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

const battleColumns = `id, start_time, end_time, rewards_distributed, winner_details, created_at`

// Create inserts a battle spanning [start, end).
func (r *BattleRepository) Create(ctx context.Context, start, end time.Time) (*domain.Battle, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO battles (start_time, end_time)
		 VALUES ($1, $2)
		 RETURNING `+battleColumns,
		start, end,
	)
	return scanBattle(row)
}

// Get reads one battle.
func (r *BattleRepository) Get(ctx context.Context, id int64) (*domain.Battle, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+battleColumns+` FROM battles WHERE id = $1`, id)
	return scanBattle(row)
}

// Active returns the battle whose window contains now, if any.
func (r *BattleRepository) Active(ctx context.Context, now time.Time) (*domain.Battle, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+battleColumns+` FROM battles
		 WHERE start_time <= $1 AND end_time > $1
		 ORDER BY start_time DESC LIMIT 1`, now)
	return scanBattle(row)
}

// UnsettledEnded returns the oldest ended battle still awaiting settlement.
func (r *BattleRepository) UnsettledEnded(ctx context.Context, now time.Time) (*domain.Battle, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+battleColumns+` FROM battles
		 WHERE end_time <= $1 AND rewards_distributed = false
		 ORDER BY end_time LIMIT 1`, now)
	return scanBattle(row)
}

// Latest returns the most recently ending battle, settled or not.
func (r *BattleRepository) Latest(ctx context.Context) (*domain.Battle, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+battleColumns+` FROM battles ORDER BY end_time DESC LIMIT 1`)
	return scanBattle(row)
}

// EndNow closes an open battle window immediately (admin force-end).
func (r *BattleRepository) EndNow(ctx context.Context, battleID int64, now time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE battles SET end_time = $1 WHERE id = $2 AND end_time > $1`,
		now, battleID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBattleNotFound
	}
	return nil
}

// Join registers a cell as a participant with a zero score.
func (r *BattleRepository) JoinTx(ctx context.Context, tx pgx.Tx, battleID, cellID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO battle_participants (battle_id, cell_id, score)
		 VALUES ($1, $2, 0)
		 ON CONFLICT (battle_id, cell_id) DO NOTHING`,
		battleID, cellID,
	)
	return err
}

// IsParticipant проверяет, заявлена ли ячейка в битве
func (r *BattleRepository) IsParticipant(ctx context.Context, battleID, cellID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM battle_participants WHERE battle_id = $1 AND cell_id = $2)`,
		battleID, cellID,
	).Scan(&exists)
	return exists, err
}

// AddScore accrues points to a participant. Scores only ever grow.
func (r *BattleRepository) AddScore(ctx context.Context, battleID, cellID, delta int64) (int64, error) {
	var score int64
	err := r.db.QueryRow(ctx,
		`UPDATE battle_participants SET score = score + $1
		 WHERE battle_id = $2 AND cell_id = $3
		 RETURNING score`,
		delta, battleID, cellID,
	).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrBattleNotFound
	}
	return score, err
}

// Participants returns all entries ranked by score descending.
func (r *BattleRepository) Participants(ctx context.Context, battleID int64) ([]domain.BattleParticipant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT battle_id, cell_id, score FROM battle_participants
		 WHERE battle_id = $1 ORDER BY score DESC, cell_id`,
		battleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BattleParticipant
	for rows.Next() {
		var bp domain.BattleParticipant
		if err := rows.Scan(&bp.BattleID, &bp.CellID, &bp.Score); err != nil {
			return nil, err
		}
		out = append(out, bp)
	}
	return out, rows.Err()
}

// MarkSettledTx records winner_details exactly once. The rewards_distributed
// predicate is the idempotency guard: a second attempt affects zero rows.
func (r *BattleRepository) MarkSettledTx(ctx context.Context, tx pgx.Tx, battleID int64, winners []domain.WinnerDetail) (bool, error) {
	details, err := json.Marshal(winners)
	if err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx,
		`UPDATE battles SET rewards_distributed = true, winner_details = $1
		 WHERE id = $2 AND rewards_distributed = false`,
		details, battleID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// LockTx re-reads the battle row under lock inside the settlement
// transaction.
func (r *BattleRepository) LockTx(ctx context.Context, tx pgx.Tx, battleID int64) (*domain.Battle, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+battleColumns+` FROM battles WHERE id = $1 FOR UPDATE`, battleID)
	return scanBattle(row)
}
