package repository

import (
	"context"
	"crypto/rand"
	"errors"

	"clicker_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CellRepository struct {
	db *pgxpool.Pool
}

func NewCellRepository(db *pgxpool.Pool) *CellRepository {
	return &CellRepository{db: db}
}

const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateInviteCode выдаёт 6-символьный код приглашения
func GenerateInviteCode() string {
	b := make([]byte, 6)
	rand.Read(b)
	for i := range b {
		b[i] = inviteAlphabet[int(b[i])%len(inviteAlphabet)]
	}
	return string(b)
}

// CreateTx inserts the cell row and the owner's membership row.
func (r *CellRepository) CreateTx(ctx context.Context, tx pgx.Tx, name string, ownerID int64) (*domain.Cell, error) {
	var c domain.Cell
	var err error

	// retry on the rare invite-code collision
	for i := 0; i < 5; i++ {
		code := GenerateInviteCode()
		err = tx.QueryRow(ctx,
			`INSERT INTO cells (name, owner_id, invite_code, last_profit_update)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT (invite_code) DO NOTHING
			 RETURNING id, name, owner_id, invite_code, balance, tickets, informants, last_profit_update, created_at`,
			name, ownerID, code,
		).Scan(&c.ID, &c.Name, &c.OwnerID, &c.InviteCode, &c.Balance, &c.Tickets,
			&c.Informants, &c.LastProfitUpdate, &c.CreatedAt)
		if err == nil {
			break
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO cell_members (cell_id, player_id) VALUES ($1, $2)`,
		c.ID, ownerID,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetTx reads the cell row inside tx under a row lock. Cross-entity
// operations lock the cell before any player row.
func (r *CellRepository) GetTx(ctx context.Context, tx pgx.Tx, cellID int64) (*domain.Cell, error) {
	row := tx.QueryRow(ctx,
		`SELECT id, name, owner_id, invite_code, balance, tickets, informants, last_profit_update, created_at
		 FROM cells WHERE id = $1 FOR UPDATE`, cellID)
	return scanCell(row)
}

// Get reads the cell row without locking.
func (r *CellRepository) Get(ctx context.Context, cellID int64) (*domain.Cell, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, owner_id, invite_code, balance, tickets, informants, last_profit_update, created_at
		 FROM cells WHERE id = $1`, cellID)
	return scanCell(row)
}

// GetByInviteCode находит ячейку по коду приглашения
func (r *CellRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Cell, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, owner_id, invite_code, balance, tickets, informants, last_profit_update, created_at
		 FROM cells WHERE invite_code = $1`, code)
	return scanCell(row)
}

func scanCell(row pgx.Row) (*domain.Cell, error) {
	var c domain.Cell
	if err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.InviteCode, &c.Balance, &c.Tickets,
		&c.Informants, &c.LastProfitUpdate, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCellNotFound
		}
		return nil, err
	}
	return &c, nil
}

// SaveTx writes back the mutable cell fields.
func (r *CellRepository) SaveTx(ctx context.Context, tx pgx.Tx, c *domain.Cell) error {
	_, err := tx.Exec(ctx,
		`UPDATE cells SET balance = $1, tickets = $2, informants = $3, last_profit_update = $4 WHERE id = $5`,
		c.Balance, c.Tickets, c.Informants, c.LastProfitUpdate, c.ID,
	)
	return err
}

// AddMemberTx appends to the membership table.
func (r *CellRepository) AddMemberTx(ctx context.Context, tx pgx.Tx, cellID, playerID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO cell_members (cell_id, player_id) VALUES ($1, $2)
		 ON CONFLICT (cell_id, player_id) DO NOTHING`,
		cellID, playerID,
	)
	return err
}

// RemoveMemberTx drops a membership row.
func (r *CellRepository) RemoveMemberTx(ctx context.Context, tx pgx.Tx, cellID, playerID int64) error {
	_, err := tx.Exec(ctx,
		`DELETE FROM cell_members WHERE cell_id = $1 AND player_id = $2`,
		cellID, playerID,
	)
	return err
}

// MemberIDs returns the roster via the explicit membership table.
func (r *CellRepository) MemberIDs(ctx context.Context, cellID int64) ([]int64, error) {
	return r.memberIDs(ctx, r.db, cellID)
}

// MemberIDsTx returns the roster inside tx.
func (r *CellRepository) MemberIDsTx(ctx context.Context, tx pgx.Tx, cellID int64) ([]int64, error) {
	return r.memberIDs(ctx, tx, cellID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *CellRepository) memberIDs(ctx context.Context, q querier, cellID int64) ([]int64, error) {
	rows, err := q.Query(ctx,
		`SELECT player_id FROM cell_members WHERE cell_id = $1 ORDER BY player_id`, cellID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MemberCountTx counts the roster inside tx.
func (r *CellRepository) MemberCountTx(ctx context.Context, tx pgx.Tx, cellID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM cell_members WHERE cell_id = $1`, cellID).Scan(&n)
	return n, err
}

// MembersProfitSumTx sums the roster's current profit per hour from the
// player documents, used by the lazy bank accrual.
func (r *CellRepository) MembersProfitSumTx(ctx context.Context, tx pgx.Tx, cellID int64) (int64, error) {
	var sum int64
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM((p.doc->>'profit_per_hour')::bigint), 0)
		 FROM cell_members m
		 JOIN players p ON p.user_id = m.player_id
		 WHERE m.cell_id = $1`,
		cellID,
	).Scan(&sum)
	return sum, err
}

// DeleteTx removes an empty cell.
func (r *CellRepository) DeleteTx(ctx context.Context, tx pgx.Tx, cellID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM cells WHERE id = $1`, cellID)
	return err
}
