package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"clicker_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlayerRepository owns the read-lock-mutate-write pattern for player
// documents. Every game operation runs through WithPlayer or WithPlayers.
type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// GetUserByTgID возвращает учётную запись по telegram id
func (r *PlayerRepository) GetUserByTgID(ctx context.Context, tgID int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, tg_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(language, ''),
		        COALESCE(country, ''), referred_by, last_seen_at, created_at
		 FROM users
		 WHERE tg_id = $1`,
		tgID,
	)
	return scanUser(row)
}

// GetUserByID возвращает учётную запись по внутреннему id
func (r *PlayerRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, tg_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(language, ''),
		        COALESCE(country, ''), referred_by, last_seen_at, created_at
		 FROM users
		 WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.TgID, &u.Username, &u.FirstName, &u.Language,
		&u.Country, &u.ReferredBy, &u.LastSeenAt, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser registers the identity row and its zeroed player document in one
// transaction. referredBy may be nil.
func (r *PlayerRepository) CreateUser(ctx context.Context, u *domain.User, referredBy *int64) (*domain.Player, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	err = tx.QueryRow(ctx,
		`INSERT INTO users (tg_id, username, first_name, language, country, referred_by, last_seen_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		u.TgID, u.Username, u.FirstName, u.Language, u.Country, referredBy, now,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.ReferredBy = referredBy
	u.LastSeenAt = now

	p := domain.NewPlayer(u.ID, now)
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if _, err = tx.Exec(ctx,
		`INSERT INTO players (user_id, doc) VALUES ($1, $2)`,
		u.ID, doc,
	); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// TouchLastSeen stamps the user's last activity.
func (r *PlayerRepository) TouchLastSeen(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_seen_at = NOW() WHERE id = $1`, userID)
	return err
}

// Get reads a player document without locking it.
func (r *PlayerRepository) Get(ctx context.Context, userID int64) (*domain.Player, error) {
	return r.get(ctx, r.db, userID, false)
}

// GetTx reads a player document inside tx, taking the row lock.
func (r *PlayerRepository) GetTx(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Player, error) {
	return r.get(ctx, tx, userID, true)
}

// ReadTx reads a player document inside tx without taking the row lock.
// For rows that are only inspected, never written: a FOR UPDATE here would
// bypass the ascending-id lock order WithPlayers enforces.
func (r *PlayerRepository) ReadTx(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Player, error) {
	return r.get(ctx, tx, userID, false)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PlayerRepository) get(ctx context.Context, q queryRower, userID int64, forUpdate bool) (*domain.Player, error) {
	sql := `SELECT doc FROM players WHERE user_id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}

	var raw []byte
	if err := q.QueryRow(ctx, sql, userID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, err
	}

	var p domain.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	p.EnsureMaps()
	return &p, nil
}

// SaveTx writes the document back inside tx.
func (r *PlayerRepository) SaveTx(ctx context.Context, tx pgx.Tx, p *domain.Player) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx,
		`UPDATE players SET doc = $1, updated_at = NOW() WHERE user_id = $2`,
		doc, p.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

// WithPlayer runs fn against the locked player document in one transaction
// and persists the mutated document on success. Any error rolls the whole
// transaction back and is re-raised to the caller.
func (r *PlayerRepository) WithPlayer(ctx context.Context, userID int64, fn func(tx pgx.Tx, p *domain.Player) error) (*domain.Player, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := r.GetTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err = fn(tx, p); err != nil {
		return nil, err
	}

	if err = r.SaveTx(ctx, tx, p); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// WithPlayers locks several player rows in ascending id order (the canonical
// lock order, so concurrent multi-player operations cannot deadlock) and
// persists every document after fn returns.
func (r *PlayerRepository) WithPlayers(ctx context.Context, userIDs []int64, fn func(tx pgx.Tx, players map[int64]*domain.Player) error) error {
	ids := make([]int64, 0, len(userIDs))
	seen := make(map[int64]bool, len(userIDs))
	for _, id := range userIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	players := make(map[int64]*domain.Player, len(ids))
	for _, id := range ids {
		p, err := r.GetTx(ctx, tx, id)
		if err != nil {
			return err
		}
		players[id] = p
	}

	if err = fn(tx, players); err != nil {
		return err
	}

	for _, id := range ids {
		if err = r.SaveTx(ctx, tx, players[id]); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ReferrerOfTx returns the referrer id for a user, nil if organic.
func (r *PlayerRepository) ReferrerOfTx(ctx context.Context, tx pgx.Tx, userID int64) (*int64, error) {
	var referrer *int64
	err := tx.QueryRow(ctx, `SELECT referred_by FROM users WHERE id = $1`, userID).Scan(&referrer)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return referrer, err
}

// DirectReferrals returns the user ids referred directly by referrerID.
func (r *PlayerRepository) DirectReferrals(ctx context.Context, referrerID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users WHERE referred_by = $1`, referrerID)
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

// SkinCirculation counts players whose unlocked set contains each given skin.
func (r *PlayerRepository) SkinCirculation(ctx context.Context, skinIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(skinIDs))
	for _, skinID := range skinIDs {
		var n int
		err := r.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM players WHERE (doc->'unlocked_skins'->>$1)::boolean = true`,
			skinID,
		).Scan(&n)
		if err != nil {
			return nil, err
		}
		out[skinID] = n
	}
	return out, nil
}

// Delete removes the player document plus the owning user row; sessions and
// membership rows cascade at the schema level.
func (r *PlayerRepository) Delete(ctx context.Context, userID int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `DELETE FROM cell_members WHERE player_id = $1`, userID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM players WHERE user_id = $1`, userID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return tx.Commit(ctx)
}
