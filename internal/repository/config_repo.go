package repository

import (
	"context"
	"encoding/json"
	"errors"

	"clicker_backend/internal/content"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConfigRepository stores the versioned game-content document. Operations
// read the latest snapshot; the admin console appends new versions.
type ConfigRepository struct {
	db *pgxpool.Pool
}

func NewConfigRepository(db *pgxpool.Pool) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Latest returns the newest content version and its document.
func (r *ConfigRepository) Latest(ctx context.Context) (int, *content.GameConfig, error) {
	var version int
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT version, doc FROM game_config ORDER BY version DESC LIMIT 1`,
	).Scan(&version, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// empty content table is a deploy error, surface it loudly
			return 0, nil, errors.New("game config is not seeded")
		}
		return 0, nil, err
	}

	var cfg content.GameConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return 0, nil, err
	}
	return version, &cfg, nil
}

// Save appends a new content version and returns its number.
func (r *ConfigRepository) Save(ctx context.Context, cfg *content.GameConfig) (int, error) {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return 0, err
	}

	var version int
	err = r.db.QueryRow(ctx,
		`INSERT INTO game_config (version, doc)
		 SELECT COALESCE(MAX(version), 0) + 1, $1 FROM game_config
		 RETURNING version`,
		doc,
	).Scan(&version)
	return version, err
}
