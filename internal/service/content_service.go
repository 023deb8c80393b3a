package service

import (
	"context"
	"sync"

	"clicker_backend/internal/content"
	"clicker_backend/internal/logger"
	"clicker_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ContentService serves the current game config. The config is versioned in
// the database; the latest version is cached in memory and swapped on
// publish, so request handlers never hit the database for content.
type ContentService struct {
	repo *repository.ConfigRepository

	mu      sync.RWMutex
	version int
	cfg     *content.GameConfig
}

func NewContentService(db *pgxpool.Pool) *ContentService {
	return &ContentService{repo: repository.NewConfigRepository(db)}
}

// Load pulls the latest published config into the cache. Called on startup
// and after each publish.
func (s *ContentService) Load(ctx context.Context) error {
	version, cfg, err := s.repo.Latest(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.version = version
	s.cfg = cfg
	s.mu.Unlock()
	logger.Get().Info("game config loaded", "version", version)
	return nil
}

// Current returns the cached config and its version. The returned config
// must be treated as read-only.
func (s *ContentService) Current() (int, *content.GameConfig) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, s.cfg
}

// Publish stores a new config version and makes it current.
func (s *ContentService) Publish(ctx context.Context, cfg *content.GameConfig) (int, error) {
	version, err := s.repo.Save(ctx, cfg)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.version = version
	s.cfg = cfg
	s.mu.Unlock()
	logger.Get().Info("game config published", "version", version)
	return version, nil
}
