package redisboard

import (
	"context"
	"strconv"
	"time"

	"clicker_backend/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// Standings mirrors battle scores into a redis sorted set so live standings
// reads never touch the transactional store. Fail-open: with no redis
// configured every method is a cheap no-op and readers fall back to Postgres.
type Standings struct {
	client *redis.Client
}

// New connects to redis; a ping failure disables the mirror.
func New(addr, password string, db int) *Standings {
	if addr == "" {
		return &Standings{}
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, live standings disabled", "error", err)
		return &Standings{}
	}
	return &Standings{client: client}
}

// Enabled reports whether the mirror is live.
func (s *Standings) Enabled() bool {
	return s.client != nil
}

// Client exposes the underlying connection for middleware reuse.
func (s *Standings) Client() *redis.Client {
	return s.client
}

func battleKey(battleID int64) string {
	return "battle:standings:" + strconv.FormatInt(battleID, 10)
}

// Entry is one cell's position in the live standings.
type Entry struct {
	CellID int64 `json:"cell_id"`
	Score  int64 `json:"score"`
}

// Add accrues score for a cell in the battle's sorted set.
func (s *Standings) Add(ctx context.Context, battleID, cellID, delta int64) {
	if s.client == nil {
		return
	}
	key := battleKey(battleID)
	if err := s.client.ZIncrBy(ctx, key, float64(delta), strconv.FormatInt(cellID, 10)).Err(); err != nil {
		logger.Warn("standings increment failed", "battle_id", battleID, "error", err)
		return
	}
	s.client.Expire(ctx, key, 7*24*time.Hour)
}

// Top returns the highest-scoring cells, best first.
func (s *Standings) Top(ctx context.Context, battleID int64, limit int) ([]Entry, error) {
	if s.client == nil {
		return nil, nil
	}
	zs, err := s.client.ZRevRangeWithScores(ctx, battleKey(battleID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		cellID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{CellID: cellID, Score: int64(z.Score)})
	}
	return entries, nil
}

// Drop removes a settled battle's set.
func (s *Standings) Drop(ctx context.Context, battleID int64) {
	if s.client == nil {
		return
	}
	s.client.Del(ctx, battleKey(battleID))
}
