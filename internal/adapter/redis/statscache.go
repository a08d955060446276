package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/flagwars/backend/internal/domain"
)

// StatsCache stores recomputed user statistics with a short expiry.
// One key per user; a miss means the aggregator recomputes from source truth.
type StatsCache struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewStatsCache creates a stats cache with the given key prefix and TTL.
func NewStatsCache(rdb *goredis.Client, prefix string, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// userStatsJSON is the cache representation of domain.UserStats.
// Domain types carry no json tags, so the adapter handles serialization.
type userStatsJSON struct {
	UserID           string    `json:"user_id"`
	TotalGames       int       `json:"total_games"`
	AvgScore         float64   `json:"avg_score"`
	BestScore        int       `json:"best_score"`
	TotalScore       int       `json:"total_score"`
	TotalCardsViewed int       `json:"total_cards_viewed"`
	Accuracy         float64   `json:"accuracy"`
	ComputedAt       time.Time `json:"computed_at"`
}

// Get returns the cached stats for a user.
// Returns domain.ErrNotFound on a cache miss or expired entry.
func (c *StatsCache) Get(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	data, err := c.rdb.Get(ctx, c.keyFor(userID)).Bytes()
	if err != nil {
		return nil, mapError(err, "stats get")
	}

	var j userStatsJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}

	id, err := uuid.Parse(j.UserID)
	if err != nil {
		return nil, fmt.Errorf("unmarshal stats: user id: %w", err)
	}

	return &domain.UserStats{
		UserID:           id,
		TotalGames:       j.TotalGames,
		AvgScore:         j.AvgScore,
		BestScore:        j.BestScore,
		TotalScore:       j.TotalScore,
		TotalCardsViewed: j.TotalCardsViewed,
		Accuracy:         j.Accuracy,
		ComputedAt:       j.ComputedAt,
	}, nil
}

// Set stores the stats for a user with the configured expiry.
func (c *StatsCache) Set(ctx context.Context, stats *domain.UserStats) error {
	j := userStatsJSON{
		UserID:           stats.UserID.String(),
		TotalGames:       stats.TotalGames,
		AvgScore:         stats.AvgScore,
		BestScore:        stats.BestScore,
		TotalScore:       stats.TotalScore,
		TotalCardsViewed: stats.TotalCardsViewed,
		Accuracy:         stats.Accuracy,
		ComputedAt:       stats.ComputedAt,
	}

	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	if err := c.rdb.Set(ctx, c.keyFor(stats.UserID), data, c.ttl).Err(); err != nil {
		return mapError(err, "stats set")
	}

	return nil
}

func (c *StatsCache) keyFor(userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", c.prefix, userID)
}
