package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/flagwars/backend/internal/domain"
)

// ScoreIndex is the ordered score store backing the leaderboard: a single
// sorted set keyed by user ID with the cumulative score as the member score.
type ScoreIndex struct {
	rdb *redis.Client
	key string
}

// NewScoreIndex creates a score index over the given sorted-set key.
func NewScoreIndex(rdb *redis.Client, key string) *ScoreIndex {
	return &ScoreIndex{rdb: rdb, key: key}
}

// Upsert sets the user's score to the given absolute value. Re-upserting the
// same value is a no-op in effect.
func (s *ScoreIndex) Upsert(ctx context.Context, userID uuid.UUID, score int) error {
	err := s.rdb.ZAdd(ctx, s.key, redis.Z{
		Score:  float64(score),
		Member: userID.String(),
	}).Err()
	if err != nil {
		return mapError(err, "score upsert")
	}

	return nil
}

// TopN returns up to limit entries ordered by score descending, each with a
// 1-indexed dense rank. Ties keep the sorted set's stable order.
func (s *ScoreIndex) TopN(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	results, err := s.rdb.ZRevRangeWithScores(ctx, s.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, mapError(err, "score top-n")
	}

	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for i, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		userID, err := uuid.Parse(member)
		if err != nil {
			// Foreign member in the set; skip rather than fail the listing.
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID: userID,
			Rank:   i + 1,
			Score:  int(z.Score),
		})
	}

	return entries, nil
}

// RankOf returns the user's 1-indexed rank and score.
// Returns domain.ErrNotFound if the user was never upserted.
func (s *ScoreIndex) RankOf(ctx context.Context, userID uuid.UUID) (*domain.LeaderboardEntry, error) {
	member := userID.String()

	rank, err := s.rdb.ZRevRank(ctx, s.key, member).Result()
	if err != nil {
		return nil, mapError(err, "score rank")
	}

	score, err := s.rdb.ZScore(ctx, s.key, member).Result()
	if err != nil {
		return nil, mapError(err, "score lookup")
	}

	return &domain.LeaderboardEntry{
		UserID: userID,
		Rank:   int(rank) + 1,
		Score:  int(score),
	}, nil
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

// snapshotJSON is the cache representation of a leaderboard snapshot.
type snapshotJSON struct {
	TakenAt time.Time           `json:"taken_at"`
	Entries []snapshotEntryJSON `json:"entries"`
}

type snapshotEntryJSON struct {
	UserID string `json:"user_id"`
	Rank   int    `json:"rank"`
	Score  int    `json:"score"`
}

// SaveSnapshot stores a dated snapshot of the leaderboard with the given TTL.
// The key carries the date so consecutive days do not overwrite each other.
func (s *ScoreIndex) SaveSnapshot(ctx context.Context, snapshot domain.LeaderboardSnapshot, ttl time.Duration) error {
	j := snapshotJSON{
		TakenAt: snapshot.TakenAt,
		Entries: make([]snapshotEntryJSON, 0, len(snapshot.Entries)),
	}
	for _, e := range snapshot.Entries {
		j.Entries = append(j.Entries, snapshotEntryJSON{
			UserID: e.UserID.String(),
			Rank:   e.Rank,
			Score:  e.Score,
		})
	}

	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	key := fmt.Sprintf("%s:snapshot:%s", s.key, snapshot.TakenAt.UTC().Format("20060102"))
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return mapError(err, "snapshot save")
	}

	return nil
}

// GetSnapshot loads the snapshot taken on the given date.
// Returns domain.ErrNotFound if none was taken or it expired.
func (s *ScoreIndex) GetSnapshot(ctx context.Context, date time.Time) (*domain.LeaderboardSnapshot, error) {
	key := fmt.Sprintf("%s:snapshot:%s", s.key, date.UTC().Format("20060102"))

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, mapError(err, "snapshot get")
	}

	var j snapshotJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	snapshot := &domain.LeaderboardSnapshot{
		TakenAt: j.TakenAt,
		Entries: make([]domain.LeaderboardEntry, 0, len(j.Entries)),
	}
	for _, e := range j.Entries {
		userID, err := uuid.Parse(e.UserID)
		if err != nil {
			continue
		}
		snapshot.Entries = append(snapshot.Entries, domain.LeaderboardEntry{
			UserID: userID,
			Rank:   e.Rank,
			Score:  e.Score,
		})
	}

	return snapshot, nil
}
