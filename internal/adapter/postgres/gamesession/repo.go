// Package gamesession implements the GameSession repository using PostgreSQL.
// The per-mode arrays (fixed question order, viewed set) are stored as JSONB;
// all writes to an active session are compare-and-swap on the version column
// so that racing requests for one session cannot double-apply.
package gamesession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/flagwars/backend/internal/adapter/postgres"
	"github.com/flagwars/backend/internal/domain"
)

// Repo provides game session persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new game session repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const sessionColumns = `id, user_id, mode, questions, current_question, total_questions,
viewed, pending_country_id, skips_remaining, skips_used, score,
started_at, completed_at, time_elapsed_seconds, is_completed, version, created_at`

const createSQL = `
INSERT INTO game_sessions (id, user_id, mode, questions, current_question, total_questions,
viewed, pending_country_id, skips_remaining, skips_used, score,
started_at, time_elapsed_seconds, is_completed, version, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING ` + sessionColumns

const getByIDSQL = `
SELECT ` + sessionColumns + `
FROM game_sessions
WHERE id = $1 AND user_id = $2`

const getActiveSQL = `
SELECT ` + sessionColumns + `
FROM game_sessions
WHERE user_id = $1 AND NOT is_completed
ORDER BY started_at DESC
LIMIT 1`

const updateSQL = `
UPDATE game_sessions
SET questions = $3, current_question = $4, viewed = $5, pending_country_id = $6,
    skips_remaining = $7, skips_used = $8, score = $9, completed_at = $10,
    time_elapsed_seconds = $11, is_completed = $12, version = version + 1
WHERE id = $1 AND user_id = $2 AND version = $13 AND NOT is_completed
RETURNING ` + sessionColumns

const listCompletedSQL = `
SELECT ` + sessionColumns + `
FROM game_sessions
WHERE user_id = $1 AND is_completed
ORDER BY started_at DESC`

const activeUserIDsSinceSQL = `
SELECT DISTINCT user_id
FROM game_sessions
WHERE started_at >= $1 AND is_completed`

const sealStaleSQL = `
UPDATE game_sessions
SET is_completed = TRUE, completed_at = now(),
    time_elapsed_seconds = GREATEST(time_elapsed_seconds,
        CAST(EXTRACT(EPOCH FROM (now() - started_at)) AS INT)),
    version = version + 1
WHERE NOT is_completed AND started_at < $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a session by primary key filtered by user_id.
// Returns domain.ErrNotFound if the session does not exist or belongs to another user.
func (r *Repo) GetByID(ctx context.Context, userID, sessionID uuid.UUID) (*domain.GameSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, sessionID, userID)

	session, err := scanSession(row)
	if err != nil {
		return nil, postgres.MapError(err, "session", sessionID)
	}

	return session, nil
}

// GetActive returns the most recently started non-completed session for a user.
// Returns domain.ErrNotFound if no active session exists.
func (r *Repo) GetActive(ctx context.Context, userID uuid.UUID) (*domain.GameSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getActiveSQL, userID)

	session, err := scanSession(row)
	if err != nil {
		return nil, postgres.MapError(err, "session", uuid.Nil)
	}

	return session, nil
}

// List returns a user's sessions matching the filter, newest first, plus the
// total count before pagination.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, filter domain.SessionFilter) ([]*domain.GameSession, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	where := sq.And{sq.Eq{"user_id": userID}}
	if filter.Mode != nil {
		where = append(where, sq.Eq{"mode": string(*filter.Mode)})
	}
	if filter.Completed != nil {
		where = append(where, sq.Eq{"is_completed": *filter.Completed})
	}

	countQuery, countArgs, err := r.sb.
		Select("count(*)").
		From("game_sessions").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	listQuery, listArgs, err := r.sb.
		Select(sessionColumns).
		From("game_sessions").
		Where(where).
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := querier.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, total, nil
}

// ListCompleted returns all completed sessions for a user, newest first.
// Used by statistics recomputation, which scans full history.
func (r *Repo) ListCompleted(ctx context.Context, userID uuid.UUID) ([]*domain.GameSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listCompletedSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}

	return sessions, nil
}

// ActiveUserIDsSince returns the distinct users with a completed session
// started at or after the given time.
func (r *Repo) ActiveUserIDsSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, activeUserIDsSinceSQL, since)
	if err != nil {
		return nil, fmt.Errorf("active users since: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("active users since: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("active users since: %w", err)
	}

	return ids, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new game session and returns the persisted row.
func (r *Repo) Create(ctx context.Context, session *domain.GameSession) (*domain.GameSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	questions, err := marshalIDs(session.Questions)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}
	viewed, err := marshalIDs(session.Viewed)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	startedAt := session.StartedAt.UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, createSQL,
		session.ID,
		session.UserID,
		string(session.Mode),
		questions,
		session.CurrentQuestion,
		session.TotalQuestions,
		viewed,
		session.PendingCountryID,
		session.SkipsRemaining,
		session.SkipsUsed,
		session.Score,
		startedAt,
		session.TimeElapsedSeconds,
		session.IsCompleted,
		1,
		now,
	)

	created, err := scanSession(row)
	if err != nil {
		return nil, postgres.MapError(err, "session", session.ID)
	}

	return created, nil
}

// Update writes the mutable session fields with compare-and-swap on version.
// Returns domain.ErrConflict when another request updated (or completed) the
// session since it was read; callers reload and retry or surface the conflict.
func (r *Repo) Update(ctx context.Context, session *domain.GameSession) (*domain.GameSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	questions, err := marshalIDs(session.Questions)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}
	viewed, err := marshalIDs(session.Viewed)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}

	var completedAt *time.Time
	if session.CompletedAt != nil {
		t := session.CompletedAt.UTC().Truncate(time.Microsecond)
		completedAt = &t
	}

	row := querier.QueryRow(ctx, updateSQL,
		session.ID,
		session.UserID,
		questions,
		session.CurrentQuestion,
		viewed,
		session.PendingCountryID,
		session.SkipsRemaining,
		session.SkipsUsed,
		session.Score,
		completedAt,
		session.TimeElapsedSeconds,
		session.IsCompleted,
		session.Version,
	)

	updated, err := scanSession(row)
	if err != nil {
		// No row matched: either the session vanished or the version moved.
		// The version moving is by far the common case under racing retries.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", session.ID, domain.ErrConflict)
		}
		return nil, postgres.MapError(err, "session", session.ID)
	}

	return updated, nil
}

// SealStale completes every active session started before the cutoff,
// snapshotting elapsed time from the wall clock. Returns the number of
// sessions sealed. Safe to double-run.
func (r *Repo) SealStale(ctx context.Context, cutoff time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, sealStaleSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("seal stale sessions: %w", err)
	}

	return ct.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanSession(row pgx.Row) (*domain.GameSession, error) {
	var (
		id             uuid.UUID
		userID         uuid.UUID
		mode           string
		questionsJSON  []byte
		currentQ       int
		totalQ         int
		viewedJSON     []byte
		pendingID      *uuid.UUID
		skipsRemaining int
		skipsUsed      int
		score          int
		startedAt      time.Time
		completedAt    *time.Time
		elapsed        int
		isCompleted    bool
		version        int
		createdAt      time.Time
	)

	if err := row.Scan(&id, &userID, &mode, &questionsJSON, &currentQ, &totalQ,
		&viewedJSON, &pendingID, &skipsRemaining, &skipsUsed, &score,
		&startedAt, &completedAt, &elapsed, &isCompleted, &version, &createdAt); err != nil {
		return nil, err
	}

	questions, err := unmarshalIDs(questionsJSON)
	if err != nil {
		return nil, fmt.Errorf("session %s: questions: %w", id, err)
	}
	viewed, err := unmarshalIDs(viewedJSON)
	if err != nil {
		return nil, fmt.Errorf("session %s: viewed: %w", id, err)
	}

	return &domain.GameSession{
		ID:                 id,
		UserID:             userID,
		Mode:               domain.GameMode(mode),
		Questions:          questions,
		CurrentQuestion:    currentQ,
		TotalQuestions:     totalQ,
		Viewed:             viewed,
		PendingCountryID:   pendingID,
		SkipsRemaining:     skipsRemaining,
		SkipsUsed:          skipsUsed,
		Score:              score,
		StartedAt:          startedAt,
		CompletedAt:        completedAt,
		TimeElapsedSeconds: elapsed,
		IsCompleted:        isCompleted,
		Version:            version,
		CreatedAt:          createdAt,
	}, nil
}

func scanSessions(rows pgx.Rows) ([]*domain.GameSession, error) {
	var sessions []*domain.GameSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if sessions == nil {
		sessions = []*domain.GameSession{}
	}

	return sessions, nil
}

// ---------------------------------------------------------------------------
// JSONB serialization helpers for UUID arrays
// ---------------------------------------------------------------------------

func marshalIDs(ids []uuid.UUID) ([]byte, error) {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return json.Marshal(ids)
}

func unmarshalIDs(data []byte) ([]uuid.UUID, error) {
	if len(data) == 0 {
		return []uuid.UUID{}, nil
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal id array: %w", err)
	}
	return ids, nil
}
