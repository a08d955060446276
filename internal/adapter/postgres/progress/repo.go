// Package progress implements the ReviewProgress (Leitner) repository using
// PostgreSQL. One row per (user, country); rows never get deleted. Review
// writes are compare-and-swap on the version column.
package progress

import (
	"context"
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

// Repo provides review progress persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// New creates a new progress repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const progressColumns = `id, user_id, country_id, box, next_review_at,
total_reviews, correct_reviews, last_reviewed_at, version, created_at, updated_at`

const createSQL = `
INSERT INTO review_progress (id, user_id, country_id, box, next_review_at,
total_reviews, correct_reviews, last_reviewed_at, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + progressColumns

const getByCountrySQL = `
SELECT ` + progressColumns + `
FROM review_progress
WHERE user_id = $1 AND country_id = $2`

const updateSQL = `
UPDATE review_progress
SET box = $3, next_review_at = $4, total_reviews = $5, correct_reviews = $6,
    last_reviewed_at = $7, version = version + 1, updated_at = now()
WHERE id = $1 AND user_id = $2 AND version = $8
RETURNING ` + progressColumns

const countDueSQL = `
SELECT count(*)
FROM review_progress
WHERE user_id = $1 AND next_review_at <= $2`

const countByBoxSQL = `
SELECT box, count(*)
FROM review_progress
WHERE user_id = $1
GROUP BY box`

const reviewTotalsSQL = `
SELECT COALESCE(SUM(correct_reviews), 0), COALESCE(SUM(total_reviews), 0)
FROM review_progress
WHERE user_id = $1 AND total_reviews > 0`

const countByUserSQL = `
SELECT count(*)
FROM review_progress
WHERE user_id = $1`

const missingCountriesSQL = `
SELECT c.id
FROM countries c
LEFT JOIN review_progress rp ON rp.country_id = c.id AND rp.user_id = $1
WHERE rp.id IS NULL
ORDER BY random()
LIMIT $2`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByCountry returns the progress record for a (user, country) pair.
// Returns domain.ErrNotFound if the user has not started this card.
func (r *Repo) GetByCountry(ctx context.Context, userID, countryID uuid.UUID) (*domain.ReviewProgress, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByCountrySQL, userID, countryID)

	progress, err := scanProgress(row)
	if err != nil {
		return nil, postgres.MapError(err, "progress", countryID)
	}

	return progress, nil
}

// ListDue returns the user's due records (next_review_at <= now), soonest
// first, capped at limit.
func (r *Repo) ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.ReviewProgress, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := r.sb.
		Select(progressColumns).
		From("review_progress").
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.LtOrEq{"next_review_at": now},
		}).
		OrderBy("next_review_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build due query: %w", err)
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list due progress: %w", err)
	}
	defer rows.Close()

	return scanProgressRows(rows)
}

// CountDue returns the number of due records for a user.
func (r *Repo) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countDueSQL, userID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count due progress: %w", err)
	}

	return count, nil
}

// CountByBox returns the per-box distribution of the user's progress records.
func (r *Repo) CountByBox(ctx context.Context, userID uuid.UUID) (domain.BoxCounts, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var counts domain.BoxCounts

	rows, err := querier.Query(ctx, countByBoxSQL, userID)
	if err != nil {
		return counts, fmt.Errorf("count by box: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var box, count int
		if err := rows.Scan(&box, &count); err != nil {
			return counts, fmt.Errorf("count by box: %w", err)
		}
		if box >= domain.MinBox && box <= domain.MaxBox {
			counts[box-1] = count
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("count by box: %w", err)
	}

	return counts, nil
}

// ReviewTotals returns sum(correct_reviews) and sum(total_reviews) across all
// records with at least one review. Accuracy derived from these sums is
// weighted by review count, not by card.
func (r *Repo) ReviewTotals(ctx context.Context, userID uuid.UUID) (correct, total int, err error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if err := querier.QueryRow(ctx, reviewTotalsSQL, userID).Scan(&correct, &total); err != nil {
		return 0, 0, fmt.Errorf("review totals: %w", err)
	}

	return correct, total, nil
}

// CountByUser returns the number of progress records the user has.
func (r *Repo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countByUserSQL, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count progress by user: %w", err)
	}

	return count, nil
}

// MissingCountryIDs returns up to limit country IDs for which the user has no
// progress record yet, in random order.
func (r *Repo) MissingCountryIDs(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, missingCountriesSQL, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("missing countries: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("missing countries: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("missing countries: %w", err)
	}

	return ids, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a fresh progress record. The (user_id, country_id) unique
// constraint maps concurrent double-creates to domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, progress *domain.ReviewProgress) (*domain.ReviewProgress, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, createSQL,
		progress.ID,
		progress.UserID,
		progress.CountryID,
		progress.Box,
		progress.NextReviewAt.UTC().Truncate(time.Microsecond),
		progress.TotalReviews,
		progress.CorrectReviews,
		progress.LastReviewedAt,
		1,
		now,
		now,
	)

	created, err := scanProgress(row)
	if err != nil {
		return nil, postgres.MapError(err, "progress", progress.CountryID)
	}

	return created, nil
}

// Update writes the review fields with compare-and-swap on version.
// Returns domain.ErrConflict when a racing review moved the version.
func (r *Repo) Update(ctx context.Context, progress *domain.ReviewProgress) (*domain.ReviewProgress, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, updateSQL,
		progress.ID,
		progress.UserID,
		progress.Box,
		progress.NextReviewAt.UTC().Truncate(time.Microsecond),
		progress.TotalReviews,
		progress.CorrectReviews,
		progress.LastReviewedAt,
		progress.Version,
	)

	updated, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("progress %s: %w", progress.ID, domain.ErrConflict)
		}
		return nil, postgres.MapError(err, "progress", progress.ID)
	}

	return updated, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanProgress(row pgx.Row) (*domain.ReviewProgress, error) {
	var (
		id             uuid.UUID
		userID         uuid.UUID
		countryID      uuid.UUID
		box            int
		nextReviewAt   time.Time
		totalReviews   int
		correctReviews int
		lastReviewedAt *time.Time
		version        int
		createdAt      time.Time
		updatedAt      time.Time
	)

	if err := row.Scan(&id, &userID, &countryID, &box, &nextReviewAt,
		&totalReviews, &correctReviews, &lastReviewedAt, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return &domain.ReviewProgress{
		ID:             id,
		UserID:         userID,
		CountryID:      countryID,
		Box:            box,
		NextReviewAt:   nextReviewAt,
		TotalReviews:   totalReviews,
		CorrectReviews: correctReviews,
		LastReviewedAt: lastReviewedAt,
		Version:        version,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

func scanProgressRows(rows pgx.Rows) ([]*domain.ReviewProgress, error) {
	var records []*domain.ReviewProgress
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, progress)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if records == nil {
		records = []*domain.ReviewProgress{}
	}

	return records, nil
}
