// Package country implements the read-mostly Country reference repository
// using PostgreSQL. Aliases are stored as JSONB; the repo layer handles
// serialization since domain types carry no json tags.
package country

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/flagwars/backend/internal/adapter/postgres"
	"github.com/flagwars/backend/internal/domain"
)

// Repo provides country reference data backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new country repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const countryColumns = `id, code, name, flag_emoji, flag_image, aliases, created_at`

const listSQL = `
SELECT ` + countryColumns + `
FROM countries
ORDER BY name ASC`

const getByIDSQL = `
SELECT ` + countryColumns + `
FROM countries
WHERE id = $1`

const countSQL = `
SELECT count(*) FROM countries`

const randomSampleSQL = `
SELECT ` + countryColumns + `
FROM countries
ORDER BY random()
LIMIT $1`

const randomExcludingSQL = `
SELECT ` + countryColumns + `
FROM countries
WHERE NOT (id = ANY($1::uuid[]))
ORDER BY random()
LIMIT 1`

const upsertSQL = `
INSERT INTO countries (id, code, name, flag_emoji, flag_image, aliases, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (code) DO UPDATE
SET name = EXCLUDED.name,
    flag_emoji = EXCLUDED.flag_emoji,
    flag_image = EXCLUDED.flag_image,
    aliases = EXCLUDED.aliases
RETURNING ` + countryColumns

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// List returns the full country catalog ordered by name.
func (r *Repo) List(ctx context.Context) ([]domain.Country, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	return scanCountries(rows)
}

// GetByID returns a country by primary key.
// Returns domain.ErrNotFound if the country does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Country, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, id)

	country, err := scanCountry(row)
	if err != nil {
		return nil, postgres.MapError(err, "country", id)
	}

	return country, nil
}

// Count returns the size of the country catalog.
func (r *Repo) Count(ctx context.Context) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count countries: %w", err)
	}

	return count, nil
}

// RandomSample returns n countries drawn uniformly at random without
// replacement. Returns fewer than n when the catalog is smaller.
func (r *Repo) RandomSample(ctx context.Context, n int) ([]domain.Country, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, randomSampleSQL, n)
	if err != nil {
		return nil, fmt.Errorf("random sample: %w", err)
	}
	defer rows.Close()

	return scanCountries(rows)
}

// RandomExcluding returns one country drawn uniformly at random from the
// catalog minus the excluded IDs.
// Returns domain.ErrNotFound when the exclusion covers the whole catalog.
func (r *Repo) RandomExcluding(ctx context.Context, excluded []uuid.UUID) (*domain.Country, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if excluded == nil {
		excluded = []uuid.UUID{}
	}

	row := querier.QueryRow(ctx, randomExcludingSQL, excluded)

	country, err := scanCountry(row)
	if err != nil {
		return nil, postgres.MapError(err, "country", uuid.Nil)
	}

	return country, nil
}

// ---------------------------------------------------------------------------
// Write operations (seeder only; gameplay treats the catalog as read-only)
// ---------------------------------------------------------------------------

// Upsert inserts a country or updates the existing row with the same ISO code.
func (r *Repo) Upsert(ctx context.Context, country *domain.Country) (*domain.Country, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	aliases, err := marshalAliases(country.Aliases)
	if err != nil {
		return nil, fmt.Errorf("country %s: %w", country.Code, err)
	}

	id := country.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := querier.QueryRow(ctx, upsertSQL,
		id,
		country.Code,
		country.Name,
		country.FlagEmoji,
		country.FlagImage,
		aliases,
		time.Now().UTC(),
	)

	upserted, err := scanCountry(row)
	if err != nil {
		return nil, postgres.MapError(err, "country", id)
	}

	return upserted, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanCountry(row pgx.Row) (*domain.Country, error) {
	var (
		id          uuid.UUID
		code        string
		name        string
		flagEmoji   string
		flagImage   string
		aliasesJSON []byte
		createdAt   time.Time
	)

	if err := row.Scan(&id, &code, &name, &flagEmoji, &flagImage, &aliasesJSON, &createdAt); err != nil {
		return nil, err
	}

	aliases, err := unmarshalAliases(aliasesJSON)
	if err != nil {
		return nil, fmt.Errorf("country %s: %w", id, err)
	}

	return &domain.Country{
		ID:        id,
		Code:      code,
		Name:      name,
		FlagEmoji: flagEmoji,
		FlagImage: flagImage,
		Aliases:   aliases,
		CreatedAt: createdAt,
	}, nil
}

func scanCountries(rows pgx.Rows) ([]domain.Country, error) {
	var countries []domain.Country
	for rows.Next() {
		country, err := scanCountry(rows)
		if err != nil {
			return nil, err
		}
		countries = append(countries, *country)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if countries == nil {
		countries = []domain.Country{}
	}

	return countries, nil
}

// ---------------------------------------------------------------------------
// JSONB serialization helpers
// ---------------------------------------------------------------------------

func marshalAliases(aliases []string) ([]byte, error) {
	if aliases == nil {
		aliases = []string{}
	}
	return json.Marshal(aliases)
}

func unmarshalAliases(data []byte) ([]string, error) {
	if len(data) == 0 {
		return []string{}, nil
	}

	var aliases []string
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("unmarshal aliases: %w", err)
	}
	return aliases, nil
}
