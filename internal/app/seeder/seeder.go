// Package seeder loads the flag catalog from a JSON file into the reference
// repository. It is run offline by the seeder command, not by the server.
package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/flagwars/backend/internal/domain"
)

// CountryWriter is the subset of the reference repository the seeder needs.
type CountryWriter interface {
	Upsert(ctx context.Context, country *domain.Country) (*domain.Country, error)
}

// countryJSON is the file format: one entry per flag card.
type countryJSON struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	FlagEmoji string   `json:"flag_emoji"`
	FlagImage string   `json:"flag_image"`
	Aliases   []string `json:"aliases"`
}

// Result summarizes one seeding run.
type Result struct {
	Total   int
	Written int
	Skipped int
}

// Seeder upserts catalog entries; existing rows are updated by country code,
// so re-running against the same file is idempotent.
type Seeder struct {
	countries CountryWriter
	log       *slog.Logger
	dryRun    bool
}

// New creates a seeder. With dryRun set it parses and validates without
// writing.
func New(log *slog.Logger, countries CountryWriter, dryRun bool) *Seeder {
	return &Seeder{
		countries: countries,
		log:       log.With("component", "seeder"),
		dryRun:    dryRun,
	}
}

// RunFile seeds the catalog from the JSON file at path.
func (s *Seeder) RunFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	return s.Run(ctx, f)
}

// Run seeds the catalog from JSON read from r.
func (s *Seeder) Run(ctx context.Context, r io.Reader) (*Result, error) {
	var entries []countryJSON
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	result := &Result{Total: len(entries)}
	for i, entry := range entries {
		country, err := toDomain(entry)
		if err != nil {
			s.log.Warn("catalog entry skipped", "index", i, "error", err)
			result.Skipped++
			continue
		}

		if s.dryRun {
			result.Written++
			continue
		}

		if _, err := s.countries.Upsert(ctx, country); err != nil {
			return result, fmt.Errorf("upsert %s: %w", country.Code, err)
		}
		result.Written++
	}

	s.log.Info("catalog seeded",
		"total", result.Total,
		"written", result.Written,
		"skipped", result.Skipped,
		"dry_run", s.dryRun,
	)
	return result, nil
}

func toDomain(entry countryJSON) (*domain.Country, error) {
	code := strings.ToUpper(strings.TrimSpace(entry.Code))
	if len(code) != 2 {
		return nil, fmt.Errorf("code %q: want 2-letter ISO code", entry.Code)
	}
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return nil, fmt.Errorf("code %q: name required", code)
	}

	aliases := make([]string, 0, len(entry.Aliases))
	for _, alias := range entry.Aliases {
		if trimmed := strings.TrimSpace(alias); trimmed != "" {
			aliases = append(aliases, trimmed)
		}
	}

	return &domain.Country{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		FlagEmoji: strings.TrimSpace(entry.FlagEmoji),
		FlagImage: strings.TrimSpace(entry.FlagImage),
		Aliases:   aliases,
	}, nil
}
