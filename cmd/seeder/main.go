// Command seeder populates the flag catalog from a JSON file. It is intended
// to be run offline, not as part of the main server.
//
// Flags:
//
//	--file     path to the catalog JSON file (required)
//	--dry-run  parse and validate without writing to DB
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/flagwars/backend/internal/adapter/postgres"
	"github.com/flagwars/backend/internal/adapter/postgres/country"
	"github.com/flagwars/backend/internal/app"
	"github.com/flagwars/backend/internal/app/seeder"
	"github.com/flagwars/backend/internal/config"
)

func main() {
	fileFlag := flag.String("file", "", "path to the catalog JSON file")
	dryRunFlag := flag.Bool("dry-run", false, "parse and validate without writing to DB")
	flag.Parse()

	if *fileFlag == "" {
		log.Fatal("--file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Error("run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	s := seeder.New(logger, country.New(pool), *dryRunFlag)

	result, err := s.RunFile(ctx, *fileFlag)
	if err != nil {
		logger.Error("seed catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("done",
		slog.Int("total", result.Total),
		slog.Int("written", result.Written),
		slog.Int("skipped", result.Skipped),
	)
}
