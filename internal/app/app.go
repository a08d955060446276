package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flagwars/backend/internal/adapter/postgres"
	"github.com/flagwars/backend/internal/adapter/postgres/country"
	"github.com/flagwars/backend/internal/adapter/postgres/gamesession"
	"github.com/flagwars/backend/internal/adapter/postgres/progress"
	"github.com/flagwars/backend/internal/adapter/redis"
	"github.com/flagwars/backend/internal/config"
	"github.com/flagwars/backend/internal/service/game"
	"github.com/flagwars/backend/internal/service/leaderboard"
	"github.com/flagwars/backend/internal/service/leitner"
	"github.com/flagwars/backend/internal/service/stats"
	"github.com/flagwars/backend/internal/worker"
)

// Services bundles the assembled business-logic layer for a transport to
// mount on.
type Services struct {
	Game        *game.Service
	Leitner     *leitner.Service
	Leaderboard *leaderboard.Service
	Stats       *stats.Service
}

// Run is the application entry point: it loads configuration, connects the
// backing stores, wires the services, launches the background workers and
// blocks until the context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() { _ = rdb.Close() }()

	countries := country.New(pool)
	sessions := gamesession.New(pool)
	progressRepo := progress.New(pool)
	txm := postgres.NewTxManager(pool)
	scoreIndex := redis.NewScoreIndex(rdb, cfg.Leaderboard.Key)
	statsCache := redis.NewStatsCache(rdb, "flagwars:stats", cfg.Stats.CacheTTL)

	tasks := worker.NewPool(logger, cfg.Worker)

	leaderboardSvc := leaderboard.NewService(logger, scoreIndex, cfg.Leaderboard)
	statsSvc := stats.NewService(logger, sessions, statsCache, cfg.Stats)

	services := &Services{
		Game:        game.NewService(logger, sessions, countries, leaderboardSvc, statsSvc, tasks, txm, cfg.Game),
		Leitner:     leitner.NewService(logger, progressRepo, countries, cfg.Leitner),
		Leaderboard: leaderboardSvc,
		Stats:       statsSvc,
	}

	scheduler := worker.NewScheduler(logger, services.Stats, sessions, services.Leaderboard, cfg.Worker)

	tasks.Start()
	scheduler.Start()
	defer func() {
		scheduler.Stop()
		tasks.Stop()
	}()

	logger.Info("application started")

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
