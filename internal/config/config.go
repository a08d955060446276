package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Game        GameConfig        `yaml:"game"`
	Leitner     LeitnerConfig     `yaml:"leitner"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Stats       StatsConfig       `yaml:"stats"`
	Worker      WorkerConfig      `yaml:"worker"`
	Log         LogConfig         `yaml:"log"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"true"`
}

// RedisConfig holds settings for the ordered score store and stats cache.
type RedisConfig struct {
	Addr         string        `yaml:"addr"          env:"REDIS_ADDR"          env-default:"localhost:6379"`
	Password     string        `yaml:"password"      env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db"            env:"REDIS_DB"            env-default:"0"`
	DialTimeout  time.Duration `yaml:"dial_timeout"  env:"REDIS_DIAL_TIMEOUT"  env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout"  env:"REDIS_READ_TIMEOUT"  env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
}

// GameConfig holds gameplay parameters.
type GameConfig struct {
	QuizLength int `yaml:"quiz_length" env:"GAME_QUIZ_LENGTH" env-default:"10"`
	SkipBudget int `yaml:"skip_budget" env:"GAME_SKIP_BUDGET"  env-default:"3"`

	// EndlessScoring selects the finish-time scoring policy for endless mode:
	// "correct_count" (score is the running correct-answer count) or
	// "timed_bonus" (cards viewed plus a decaying time bonus).
	EndlessScoring string `yaml:"endless_scoring" env:"GAME_ENDLESS_SCORING" env-default:"correct_count"`

	// TimeBonusCeiling is the starting value of the decaying time bonus used
	// by the "timed_bonus" policy: bonus = max(0, ceiling - elapsed_seconds).
	TimeBonusCeiling int `yaml:"time_bonus_ceiling" env:"GAME_TIME_BONUS_CEILING" env-default:"300"`
}

// LeitnerConfig holds spaced-repetition parameters.
type LeitnerConfig struct {
	DueLimit        int `yaml:"due_limit"          env:"LEITNER_DUE_LIMIT"          env-default:"20"`
	NewCardsPerCall int `yaml:"new_cards_per_call" env:"LEITNER_NEW_CARDS_PER_CALL" env-default:"10"`
}

// LeaderboardConfig holds leaderboard settings.
type LeaderboardConfig struct {
	Key          string        `yaml:"key"           env:"LEADERBOARD_KEY"           env-default:"flagwars:leaderboard"`
	TopLimit     int           `yaml:"top_limit"     env:"LEADERBOARD_TOP_LIMIT"     env-default:"100"`
	SnapshotSize int           `yaml:"snapshot_size" env:"LEADERBOARD_SNAPSHOT_SIZE" env-default:"100"`
	SnapshotTTL  time.Duration `yaml:"snapshot_ttl"  env:"LEADERBOARD_SNAPSHOT_TTL"  env-default:"168h"`
}

// StatsConfig holds statistics aggregation settings.
type StatsConfig struct {
	CacheTTL    time.Duration `yaml:"cache_ttl"    env:"STATS_CACHE_TTL"    env-default:"1h"`
	SweepWindow time.Duration `yaml:"sweep_window" env:"STATS_SWEEP_WINDOW" env-default:"168h"`
}

// WorkerConfig holds background task runner settings.
type WorkerConfig struct {
	Concurrency      int           `yaml:"concurrency"       env:"WORKER_CONCURRENCY"       env-default:"4"`
	QueueSize        int           `yaml:"queue_size"        env:"WORKER_QUEUE_SIZE"        env-default:"1024"`
	MaxRetries       int           `yaml:"max_retries"       env:"WORKER_MAX_RETRIES"       env-default:"3"`
	RetryDelay       time.Duration `yaml:"retry_delay"       env:"WORKER_RETRY_DELAY"       env-default:"5s"`
	SweepInterval    time.Duration `yaml:"sweep_interval"    env:"WORKER_SWEEP_INTERVAL"    env-default:"24h"`
	CleanupInterval  time.Duration `yaml:"cleanup_interval"  env:"WORKER_CLEANUP_INTERVAL"  env-default:"6h"`
	SessionMaxAge    time.Duration `yaml:"session_max_age"   env:"WORKER_SESSION_MAX_AGE"   env-default:"24h"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval" env:"WORKER_SNAPSHOT_INTERVAL" env-default:"24h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
