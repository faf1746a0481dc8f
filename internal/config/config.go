package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Database
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns    int32  `env:"DB_MIN_CONNS" envDefault:"5"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	// Cache store. Every call is bounded by CacheTimeout.
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string        `env:"REDIS_KEY_PREFIX"`
	CacheTimeout   time.Duration `env:"CACHE_TIMEOUT" envDefault:"2s"`

	// Rotation
	CounterTTL     time.Duration `env:"ROTATION_COUNTER_TTL" envDefault:"24h"`
	CooldownTTL    time.Duration `env:"ROTATION_COOLDOWN_TTL" envDefault:"5m"`
	PremiumSlots   int           `env:"PREMIUM_SLOTS" envDefault:"4"`
	RecommendSlots int           `env:"RECOMMEND_SLOTS" envDefault:"8"`
	PremiumMaxRank int           `env:"PREMIUM_MAX_RANK" envDefault:"10"`
	CandidateLimit int           `env:"PANEL_CANDIDATE_LIMIT" envDefault:"200"`
	FeedCount      int           `env:"FEED_DEFAULT_COUNT" envDefault:"20"`
	FeedMaxCount   int           `env:"FEED_MAX_COUNT" envDefault:"100"`

	// Detached rotation workers
	RotationWorkers     int           `env:"ROTATION_WORKERS" envDefault:"4"`
	RotationBuffer      int           `env:"ROTATION_BUFFER" envDefault:"1024"`
	RotationRateLimit   int           `env:"ROTATION_RATE_PER_QUEUE" envDefault:"50"`
	RotationTaskTimeout time.Duration `env:"ROTATION_TASK_TIMEOUT" envDefault:"5s"`

	// Compaction
	CompactionInterval time.Duration `env:"COMPACTION_INTERVAL" envDefault:"24h"`
	CompactionTimeout  time.Duration `env:"COMPACTION_TIMEOUT" envDefault:"5m"`

	// Bearer secret for the internal activation and compaction endpoints.
	// Empty disables them.
	AdminSecret string `env:"ADMIN_BEARER_SECRET"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PremiumSlots <= 0 || cfg.RecommendSlots <= 0 {
		return nil, fmt.Errorf("panel slot counts must be positive")
	}
	if cfg.FeedCount <= 0 || cfg.FeedCount > cfg.FeedMaxCount {
		return nil, fmt.Errorf("FEED_DEFAULT_COUNT must be between 1 and FEED_MAX_COUNT")
	}
	if cfg.RotationWorkers <= 0 {
		return nil, fmt.Errorf("ROTATION_WORKERS must be positive")
	}
	return &cfg, nil
}
