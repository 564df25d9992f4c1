package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/shootout/internal/config"
	"github.com/mcoot/shootout/internal/dependencies/clock"
	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/services/combat"
	"github.com/mcoot/shootout/internal/services/ledger"
	"github.com/mcoot/shootout/internal/services/ratelimit"
	"github.com/mcoot/shootout/internal/storage"
	"github.com/mcoot/shootout/internal/storage/memory"
	redisstorage "github.com/mcoot/shootout/internal/storage/redis"
	"github.com/mcoot/shootout/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeSQLite = "sqlite"
	StorageTypeRedis  = "redis"
)

// Limiter type constants
const (
	LimiterTypeMemory = "memory"
	LimiterTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	Ledger  *ledger.Ledger
	Limiter ratelimit.Limiter
	Engine  *combat.Engine

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "sqlite" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// RedisConfig holds Redis connection settings (required if StorageType or LimiterType is "redis")
	RedisConfig *redisstorage.Config
	// LimiterType selects the rate limiter ("memory" or "redis")
	// If empty, defaults to "memory"
	LimiterType string
	// Limiter holds per-action cooldowns
	// If nil, defaults to ratelimit.DefaultConfig()
	Limiter *ratelimit.Config
	// Engine holds combat settings
	// If nil, defaults to combat.DefaultConfig()
	Engine *combat.Config
	// Seed selects the inventory new players start with
	// If empty, defaults to production
	Seed model.SeedMode
}

// FromEnv translates the environment configuration into a factory Config
func FromEnv(env config.Config, logger *slog.Logger) Config {
	cfg := Config{
		Logger:      logger,
		StorageType: env.StorageType,
		SQLitePath:  env.SQLitePath,
		LimiterType: env.LimiterType,
		Limiter: &ratelimit.Config{
			Cooldowns: map[model.Action]time.Duration{
				model.ActionShoot: env.ShootCooldown,
			},
		},
		Engine: &combat.Config{
			MarkerTimeout:  env.MarkerTimeout,
			RefundWindow:   env.RefundWindow,
			StateAuthority: combat.StateAuthority(env.StateAuthority),
		},
		Seed: model.SeedProduction,
	}
	if env.Debug {
		cfg.Seed = model.SeedDebug
	}
	if env.RedisURL != "" {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = env.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	engineCfg := combat.DefaultConfig()
	if cfg.Engine != nil {
		engineCfg = *cfg.Engine
	}
	if err := engineCfg.Validate(); err != nil {
		return nil, err
	}
	limiterCfg := ratelimit.DefaultConfig()
	if cfg.Limiter != nil {
		limiterCfg = *cfg.Limiter
	}
	seed := cfg.Seed
	if seed == "" {
		seed = model.SeedProduction
	}

	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	// Create storage based on type
	var store storage.Storage
	var redisClient *redis.Client
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeSQLite:
		sqliteStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		closers = append(closers, sqliteStore)
		store = sqliteStore
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		closers = append(closers, redisStore)
		redisClient = redisStore.Client()
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'sqlite' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()

	// Create limiter based on type
	var limiter ratelimit.Limiter
	limiterType := cfg.LimiterType
	if limiterType == "" {
		limiterType = LimiterTypeMemory
	}

	switch limiterType {
	case LimiterTypeMemory:
		limiter = ratelimit.NewMemory(clk, limiterCfg)
	case LimiterTypeRedis:
		if redisClient == nil {
			if cfg.RedisConfig == nil {
				closeAll()
				return nil, errors.New("RedisConfig required when LimiterType is redis")
			}
			client, err := redisstorage.Dial(*cfg.RedisConfig)
			if err != nil {
				closeAll()
				return nil, err
			}
			closers = append(closers, client)
			redisClient = client
		}
		limiter = ratelimit.NewRedis(redisClient, limiterCfg)
	default:
		closeAll()
		return nil, errors.New("invalid LimiterType: must be 'memory' or 'redis'")
	}

	app := newWithDependencies(store, clk, limiter, seed, engineCfg, logger)
	app.closers = closers
	logger.Info("application wired",
		slog.String("storage", storageType),
		slog.String("limiter", limiterType),
		slog.String("seed", string(seed)),
		slog.String("state_authority", string(engineCfg.StateAuthority)),
	)
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, limiter ratelimit.Limiter, seed model.SeedMode, engineCfg combat.Config, logger *slog.Logger) *App {
	// Create services
	ledgerService := ledger.New(store, clk, seed, logger)
	engine := combat.New(ledgerService, limiter, clk, engineCfg, logger)

	return &App{
		Storage: store,
		Clock:   clk,
		Ledger:  ledgerService,
		Limiter: limiter,
		Engine:  engine,
	}
}

// Check pings the storage backend when it holds a live connection
func (a *App) Check(ctx context.Context) error {
	if p, ok := a.Storage.(storage.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	return nil
}

// Close releases the storage and limiter connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
