package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration read from SHOOTOUT_* environment variables
type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// StorageType selects the player store: memory, sqlite or redis
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/shootout.db"`
	RedisURL    string `env:"REDIS_URL"`

	// LimiterType selects the rate limiter: memory or redis
	LimiterType   string        `env:"LIMITER_TYPE" envDefault:"memory"`
	ShootCooldown time.Duration `env:"SHOOT_COOLDOWN" envDefault:"5s"`

	MarkerTimeout  time.Duration `env:"MARKER_TIMEOUT" envDefault:"1h"`
	RefundWindow   time.Duration `env:"REFUND_WINDOW" envDefault:"10m"`
	StateAuthority string        `env:"STATE_AUTHORITY" envDefault:"marker"`

	// Debug seeds new players with the debug inventory
	Debug bool `env:"DEBUG" envDefault:"false"`

	// APIToken, when set, is required as a bearer token on every API call
	APIToken string `env:"API_TOKEN"`

	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

// Prefix is prepended to every variable name
const Prefix = "SHOOTOUT_"

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the server configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.StorageType == "redis" && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("%sREDIS_URL required when %sSTORAGE_TYPE=redis", Prefix, Prefix)
	}
	if cfg.LimiterType == "redis" && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("%sREDIS_URL required when %sLIMITER_TYPE=redis", Prefix, Prefix)
	}
	return cfg, nil
}
