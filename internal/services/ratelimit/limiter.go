package ratelimit

import (
	"context"
	"time"

	"github.com/mcoot/shootout/internal/model"
)

// DefaultShootCooldown is the cooldown applied to shoot actions unless configured otherwise
const DefaultShootCooldown = 5 * time.Second

// Decision is the result of a token acquisition attempt
type Decision struct {
	Allowed bool
	// RetryAfter is positive when the attempt was denied
	RetryAfter time.Duration
}

// Allow returns an allowed decision
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denied decision with the remaining cooldown
func Deny(retryAfter time.Duration) Decision {
	return Decision{RetryAfter: retryAfter}
}

// Err converts a denied decision into a RateLimitedError, or nil when allowed
func (d Decision) Err(action model.Action) error {
	if d.Allowed {
		return nil
	}
	return &model.RateLimitedError{Action: action, RetryAfter: d.RetryAfter}
}

// Limiter grants one token per (actor, action), refilled after that action's cooldown
type Limiter interface {
	TryAcquire(ctx context.Context, actor model.PlayerID, action model.Action) (Decision, error)
}

// Config holds per-action cooldowns. Actions without a positive cooldown are never limited.
type Config struct {
	Cooldowns map[model.Action]time.Duration
}

// DefaultConfig returns the default cooldowns
func DefaultConfig() Config {
	return Config{
		Cooldowns: map[model.Action]time.Duration{
			model.ActionShoot: DefaultShootCooldown,
		},
	}
}

func (c Config) cooldown(action model.Action) time.Duration {
	return c.Cooldowns[action]
}
