package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/shootout/internal/model"
)

// RedisLimiter shares cooldowns between server processes. A grant is a key
// written with SET NX and a TTL equal to the cooldown; its remaining TTL is
// the retry-after of denied attempts.
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
}

// Ensure RedisLimiter implements Limiter
var _ Limiter = (*RedisLimiter)(nil)

// NewRedis creates a limiter backed by the given client
func NewRedis(client *redis.Client, cfg Config) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		cfg:    cfg,
	}
}

func cooldownKey(actor model.PlayerID, action model.Action) string {
	return fmt.Sprintf("shootout:cooldown:%s:%s", action, actor)
}

// TryAcquire takes the bucket's token if no unexpired grant exists
func (l *RedisLimiter) TryAcquire(ctx context.Context, actor model.PlayerID, action model.Action) (Decision, error) {
	cooldown := l.cfg.cooldown(action)
	if cooldown <= 0 {
		return Allow(), nil
	}

	key := cooldownKey(actor, action)
	acquired, err := l.client.SetNX(ctx, key, 1, cooldown).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("acquire cooldown: %w", err)
	}
	if acquired {
		return Allow(), nil
	}

	ttl, err := l.client.PTTL(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("read cooldown: %w", err)
	}
	if ttl <= 0 {
		// The grant expired between SET and PTTL; report the smallest wait
		ttl = time.Millisecond
	}
	return Deny(ttl), nil
}
