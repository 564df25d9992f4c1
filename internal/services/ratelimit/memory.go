package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/shootout/internal/dependencies/clock"
	"github.com/mcoot/shootout/internal/model"
)

// pruneThreshold bounds the bucket map before expired grants are swept
const pruneThreshold = 4096

type bucketKey struct {
	actor  model.PlayerID
	action model.Action
}

// MemoryLimiter keeps the last grant instant per bucket in process.
// Buckets are evaluated lazily on each attempt; there are no timers.
type MemoryLimiter struct {
	clock clock.Clock
	cfg   Config

	mu     sync.Mutex
	grants map[bucketKey]time.Time
}

// Ensure MemoryLimiter implements Limiter
var _ Limiter = (*MemoryLimiter)(nil)

// NewMemory creates an in-process limiter
func NewMemory(clock clock.Clock, cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		clock:  clock,
		cfg:    cfg,
		grants: make(map[bucketKey]time.Time),
	}
}

// TryAcquire takes the bucket's token if its cooldown has elapsed
func (l *MemoryLimiter) TryAcquire(ctx context.Context, actor model.PlayerID, action model.Action) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	cooldown := l.cfg.cooldown(action)
	if cooldown <= 0 {
		return Allow(), nil
	}

	now := l.clock.Now()
	key := bucketKey{actor: actor, action: action}

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.grants[key]; ok {
		if elapsed := now.Sub(last); elapsed < cooldown {
			return Deny(cooldown - elapsed), nil
		}
	}
	l.grants[key] = now
	if len(l.grants) > pruneThreshold {
		l.prune(now)
	}
	return Allow(), nil
}

// prune drops buckets whose cooldown has elapsed; caller holds mu
func (l *MemoryLimiter) prune(now time.Time) {
	for key, last := range l.grants {
		if now.Sub(last) >= l.cfg.cooldown(key.action) {
			delete(l.grants, key)
		}
	}
}
