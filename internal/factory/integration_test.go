package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/shootout/internal/config"
	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/services/combat"
	"github.com/mcoot/shootout/internal/services/ratelimit"
	redisstorage "github.com/mcoot/shootout/internal/storage/redis"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: registration, purchase, shoot through a vest, shoot again, revive
func (s *IntegrationSuite) TestCompleteCombatFlow() {
	// Step 1: Register both players
	created, err := s.app.Ledger.EnsurePlayer(s.ctx, "gunner")
	s.Require().NoError(err)
	s.True(created)
	_, err = s.app.Ledger.EnsurePlayer(s.ctx, "tank")
	s.Require().NoError(err)

	// Step 2: Spend balance on equipment
	_, err = s.app.Ledger.Consume(s.ctx, "gunner", model.FieldBalance, 20)
	s.Require().NoError(err)
	_, err = s.app.Ledger.Adjust(s.ctx, "gunner", model.FieldGuns, 2, 0)
	s.Require().NoError(err)
	_, err = s.app.Ledger.Adjust(s.ctx, "tank", model.FieldVest, 1, 0)
	s.Require().NoError(err)
	_, err = s.app.Ledger.Adjust(s.ctx, "tank", model.FieldMedkit, 1, 0)
	s.Require().NoError(err)
	armed, err := s.app.Ledger.SetFlag(s.ctx, "tank", model.FlagIsVested, true)
	s.Require().NoError(err)
	s.True(armed)

	// Step 3: First shot is absorbed by the vest
	outcome, err := s.app.Engine.Shoot(s.ctx, combat.ShootRequest{Actor: "gunner", Target: "tank"})
	s.Require().NoError(err)
	s.Equal(model.OutcomeAbsorbed, outcome.Kind)
	s.False(outcome.Target.IsVested)

	// Step 4: Shooting again inside the cooldown is rejected
	_, err = s.app.Engine.Shoot(s.ctx, combat.ShootRequest{Actor: "gunner", Target: "tank"})
	s.ErrorIs(err, model.ErrRateLimited)

	// Step 5: After the cooldown the target goes down
	s.app.MockClock.Advance(ratelimit.DefaultShootCooldown)
	outcome, err = s.app.Engine.Shoot(s.ctx, combat.ShootRequest{Actor: "gunner", Target: "tank"})
	s.Require().NoError(err)
	s.Equal(model.OutcomeIncapacitated, outcome.Kind)
	s.True(outcome.ApplyMarker)
	s.Equal(int64(0), outcome.Actor.Guns)
	s.Equal(int64(30), outcome.Actor.Balance)

	// Step 6: Self revive with the medkit
	outcome, err = s.app.Engine.Revive(s.ctx, combat.ReviveRequest{Medic: "tank", Patient: "tank", PatientMarked: true})
	s.Require().NoError(err)
	s.Equal(model.OutcomeRevived, outcome.Kind)
	s.True(outcome.RemoveMarker)

	tank, err := s.app.Ledger.Snapshot(s.ctx, "tank")
	s.Require().NoError(err)
	s.Equal(model.StateAlive, tank.State())
	s.Equal(int64(0), tank.Medkit)
	s.Equal(int64(0), tank.Vest)
}

func (s *IntegrationSuite) TestStoreAuthorityFlow() {
	app := NewTestAppWithConfig(combat.Config{
		MarkerTimeout:  time.Minute,
		StateAuthority: combat.AuthorityStore,
		RefundWindow:   time.Minute,
	})
	_, _ = app.Ledger.EnsurePlayer(s.ctx, "gunner")
	_, _ = app.Ledger.Adjust(s.ctx, "gunner", model.FieldGuns, 2, 0)

	outcome, err := app.Engine.Shoot(s.ctx, combat.ShootRequest{Actor: "gunner", Target: "victim"})
	s.Require().NoError(err)
	s.Equal(time.Minute, outcome.MarkerTimeout)

	// The caller's stale view is ignored
	app.MockClock.Advance(ratelimit.DefaultShootCooldown)
	_, err = app.Engine.Shoot(s.ctx, combat.ShootRequest{Actor: "gunner", Target: "victim", TargetMarked: false})
	s.ErrorIs(err, model.ErrInvalidState)
}

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = app.Close() }()

	if _, ok := app.Limiter.(*ratelimit.MemoryLimiter); !ok {
		t.Fatalf("expected memory limiter, got %T", app.Limiter)
	}
}

func TestNewWithSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.db")
	app, err := New(Config{StorageType: StorageTypeSQLite, SQLitePath: path, Seed: model.SeedDebug})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = app.Close() }()

	ctx := context.Background()
	if _, err := app.Ledger.EnsurePlayer(ctx, "alice"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	p, err := app.Ledger.Snapshot(ctx, "alice")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if p.Guns != 127 {
		t.Fatalf("expected debug seed, got %d guns", p.Guns)
	}
	if err := app.Check(ctx); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestNewWithRedisSharesClient(t *testing.T) {
	mini := miniredis.RunT(t)
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mini.Addr()

	app, err := New(Config{StorageType: StorageTypeRedis, LimiterType: LimiterTypeRedis, RedisConfig: &redisCfg})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = app.Close() }()

	if _, ok := app.Limiter.(*ratelimit.RedisLimiter); !ok {
		t.Fatalf("expected redis limiter, got %T", app.Limiter)
	}
	if len(app.closers) != 1 {
		t.Fatalf("expected the limiter to reuse the storage client, got %d closers", len(app.closers))
	}
	if err := app.Check(context.Background()); err != nil {
		t.Fatalf("check: %v", err)
	}

	mini.Close()
	if err := app.Check(context.Background()); err == nil {
		t.Fatal("expected check to fail once redis is gone")
	}
}

func TestNewRejectsInvalidTypes(t *testing.T) {
	cases := []Config{
		{StorageType: "etcd"},
		{StorageType: StorageTypeRedis},
		{LimiterType: "token-bucket"},
		{LimiterType: LimiterTypeRedis},
		{StorageType: StorageTypeSQLite},
		{Engine: &combat.Config{StateAuthority: "oracle"}},
	}
	for _, cfg := range cases {
		if _, err := New(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestFromEnv(t *testing.T) {
	cfg := FromEnv(config.Config{
		StorageType:    "redis",
		RedisURL:       "redis://cache:6379",
		LimiterType:    "redis",
		ShootCooldown:  2 * time.Second,
		MarkerTimeout:  time.Hour,
		RefundWindow:   5 * time.Minute,
		StateAuthority: "store",
		Debug:          true,
	}, nil)

	if cfg.Seed != model.SeedDebug {
		t.Fatalf("expected debug seed, got %s", cfg.Seed)
	}
	if cfg.RedisConfig == nil || cfg.RedisConfig.URL != "redis://cache:6379" {
		t.Fatalf("expected redis config, got %+v", cfg.RedisConfig)
	}
	if got := cfg.Limiter.Cooldowns[model.ActionShoot]; got != 2*time.Second {
		t.Fatalf("expected shoot cooldown 2s, got %s", got)
	}
	if cfg.Engine.StateAuthority != combat.AuthorityStore {
		t.Fatalf("expected store authority, got %s", cfg.Engine.StateAuthority)
	}
	if err := cfg.Engine.Validate(); err != nil {
		t.Fatalf("expected valid engine config: %v", err)
	}
}
