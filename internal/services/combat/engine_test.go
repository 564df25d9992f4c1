package combat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/shootout/internal/dependencies/mocks"
	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/services/ledger"
	"github.com/mcoot/shootout/internal/services/ratelimit"
	"github.com/mcoot/shootout/internal/storage/memory"
	"github.com/mcoot/shootout/internal/testutil"
)

type EngineSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	ledger  *ledger.Ledger
	limiter *ratelimit.MemoryLimiter
	engine  *Engine
	ctx     context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ledger = ledger.New(s.storage, s.clock, model.SeedProduction, testutil.NopLogger())
	s.limiter = ratelimit.NewMemory(s.clock, ratelimit.DefaultConfig())
	s.engine = New(s.ledger, s.limiter, s.clock, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *EngineSuite) withAuthority(authority StateAuthority) {
	cfg := DefaultConfig()
	cfg.StateAuthority = authority
	s.engine = New(s.ledger, s.limiter, s.clock, cfg, testutil.NopLogger())
}

// give ensures the player and grants the given counters
func (s *EngineSuite) give(id model.PlayerID, field model.Field, amount int64) {
	_, err := s.ledger.EnsurePlayer(s.ctx, id)
	s.Require().NoError(err)
	_, err = s.ledger.Adjust(s.ctx, id, field, amount, 0)
	s.Require().NoError(err)
}

func (s *EngineSuite) snapshot(id model.PlayerID) *model.Player {
	p, err := s.ledger.Snapshot(s.ctx, id)
	s.Require().NoError(err)
	return p
}

func (s *EngineSuite) armVest(id model.PlayerID, charges int64) {
	s.give(id, model.FieldVest, charges)
	armed, err := s.ledger.SetFlag(s.ctx, id, model.FlagIsVested, true)
	s.Require().NoError(err)
	s.Require().True(armed)
}

// Shoot tests

func (s *EngineSuite) TestShootIncapacitatesUnvestedTarget() {
	s.give("alice", model.FieldGuns, 2)

	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	s.Equal(model.ActionShoot, outcome.Action)
	s.Equal(model.OutcomeIncapacitated, outcome.Kind)
	s.True(outcome.ApplyMarker)
	s.Equal(DefaultMarkerTimeout, outcome.MarkerTimeout)
	s.False(outcome.RemoveMarker)
	s.Equal(int64(1), outcome.Actor.Guns)
	s.True(outcome.Target.Incapacitated)
	s.Equal(int64(1), s.snapshot("alice").Guns)
	s.Equal(model.StateIncapacitated, s.snapshot("bob").State())
}

func (s *EngineSuite) TestShootCreatesMissingPlayers() {
	_, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.ErrorIs(err, model.ErrInsufficientResource)

	s.Equal(int64(50), s.snapshot("alice").Balance)
	s.Equal(int64(50), s.snapshot("bob").Balance)
}

func (s *EngineSuite) TestShootWithoutGunsMutatesNothing() {
	s.armVest("bob", 1)

	_, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})

	var ir *model.InsufficientResourceError
	s.Require().ErrorAs(err, &ir)
	s.Equal(model.FieldGuns, ir.Field)
	s.Equal(int64(0), s.snapshot("alice").Guns)
	bob := s.snapshot("bob")
	s.Equal(int64(1), bob.Vest)
	s.True(bob.IsVested)
	s.False(bob.Incapacitated)
}

func (s *EngineSuite) TestShootAbsorbedByVest() {
	s.give("alice", model.FieldGuns, 1)
	s.armVest("bob", 2)

	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	s.Equal(model.OutcomeAbsorbed, outcome.Kind)
	s.False(outcome.ApplyMarker)
	s.Equal(int64(0), outcome.Actor.Guns)
	s.Equal(int64(1), outcome.Target.Vest)
	s.True(outcome.Target.IsVested)
	s.False(s.snapshot("bob").Incapacitated)
}

func (s *EngineSuite) TestShootSpendingLastVestChargeDisarms() {
	s.give("alice", model.FieldGuns, 1)
	s.armVest("bob", 1)

	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	s.Equal(model.OutcomeAbsorbed, outcome.Kind)
	s.Equal(int64(0), outcome.Target.Vest)
	s.False(outcome.Target.IsVested)
}

func (s *EngineSuite) TestShootUnarmedVestDoesNotAbsorb() {
	s.give("alice", model.FieldGuns, 1)
	s.give("bob", model.FieldVest, 3)

	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	s.Equal(model.OutcomeIncapacitated, outcome.Kind)
	s.Equal(int64(3), outcome.Target.Vest)
}

func (s *EngineSuite) TestShootMarkedTargetFails() {
	s.give("alice", model.FieldGuns, 1)

	_, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob", TargetMarked: true})

	var is *model.InvalidStateError
	s.Require().ErrorAs(err, &is)
	s.Equal(model.ReasonAlreadyIncapacitated, is.Reason)
	s.Equal(int64(1), s.snapshot("alice").Guns)
}

func (s *EngineSuite) TestShootProtectedTargetFails() {
	s.give("alice", model.FieldGuns, 1)

	_, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob", TargetProtected: true})

	var is *model.InvalidStateError
	s.Require().ErrorAs(err, &is)
	s.Equal(model.ReasonProtected, is.Reason)
	s.Equal(int64(1), s.snapshot("alice").Guns)
}

func (s *EngineSuite) TestShootRateLimitedMutatesNothing() {
	s.give("alice", model.FieldGuns, 2)

	_, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Second)
	_, err = s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "carol"})

	var rl *model.RateLimitedError
	s.Require().ErrorAs(err, &rl)
	s.Equal(3*time.Second, rl.RetryAfter)
	s.Equal(int64(1), s.snapshot("alice").Guns)
	_, err = s.ledger.Snapshot(s.ctx, "carol")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *EngineSuite) TestShootAllowedAgainAfterCooldown() {
	s.give("alice", model.FieldGuns, 2)

	_, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	s.clock.Advance(ratelimit.DefaultShootCooldown)
	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "carol"})
	s.Require().NoError(err)
	s.Equal(model.OutcomeIncapacitated, outcome.Kind)
}

func (s *EngineSuite) TestShootStaleMirrorStillAppliesMarker() {
	s.give("alice", model.FieldGuns, 1)
	s.give("bob", model.FieldBalance, 0)
	_, err := s.ledger.MarkIncapacitated(s.ctx, "bob")
	s.Require().NoError(err)

	// The marker expired on the platform without a revive
	s.clock.Advance(DefaultMarkerTimeout)
	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	s.Equal(model.OutcomeIncapacitated, outcome.Kind)
	s.True(outcome.ApplyMarker)
}

func (s *EngineSuite) TestShootFreshMirrorDoesNotReapplyMarker() {
	s.give("alice", model.FieldGuns, 1)
	s.give("bob", model.FieldBalance, 0)
	_, err := s.ledger.MarkIncapacitated(s.ctx, "bob")
	s.Require().NoError(err)

	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	s.Equal(model.OutcomeIncapacitated, outcome.Kind)
	s.False(outcome.ApplyMarker)
	s.Zero(outcome.MarkerTimeout)
}

func (s *EngineSuite) TestStoreAuthorityRejectsIncapacitatedTarget() {
	s.withAuthority(AuthorityStore)
	s.give("alice", model.FieldGuns, 1)
	s.give("bob", model.FieldBalance, 0)
	_, err := s.ledger.MarkIncapacitated(s.ctx, "bob")
	s.Require().NoError(err)

	_, err = s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.ErrorIs(err, model.ErrInvalidState)
	s.Equal(int64(1), s.snapshot("alice").Guns)
}

func (s *EngineSuite) TestConcurrentShootersSpendOneVestCharge() {
	const shooters = 8
	s.armVest("target", 1)
	for i := 0; i < shooters; i++ {
		s.give(model.PlayerID(fmt.Sprintf("shooter-%d", i)), model.FieldGuns, 1)
	}

	outcomes := make([]*model.Outcome, shooters)
	var wg sync.WaitGroup
	for i := 0; i < shooters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, err := s.engine.Shoot(s.ctx, ShootRequest{
				Actor:  model.PlayerID(fmt.Sprintf("shooter-%d", i)),
				Target: "target",
			})
			s.NoError(err)
			outcomes[i] = o
		}(i)
	}
	wg.Wait()

	absorbed, markers := 0, 0
	for _, o := range outcomes {
		s.Require().NotNil(o)
		if o.Kind == model.OutcomeAbsorbed {
			absorbed++
		}
		if o.ApplyMarker {
			markers++
		}
	}
	s.Equal(1, absorbed)
	s.Equal(1, markers)

	target := s.snapshot("target")
	s.Equal(int64(0), target.Vest)
	s.False(target.IsVested)
	s.True(target.Incapacitated)
}

func (s *EngineSuite) TestConcurrentShotsNeverOverspendGuns() {
	const attempts = 10
	s.give("alice", model.FieldGuns, 3)
	cfg := ratelimit.Config{}
	s.engine = New(s.ledger, ratelimit.NewMemory(s.clock, cfg), s.clock, DefaultConfig(), testutil.NopLogger())

	var mu sync.Mutex
	succeeded := 0
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.engine.Shoot(s.ctx, ShootRequest{
				Actor:  "alice",
				Target: model.PlayerID(fmt.Sprintf("target-%d", i)),
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			s.ErrorIs(err, model.ErrInsufficientResource)
		}(i)
	}
	wg.Wait()

	s.Equal(3, succeeded)
	s.Equal(int64(0), s.snapshot("alice").Guns)
}

// Revive tests

func (s *EngineSuite) TestReviveConsumesMedkit() {
	s.give("alice", model.FieldGuns, 1)
	s.give("medic", model.FieldMedkit, 2)
	_, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	outcome, err := s.engine.Revive(s.ctx, ReviveRequest{Medic: "medic", Patient: "bob", PatientMarked: true})
	s.Require().NoError(err)

	s.Equal(model.ActionRevive, outcome.Action)
	s.Equal(model.OutcomeRevived, outcome.Kind)
	s.True(outcome.RemoveMarker)
	s.False(outcome.ApplyMarker)
	s.Equal(int64(1), outcome.Actor.Medkit)
	s.False(outcome.Target.Incapacitated)
	s.Equal(model.StateAlive, s.snapshot("bob").State())
}

func (s *EngineSuite) TestReviveHealthyPatientFails() {
	s.give("medic", model.FieldMedkit, 1)

	_, err := s.engine.Revive(s.ctx, ReviveRequest{Medic: "medic", Patient: "bob"})

	var is *model.InvalidStateError
	s.Require().ErrorAs(err, &is)
	s.Equal(model.ReasonNotIncapacitated, is.Reason)
	s.Equal(int64(1), s.snapshot("medic").Medkit)
}

func (s *EngineSuite) TestReviveWithoutMedkitFails() {
	_, err := s.engine.Revive(s.ctx, ReviveRequest{Medic: "medic", Patient: "bob", PatientMarked: true})

	var ir *model.InsufficientResourceError
	s.Require().ErrorAs(err, &ir)
	s.Equal(model.FieldMedkit, ir.Field)
}

func (s *EngineSuite) TestSelfReviveIsAllowed() {
	s.give("bob", model.FieldMedkit, 1)
	_, err := s.ledger.MarkIncapacitated(s.ctx, "bob")
	s.Require().NoError(err)

	outcome, err := s.engine.Revive(s.ctx, ReviveRequest{Medic: "bob", Patient: "bob", PatientMarked: true})
	s.Require().NoError(err)

	s.Equal(model.OutcomeRevived, outcome.Kind)
	s.Equal(int64(0), outcome.Actor.Medkit)
	s.False(outcome.Target.Incapacitated)
}

func (s *EngineSuite) TestReviveIsNotRateLimited() {
	s.limiter = ratelimit.NewMemory(s.clock, ratelimit.Config{Cooldowns: map[model.Action]time.Duration{
		model.ActionRevive: time.Minute,
	}})
	s.engine = New(s.ledger, s.limiter, s.clock, DefaultConfig(), testutil.NopLogger())
	s.give("medic", model.FieldMedkit, 2)
	for _, patient := range []model.PlayerID{"bob", "carol"} {
		_, err := s.engine.Revive(s.ctx, ReviveRequest{Medic: "medic", Patient: patient, PatientMarked: true})
		s.Require().NoError(err)
	}
	s.Equal(int64(0), s.snapshot("medic").Medkit)
}

func (s *EngineSuite) TestStoreAuthorityConcurrentRevivesSpendOneMedkit() {
	s.withAuthority(AuthorityStore)
	s.give("medic-1", model.FieldMedkit, 1)
	s.give("medic-2", model.FieldMedkit, 1)
	s.give("bob", model.FieldBalance, 0)
	_, err := s.ledger.MarkIncapacitated(s.ctx, "bob")
	s.Require().NoError(err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, medic := range []model.PlayerID{"medic-1", "medic-2"} {
		wg.Add(1)
		go func(i int, medic model.PlayerID) {
			defer wg.Done()
			_, errs[i] = s.engine.Revive(s.ctx, ReviveRequest{Medic: medic, Patient: "bob"})
		}(i, medic)
	}
	wg.Wait()

	revived := 0
	for _, err := range errs {
		if err == nil {
			revived++
			continue
		}
		s.ErrorIs(err, model.ErrInvalidState)
	}
	s.Equal(1, revived)
	s.Equal(int64(1), s.snapshot("medic-1").Medkit+s.snapshot("medic-2").Medkit)
	s.False(s.snapshot("bob").Incapacitated)
}

// Cycle

func (s *EngineSuite) TestShootReviveShootCycle() {
	s.give("alice", model.FieldGuns, 2)
	s.give("medic", model.FieldMedkit, 1)

	first, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)
	s.True(first.ApplyMarker)

	_, err = s.engine.Revive(s.ctx, ReviveRequest{Medic: "medic", Patient: "bob", PatientMarked: true})
	s.Require().NoError(err)

	s.clock.Advance(ratelimit.DefaultShootCooldown)
	second, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)
	s.True(second.ApplyMarker)
	s.Equal(int64(0), second.Actor.Guns)
}

// ReportMarkerFailure tests

func (s *EngineSuite) TestChargingOutcomesCarryID() {
	s.give("alice", model.FieldGuns, 2)
	s.armVest("carol", 1)

	shot, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)
	s.NotEmpty(shot.ID)

	s.clock.Advance(ratelimit.DefaultShootCooldown)
	absorbed, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "carol"})
	s.Require().NoError(err)
	s.Require().Equal(model.OutcomeAbsorbed, absorbed.Kind)
	s.Empty(absorbed.ID)
}

func (s *EngineSuite) TestMarkerFailureWithoutRefundKeepsCharge() {
	s.give("alice", model.FieldGuns, 1)
	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	cause := errors.New("missing permissions")
	err = s.engine.ReportMarkerFailure(s.ctx, outcome.ID, cause, false)

	s.ErrorIs(err, model.ErrExternalApplyFailed)
	s.ErrorIs(err, cause)
	var ef *model.ExternalApplyFailedError
	s.Require().ErrorAs(err, &ef)
	s.False(ef.Refunded)
	s.False(ef.NoCharge)
	s.Equal(int64(0), s.snapshot("alice").Guns)
	// The marker never reached the platform, so neither does the stored flag
	s.False(s.snapshot("bob").Incapacitated)
}

func (s *EngineSuite) TestShootAfterUnrefundedMarkerFailureAppliesMarker() {
	s.give("alice", model.FieldGuns, 1)
	s.give("carol", model.FieldGuns, 1)
	first, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)
	s.Require().True(first.ApplyMarker)

	err = s.engine.ReportMarkerFailure(s.ctx, first.ID, errors.New("missing permissions"), false)
	s.Require().ErrorIs(err, model.ErrExternalApplyFailed)

	second, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "carol", Target: "bob"})
	s.Require().NoError(err)
	s.Equal(model.OutcomeIncapacitated, second.Kind)
	s.True(second.ApplyMarker)
	s.Equal(DefaultMarkerTimeout, second.MarkerTimeout)
	s.Equal(int64(0), second.Actor.Guns)
}

func (s *EngineSuite) TestMarkerFailureRefundsShot() {
	s.give("alice", model.FieldGuns, 1)
	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	err = s.engine.ReportMarkerFailure(s.ctx, outcome.ID, errors.New("forbidden"), true)

	var ef *model.ExternalApplyFailedError
	s.Require().ErrorAs(err, &ef)
	s.True(ef.Refunded)
	s.Equal(model.ActionShoot, ef.Action)
	s.Equal(int64(1), s.snapshot("alice").Guns)
	s.False(s.snapshot("bob").Incapacitated)
}

func (s *EngineSuite) TestMarkerFailureRefundsOnlyOnce() {
	s.give("alice", model.FieldGuns, 1)
	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	for i := 0; i < 5; i++ {
		err := s.engine.ReportMarkerFailure(s.ctx, outcome.ID, nil, true)
		var ef *model.ExternalApplyFailedError
		s.Require().ErrorAs(err, &ef)
		s.Equal(i == 0, ef.Refunded, "report %d", i)
		s.Equal(i > 0, ef.NoCharge, "report %d", i)
	}
	s.Equal(int64(1), s.snapshot("alice").Guns)
}

func (s *EngineSuite) TestConcurrentMarkerFailuresRefundOnce() {
	s.give("alice", model.FieldGuns, 1)
	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.engine.ReportMarkerFailure(s.ctx, outcome.ID, nil, true)
		}()
	}
	wg.Wait()

	s.Equal(int64(1), s.snapshot("alice").Guns)
}

func (s *EngineSuite) TestMarkerFailureForUnknownOutcomeChangesNothing() {
	s.give("alice", model.FieldGuns, 0)

	err := s.engine.ReportMarkerFailure(s.ctx, "made-up", nil, true)

	var ef *model.ExternalApplyFailedError
	s.Require().ErrorAs(err, &ef)
	s.True(ef.NoCharge)
	s.False(ef.Refunded)
	s.Equal(int64(0), s.snapshot("alice").Guns)
}

func (s *EngineSuite) TestMarkerFailureAfterRefundWindowChangesNothing() {
	s.give("alice", model.FieldGuns, 1)
	outcome, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	s.clock.Advance(DefaultRefundWindow)
	err = s.engine.ReportMarkerFailure(s.ctx, outcome.ID, nil, true)

	var ef *model.ExternalApplyFailedError
	s.Require().ErrorAs(err, &ef)
	s.True(ef.NoCharge)
	s.Equal(int64(0), s.snapshot("alice").Guns)
	s.True(s.snapshot("bob").Incapacitated)
}

func (s *EngineSuite) TestMarkerFailureKeepsNewerIncapacitation() {
	s.give("alice", model.FieldGuns, 1)
	s.give("carol", model.FieldGuns, 1)
	s.give("medic", model.FieldMedkit, 1)
	first, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "alice", Target: "bob"})
	s.Require().NoError(err)

	// bob is revived and shot again before alice's failure is reported
	_, err = s.engine.Revive(s.ctx, ReviveRequest{Medic: "medic", Patient: "bob", PatientMarked: true})
	s.Require().NoError(err)
	s.clock.Advance(time.Second)
	second, err := s.engine.Shoot(s.ctx, ShootRequest{Actor: "carol", Target: "bob"})
	s.Require().NoError(err)
	s.Require().True(second.ApplyMarker)

	err = s.engine.ReportMarkerFailure(s.ctx, first.ID, nil, true)
	s.Require().ErrorIs(err, model.ErrExternalApplyFailed)

	s.Equal(int64(1), s.snapshot("alice").Guns)
	s.True(s.snapshot("bob").Incapacitated)
}

func (s *EngineSuite) TestMarkerFailureRefundsRevive() {
	s.give("medic", model.FieldMedkit, 1)
	_, err := s.ledger.MarkIncapacitated(s.ctx, "medic")
	s.Require().NoError(err)
	outcome, err := s.engine.Revive(s.ctx, ReviveRequest{Medic: "medic", Patient: "medic", PatientMarked: true})
	s.Require().NoError(err)

	err = s.engine.ReportMarkerFailure(s.ctx, outcome.ID, nil, true)

	var ef *model.ExternalApplyFailedError
	s.Require().ErrorAs(err, &ef)
	s.Equal(model.ActionRevive, ef.Action)
	medic := s.snapshot("medic")
	s.Equal(int64(1), medic.Medkit)
	s.True(medic.Incapacitated)
}

func (s *EngineSuite) TestConfigValidate() {
	s.NoError(DefaultConfig().Validate())
	s.Error(Config{StateAuthority: "oracle"}.Validate())
	s.Error(Config{StateAuthority: AuthorityStore, MarkerTimeout: -time.Second, RefundWindow: time.Minute}.Validate())
	s.Error(Config{StateAuthority: AuthorityMarker, MarkerTimeout: time.Hour}.Validate())
}
