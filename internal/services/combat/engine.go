package combat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/shootout/internal/dependencies/clock"
	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/services/ledger"
	"github.com/mcoot/shootout/internal/services/ratelimit"
)

const tracerName = "github.com/mcoot/shootout/internal/services/combat"

// ShootRequest is an attempt by Actor to shoot Target.
// TargetMarked and TargetProtected describe the target's platform state as seen by the caller.
type ShootRequest struct {
	Actor           model.PlayerID
	Target          model.PlayerID
	TargetMarked    bool
	TargetProtected bool
}

// ReviveRequest is an attempt by Medic to revive Patient
type ReviveRequest struct {
	Medic         model.PlayerID
	Patient       model.PlayerID
	PatientMarked bool
}

// Engine runs the shoot and revive transitions against the ledger.
// It holds no locks; each step is a single atomic ledger operation.
type Engine struct {
	ledger  *ledger.Ledger
	limiter ratelimit.Limiter
	clock   clock.Clock
	cfg     Config
	tracer  trace.Tracer
	logger  *slog.Logger
}

// New creates a new Engine
func New(ledger *ledger.Ledger, limiter ratelimit.Limiter, clock clock.Clock, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		ledger:  ledger,
		limiter: limiter,
		clock:   clock,
		cfg:     cfg,
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
	}
}

// Shoot charges the actor one gun and either spends a vest charge on the
// target or incapacitates it
func (e *Engine) Shoot(ctx context.Context, req ShootRequest) (*model.Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "combat.shoot", trace.WithAttributes(
		attribute.String("actor_id", string(req.Actor)),
		attribute.String("target_id", string(req.Target)),
	))
	defer span.End()

	outcome, err := e.shoot(ctx, req)
	e.finish(span, model.ActionShoot, req.Actor, req.Target, outcome, err)
	return outcome, err
}

func (e *Engine) shoot(ctx context.Context, req ShootRequest) (*model.Outcome, error) {
	decision, err := e.limiter.TryAcquire(ctx, req.Actor, model.ActionShoot)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	if err := decision.Err(model.ActionShoot); err != nil {
		return nil, err
	}

	_, target, err := e.load(ctx, req.Actor, req.Target)
	if err != nil {
		return nil, err
	}

	if e.incapacitated(req.TargetMarked, target) {
		return nil, &model.InvalidStateError{Reason: model.ReasonAlreadyIncapacitated}
	}
	if req.TargetProtected {
		return nil, &model.InvalidStateError{Reason: model.ReasonProtected}
	}

	// The platform marker expired without a revive; the stored flag follows it
	if e.cfg.StateAuthority == AuthorityMarker && e.markerExpired(target) {
		if _, err := e.ledger.ClearIncapacitated(ctx, req.Target); err != nil {
			return nil, err
		}
	}

	if _, err := e.ledger.Consume(ctx, req.Actor, model.FieldGuns, 1); err != nil {
		return nil, err
	}

	absorbed, _, err := e.ledger.AbsorbShot(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	if absorbed {
		return e.outcome(ctx, model.ActionShoot, model.OutcomeAbsorbed, req.Actor, req.Target)
	}

	transitioned, err := e.ledger.MarkIncapacitated(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	outcome, err := e.outcome(ctx, model.ActionShoot, model.OutcomeIncapacitated, req.Actor, req.Target)
	if err != nil {
		return nil, err
	}
	outcome.ApplyMarker = transitioned
	if transitioned {
		outcome.MarkerTimeout = e.cfg.MarkerTimeout
		e.issue(ctx, outcome)
	}
	return outcome, nil
}

// Revive charges the medic one medkit and clears the patient's incapacitation
func (e *Engine) Revive(ctx context.Context, req ReviveRequest) (*model.Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "combat.revive", trace.WithAttributes(
		attribute.String("actor_id", string(req.Medic)),
		attribute.String("target_id", string(req.Patient)),
	))
	defer span.End()

	outcome, err := e.revive(ctx, req)
	e.finish(span, model.ActionRevive, req.Medic, req.Patient, outcome, err)
	return outcome, err
}

func (e *Engine) revive(ctx context.Context, req ReviveRequest) (*model.Outcome, error) {
	_, patient, err := e.load(ctx, req.Medic, req.Patient)
	if err != nil {
		return nil, err
	}
	if !e.incapacitated(req.PatientMarked, patient) {
		return nil, &model.InvalidStateError{Reason: model.ReasonNotIncapacitated}
	}

	if _, err := e.ledger.Consume(ctx, req.Medic, model.FieldMedkit, 1); err != nil {
		return nil, err
	}

	cleared, err := e.ledger.ClearIncapacitated(ctx, req.Patient)
	if err != nil {
		return nil, err
	}
	// Under store authority a concurrent medic already revived the patient
	if !cleared && e.cfg.StateAuthority == AuthorityStore {
		if _, err := e.ledger.Adjust(ctx, req.Medic, model.FieldMedkit, 1, 0); err != nil {
			return nil, fmt.Errorf("refund medkit: %w", err)
		}
		return nil, &model.InvalidStateError{Reason: model.ReasonNotIncapacitated}
	}

	outcome, err := e.outcome(ctx, model.ActionRevive, model.OutcomeRevived, req.Medic, req.Patient)
	if err != nil {
		return nil, err
	}
	outcome.RemoveMarker = true
	e.issue(ctx, outcome)
	return outcome, nil
}

// ReportMarkerFailure records that the caller could not perform the marker
// change asked for by the outcome with the given id. The outcome's charge is
// claimed once: the stored incapacitation flag is put back to match the
// platform and, with refund, the spent gun or medkit is returned. Reports for
// an unknown, expired or already reported outcome change nothing. The
// returned error is always an ExternalApplyFailedError.
func (e *Engine) ReportMarkerFailure(ctx context.Context, id model.OutcomeID, cause error, refund bool) error {
	ctx, span := e.tracer.Start(ctx, "combat.marker_failure", trace.WithAttributes(
		attribute.String("outcome_id", string(id)),
		attribute.Bool("refund", refund),
	))
	defer span.End()

	failure := &model.ExternalApplyFailedError{Cause: cause}
	defer func() { span.SetStatus(codes.Error, failure.Error()) }()

	charge, ok, err := e.ledger.ClaimCharge(ctx, id)
	if err != nil {
		failure.Cause = errors.Join(cause, err)
		return failure
	}
	if !ok {
		failure.NoCharge = true
		e.logger.Warn("marker failure without outstanding charge",
			slog.String("outcome_id", string(id)),
		)
		return failure
	}
	failure.Action = charge.Action

	var errs []error
	if err := e.revertMirror(ctx, charge); err != nil {
		errs = append(errs, err)
	}
	if refund {
		if _, err := e.ledger.Adjust(ctx, charge.Actor, charge.Field(), 1, 0); err != nil {
			errs = append(errs, fmt.Errorf("refund %s: %w", charge.Field(), err))
		} else {
			failure.Refunded = true
		}
	}
	if len(errs) > 0 {
		failure.Cause = errors.Join(append([]error{cause}, errs...)...)
		e.logger.Error("failed to compensate marker failure",
			slog.String("outcome_id", string(id)),
			slog.String("error", errors.Join(errs...).Error()),
		)
	}

	e.logger.Warn("marker change failed",
		slog.String("outcome_id", string(id)),
		slog.String("action", string(charge.Action)),
		slog.String("actor_id", string(charge.Actor)),
		slog.String("target_id", string(charge.Target)),
		slog.Bool("refunded", failure.Refunded),
	)
	return failure
}

// issue makes an outcome's charge claimable by a later marker failure report.
// The action has already happened, so a failure here only costs refundability.
func (e *Engine) issue(ctx context.Context, outcome *model.Outcome) {
	charge := &model.Charge{
		OutcomeID: model.OutcomeID(uuid.NewString()),
		Action:    outcome.Action,
		Actor:     outcome.Actor.ID,
		Target:    outcome.Target.ID,
		ExpiresAt: e.clock.Now().Add(e.cfg.RefundWindow),
	}
	if outcome.Action == model.ActionShoot {
		charge.MarkedAt = outcome.Target.LastIncapacitatedAt
	}
	if err := e.ledger.RecordCharge(ctx, charge); err != nil {
		e.logger.Error("failed to record charge",
			slog.String("action", string(outcome.Action)),
			slog.String("actor_id", string(outcome.Actor.ID)),
			slog.String("error", err.Error()),
		)
		return
	}
	outcome.ID = charge.OutcomeID
}

// revertMirror undoes the stored flag change the charge's outcome made. A
// shot's flag is only cleared while it still carries that shot's timestamp.
func (e *Engine) revertMirror(ctx context.Context, charge *model.Charge) error {
	switch charge.Action {
	case model.ActionShoot:
		target, err := e.ledger.Snapshot(ctx, charge.Target)
		if err != nil {
			return err
		}
		if !target.Incapacitated || target.LastIncapacitatedAt == nil || charge.MarkedAt == nil ||
			target.LastIncapacitatedAt.UnixMilli() != charge.MarkedAt.UnixMilli() {
			return nil
		}
		if _, err := e.ledger.ClearIncapacitated(ctx, charge.Target); err != nil {
			return fmt.Errorf("revert incapacitation: %w", err)
		}
	case model.ActionRevive:
		if _, err := e.ledger.MarkIncapacitated(ctx, charge.Target); err != nil {
			return fmt.Errorf("revert revive: %w", err)
		}
	}
	return nil
}

func (e *Engine) incapacitated(marked bool, p *model.Player) bool {
	if e.cfg.StateAuthority == AuthorityStore {
		return p.Incapacitated
	}
	return marked
}

// markerExpired reports whether the stored incapacitation is older than the
// marker timeout. A fresher flag belongs to a concurrent shot and is kept.
func (e *Engine) markerExpired(p *model.Player) bool {
	if !p.Incapacitated || p.LastIncapacitatedAt == nil || e.cfg.MarkerTimeout <= 0 {
		return false
	}
	return !e.clock.Now().Before(p.LastIncapacitatedAt.Add(e.cfg.MarkerTimeout))
}

// load ensures both players exist and returns their snapshots
func (e *Engine) load(ctx context.Context, actor, target model.PlayerID) (*model.Player, *model.Player, error) {
	for _, id := range []model.PlayerID{actor, target} {
		if _, err := e.ledger.EnsurePlayer(ctx, id); err != nil {
			return nil, nil, err
		}
	}
	return e.snapshots(ctx, actor, target)
}

func (e *Engine) snapshots(ctx context.Context, actor, target model.PlayerID) (*model.Player, *model.Player, error) {
	var a, t *model.Player
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = e.ledger.Snapshot(gctx, actor)
		return err
	})
	g.Go(func() error {
		var err error
		t, err = e.ledger.Snapshot(gctx, target)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, t, nil
}

func (e *Engine) outcome(ctx context.Context, action model.Action, kind model.OutcomeKind, actor, target model.PlayerID) (*model.Outcome, error) {
	a, t, err := e.snapshots(ctx, actor, target)
	if err != nil {
		return nil, err
	}
	return &model.Outcome{
		Action: action,
		Kind:   kind,
		Actor:  *a,
		Target: *t,
		At:     e.clock.Now(),
	}, nil
}

func (e *Engine) finish(span trace.Span, action model.Action, actor, target model.PlayerID, outcome *model.Outcome, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		e.logger.Debug("combat action rejected",
			slog.String("action", string(action)),
			slog.String("actor_id", string(actor)),
			slog.String("target_id", string(target)),
			slog.String("error", err.Error()),
		)
		return
	}
	span.SetAttributes(
		attribute.String("outcome", string(outcome.Kind)),
		attribute.Bool("apply_marker", outcome.ApplyMarker),
	)
	e.logger.Info("combat action resolved",
		slog.String("action", string(action)),
		slog.String("actor_id", string(actor)),
		slog.String("target_id", string(target)),
		slog.String("outcome", string(outcome.Kind)),
		slog.Bool("apply_marker", outcome.ApplyMarker),
		slog.Bool("remove_marker", outcome.RemoveMarker),
	)
}
