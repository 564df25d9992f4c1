package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/shootout/internal/dependencies/clock"
	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/storage"
)

// Ledger is the only path through which player counters change.
// Each method maps to exactly one atomic storage operation.
type Ledger struct {
	storage storage.Storage
	clock   clock.Clock
	seed    model.SeedMode
	logger  *slog.Logger
}

// New creates a new Ledger seeding new players with the given mode
func New(storage storage.Storage, clock clock.Clock, seed model.SeedMode, logger *slog.Logger) *Ledger {
	return &Ledger{
		storage: storage,
		clock:   clock,
		seed:    seed,
		logger:  logger,
	}
}

// EnsurePlayer creates the player with seed defaults if absent.
// Only the caller whose insert won reports created and logs the creation.
func (l *Ledger) EnsurePlayer(ctx context.Context, id model.PlayerID) (bool, error) {
	if strings.TrimSpace(string(id)) == "" {
		return false, model.ErrInvalidPlayerID
	}
	created, err := l.storage.EnsurePlayer(ctx, model.NewPlayer(id, l.seed, l.clock.Now()))
	if err != nil {
		l.logger.Error("failed to ensure player",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()),
		)
		return false, err
	}
	if created {
		l.logger.Info("player created",
			slog.String("player_id", string(id)),
			slog.String("seed", string(l.seed)),
		)
	}
	return created, nil
}

// Snapshot returns the current record for a player
func (l *Ledger) Snapshot(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return l.storage.GetPlayer(ctx, id)
}

// Adjust adds delta to field, never letting it drop below floor, and returns the new value
func (l *Ledger) Adjust(ctx context.Context, id model.PlayerID, field model.Field, delta, floor int64) (int64, error) {
	if floor < 0 {
		return 0, model.ErrInvalidFloor
	}
	if !field.Valid() {
		return 0, model.ErrUnknownField
	}
	value, err := l.storage.Adjust(ctx, id, field, delta, floor)
	if err != nil {
		return 0, err
	}
	l.logger.Debug("counter adjusted",
		slog.String("player_id", string(id)),
		slog.String("field", string(field)),
		slog.Int64("delta", delta),
		slog.Int64("value", value),
	)
	return value, nil
}

// SetFlag sets a boolean field and returns the stored value, which may differ
// from value when an invariant forbids it (arming an empty vest)
func (l *Ledger) SetFlag(ctx context.Context, id model.PlayerID, flag model.Flag, value bool) (bool, error) {
	if !flag.Valid() {
		return false, model.ErrUnknownField
	}
	return l.storage.SetFlag(ctx, id, flag, value)
}

// Consume spends amount of field, failing with InsufficientResourceError and
// leaving the counter untouched when the player holds less
func (l *Ledger) Consume(ctx context.Context, id model.PlayerID, field model.Field, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	if !field.Valid() {
		return 0, model.ErrUnknownField
	}
	remaining, ok, err := l.storage.Consume(ctx, id, field, amount)
	if err != nil {
		return 0, err
	}
	if !ok {
		return remaining, &model.InsufficientResourceError{Field: field}
	}
	return remaining, nil
}

// AbsorbShot spends one armed vest charge, reporting whether the shot was absorbed
func (l *Ledger) AbsorbShot(ctx context.Context, id model.PlayerID) (bool, int64, error) {
	return l.storage.AbsorbShot(ctx, id)
}

// MarkIncapacitated records the incapacitation at the current time
func (l *Ledger) MarkIncapacitated(ctx context.Context, id model.PlayerID) (bool, error) {
	return l.storage.MarkIncapacitated(ctx, id, l.clock.Now())
}

// ClearIncapacitated clears the recorded incapacitation
func (l *Ledger) ClearIncapacitated(ctx context.Context, id model.PlayerID) (bool, error) {
	return l.storage.ClearIncapacitated(ctx, id)
}

// RecordCharge keeps charge claimable until its expiry
func (l *Ledger) RecordCharge(ctx context.Context, charge *model.Charge) error {
	return l.storage.RecordCharge(ctx, charge, l.clock.Now())
}

// ClaimCharge takes the outstanding charge for id; ok is false if it was
// never issued, already claimed or expired
func (l *Ledger) ClaimCharge(ctx context.Context, id model.OutcomeID) (*model.Charge, bool, error) {
	return l.storage.ClaimCharge(ctx, id, l.clock.Now())
}
