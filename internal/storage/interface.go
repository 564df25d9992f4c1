package storage

import (
	"context"
	"time"

	"github.com/mcoot/shootout/internal/model"
)

// Storage defines the durable per-player table. Every method is a single
// atomic operation against one player record; implementations must make
// concurrent calls for the same id linearizable.
type Storage interface {
	// EnsurePlayer inserts player if no record with its ID exists.
	// created reports whether this call performed the insert.
	EnsurePlayer(ctx context.Context, player *model.Player) (created bool, err error)
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// Adjust adds delta to field, clamping the result at floor, and returns the new value.
	// Reaching zero vest disarms the vest.
	Adjust(ctx context.Context, id model.PlayerID, field model.Field, delta, floor int64) (int64, error)

	// Consume subtracts amount from field only if the counter holds at least
	// amount. ok is false (and nothing changes) otherwise.
	Consume(ctx context.Context, id model.PlayerID, field model.Field, amount int64) (remaining int64, ok bool, err error)

	// SetFlag sets a boolean field and returns the value actually stored.
	SetFlag(ctx context.Context, id model.PlayerID, flag model.Flag, value bool) (bool, error)

	// AbsorbShot spends one vest charge if the vest is armed, disarming it
	// when the last charge is gone.
	AbsorbShot(ctx context.Context, id model.PlayerID) (absorbed bool, vestAfter int64, err error)

	// MarkIncapacitated and ClearIncapacitated flip the stored mirror and
	// report whether this call changed it.
	MarkIncapacitated(ctx context.Context, id model.PlayerID, at time.Time) (bool, error)
	ClearIncapacitated(ctx context.Context, id model.PlayerID) (bool, error)

	// RecordCharge stores a charge that a marker failure may claim until
	// ExpiresAt. now is the engine's clock reading, used to drop expired charges.
	RecordCharge(ctx context.Context, charge *model.Charge, now time.Time) error
	// ClaimCharge removes the outstanding charge for id and returns it. ok is
	// false when no unexpired charge exists, so each charge is claimed once.
	ClaimCharge(ctx context.Context, id model.OutcomeID, now time.Time) (charge *model.Charge, ok bool, err error)
}

// Pinger is implemented by backends that hold a connection worth probing.
type Pinger interface {
	Ping(ctx context.Context) error
}
