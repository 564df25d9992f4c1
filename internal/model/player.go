package model

import "time"

// PlayerID is the opaque, stable identifier supplied by the chat transport
type PlayerID string

// Player is the durable per-player record of counters
type Player struct {
	ID      PlayerID `json:"id"`
	Balance int64    `json:"balance"`
	Guns    int64    `json:"guns"`
	Vest    int64    `json:"vest"`
	Medkit  int64    `json:"medkit"`

	// IsVested is true only while vest absorption is armed (requires Vest > 0)
	IsVested bool `json:"is_vested"`

	// Incapacitated mirrors the platform marker as last recorded by the engine
	Incapacitated       bool       `json:"incapacitated"`
	LastIncapacitatedAt *time.Time `json:"last_incapacitated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// State returns the combat state according to the stored mirror
func (p *Player) State() CombatState {
	if p.Incapacitated {
		return StateIncapacitated
	}
	return StateAlive
}

// Counter returns the value of the given counter field
func (p *Player) Counter(f Field) int64 {
	switch f {
	case FieldBalance:
		return p.Balance
	case FieldGuns:
		return p.Guns
	case FieldVest:
		return p.Vest
	case FieldMedkit:
		return p.Medkit
	}
	return 0
}

// Field names an integer counter on a Player
type Field string

const (
	FieldBalance Field = "balance"
	FieldGuns    Field = "guns"
	FieldVest    Field = "vest"
	FieldMedkit  Field = "medkit"
)

// Fields lists every counter field in display order
var Fields = []Field{FieldBalance, FieldGuns, FieldVest, FieldMedkit}

// Valid reports whether f names a known counter
func (f Field) Valid() bool {
	switch f {
	case FieldBalance, FieldGuns, FieldVest, FieldMedkit:
		return true
	}
	return false
}

// Flag names a boolean field on a Player that may be set directly
type Flag string

const (
	FlagIsVested Flag = "is_vested"
)

// Valid reports whether f names a settable flag
func (f Flag) Valid() bool {
	return f == FlagIsVested
}

// CombatState is observed at decision time, never stored as an enum
type CombatState string

const (
	StateAlive         CombatState = "alive"
	StateIncapacitated CombatState = "incapacitated"
)
