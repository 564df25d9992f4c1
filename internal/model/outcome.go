package model

import "time"

// Action identifies the kind of combat action, also used as the rate limiter bucket
type Action string

const (
	ActionShoot  Action = "shoot"
	ActionRevive Action = "revive"
)

// OutcomeKind is the result of a successful combat action
type OutcomeKind string

const (
	OutcomeAbsorbed      OutcomeKind = "absorbed"
	OutcomeIncapacitated OutcomeKind = "incapacitated"
	OutcomeRevived       OutcomeKind = "revived"
)

// Outcome is returned to the caller after a combat action. The caller applies
// or removes the platform marker as instructed.
type Outcome struct {
	// ID is set when the outcome asks for a marker change; a failed change is
	// reported against it
	ID     OutcomeID   `json:"id,omitempty"`
	Action Action      `json:"action"`
	Kind   OutcomeKind `json:"kind"`

	Actor  Player `json:"actor"`
	Target Player `json:"target"`

	// ApplyMarker asks the caller to apply the incapacitation marker for MarkerTimeout
	ApplyMarker   bool          `json:"apply_marker"`
	MarkerTimeout time.Duration `json:"marker_timeout"`

	// RemoveMarker asks the caller to remove the incapacitation marker
	RemoveMarker bool `json:"remove_marker"`

	At time.Time `json:"at"`
}
