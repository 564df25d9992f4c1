package model

import "time"

// OutcomeID identifies an outcome that asked the caller for a marker change
type OutcomeID string

// Charge is the resource spent for an outcome whose marker change is still
// pending. A marker failure report claims it at most once.
type Charge struct {
	OutcomeID OutcomeID `json:"outcome_id"`
	Action    Action    `json:"action"`
	Actor     PlayerID  `json:"actor"`
	Target    PlayerID  `json:"target"`
	// MarkedAt is the target's stored incapacitation time written by a shot
	MarkedAt  *time.Time `json:"marked_at,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Field is the counter the charge was taken from
func (c *Charge) Field() Field {
	if c.Action == ActionRevive {
		return FieldMedkit
	}
	return FieldGuns
}
