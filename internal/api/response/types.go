package response

import (
	"time"

	"github.com/mcoot/shootout/internal/model"
)

// Player represents a player's inventory in API responses
type Player struct {
	ID                  string     `json:"id"`
	Balance             int64      `json:"balance"`
	Guns                int64      `json:"guns"`
	Vest                int64      `json:"vest"`
	Medkit              int64      `json:"medkit"`
	IsVested            bool       `json:"is_vested"`
	State               string     `json:"state"`
	LastIncapacitatedAt *time.Time `json:"last_incapacitated_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:                  string(p.ID),
		Balance:             p.Balance,
		Guns:                p.Guns,
		Vest:                p.Vest,
		Medkit:              p.Medkit,
		IsVested:            p.IsVested,
		State:               string(p.State()),
		LastIncapacitatedAt: p.LastIncapacitatedAt,
		CreatedAt:           p.CreatedAt,
	}
}

// RegisterResponse is the response for registering a player
type RegisterResponse struct {
	Player  Player `json:"player"`
	Created bool   `json:"created"`
}

// AdjustResponse is the response after adjusting a counter
type AdjustResponse struct {
	Field string `json:"field"`
	Value int64  `json:"value"`
}

// VestResponse is the response after arming or disarming a vest.
// Armed stays false when the player has no vest charges.
type VestResponse struct {
	Armed bool `json:"armed"`
}

// Outcome represents a resolved combat action
type Outcome struct {
	ID                   string    `json:"id,omitempty"`
	Action               string    `json:"action"`
	Kind                 string    `json:"kind"`
	Actor                Player    `json:"actor"`
	Target               Player    `json:"target"`
	ApplyMarker          bool      `json:"apply_marker"`
	MarkerTimeoutSeconds int64     `json:"marker_timeout_seconds,omitempty"`
	RemoveMarker         bool      `json:"remove_marker"`
	At                   time.Time `json:"at"`
}

// OutcomeFromModel converts model.Outcome
func OutcomeFromModel(o *model.Outcome) Outcome {
	return Outcome{
		ID:                   string(o.ID),
		Action:               string(o.Action),
		Kind:                 string(o.Kind),
		Actor:                PlayerFromModel(&o.Actor),
		Target:               PlayerFromModel(&o.Target),
		ApplyMarker:          o.ApplyMarker,
		MarkerTimeoutSeconds: int64(o.MarkerTimeout / time.Second),
		RemoveMarker:         o.RemoveMarker,
		At:                   o.At,
	}
}

// Health is the health endpoint body
type Health struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
