package model

import "time"

// SeedMode selects the counters a newly created player starts with
type SeedMode string

const (
	SeedProduction SeedMode = "production"
	SeedDebug      SeedMode = "debug"
)

// NewPlayer builds the initial record for id using the seed for mode.
// Unknown modes fall back to the production seed.
func NewPlayer(id PlayerID, mode SeedMode, now time.Time) *Player {
	p := &Player{
		ID:        id,
		CreatedAt: now,
	}
	switch mode {
	case SeedDebug:
		p.Balance = 101010
		p.Guns = 127
		p.Vest = 127
		p.Medkit = 127
	default:
		p.Balance = 50
	}
	return p
}
