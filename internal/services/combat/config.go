package combat

import (
	"fmt"
	"time"
)

// StateAuthority selects which record decides whether a player is incapacitated
type StateAuthority string

const (
	// AuthorityMarker trusts the marker state supplied by the caller
	AuthorityMarker StateAuthority = "marker"
	// AuthorityStore trusts the incapacitation flag kept in the player store
	AuthorityStore StateAuthority = "store"
)

// DefaultMarkerTimeout is how long the caller keeps the incapacitation marker applied
const DefaultMarkerTimeout = time.Hour

// DefaultRefundWindow is how long a marker failure can still be reported for an outcome
const DefaultRefundWindow = 10 * time.Minute

// Config holds engine settings. Revive is never passed through the rate
// limiter; only shoot has a cooldown.
type Config struct {
	MarkerTimeout  time.Duration
	StateAuthority StateAuthority
	RefundWindow   time.Duration
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		MarkerTimeout:  DefaultMarkerTimeout,
		StateAuthority: AuthorityMarker,
		RefundWindow:   DefaultRefundWindow,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	switch c.StateAuthority {
	case AuthorityMarker, AuthorityStore:
	default:
		return fmt.Errorf("unknown state authority %q", c.StateAuthority)
	}
	if c.MarkerTimeout < 0 {
		return fmt.Errorf("marker timeout must not be negative")
	}
	if c.RefundWindow <= 0 {
		return fmt.Errorf("refund window must be positive")
	}
	return nil
}
