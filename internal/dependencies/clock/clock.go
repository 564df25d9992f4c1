package clock

import "time"

// Clock is the engine's only source of time. Cooldowns and marker expiry
// are computed from it so tests can drive time with a mock.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock
type System struct{}

// New returns the system clock
func New() System {
	return System{}
}

// Now returns time.Now(), which carries a monotonic reading for cooldown math
func (System) Now() time.Time {
	return time.Now()
}
