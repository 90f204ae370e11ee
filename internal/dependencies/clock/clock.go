package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	// Now returns the current time in UTC
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current wall-clock time in UTC with the monotonic reading
// stripped, so values compare equal after a storage round trip
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Round(0)
}
