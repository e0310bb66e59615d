package shared

import "time"

// Clock abstracts the ambient current-time dependency so that
// time-driven state transitions stay deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now
type SystemClock struct{}

// Now returns the current system time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock pinned to a single instant
type FixedClock struct {
	Instant time.Time
}

// Now returns the pinned instant
func (c FixedClock) Now() time.Time {
	return c.Instant
}
