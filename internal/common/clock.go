package common

import "time"

// Clock abstracts the source of the current time. The backfill loop never
// reads or changes the system clock directly; callers inject a Clock and the
// commit timestamps themselves are constructed from the configured date range.
type Clock interface {
	// Now returns the current time
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock that always reports the same instant.
// It is primarily intended for testing.
type FixedClock struct {
	Time time.Time
}

// Now implements Clock.
func (c FixedClock) Now() time.Time {
	return c.Time
}
