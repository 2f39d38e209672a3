package luma

import "time"

// Clock is the time source consulted by viewports and regulators. Rendering
// code never calls time.Now directly so that tests can drive refresh
// scheduling deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system clock. time.Now carries a monotonic reading,
// so durations derived from it are safe against wall clock adjustments.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
