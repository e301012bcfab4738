package sim

import "math"

// VTimeInNs is a point in virtual time, in integer nanoseconds. Radio frame
// arithmetic needs exact symbol boundaries, so virtual time is integral
// rather than floating point.
type VTimeInNs int64

// TimeNever is the sentinel returned when no future work is pending. An
// engine must not schedule anything at TimeNever.
const TimeNever VTimeInNs = math.MaxInt64

// Common durations in virtual time.
const (
	Nanosecond  VTimeInNs = 1
	Microsecond VTimeInNs = 1000 * Nanosecond
	Millisecond VTimeInNs = 1000 * Microsecond
	Second      VTimeInNs = 1000 * Millisecond
)

// Seconds converts a virtual time to floating-point seconds, for display and
// for physical-quantity math (e.g., noise power over a window).
func (t VTimeInNs) Seconds() float64 {
	return float64(t) / 1e9
}

// MinTime returns the earlier of two points in virtual time.
func MinTime(a, b VTimeInNs) VTimeInNs {
	if a < b {
		return a
	}
	return b
}
