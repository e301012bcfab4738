package sim

import (
	"log"
	"math"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive cycles, rounded to the
// nearest nanosecond.
func (f Freq) Period() VTimeInNs {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}
	return VTimeInNs(math.Round(1e9 / float64(f)))
}

// CyclesIn returns the number of full cycles that fit in the given duration.
// With f as a sample rate, this is the number of samples in the duration.
func (f Freq) CyclesIn(d VTimeInNs) int {
	if d < 0 {
		log.Panic("negative duration")
	}
	return int(math.Round(d.Seconds() * float64(f)))
}
