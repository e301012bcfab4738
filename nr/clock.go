package nr

import (
	"github.com/sarchlab/ransim/sim"
)

// A Timing names one symbol in absolute terms: which frame, which slot in
// that frame, which symbol in that slot.
type Timing struct {
	Frame  uint64
	Slot   int
	Symbol int
}

// Index returns the frame-relative index of the named symbol.
func (t Timing) Index(n Numerology) SymbolIndex {
	return n.IndexOf(t.Slot, t.Symbol)
}

// StartTime returns the absolute virtual time at which the named symbol
// starts.
func (t Timing) StartTime(n Numerology) sim.VTimeInNs {
	return sim.VTimeInNs(t.Frame)*FrameDuration +
		n.SymbolStartOffset(t.Index(n))
}

// A FrameClock translates absolute virtual time into frame, slot, and symbol
// coordinates. It recomputes only when time strictly advances, so that
// re-entrant calls within the same instant observe identical coordinates.
type FrameClock struct {
	num Numerology

	frame       uint64
	slot        int
	symbol      int
	lastRunTime sim.VTimeInNs
}

// NewFrameClock creates a FrameClock for the given numerology.
func NewFrameClock(num Numerology) *FrameClock {
	return &FrameClock{
		num:         num,
		lastRunTime: -1,
	}
}

// Advance moves the clock to now. It returns true if the coordinates were
// recomputed, false if time has not advanced since the last call.
func (c *FrameClock) Advance(now sim.VTimeInNs) bool {
	if now <= c.lastRunTime {
		return false
	}

	c.lastRunTime = now

	c.frame = uint64(now / FrameDuration)
	inFrame := now % FrameDuration

	c.slot = int(inFrame / c.num.slotDuration)
	inSlot := inFrame % c.num.slotDuration

	// Symbol boundaries within a slot are few; a linear scan beats a binary
	// search at this size.
	c.symbol = c.num.symbolsPerSlot - 1
	for s := 1; s <= c.num.symbolsPerSlot; s++ {
		if inSlot < c.num.symbolOffsets[s] {
			c.symbol = s - 1
			break
		}
	}

	return true
}

// Frame returns the absolute frame number.
func (c *FrameClock) Frame() uint64 {
	return c.frame
}

// Slot returns the slot within the current frame.
func (c *FrameClock) Slot() int {
	return c.slot
}

// Symbol returns the symbol within the current slot.
func (c *FrameClock) Symbol() int {
	return c.symbol
}

// LastRunTime returns the time of the last coordinate recomputation.
func (c *FrameClock) LastRunTime() sim.VTimeInNs {
	return c.lastRunTime
}

// Index returns the frame-relative index of the current symbol.
func (c *FrameClock) Index() SymbolIndex {
	return c.num.IndexOf(c.slot, c.symbol)
}

// PrevIndex returns the frame-relative index of the symbol that completed
// right before the current one.
func (c *FrameClock) PrevIndex() SymbolIndex {
	return c.num.AddSymbols(c.Index(), -1)
}

// Timing returns the full coordinates of the current symbol.
func (c *FrameClock) Timing() Timing {
	return Timing{Frame: c.frame, Slot: c.slot, Symbol: c.symbol}
}
