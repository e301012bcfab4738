// Package nr holds the frame structure arithmetic of the radio interface:
// subcarrier-spacing numerology tables, frame/slot/symbol coordinates, and
// the clock that translates virtual time into those coordinates.
package nr

import (
	"fmt"

	"github.com/sarchlab/ransim/sim"
)

// FrameDuration is the fixed length of one radio frame.
const FrameDuration = 10 * sim.Millisecond

// DefaultSymbolsPerSlot is the symbol count of a normal cyclic-prefix slot.
const DefaultSymbolsPerSlot = 14

// SubcarrierSpacing is the subcarrier spacing of a carrier, in kHz.
type SubcarrierSpacing int

// The supported subcarrier spacings.
const (
	Scs15  SubcarrierSpacing = 15
	Scs30  SubcarrierSpacing = 30
	Scs60  SubcarrierSpacing = 60
	Scs120 SubcarrierSpacing = 120
)

// Mu returns the numerology index (0 for 15 kHz, 1 for 30 kHz, ...).
func (s SubcarrierSpacing) Mu() (int, error) {
	switch s {
	case Scs15:
		return 0, nil
	case Scs30:
		return 1, nil
	case Scs60:
		return 2, nil
	case Scs120:
		return 3, nil
	}

	return 0, fmt.Errorf("unsupported subcarrier spacing %d kHz", int(s))
}

// A SymbolIndex is the frame-relative position of a symbol, counted from the
// first symbol of the frame. It is a dedicated type so that it cannot be
// mixed up with slot-relative symbol numbers or raw counters.
type SymbolIndex int

// A Numerology precomputes all the per-symbol timing of one subcarrier
// spacing. It is immutable after construction.
type Numerology struct {
	scs            SubcarrierSpacing
	symbolsPerSlot int
	slotsPerFrame  int
	slotDuration   sim.VTimeInNs

	// symbolOffsets[s] is the boundary offset of symbol s within its slot.
	// It has symbolsPerSlot+1 entries; the last one equals slotDuration.
	symbolOffsets []sim.VTimeInNs
}

// NewNumerology builds the timing tables for the given subcarrier spacing.
// A zero symbolsPerSlot selects the normal cyclic-prefix default.
func NewNumerology(
	scs SubcarrierSpacing,
	symbolsPerSlot int,
) (Numerology, error) {
	mu, err := scs.Mu()
	if err != nil {
		return Numerology{}, err
	}

	if symbolsPerSlot == 0 {
		symbolsPerSlot = DefaultSymbolsPerSlot
	}

	if symbolsPerSlot < 1 {
		return Numerology{}, fmt.Errorf(
			"invalid symbols per slot %d", symbolsPerSlot)
	}

	n := Numerology{
		scs:            scs,
		symbolsPerSlot: symbolsPerSlot,
		slotsPerFrame:  10 << mu,
	}
	n.slotDuration = FrameDuration / sim.VTimeInNs(n.slotsPerFrame)

	n.symbolOffsets = make([]sim.VTimeInNs, symbolsPerSlot+1)
	for s := 0; s <= symbolsPerSlot; s++ {
		n.symbolOffsets[s] = n.slotDuration *
			sim.VTimeInNs(s) / sim.VTimeInNs(symbolsPerSlot)
	}

	return n, nil
}

// MustNewNumerology is NewNumerology, panicking on configuration errors.
func MustNewNumerology(
	scs SubcarrierSpacing,
	symbolsPerSlot int,
) Numerology {
	n, err := NewNumerology(scs, symbolsPerSlot)
	if err != nil {
		panic(err)
	}
	return n
}

// Scs returns the subcarrier spacing.
func (n Numerology) Scs() SubcarrierSpacing {
	return n.scs
}

// SymbolsPerSlot returns the number of symbols in one slot.
func (n Numerology) SymbolsPerSlot() int {
	return n.symbolsPerSlot
}

// SlotsPerFrame returns the number of slots in one frame.
func (n Numerology) SlotsPerFrame() int {
	return n.slotsPerFrame
}

// SymbolsPerFrame returns the number of symbols in one frame. Context rings
// keyed by SymbolIndex have exactly this capacity.
func (n Numerology) SymbolsPerFrame() int {
	return n.slotsPerFrame * n.symbolsPerSlot
}

// SlotDuration returns the duration of one slot.
func (n Numerology) SlotDuration() sim.VTimeInNs {
	return n.slotDuration
}

// WrapSymbol maps any symbol count, positive or negative, onto a
// frame-relative SymbolIndex.
func (n Numerology) WrapSymbol(i int) SymbolIndex {
	size := n.SymbolsPerFrame()
	i %= size
	if i < 0 {
		i += size
	}
	return SymbolIndex(i)
}

// AddSymbols moves a SymbolIndex forward (or backward) with wraparound.
func (n Numerology) AddSymbols(idx SymbolIndex, k int) SymbolIndex {
	return n.WrapSymbol(int(idx) + k)
}

// IndexOf returns the frame-relative index of a slot-relative symbol.
func (n Numerology) IndexOf(slot, symbol int) SymbolIndex {
	return n.WrapSymbol(slot*n.symbolsPerSlot + symbol)
}

// SlotOf returns the slot that contains the given symbol.
func (n Numerology) SlotOf(idx SymbolIndex) int {
	return int(idx) / n.symbolsPerSlot
}

// SymbolInSlotOf returns the slot-relative symbol number of the given symbol.
func (n Numerology) SymbolInSlotOf(idx SymbolIndex) int {
	return int(idx) % n.symbolsPerSlot
}

// SymbolStartOffset returns the offset of the symbol's start within its
// frame.
func (n Numerology) SymbolStartOffset(idx SymbolIndex) sim.VTimeInNs {
	slot := n.SlotOf(idx)
	sym := n.SymbolInSlotOf(idx)
	return n.slotDuration*sim.VTimeInNs(slot) + n.symbolOffsets[sym]
}

// SymbolEndOffset returns the offset of the symbol's end within its frame.
func (n Numerology) SymbolEndOffset(idx SymbolIndex) sim.VTimeInNs {
	slot := n.SlotOf(idx)
	sym := n.SymbolInSlotOf(idx)
	return n.slotDuration*sim.VTimeInNs(slot) + n.symbolOffsets[sym+1]
}

// SymbolDuration returns the exact duration of the given symbol.
func (n Numerology) SymbolDuration(idx SymbolIndex) sim.VTimeInNs {
	sym := n.SymbolInSlotOf(idx)
	return n.symbolOffsets[sym+1] - n.symbolOffsets[sym]
}

// SpanDuration returns the exact duration of span consecutive symbols
// starting at idx, following wraparound.
func (n Numerology) SpanDuration(idx SymbolIndex, span int) sim.VTimeInNs {
	var d sim.VTimeInNs
	for k := 0; k < span; k++ {
		d += n.SymbolDuration(n.AddSymbols(idx, k))
	}
	return d
}

// NextSlotStart returns the frame-relative index of the first symbol of the
// slot after the one containing idx.
func (n Numerology) NextSlotStart(idx SymbolIndex) SymbolIndex {
	return n.WrapSymbol((n.SlotOf(idx) + 1) * n.symbolsPerSlot)
}
