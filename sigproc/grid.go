package sigproc

import "log"

// A ResourceGrid is one slot's worth of time-frequency resources to be
// modulated. The endpoint places at most one data channel and at most one
// reference signal on it; both can coexist in the same slot.
type ResourceGrid struct {
	NumRB          int
	SymbolsPerSlot int
	NumAntennas    int

	Data      *DataPlacement
	Reference *ReferenceSignalConfig
}

// NewResourceGrid creates an empty grid of the given dimensions.
func NewResourceGrid(numRB, symbolsPerSlot, numAntennas int) *ResourceGrid {
	if numRB <= 0 || symbolsPerSlot <= 0 || numAntennas <= 0 {
		log.Panic("resource grid dimensions must be positive")
	}

	return &ResourceGrid{
		NumRB:          numRB,
		SymbolsPerSlot: symbolsPerSlot,
		NumAntennas:    numAntennas,
	}
}

// PlaceData puts a data channel on the grid.
func (g *ResourceGrid) PlaceData(d DataPlacement) {
	if d.Alloc.LastSymbol() >= g.SymbolsPerSlot {
		log.Panic("data allocation exceeds the slot")
	}
	if d.Alloc.FirstRB+d.Alloc.NumRB > g.NumRB {
		log.Panic("data allocation exceeds the carrier bandwidth")
	}

	g.Data = &d
}

// PlaceReferenceSignal puts a reference signal on the grid.
func (g *ResourceGrid) PlaceReferenceSignal(c ReferenceSignalConfig) {
	if c.LastSymbol() >= g.SymbolsPerSlot {
		log.Panic("reference signal exceeds the slot")
	}

	g.Reference = &c
}

// IsEmpty reports whether nothing has been placed on the grid.
func (g *ResourceGrid) IsEmpty() bool {
	return g.Data == nil && g.Reference == nil
}

// SpanStart returns the slot-relative first symbol covered by any placement.
func (g *ResourceGrid) SpanStart() int {
	start := g.SymbolsPerSlot
	if g.Data != nil && g.Data.Alloc.FirstSymbol < start {
		start = g.Data.Alloc.FirstSymbol
	}
	if g.Reference != nil && g.Reference.FirstSymbol < start {
		start = g.Reference.FirstSymbol
	}
	if start == g.SymbolsPerSlot {
		return 0
	}
	return start
}

// SpanEnd returns the slot-relative symbol right after the last covered one.
// The transmitted symbol span is [SpanStart, SpanEnd).
func (g *ResourceGrid) SpanEnd() int {
	end := 0
	if g.Data != nil && g.Data.Alloc.LastSymbol()+1 > end {
		end = g.Data.Alloc.LastSymbol() + 1
	}
	if g.Reference != nil && g.Reference.LastSymbol()+1 > end {
		end = g.Reference.LastSymbol() + 1
	}
	return end
}

// SpanSymbols returns the number of symbols the grid occupies.
func (g *ResourceGrid) SpanSymbols() int {
	return g.SpanEnd() - g.SpanStart()
}
