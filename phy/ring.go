package phy

import (
	"github.com/sarchlab/ransim/nr"
	"github.com/sarchlab/ransim/sigproc"
	"github.com/sarchlab/ransim/sim"
)

// contextRing holds the reception contexts of one endpoint, one slot per
// symbol position in a frame. Storage is preallocated once; indices wrap at
// frame boundaries via nr.SymbolIndex arithmetic.
type contextRing struct {
	num nr.Numerology

	rx    []*RxRequest
	rxDue []sim.VTimeInNs

	csi    [][]sigproc.ReferenceSignalConfig
	csiDue []sim.VTimeInNs
}

func newContextRing(num nr.Numerology) *contextRing {
	size := num.SymbolsPerFrame()

	r := &contextRing{
		num:    num,
		rx:     make([]*RxRequest, size),
		rxDue:  make([]sim.VTimeInNs, size),
		csi:    make([][]sigproc.ReferenceSignalConfig, size),
		csiDue: make([]sim.VTimeInNs, size),
	}
	for i := 0; i < size; i++ {
		r.rxDue[i] = sim.TimeNever
		r.csiDue[i] = sim.TimeNever
	}

	return r
}

// putRx installs a reception context at the given index. The index must be
// empty: overwriting an unconsumed context means the earlier reception was
// never finalized, which is a scheduler fault.
func (r *contextRing) putRx(
	idx nr.SymbolIndex,
	req *RxRequest,
	due sim.VTimeInNs,
) error {
	if r.rx[idx] != nil {
		return &SchedulingConflictError{
			Index:  idx,
			HarqID: r.rx[idx].HarqID,
		}
	}

	r.rx[idx] = req
	r.rxDue[idx] = due

	return nil
}

// peekRx returns the context at the index without consuming it.
func (r *contextRing) peekRx(idx nr.SymbolIndex) (*RxRequest, sim.VTimeInNs) {
	return r.rx[idx], r.rxDue[idx]
}

// takeRx consumes the context at the index, making the slot available for
// reuse.
func (r *contextRing) takeRx(idx nr.SymbolIndex) (*RxRequest, sim.VTimeInNs) {
	req := r.rx[idx]
	due := r.rxDue[idx]

	r.rx[idx] = nil
	r.rxDue[idx] = sim.TimeNever

	return req, due
}

// addCsi installs a channel-state reception at the given index. Multiple
// configurations can share an index; they are measured from the same slot.
func (r *contextRing) addCsi(
	idx nr.SymbolIndex,
	cfg sigproc.ReferenceSignalConfig,
	due sim.VTimeInNs,
) {
	r.csi[idx] = append(r.csi[idx], cfg)
	r.csiDue[idx] = due
}

// takeCsi consumes all channel-state configurations at the index.
func (r *contextRing) takeCsi(
	idx nr.SymbolIndex,
) ([]sigproc.ReferenceSignalConfig, sim.VTimeInNs) {
	cfgs := r.csi[idx]
	due := r.csiDue[idx]

	r.csi[idx] = nil
	r.csiDue[idx] = sim.TimeNever

	return cfgs, due
}

// minRxDue returns the earliest pending reception due time, or
// sim.TimeNever if nothing is pending.
func (r *contextRing) minRxDue() sim.VTimeInNs {
	earliest := sim.TimeNever
	for _, d := range r.rxDue {
		if d < earliest {
			earliest = d
		}
	}
	return earliest
}

// minCsiDue returns the earliest pending channel-state due time, or
// sim.TimeNever if nothing is pending.
func (r *contextRing) minCsiDue() sim.VTimeInNs {
	earliest := sim.TimeNever
	for _, d := range r.csiDue {
		if d < earliest {
			earliest = d
		}
	}
	return earliest
}
