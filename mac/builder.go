package mac

import (
	"log"

	"golang.org/x/exp/rand"

	"github.com/sarchlab/ransim/nr"
	"github.com/sarchlab/ransim/phy"
	"github.com/sarchlab/ransim/rf"
	"github.com/sarchlab/ransim/sigproc"
	"github.com/sarchlab/ransim/sim"
)

// Builder builds schedulers.
type Builder struct {
	engine     sim.Engine
	medium     *rf.Medium
	num        nr.Numerology
	rvSequence []uint8

	alloc     sigproc.Allocation
	tbsBytes  int
	csiPeriod int
	numSlots  int
	csiConfig sigproc.ReferenceSignalConfig
	seed      uint64
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		num: nr.MustNewNumerology(nr.Scs30, 0),
		alloc: sigproc.Allocation{
			FirstRB: 0, NumRB: 4,
			FirstSymbol: 0, NumSymbols: 4,
		},
		tbsBytes: 8,
		numSlots: 1,
		csiConfig: sigproc.ReferenceSignalConfig{
			Kind:    sigproc.CSIRS,
			FirstRB: 0, NumRB: 4,
			FirstSymbol: 13, NumSymbols: 1,
			SequenceID: 1,
		},
		seed: 1,
	}
}

// WithEngine sets the event engine.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithMedium sets the medium that drives the endpoints.
func (b Builder) WithMedium(m *rf.Medium) Builder {
	b.medium = m
	return b
}

// WithNumerology sets the frame timing tables.
func (b Builder) WithNumerology(num nr.Numerology) Builder {
	b.num = num
	return b
}

// WithRvSequence sets the redundancy version sequence of the downlink. Nil
// selects phy.DefaultRvSequence.
func (b Builder) WithRvSequence(seq []uint8) Builder {
	b.rvSequence = seq
	return b
}

// WithAllocation sets the data allocation used every slot.
func (b Builder) WithAllocation(a sigproc.Allocation) Builder {
	b.alloc = a
	return b
}

// WithTbsBytes sets the transport block size.
func (b Builder) WithTbsBytes(n int) Builder {
	b.tbsBytes = n
	return b
}

// WithCsiPeriod sets the channel-state measurement period in slots. Zero
// disables measurements.
func (b Builder) WithCsiPeriod(slots int) Builder {
	b.csiPeriod = slots
	return b
}

// WithNumSlots sets how many slots the scheduler drives before stopping.
func (b Builder) WithNumSlots(n int) Builder {
	b.numSlots = n
	return b
}

// WithCsiConfig sets the reference signal configuration used for
// channel-state measurements.
func (b Builder) WithCsiConfig(cfg sigproc.ReferenceSignalConfig) Builder {
	b.csiConfig = cfg
	return b
}

// WithSeed seeds the payload generator.
func (b Builder) WithSeed(seed uint64) Builder {
	b.seed = seed
	return b
}

// Build creates a scheduler with the given name. The endpoints are attached
// afterwards with AttachDownlink, since they need the scheduler as their
// sink at construction time.
func (b Builder) Build(name string) *Scheduler {
	if b.engine == nil {
		log.Panic("a scheduler must have an engine")
	}
	if b.medium == nil {
		log.Panic("a scheduler must have a medium")
	}
	if b.numSlots <= 0 {
		log.Panic("a scheduler must drive at least one slot")
	}
	if b.csiConfig.Kind != sigproc.CSIRS {
		log.Panic("the measurement reference signal must be CSI-RS")
	}

	return &Scheduler{
		name:      name,
		engine:    b.engine,
		medium:    b.medium,
		num:       b.num,
		rv:        phy.NewRVController(b.rvSequence),
		alloc:     b.alloc,
		tbsBytes:  b.tbsBytes,
		csiPeriod: b.csiPeriod,
		numSlots:  b.numSlots,
		csiConfig: b.csiConfig,
		rng:       rand.New(rand.NewSource(b.seed)),
	}
}
