// Package sigproc defines the narrow interface of the signal processing
// engine that a radio endpoint delegates waveform work to, together with a
// baseline implementation that is good enough to close a loopback link.
//
// The endpoint core never does modulation or decoding math itself; it builds
// a resource grid, hands it over, and later hands back a received sample
// window. Everything in between is behind the Processor interface.
package sigproc

// An Allocation describes the resource-block and symbol footprint of a data
// channel within one slot.
type Allocation struct {
	FirstRB int
	NumRB   int

	// Slot-relative symbol span.
	FirstSymbol int
	NumSymbols  int
}

// LastSymbol returns the slot-relative number of the allocation's last
// symbol.
func (a Allocation) LastSymbol() int {
	return a.FirstSymbol + a.NumSymbols - 1
}

// ReferenceSignalKind distinguishes the reference signal families the
// endpoint schedules.
type ReferenceSignalKind int

// The supported reference signal kinds.
const (
	// SRS is an uplink sounding reference signal.
	SRS ReferenceSignalKind = iota
	// CSIRS is a downlink channel-state information reference signal.
	CSIRS
)

// A ReferenceSignalConfig describes one reference signal placement.
type ReferenceSignalConfig struct {
	Kind        ReferenceSignalKind
	FirstRB     int
	NumRB       int
	FirstSymbol int
	NumSymbols  int
	SequenceID  uint16
}

// LastSymbol returns the slot-relative number of the signal's last symbol.
func (c ReferenceSignalConfig) LastSymbol() int {
	return c.FirstSymbol + c.NumSymbols - 1
}

// A DataPlacement carries the coding parameters of a data channel placed on
// a resource grid.
type DataPlacement struct {
	Alloc          Allocation
	Rnti           uint16
	HarqID         uint8
	Rv             uint8
	TargetCodeRate float64
	TbsBytes       int

	// Payload is the transport block to encode. A nil payload means the
	// processor must re-encode the block buffered for HarqID.
	Payload []byte
}

// A DecodeJob describes one data reception handed to the processor.
type DecodeJob struct {
	Alloc          Allocation
	Rnti           uint16
	HarqID         uint8
	Rv             uint8
	TargetCodeRate float64
	TbsBytes       int
}

// A DecodeResult reports the outcome of one decode attempt. A CRC failure is
// not an error; retransmission handling is the caller's business.
type DecodeResult struct {
	Payload   []byte
	CrcFailed bool
}

// A CsiJob describes one channel-state measurement over a full slot.
type CsiJob struct {
	Configs []ReferenceSignalConfig
	NumRB   int
}

// A ChannelReport is the outcome of a channel-state measurement.
type ChannelReport struct {
	Rank int
	Pmi  int

	// RBCqi holds one CQI value per resource block.
	RBCqi []uint8
}

// Processor is the signal processing engine collaborator. Implementations
// own all modulation, coding, and estimation math, and the soft-decision
// buffers of the HARQ processes.
type Processor interface {
	// Modulate turns a populated resource grid into one slot of waveform
	// samples at the processor's sample rate.
	Modulate(grid *ResourceGrid) ([]complex128, error)

	// Decode demodulates and decodes a data reception from the given sample
	// window. The window starts at the allocation's first symbol.
	Decode(job DecodeJob, samples []complex128) DecodeResult

	// MeasureChannel derives a channel-state report from a full-slot sample
	// window.
	MeasureChannel(job CsiJob, samples []complex128) ChannelReport

	// ResetSoftBuffer discards the soft-decision accumulation of one HARQ
	// process, so the next retransmission starts a fresh combination.
	ResetSoftBuffer(harqID uint8)
}
