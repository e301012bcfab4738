// Package phy implements the symbol-synchronous scheduling core of a radio
// endpoint. The endpoint keeps per-symbol transmit and receive contexts
// installed by a MAC layer, decides at each invocation what must be
// transmitted and what must be received, and reports the earliest future
// time at which it needs to be invoked again. All waveform math is delegated
// to a sigproc.Processor.
package phy

import (
	"fmt"

	"github.com/sarchlab/ransim/nr"
	"github.com/sarchlab/ransim/sigproc"
)

// A TxRequest stages one data transmission. The MAC installs it exactly at
// the symbol the transmission must start; the transmit path consumes it in
// the same invocation.
type TxRequest struct {
	Alloc          sigproc.Allocation
	Rnti           uint16
	HarqID         uint8
	Rv             uint8
	TargetCodeRate float64
	TbsBytes       int

	// Payload is the transport block to send. Nil means retransmit the
	// block already buffered for HarqID.
	Payload []byte
}

// An RxRequest stages one data reception. The MAC installs it at the first
// symbol of the reception window; the receive path finalizes it at the end
// of the window's last symbol.
type RxRequest struct {
	Alloc          sigproc.Allocation
	Rnti           uint16
	HarqID         uint8
	Rv             uint8
	TargetCodeRate float64
	TbsBytes       int
}

// A DecodedPdu is the indication delivered to the MAC after a data reception
// was processed, whether or not the decode succeeded.
type DecodedPdu struct {
	Payload   []byte
	CrcFailed bool

	Rnti     uint16
	TbsBytes int
	HarqID   uint8
}

// A PduSink receives decoded PDU indications. It is injected at
// construction; the endpoint never holds late-bound callbacks.
type PduSink interface {
	DecodedPdu(pdu DecodedPdu)
}

// A ChannelQualitySink receives channel-state reports.
type ChannelQualitySink interface {
	ChannelQuality(report sigproc.ChannelReport)
}

// NopPduSink discards PDU indications. It is the default sink of endpoints
// that never receive data.
type NopPduSink struct{}

// DecodedPdu implements PduSink.
func (NopPduSink) DecodedPdu(DecodedPdu) {}

// NopChannelQualitySink discards channel-state reports.
type NopChannelQualitySink struct{}

// ChannelQuality implements ChannelQualitySink.
func (NopChannelQualitySink) ChannelQuality(sigproc.ChannelReport) {}

// A SchedulingConflictError reports that the MAC installed a reception
// context at a ring position that still holds an unconsumed context. It
// marks a MAC/PHY timing contract violation: the earlier reception would be
// lost, so the conflict is surfaced instead of silently absorbed.
type SchedulingConflictError struct {
	Index  nr.SymbolIndex
	HarqID uint8
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf(
		"rx ring slot %d still holds an unconsumed context for HARQ process %d",
		e.Index, e.HarqID)
}
