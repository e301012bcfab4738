package recording

import (
	"github.com/sarchlab/ransim/phy"
	"github.com/sarchlab/ransim/rf"
	"github.com/sarchlab/ransim/sim"
)

// A PacketRow records one packet emission or delivery.
type PacketRow struct {
	TimeNs     int64
	Pos        string
	PacketID   string
	Source     string
	Dest       string
	CellID     uint16
	NumSamples int
	DurationNs int64
}

// A PacketHook records the packet traffic of a medium. Attach it to the
// medium with AcceptHook.
type PacketHook struct {
	rec DataRecorder
	tt  sim.TimeTeller
}

// NewPacketHook creates a PacketHook and its table.
func NewPacketHook(rec DataRecorder, tt sim.TimeTeller) *PacketHook {
	rec.CreateTable("packets", PacketRow{})
	return &PacketHook{rec: rec, tt: tt}
}

// Func implements sim.Hook.
func (h *PacketHook) Func(ctx sim.HookCtx) {
	var pos, dest string

	switch ctx.Pos {
	case rf.HookPosPacketEmit:
		pos = "emit"
	case rf.HookPosPacketDeliver:
		pos = "deliver"
		dest, _ = ctx.Detail.(string)
	default:
		return
	}

	pkt := ctx.Item.(*rf.Packet)

	h.rec.InsertData("packets", PacketRow{
		TimeNs:     int64(h.tt.CurrentTime()),
		Pos:        pos,
		PacketID:   pkt.ID,
		Source:     pkt.Source,
		Dest:       dest,
		CellID:     pkt.CellID,
		NumSamples: len(pkt.Samples),
		DurationNs: int64(pkt.Duration()),
	})
}

// A PduRow records one decoded PDU indication.
type PduRow struct {
	TimeNs    int64
	Endpoint  string
	Rnti      uint16
	HarqID    uint8
	TbsBytes  int
	CrcFailed bool
}

// A PduHook records the decode outcomes of an endpoint. Attach it to the
// endpoint with AcceptHook.
type PduHook struct {
	rec DataRecorder
	tt  sim.TimeTeller
}

// NewPduHook creates a PduHook and its table.
func NewPduHook(rec DataRecorder, tt sim.TimeTeller) *PduHook {
	rec.CreateTable("pdus", PduRow{})
	return &PduHook{rec: rec, tt: tt}
}

// Func implements sim.Hook.
func (h *PduHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != phy.HookPosPduDelivered {
		return
	}

	pdu := ctx.Item.(phy.DecodedPdu)

	endpoint := ""
	if named, ok := ctx.Domain.(sim.Named); ok {
		endpoint = named.Name()
	}

	h.rec.InsertData("pdus", PduRow{
		TimeNs:    int64(h.tt.CurrentTime()),
		Endpoint:  endpoint,
		Rnti:      pdu.Rnti,
		HarqID:    pdu.HarqID,
		TbsBytes:  pdu.TbsBytes,
		CrcFailed: pdu.CrcFailed,
	})
}
