// Package rf models the air interface between radio endpoints: the waveform
// packets they exchange, the reception sample buffer, thermal noise, and the
// propagation medium that drives endpoints as discrete events.
package rf

import (
	"math"

	"github.com/sarchlab/ransim/sim"
)

// A Position is a location in space, in meters.
type Position struct {
	X, Y, Z float64
}

// DistanceTo returns the distance to another position, in meters.
func (p Position) DistanceTo(q Position) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// A Packet is one transmitted waveform burst on the air.
type Packet struct {
	ID     string
	Source string
	CellID uint16

	// Position of the transmitter at emission time.
	Position Position

	CarrierFreq sim.Freq
	SampleRate  sim.Freq

	// StartTime is the time of the first sample at the transmitter.
	StartTime sim.VTimeInNs

	Samples []complex128
}

// Duration returns the on-air duration of the packet.
func (p *Packet) Duration() sim.VTimeInNs {
	if p.SampleRate == 0 {
		return 0
	}
	return sim.VTimeInNs(math.Round(
		float64(len(p.Samples)) / float64(p.SampleRate) * 1e9))
}

// An Emitter accepts outbound packets. The propagation medium implements it;
// endpoints hold it as their outbound packet sink.
type Emitter interface {
	EmitPacket(p *Packet)
}

// A Node is a radio endpoint that the medium can drive. Run processes one
// invocation at the given time with the inbound packets delivered since the
// previous invocation, and returns the time of the next invocation the node
// needs, or sim.TimeNever if it has no pending work.
type Node interface {
	sim.Named

	Run(now sim.VTimeInNs, inbound []*Packet) sim.VTimeInNs
	Position() Position
}
