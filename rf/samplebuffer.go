package rf

import (
	"math"

	"github.com/sarchlab/ransim/sim"
)

type segment struct {
	start   sim.VTimeInNs
	rate    sim.Freq
	samples []complex128
}

func (s *segment) end() sim.VTimeInNs {
	return s.start + sim.VTimeInNs(math.Round(
		float64(len(s.samples))/float64(s.rate)*1e9))
}

// A SampleBuffer is the reception waveform buffer of one endpoint. The
// medium appends arriving packets; the receive path pulls sample windows
// back out. Samples that were never received, or that already fell out of
// the bounded history, read as zero.
type SampleBuffer struct {
	capacity int
	segments []segment
}

// NewSampleBuffer creates a buffer that retains at most capacity received
// packets.
func NewSampleBuffer(capacity int) *SampleBuffer {
	return &SampleBuffer{capacity: capacity}
}

// Append stores the samples of a packet that arrived at the given time.
func (b *SampleBuffer) Append(p *Packet, arrival sim.VTimeInNs) {
	b.segments = append(b.segments, segment{
		start:   arrival,
		rate:    p.SampleRate,
		samples: p.Samples,
	})

	if len(b.segments) > b.capacity {
		b.segments = b.segments[len(b.segments)-b.capacity:]
	}
}

// Window assembles the samples covering [start, start+duration) at the given
// sample rate. Every overlapping stored segment is overlaid into the window;
// uncovered sample positions stay zero.
func (b *SampleBuffer) Window(
	start sim.VTimeInNs,
	duration sim.VTimeInNs,
	rate sim.Freq,
) []complex128 {
	n := rate.CyclesIn(duration)
	out := make([]complex128, n)
	end := start + duration

	for i := range b.segments {
		seg := &b.segments[i]
		if seg.end() <= start || seg.start >= end {
			continue
		}

		// The segment may begin before the window; the offset can be
		// negative.
		offset := int(math.Round(
			(seg.start - start).Seconds() * float64(rate)))
		for k, s := range seg.samples {
			pos := offset + k
			if pos < 0 {
				continue
			}
			if pos >= n {
				break
			}
			out[pos] += s
		}
	}

	return out
}

// Len returns the number of retained segments.
func (b *SampleBuffer) Len() int {
	return len(b.segments)
}
