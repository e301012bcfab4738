package sigproc

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"math/cmplx"

	"github.com/sarchlab/ransim/nr"
	"github.com/sarchlab/ransim/sim"
)

const syncMarkerAmplitude = 3.0

// Baseline is a minimal Processor. It maps transport-block bits onto the
// grid's data span as BPSK samples behind a sync marker, frames them with a
// CRC32, and chase-combines retransmissions in per-HARQ soft buffers. It is
// not a real modem; it exists so that a complete transmit-receive-decode
// loop can run end to end.
type Baseline struct {
	num  nr.Numerology
	rate sim.Freq

	samplesPerSlot int
	symbolSamples  []int

	txBlocks map[uint8][]byte
	soft     map[uint8][]float64
}

// NewBaseline creates a Baseline processor operating at the given sample
// rate.
func NewBaseline(num nr.Numerology, rate sim.Freq) *Baseline {
	b := &Baseline{
		num:      num,
		rate:     rate,
		txBlocks: make(map[uint8][]byte),
		soft:     make(map[uint8][]float64),
	}

	b.samplesPerSlot = rate.CyclesIn(num.SlotDuration())
	b.symbolSamples = make([]int, num.SymbolsPerSlot()+1)
	for s := 0; s <= num.SymbolsPerSlot(); s++ {
		b.symbolSamples[s] = rate.CyclesIn(
			num.SpanDuration(nr.SymbolIndex(0), s))
	}

	return b
}

// SampleRate returns the processor's sample rate.
func (b *Baseline) SampleRate() sim.Freq {
	return b.rate
}

// Modulate implements Processor.
func (b *Baseline) Modulate(grid *ResourceGrid) ([]complex128, error) {
	out := make([]complex128, b.samplesPerSlot)

	if grid.Reference != nil {
		b.placeReference(out, *grid.Reference)
	}

	if grid.Data != nil {
		if err := b.placeData(out, *grid.Data); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (b *Baseline) placeReference(out []complex128, c ReferenceSignalConfig) {
	start := b.symbolSamples[c.FirstSymbol]
	end := b.symbolSamples[c.LastSymbol()+1]

	for i := start; i < end; i++ {
		out[i] += complex(pnChip(c.SequenceID, i-start), 0)
	}
}

func (b *Baseline) placeData(out []complex128, d DataPlacement) error {
	payload := d.Payload
	if payload == nil {
		buffered, ok := b.txBlocks[d.HarqID]
		if !ok {
			return fmt.Errorf(
				"no buffered transport block for HARQ process %d", d.HarqID)
		}
		payload = buffered
	} else {
		block := make([]byte, len(payload))
		copy(block, payload)
		b.txBlocks[d.HarqID] = block
	}

	frame := make([]byte, len(payload)+4)
	copy(frame, payload)
	binary.LittleEndian.PutUint32(
		frame[len(payload):], crc32.ChecksumIEEE(payload))

	start := b.symbolSamples[d.Alloc.FirstSymbol]
	end := b.symbolSamples[d.Alloc.LastSymbol()+1]

	numBits := len(frame) * 8
	if start+1+numBits > end {
		return fmt.Errorf(
			"allocation of %d symbols cannot carry %d bits",
			d.Alloc.NumSymbols, numBits)
	}

	out[start] = complex(syncMarkerAmplitude, 0)
	for k := 0; k < numBits; k++ {
		bit := (frame[k/8] >> (k % 8)) & 1
		v := -1.0
		if bit == 1 {
			v = 1.0
		}
		out[start+1+k] = complex(v, 0)
	}

	return nil
}

// Decode implements Processor.
func (b *Baseline) Decode(job DecodeJob, samples []complex128) DecodeResult {
	numBits := (job.TbsBytes + 4) * 8

	start := findSyncMarker(samples)
	if start < 0 || start+1+numBits > len(samples) {
		return DecodeResult{CrcFailed: true}
	}

	acc, ok := b.soft[job.HarqID]
	if !ok || len(acc) != numBits {
		acc = make([]float64, numBits)
	}
	for k := 0; k < numBits; k++ {
		acc[k] += real(samples[start+1+k])
	}
	b.soft[job.HarqID] = acc

	frame := make([]byte, job.TbsBytes+4)
	for k := 0; k < numBits; k++ {
		if acc[k] > 0 {
			frame[k/8] |= 1 << (k % 8)
		}
	}

	payload := frame[:job.TbsBytes]
	wantCrc := binary.LittleEndian.Uint32(frame[job.TbsBytes:])
	if crc32.ChecksumIEEE(payload) != wantCrc {
		return DecodeResult{Payload: payload, CrcFailed: true}
	}

	// The block is delivered; the next block on this process starts a fresh
	// combination.
	delete(b.soft, job.HarqID)

	return DecodeResult{Payload: payload}
}

// MeasureChannel implements Processor.
func (b *Baseline) MeasureChannel(
	job CsiJob,
	samples []complex128,
) ChannelReport {
	inRegion := make([]bool, len(samples))
	for _, c := range job.Configs {
		start := b.symbolSamples[c.FirstSymbol]
		end := b.symbolSamples[c.LastSymbol()+1]
		for i := start; i < end && i < len(samples); i++ {
			inRegion[i] = true
		}
	}

	var sigPower, noisePower float64
	var sigCount, noiseCount int
	for i, s := range samples {
		p := math.Pow(cmplx.Abs(s), 2)
		if inRegion[i] {
			sigPower += p
			sigCount++
		} else {
			noisePower += p
			noiseCount++
		}
	}

	if sigCount > 0 {
		sigPower /= float64(sigCount)
	}
	if noiseCount > 0 {
		noisePower /= float64(noiseCount)
	}

	cqi := quantizeCqi(sigPower, noisePower)

	report := ChannelReport{
		Rank:  1,
		Pmi:   0,
		RBCqi: make([]uint8, job.NumRB),
	}
	for i := range report.RBCqi {
		report.RBCqi[i] = cqi
	}

	return report
}

// ResetSoftBuffer implements Processor.
func (b *Baseline) ResetSoftBuffer(harqID uint8) {
	delete(b.soft, harqID)
}

func findSyncMarker(samples []complex128) int {
	peak := 0.0
	for _, s := range samples {
		if a := cmplx.Abs(s); a > peak {
			peak = a
		}
	}

	if peak == 0 {
		return -1
	}

	threshold := 0.7 * peak
	for i, s := range samples {
		if cmplx.Abs(s) >= threshold {
			return i
		}
	}

	return -1
}

func quantizeCqi(sigPower, noisePower float64) uint8 {
	if sigPower == 0 {
		return 0
	}

	snr := sigPower / math.Max(noisePower, 1e-12)
	cqi := int(math.Round(2 * math.Log2(1+snr)))

	if cqi < 1 {
		cqi = 1
	}
	if cqi > 15 {
		cqi = 15
	}

	return uint8(cqi)
}

// pnChip returns the i-th chip (+1 or -1) of the pseudo-noise sequence with
// the given ID.
func pnChip(seqID uint16, i int) float64 {
	x := uint64(seqID)*2862933555777941757 + uint64(i)*3037000493 + 1
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33

	if x&1 == 1 {
		return 1.0
	}
	return -1.0
}
