package phy

import (
	"log"

	"github.com/sarchlab/ransim/nr"
	"github.com/sarchlab/ransim/rf"
	"github.com/sarchlab/ransim/sigproc"
	"github.com/sarchlab/ransim/sim"
)

// Builder builds radio endpoints.
type Builder struct {
	num             nr.Numerology
	numRB           int
	numAntennas     int
	cellID          uint16
	position        rf.Position
	carrierFreq     sim.Freq
	sampleRate      sim.Freq
	txScale         float64
	rxGain          float64
	maxChannelDelay sim.VTimeInNs
	noiseFigureDB   float64
	noiseTempK      float64
	noiseSeed       uint64
	rvSequence      []uint8
	bufferCapacity  int

	proc       sigproc.Processor
	packetSink rf.Emitter
	pduSink    PduSink
	cqiSink    ChannelQualitySink
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		num:             nr.MustNewNumerology(nr.Scs30, 0),
		numRB:           24,
		numAntennas:     1,
		txScale:         1.0,
		rxGain:          1.0,
		maxChannelDelay: 2 * sim.Microsecond,
		noiseFigureDB:   7.0,
		noiseTempK:      290,
		bufferCapacity:  64,
		pduSink:         NopPduSink{},
		cqiSink:         NopChannelQualitySink{},
	}
}

// WithNumerology sets the frame timing tables of the endpoint.
func (b Builder) WithNumerology(num nr.Numerology) Builder {
	b.num = num
	return b
}

// WithNumRB sets the carrier bandwidth in resource blocks.
func (b Builder) WithNumRB(n int) Builder {
	b.numRB = n
	return b
}

// WithNumAntennas sets the antenna count.
func (b Builder) WithNumAntennas(n int) Builder {
	b.numAntennas = n
	return b
}

// WithCellID sets the cell identifier stamped on emitted packets.
func (b Builder) WithCellID(id uint16) Builder {
	b.cellID = id
	return b
}

// WithPosition sets the endpoint's location.
func (b Builder) WithPosition(p rf.Position) Builder {
	b.position = p
	return b
}

// WithCarrierFreq sets the carrier frequency.
func (b Builder) WithCarrierFreq(f sim.Freq) Builder {
	b.carrierFreq = f
	return b
}

// WithSampleRate sets the baseband sample rate.
func (b Builder) WithSampleRate(f sim.Freq) Builder {
	b.sampleRate = f
	return b
}

// WithTxScale sets the linear amplitude applied to transmitted waveforms.
func (b Builder) WithTxScale(s float64) Builder {
	b.txScale = s
	return b
}

// WithRxGain sets the linear receive antenna gain.
func (b Builder) WithRxGain(g float64) Builder {
	b.rxGain = g
	return b
}

// WithMaxChannelDelay sets the extra margin appended to every reception
// window to cover propagation and channel dispersion.
func (b Builder) WithMaxChannelDelay(d sim.VTimeInNs) Builder {
	b.maxChannelDelay = d
	return b
}

// WithNoiseFigureDB sets the receiver noise figure. A negative value
// disables thermal noise entirely.
func (b Builder) WithNoiseFigureDB(nf float64) Builder {
	b.noiseFigureDB = nf
	return b
}

// WithNoiseTemperatureK sets the receiver noise temperature in Kelvin.
func (b Builder) WithNoiseTemperatureK(t float64) Builder {
	b.noiseTempK = t
	return b
}

// WithNoiseSeed seeds the thermal noise source.
func (b Builder) WithNoiseSeed(seed uint64) Builder {
	b.noiseSeed = seed
	return b
}

// WithRvSequence sets the redundancy version sequence of the receive
// direction. Nil selects DefaultRvSequence.
func (b Builder) WithRvSequence(seq []uint8) Builder {
	b.rvSequence = seq
	return b
}

// WithBufferCapacity sets the number of inbound packets the reception
// buffer retains.
func (b Builder) WithBufferCapacity(n int) Builder {
	b.bufferCapacity = n
	return b
}

// WithProcessor sets the signal processor.
func (b Builder) WithProcessor(p sigproc.Processor) Builder {
	b.proc = p
	return b
}

// WithPacketSink sets the destination of emitted packets, usually the
// shared medium.
func (b Builder) WithPacketSink(e rf.Emitter) Builder {
	b.packetSink = e
	return b
}

// WithPduSink sets the receiver of decoded PDU indications.
func (b Builder) WithPduSink(s PduSink) Builder {
	b.pduSink = s
	return b
}

// WithChannelQualitySink sets the receiver of channel-state reports.
func (b Builder) WithChannelQualitySink(s ChannelQualitySink) Builder {
	b.cqiSink = s
	return b
}

// Build creates a radio endpoint with the given name.
func (b Builder) Build(name string) *Comp {
	if b.proc == nil {
		log.Panic("an endpoint must have a signal processor")
	}
	if b.packetSink == nil {
		log.Panic("an endpoint must have a packet sink")
	}
	if b.sampleRate == 0 {
		log.Panic("an endpoint must have a sample rate")
	}
	if b.numRB <= 0 {
		log.Panic("an endpoint must have at least 1 resource block")
	}

	var noise *rf.NoiseSource
	if b.noiseFigureDB >= 0 {
		noise = rf.NewNoiseSource(
			b.noiseTempK, b.noiseFigureDB, b.sampleRate, b.noiseSeed)
	} else {
		noise = rf.NewSilentNoiseSource()
	}

	c := &Comp{
		name:            name,
		num:             b.num,
		clock:           nr.NewFrameClock(b.num),
		numRB:           b.numRB,
		numAntennas:     b.numAntennas,
		cellID:          b.cellID,
		position:        b.position,
		carrierFreq:     b.carrierFreq,
		sampleRate:      b.sampleRate,
		txScale:         b.txScale,
		rxGain:          b.rxGain,
		maxChannelDelay: b.maxChannelDelay,
		proc:            b.proc,
		packetSink:      b.packetSink,
		pduSink:         b.pduSink,
		cqiSink:         b.cqiSink,
		rxBuf:           rf.NewSampleBuffer(b.bufferCapacity),
		noise:           noise,
		rv:              NewRVController(b.rvSequence),
		ring:            newContextRing(b.num),
		nextCsiAt:       sim.TimeNever,
	}

	return c
}
