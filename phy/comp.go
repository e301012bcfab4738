package phy

import (
	"fmt"
	"log"

	"github.com/sarchlab/ransim/nr"
	"github.com/sarchlab/ransim/rf"
	"github.com/sarchlab/ransim/sigproc"
	"github.com/sarchlab/ransim/sim"
)

// HookPosPacketTx marks when the endpoint emits an outbound packet.
var HookPosPacketTx = &sim.HookPos{Name: "Endpoint Packet Tx"}

// HookPosPduDelivered marks when the endpoint delivers a decoded PDU
// indication.
var HookPosPduDelivered = &sim.HookPos{Name: "Endpoint PDU Delivered"}

// A Comp is one radio endpoint. It owns a frame clock, one pending transmit
// context pair, the reception context ring with its due-time table, and the
// redundancy-version bookkeeping of its receive direction.
//
// All methods must be called from a single goroutine; the endpoint is built
// for a cooperatively scheduled discrete-event driver and performs no
// locking of its own.
type Comp struct {
	sim.HookableBase

	name  string
	num   nr.Numerology
	clock *nr.FrameClock

	numRB           int
	numAntennas     int
	cellID          uint16
	position        rf.Position
	carrierFreq     sim.Freq
	sampleRate      sim.Freq
	txScale         float64
	rxGain          float64
	maxChannelDelay sim.VTimeInNs

	proc       sigproc.Processor
	packetSink rf.Emitter
	pduSink    PduSink
	cqiSink    ChannelQualitySink

	rxBuf *rf.SampleBuffer
	noise *rf.NoiseSource
	rv    *RVController

	txReq *TxRequest
	rsReq *sigproc.ReferenceSignalConfig

	ring      *contextRing
	nextCsiAt sim.VTimeInNs
}

// Name returns the name of the endpoint.
func (c *Comp) Name() string {
	return c.name
}

// Position returns the endpoint's location.
func (c *Comp) Position() rf.Position {
	return c.position
}

// Numerology returns the endpoint's frame timing tables.
func (c *Comp) Numerology() nr.Numerology {
	return c.num
}

// RVController returns the redundancy-version controller of the endpoint's
// receive direction.
func (c *Comp) RVController() *RVController {
	return c.rv
}

// InstallTxRequest stages a data transmission for the current symbol. At
// most one data transmission can be pending at a time.
func (c *Comp) InstallTxRequest(req TxRequest) error {
	if c.txReq != nil {
		return fmt.Errorf(
			"a data transmission for HARQ process %d is already pending",
			c.txReq.HarqID)
	}

	c.txReq = &req

	return nil
}

// InstallReferenceSignalTx stages a reference-signal transmission for the
// current symbol, independent of any pending data transmission.
func (c *Comp) InstallReferenceSignalTx(
	cfg sigproc.ReferenceSignalConfig,
) error {
	if c.rsReq != nil {
		return fmt.Errorf("a reference signal transmission is already pending")
	}

	c.rsReq = &cfg

	return nil
}

// InstallUplinkControl stages an uplink control transmission. Sounding
// reference signals share the transmit slot lifecycle of data requests.
func (c *Comp) InstallUplinkControl(
	cfg sigproc.ReferenceSignalConfig,
) error {
	if cfg.Kind != sigproc.SRS {
		return fmt.Errorf("unsupported uplink control kind %d", cfg.Kind)
	}

	return c.InstallReferenceSignalTx(cfg)
}

// InstallDownlinkControl records a channel-state reception. The measurement
// needs a complete slot, so it is keyed one full slot after the triggering
// request: at the ring index where the following slot begins.
func (c *Comp) InstallDownlinkControl(
	cfg sigproc.ReferenceSignalConfig,
	timing nr.Timing,
) error {
	if cfg.Kind != sigproc.CSIRS {
		return fmt.Errorf("unsupported downlink control kind %d", cfg.Kind)
	}

	key := c.num.NextSlotStart(timing.Index(c.num))

	frame := timing.Frame
	nextSlot := timing.Slot + 1
	if nextSlot == c.num.SlotsPerFrame() {
		nextSlot = 0
		frame++
	}

	keyTiming := nr.Timing{Frame: frame, Slot: nextSlot, Symbol: 0}
	due := keyTiming.StartTime(c.num) + c.num.SymbolDuration(key)

	c.ring.addCsi(key, cfg, due)
	c.nextCsiAt = sim.MinTime(c.nextCsiAt, due)

	return nil
}

// InstallRxRequest stages a data reception. The ring index is the
// frame-relative symbol at which the reception's last symbol ends; the due
// time is the end of that symbol. Installing over an unconsumed context is a
// SchedulingConflictError.
func (c *Comp) InstallRxRequest(req RxRequest, timing nr.Timing) error {
	last := req.Alloc.LastSymbol()
	if last >= c.num.SymbolsPerSlot() {
		return fmt.Errorf("rx allocation of %d symbols exceeds the slot",
			req.Alloc.NumSymbols)
	}

	key := c.num.IndexOf(timing.Slot, last)

	lastTiming := nr.Timing{
		Frame:  timing.Frame,
		Slot:   timing.Slot,
		Symbol: last,
	}
	due := lastTiming.StartTime(c.num) + c.num.SymbolDuration(key)

	return c.ring.putRx(key, &req, due)
}

// Run is the single driving entry point. It advances the frame clock,
// transmits what is due now, absorbs the inbound packets into the reception
// buffer, finalizes any reception due at the symbol that just completed,
// and returns the time of the next invocation the endpoint needs, or
// sim.TimeNever if no work is pending.
func (c *Comp) Run(
	now sim.VTimeInNs,
	inbound []*rf.Packet,
) sim.VTimeInNs {
	c.clock.Advance(now)

	c.runTx(now)

	for _, p := range inbound {
		c.rxBuf.Append(p, now)
	}

	c.runRx()

	return c.nextInvokeTime()
}

func (c *Comp) runTx(now sim.VTimeInNs) {
	if c.txReq == nil && c.rsReq == nil {
		return
	}

	grid := sigproc.NewResourceGrid(
		c.numRB, c.num.SymbolsPerSlot(), c.numAntennas)

	if c.rsReq != nil {
		grid.PlaceReferenceSignal(*c.rsReq)
	}

	if c.txReq != nil {
		req := c.txReq
		grid.PlaceData(sigproc.DataPlacement{
			Alloc:          req.Alloc,
			Rnti:           req.Rnti,
			HarqID:         req.HarqID,
			Rv:             req.Rv,
			TargetCodeRate: req.TargetCodeRate,
			TbsBytes:       req.TbsBytes,
			Payload:        req.Payload,
		})
	}

	slotSamples, err := c.proc.Modulate(grid)
	if err != nil {
		log.Panicf("%s: cannot modulate: %v", c.name, err)
	}

	// Trim the slot waveform to exactly the symbol span being transmitted.
	start := c.sampleRate.CyclesIn(
		c.num.SpanDuration(nr.SymbolIndex(0), grid.SpanStart()))
	end := c.sampleRate.CyclesIn(
		c.num.SpanDuration(nr.SymbolIndex(0), grid.SpanEnd()))

	samples := make([]complex128, end-start)
	for i := range samples {
		samples[i] = slotSamples[start+i] * complex(c.txScale, 0)
	}

	pkt := &rf.Packet{
		ID:          sim.GetIDGenerator().Generate(),
		Source:      c.name,
		CellID:      c.cellID,
		Position:    c.position,
		CarrierFreq: c.carrierFreq,
		SampleRate:  c.sampleRate,
		StartTime:   now,
		Samples:     samples,
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosPacketTx,
		Item:   pkt,
	})

	c.packetSink.EmitPacket(pkt)

	// At most one emission per due context.
	c.txReq = nil
	c.rsReq = nil
}

func (c *Comp) runRx() {
	prev := c.clock.PrevIndex()

	// The common case is that nothing is due at the just-completed symbol.
	rxReq, _ := c.ring.peekRx(prev)
	csiPending := c.ring.csi[prev] != nil
	if rxReq == nil && !csiPending {
		return
	}

	if rxReq != nil {
		c.finalizeRx(prev)
	}

	if csiPending {
		c.finalizeCsi(prev)
	}
}

func (c *Comp) finalizeRx(idx nr.SymbolIndex) {
	req, due := c.ring.takeRx(idx)

	startIdx := c.num.AddSymbols(idx, -(req.Alloc.NumSymbols - 1))
	spanDur := c.num.SpanDuration(startIdx, req.Alloc.NumSymbols)

	samples := c.pullWindow(due-spanDur, spanDur+c.maxChannelDelay)

	result := c.proc.Decode(sigproc.DecodeJob{
		Alloc:          req.Alloc,
		Rnti:           req.Rnti,
		HarqID:         req.HarqID,
		Rv:             req.Rv,
		TargetCodeRate: req.TargetCodeRate,
		TbsBytes:       req.TbsBytes,
	}, samples)

	if result.CrcFailed && c.rv.IsLast(req.Rv) {
		// The sequence is exhausted; further retransmissions start a fresh
		// combination.
		c.proc.ResetSoftBuffer(req.HarqID)
	}

	pdu := DecodedPdu{
		Payload:   result.Payload,
		CrcFailed: result.CrcFailed,
		Rnti:      req.Rnti,
		TbsBytes:  req.TbsBytes,
		HarqID:    req.HarqID,
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosPduDelivered,
		Item:   pdu,
	})

	c.pduSink.DecodedPdu(pdu)
}

func (c *Comp) finalizeCsi(idx nr.SymbolIndex) {
	cfgs, due := c.ring.takeCsi(idx)

	// The measured slot is the full slot that ended right before the key
	// symbol.
	slotDur := c.num.SlotDuration()
	windowStart := due - c.num.SymbolDuration(idx) - slotDur

	samples := c.pullWindow(windowStart, slotDur+c.maxChannelDelay)

	report := c.proc.MeasureChannel(sigproc.CsiJob{
		Configs: cfgs,
		NumRB:   c.numRB,
	}, samples)

	c.cqiSink.ChannelQuality(report)

	if due == c.nextCsiAt {
		c.nextCsiAt = c.ring.minCsiDue()
	}
}

// pullWindow retrieves a reception window, applies the receive antenna gain,
// and adds thermal noise. A window the buffer cannot cover comes back
// zero-filled rather than aborting the slot.
func (c *Comp) pullWindow(
	start sim.VTimeInNs,
	duration sim.VTimeInNs,
) []complex128 {
	samples := c.rxBuf.Window(start, duration, c.sampleRate)

	if c.rxGain != 1 {
		g := complex(c.rxGain, 0)
		for i := range samples {
			samples[i] *= g
		}
	}

	c.noise.AddTo(samples)

	return samples
}

func (c *Comp) nextInvokeTime() sim.VTimeInNs {
	return sim.MinTime(c.ring.minRxDue(), c.nextCsiAt)
}
