// Package mac provides a slot-synchronous scheduler that drives a downlink
// between two radio endpoints. At each slot boundary it installs a matched
// transmit and receive context pair, walks the redundancy version sequence
// when a block fails its CRC, and periodically triggers channel-state
// measurements.
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

// HookPosBlockDelivered marks a transport block passing its CRC at the
// receiver.
var HookPosBlockDelivered = &sim.HookPos{Name: "Block Delivered"}

// HookPosBlockLost marks a transport block exhausting its redundancy
// version sequence.
var HookPosBlockLost = &sim.HookPos{Name: "Block Lost"}

type slotTickEvent struct {
	*sim.EventBase
}

// Stats aggregates the outcome counters of one scheduler.
type Stats struct {
	BlocksSent      int
	BlocksDelivered int
	BlocksLost      int
	CrcFailures     int
	Retransmissions int
	ChannelReports  int
}

// transmission is the one block currently in flight on the downlink.
type transmission struct {
	payload []byte
	harqID  uint8
	attempt int
}

// A Scheduler drives one downlink slot by slot. It implements phy.PduSink
// and phy.ChannelQualitySink for the receiving endpoint, so decode outcomes
// feed directly into its retransmission decisions.
type Scheduler struct {
	sim.HookableBase

	name   string
	engine sim.Engine
	medium *rf.Medium
	num    nr.Numerology
	rv     *phy.RVController

	alloc     sigproc.Allocation
	tbsBytes  int
	csiPeriod int
	numSlots  int

	csiConfig sigproc.ReferenceSignalConfig

	tx *phy.Comp
	rx *phy.Comp

	rng       *rand.Rand
	slot      int
	harqID    uint8
	inFlight  *transmission
	stats     Stats
	lastCqi   sigproc.ChannelReport
	hasReport bool
}

// Name returns the name of the scheduler.
func (s *Scheduler) Name() string {
	return s.name
}

// Stats returns the outcome counters accumulated so far.
func (s *Scheduler) Stats() Stats {
	return s.stats
}

// LastChannelReport returns the most recent channel-state report and
// whether one was received at all.
func (s *Scheduler) LastChannelReport() (sigproc.ChannelReport, bool) {
	return s.lastCqi, s.hasReport
}

// AttachDownlink connects the transmitting and receiving endpoints. The
// receiving endpoint must have been built with this scheduler as its PDU
// and channel-quality sink.
func (s *Scheduler) AttachDownlink(tx, rx *phy.Comp) {
	s.tx = tx
	s.rx = rx
}

// Start schedules the scheduler's first slot tick at time zero.
func (s *Scheduler) Start() {
	if s.tx == nil || s.rx == nil {
		log.Panicf("%s: downlink endpoints are not attached", s.name)
	}

	s.engine.Schedule(&slotTickEvent{
		EventBase: sim.NewEventBase(0, s),
	})
}

// Handle processes slot tick events.
func (s *Scheduler) Handle(e sim.Event) error {
	switch e.(type) {
	case *slotTickEvent:
		s.tick(e.Time())
	default:
		log.Panicf("%s: cannot handle event", s.name)
	}

	return nil
}

func (s *Scheduler) tick(now sim.VTimeInNs) {
	timing := s.slotTiming()

	s.scheduleData(timing)

	if s.csiPeriod > 0 && s.slot%s.csiPeriod == 0 {
		s.scheduleCsi(timing)
	}

	s.medium.InvokeAt(s.tx, now)
	s.medium.InvokeAt(s.rx, now)

	s.slot++
	if s.slot < s.numSlots {
		s.engine.Schedule(&slotTickEvent{
			EventBase: sim.NewEventBase(now+s.num.SlotDuration(), s),
		})
	}
}

func (s *Scheduler) slotTiming() nr.Timing {
	spf := s.num.SlotsPerFrame()
	return nr.Timing{
		Frame:  uint64(s.slot / spf),
		Slot:   s.slot % spf,
		Symbol: 0,
	}
}

func (s *Scheduler) scheduleData(timing nr.Timing) {
	if s.inFlight == nil {
		payload := make([]byte, s.tbsBytes)
		s.rng.Read(payload)

		s.inFlight = &transmission{
			payload: payload,
			harqID:  s.harqID,
		}
		s.harqID = (s.harqID + 1) % 8
		s.stats.BlocksSent++
	}

	t := s.inFlight
	rv := s.rv.RvForAttempt(t.attempt)

	// A retransmission re-encodes the block buffered at the transmitter.
	payload := t.payload
	if t.attempt > 0 {
		payload = nil
	}

	err := s.tx.InstallTxRequest(phy.TxRequest{
		Alloc:    s.alloc,
		Rnti:     1,
		HarqID:   t.harqID,
		Rv:       rv,
		TbsBytes: s.tbsBytes,
		Payload:  payload,
	})
	if err != nil {
		log.Panicf("%s: cannot install tx request: %v", s.name, err)
	}

	err = s.rx.InstallRxRequest(phy.RxRequest{
		Alloc:    s.alloc,
		Rnti:     1,
		HarqID:   t.harqID,
		Rv:       rv,
		TbsBytes: s.tbsBytes,
	}, timing)
	if err != nil {
		log.Panicf("%s: cannot install rx request: %v", s.name, err)
	}
}

func (s *Scheduler) scheduleCsi(timing nr.Timing) {
	if err := s.tx.InstallReferenceSignalTx(s.csiConfig); err != nil {
		log.Panicf("%s: cannot install reference signal: %v", s.name, err)
	}

	if err := s.rx.InstallDownlinkControl(s.csiConfig, timing); err != nil {
		log.Panicf("%s: cannot install channel measurement: %v",
			s.name, err)
	}
}

// DecodedPdu implements phy.PduSink. A CRC failure advances the redundancy
// version walk; exhausting the sequence abandons the block.
func (s *Scheduler) DecodedPdu(pdu phy.DecodedPdu) {
	if s.inFlight == nil || pdu.HarqID != s.inFlight.harqID {
		return
	}

	if !pdu.CrcFailed {
		s.stats.BlocksDelivered++
		s.InvokeHook(sim.HookCtx{
			Domain: s,
			Pos:    HookPosBlockDelivered,
			Item:   pdu,
		})
		s.inFlight = nil
		return
	}

	s.stats.CrcFailures++
	s.inFlight.attempt++

	if s.inFlight.attempt >= s.rv.MaxAttempts() {
		s.stats.BlocksLost++
		s.InvokeHook(sim.HookCtx{
			Domain: s,
			Pos:    HookPosBlockLost,
			Item:   pdu,
		})
		s.inFlight = nil
		return
	}

	s.stats.Retransmissions++
}

// ChannelQuality implements phy.ChannelQualitySink.
func (s *Scheduler) ChannelQuality(report sigproc.ChannelReport) {
	s.stats.ChannelReports++
	s.lastCqi = report
	s.hasReport = true
}
