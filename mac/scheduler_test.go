package mac

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ransim/nr"
	"github.com/sarchlab/ransim/phy"
	"github.com/sarchlab/ransim/rf"
	"github.com/sarchlab/ransim/sigproc"
	"github.com/sarchlab/ransim/sim"
)

// faultyProcessor forces the first failRemaining decodes to report a CRC
// failure, regardless of the actual channel.
type faultyProcessor struct {
	inner         sigproc.Processor
	failRemaining int
	resets        int
}

func (p *faultyProcessor) Modulate(
	grid *sigproc.ResourceGrid,
) ([]complex128, error) {
	return p.inner.Modulate(grid)
}

func (p *faultyProcessor) Decode(
	job sigproc.DecodeJob,
	samples []complex128,
) sigproc.DecodeResult {
	res := p.inner.Decode(job, samples)

	if p.failRemaining > 0 {
		p.failRemaining--
		res.CrcFailed = true
		res.Payload = nil
	}

	return res
}

func (p *faultyProcessor) MeasureChannel(
	job sigproc.CsiJob,
	samples []complex128,
) sigproc.ChannelReport {
	return p.inner.MeasureChannel(job, samples)
}

func (p *faultyProcessor) ResetSoftBuffer(harqID uint8) {
	p.resets++
	p.inner.ResetSoftBuffer(harqID)
}

var _ = Describe("Scheduler", func() {
	var (
		engine *sim.SerialEngine
		medium *rf.Medium
		num    nr.Numerology
		rate   sim.Freq
		ueProc *faultyProcessor
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		medium = rf.NewMedium("Medium", engine)
		num = nr.MustNewNumerology(nr.Scs30, 0)
		rate = 1 * sim.MHz
		ueProc = &faultyProcessor{inner: sigproc.NewBaseline(num, rate)}
	})

	buildDownlink := func(s *Scheduler) {
		gnb := phy.MakeBuilder().
			WithNumerology(num).
			WithSampleRate(rate).
			WithNoiseFigureDB(-1).
			WithMaxChannelDelay(0).
			WithProcessor(sigproc.NewBaseline(num, rate)).
			WithPacketSink(medium).
			Build("GNB")

		ue := phy.MakeBuilder().
			WithNumerology(num).
			WithSampleRate(rate).
			WithNoiseFigureDB(-1).
			WithMaxChannelDelay(0).
			WithProcessor(ueProc).
			WithPacketSink(medium).
			WithPduSink(s).
			WithChannelQualitySink(s).
			Build("UE")

		medium.Register(gnb)
		medium.Register(ue)
		s.AttachDownlink(gnb, ue)
	}

	It("should deliver every block on a clean channel", func() {
		s := MakeBuilder().
			WithEngine(engine).
			WithMedium(medium).
			WithNumerology(num).
			WithNumSlots(5).
			Build("Scheduler")
		buildDownlink(s)

		s.Start()
		Expect(engine.Run()).To(Succeed())

		stats := s.Stats()
		Expect(stats.BlocksSent).To(Equal(5))
		Expect(stats.BlocksDelivered).To(Equal(5))
		Expect(stats.Retransmissions).To(Equal(0))
		Expect(stats.BlocksLost).To(Equal(0))
	})

	It("should recover a block through retransmission", func() {
		ueProc.failRemaining = 2

		s := MakeBuilder().
			WithEngine(engine).
			WithMedium(medium).
			WithNumerology(num).
			WithNumSlots(4).
			Build("Scheduler")
		buildDownlink(s)

		s.Start()
		Expect(engine.Run()).To(Succeed())

		stats := s.Stats()
		Expect(stats.BlocksSent).To(Equal(2))
		Expect(stats.BlocksDelivered).To(Equal(2))
		Expect(stats.CrcFailures).To(Equal(2))
		Expect(stats.Retransmissions).To(Equal(2))
		Expect(stats.BlocksLost).To(Equal(0))
		Expect(ueProc.resets).To(Equal(0))
	})

	It("should abandon a block after the last redundancy version", func() {
		ueProc.failRemaining = 4

		s := MakeBuilder().
			WithEngine(engine).
			WithMedium(medium).
			WithNumerology(num).
			WithNumSlots(5).
			Build("Scheduler")
		buildDownlink(s)

		s.Start()
		Expect(engine.Run()).To(Succeed())

		stats := s.Stats()
		Expect(stats.BlocksSent).To(Equal(2))
		Expect(stats.BlocksDelivered).To(Equal(1))
		Expect(stats.BlocksLost).To(Equal(1))
		Expect(stats.CrcFailures).To(Equal(4))
		Expect(stats.Retransmissions).To(Equal(3))

		// The soft buffer was cleared exactly once, at exhaustion.
		Expect(ueProc.resets).To(Equal(1))
	})

	It("should absorb a delivery landing exactly at the decode time", func() {
		// A front-end delay of one full allocation span makes every packet
		// arrive at the very instant its reception is finalized.
		span := num.SpanDuration(0, 4)
		medium.ExtraDelay = span

		s := MakeBuilder().
			WithEngine(engine).
			WithMedium(medium).
			WithNumerology(num).
			WithNumSlots(3).
			Build("Scheduler")

		gnb := phy.MakeBuilder().
			WithNumerology(num).
			WithSampleRate(rate).
			WithNoiseFigureDB(-1).
			WithMaxChannelDelay(span).
			WithProcessor(sigproc.NewBaseline(num, rate)).
			WithPacketSink(medium).
			Build("GNB")

		ue := phy.MakeBuilder().
			WithNumerology(num).
			WithSampleRate(rate).
			WithNoiseFigureDB(-1).
			WithMaxChannelDelay(span).
			WithProcessor(ueProc).
			WithPacketSink(medium).
			WithPduSink(s).
			WithChannelQualitySink(s).
			Build("UE")

		medium.Register(gnb)
		medium.Register(ue)
		s.AttachDownlink(gnb, ue)

		s.Start()
		Expect(engine.Run()).To(Succeed())

		stats := s.Stats()
		Expect(stats.BlocksSent).To(Equal(3))
		Expect(stats.BlocksDelivered).To(Equal(3))
		Expect(stats.CrcFailures).To(Equal(0))
		Expect(stats.BlocksLost).To(Equal(0))
	})

	It("should collect periodic channel-state reports", func() {
		s := MakeBuilder().
			WithEngine(engine).
			WithMedium(medium).
			WithNumerology(num).
			WithNumSlots(4).
			WithCsiPeriod(2).
			Build("Scheduler")
		buildDownlink(s)

		s.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(s.Stats().ChannelReports).To(Equal(2))

		report, ok := s.LastChannelReport()
		Expect(ok).To(BeTrue())
		Expect(report.RBCqi).NotTo(BeEmpty())
	})
})
