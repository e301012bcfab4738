package phy

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/ransim/nr"
	"github.com/sarchlab/ransim/rf"
	"github.com/sarchlab/ransim/sigproc"
	"github.com/sarchlab/ransim/sim"
)

var _ = Describe("Comp", func() {
	var (
		mockCtrl *gomock.Controller
		proc     *MockProcessor
		emitter  *MockEmitter
		pduSink  *MockPduSink
		cqiSink  *MockChannelQualitySink

		num  nr.Numerology
		rate sim.Freq
		c    *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		proc = NewMockProcessor(mockCtrl)
		emitter = NewMockEmitter(mockCtrl)
		pduSink = NewMockPduSink(mockCtrl)
		cqiSink = NewMockChannelQualitySink(mockCtrl)

		num = nr.MustNewNumerology(nr.Scs30, 0)
		rate = 1 * sim.MHz

		c = MakeBuilder().
			WithNumerology(num).
			WithSampleRate(rate).
			WithNoiseFigureDB(-1).
			WithMaxChannelDelay(0).
			WithProcessor(proc).
			WithPacketSink(emitter).
			WithPduSink(pduSink).
			WithChannelQualitySink(cqiSink).
			Build("Endpoint")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	slotWaveform := func() []complex128 {
		return make([]complex128, rate.CyclesIn(num.SlotDuration()))
	}

	It("should have no next invocation when idle", func() {
		Expect(c.Run(0, nil)).To(Equal(sim.TimeNever))
	})

	Context("transmitting", func() {
		It("should emit an installed data request in the same invocation", func() {
			req := TxRequest{
				Alloc: sigproc.Allocation{
					FirstRB: 0, NumRB: 4,
					FirstSymbol: 2, NumSymbols: 4,
				},
				Rnti: 17, HarqID: 1, Rv: 0,
				TbsBytes: 8,
				Payload:  []byte{1, 2, 3, 4, 5, 6, 7, 8},
			}
			Expect(c.InstallTxRequest(req)).To(Succeed())

			proc.EXPECT().
				Modulate(gomock.Any()).
				DoAndReturn(func(grid *sigproc.ResourceGrid) ([]complex128, error) {
					Expect(grid.SpanStart()).To(Equal(2))
					Expect(grid.SpanEnd()).To(Equal(6))
					return slotWaveform(), nil
				})

			var pkt *rf.Packet
			emitter.EXPECT().
				EmitPacket(gomock.Any()).
				Do(func(p *rf.Packet) { pkt = p })

			now := num.SymbolStartOffset(num.IndexOf(0, 2))
			c.Run(now, nil)

			wantLen := rate.CyclesIn(num.SpanDuration(0, 6)) -
				rate.CyclesIn(num.SpanDuration(0, 2))
			Expect(pkt.StartTime).To(Equal(now))
			Expect(pkt.Samples).To(HaveLen(wantLen))

			// The request was consumed; nothing transmits again.
			Expect(c.Run(now+1, nil)).To(Equal(sim.TimeNever))
		})

		It("should refuse a second pending data request", func() {
			req := TxRequest{
				Alloc:    sigproc.Allocation{NumRB: 4, NumSymbols: 2},
				TbsBytes: 8, Payload: []byte{1},
			}
			Expect(c.InstallTxRequest(req)).To(Succeed())
			Expect(c.InstallTxRequest(req)).NotTo(Succeed())
		})

		It("should emit a sounding reference signal on its own", func() {
			cfg := sigproc.ReferenceSignalConfig{
				Kind:    sigproc.SRS,
				NumRB:   4,
				FirstSymbol: 13, NumSymbols: 1,
				SequenceID: 5,
			}
			Expect(c.InstallUplinkControl(cfg)).To(Succeed())

			proc.EXPECT().
				Modulate(gomock.Any()).
				DoAndReturn(func(grid *sigproc.ResourceGrid) ([]complex128, error) {
					Expect(grid.Reference).NotTo(BeNil())
					Expect(grid.Data).To(BeNil())
					return slotWaveform(), nil
				})
			emitter.EXPECT().EmitPacket(gomock.Any())

			c.Run(num.SymbolStartOffset(num.IndexOf(0, 13)), nil)
		})

		It("should reject a non-sounding uplink control request", func() {
			cfg := sigproc.ReferenceSignalConfig{Kind: sigproc.CSIRS}
			Expect(c.InstallUplinkControl(cfg)).NotTo(Succeed())
		})
	})

	Context("receiving data", func() {
		var (
			req RxRequest
			due sim.VTimeInNs
		)

		BeforeEach(func() {
			req = RxRequest{
				Alloc: sigproc.Allocation{
					FirstRB: 0, NumRB: 4,
					FirstSymbol: 0, NumSymbols: 4,
				},
				Rnti: 17, HarqID: 2, Rv: 0,
				TbsBytes: 8,
			}
			due = num.SymbolEndOffset(num.IndexOf(0, 3))
		})

		It("should hold the context until the end of its last symbol", func() {
			Expect(c.InstallRxRequest(
				req, nr.Timing{Frame: 0, Slot: 0, Symbol: 0})).To(Succeed())

			Expect(c.Run(0, nil)).To(Equal(due))
			Expect(c.Run(
				num.SymbolStartOffset(num.IndexOf(0, 2)), nil)).To(Equal(due))

			proc.EXPECT().
				Decode(gomock.Any(), gomock.Any()).
				DoAndReturn(func(
					job sigproc.DecodeJob,
					samples []complex128,
				) sigproc.DecodeResult {
					Expect(job.HarqID).To(Equal(uint8(2)))
					Expect(job.Rnti).To(Equal(uint16(17)))
					Expect(samples).To(
						HaveLen(rate.CyclesIn(num.SpanDuration(0, 4))))
					return sigproc.DecodeResult{Payload: []byte{9}}
				})
			pduSink.EXPECT().
				DecodedPdu(gomock.Any()).
				Do(func(pdu DecodedPdu) {
					Expect(pdu.CrcFailed).To(BeFalse())
					Expect(pdu.Payload).To(Equal([]byte{9}))
					Expect(pdu.HarqID).To(Equal(uint8(2)))
				})

			Expect(c.Run(due, nil)).To(Equal(sim.TimeNever))
		})

		It("should report a conflict on an unconsumed ring position", func() {
			timing := nr.Timing{Frame: 0, Slot: 0, Symbol: 0}
			Expect(c.InstallRxRequest(req, timing)).To(Succeed())

			err := c.InstallRxRequest(req, timing)
			var conflict *SchedulingConflictError
			Expect(errors.As(err, &conflict)).To(BeTrue())
			Expect(conflict.Index).To(Equal(num.IndexOf(0, 3)))
			Expect(conflict.HarqID).To(Equal(uint8(2)))
		})

		It("should free the ring position once consumed", func() {
			Expect(c.InstallRxRequest(
				req, nr.Timing{Frame: 0, Slot: 0, Symbol: 0})).To(Succeed())

			proc.EXPECT().
				Decode(gomock.Any(), gomock.Any()).
				Return(sigproc.DecodeResult{Payload: []byte{9}})
			pduSink.EXPECT().DecodedPdu(gomock.Any())

			c.Run(due, nil)

			// The same frame-relative position can now carry the next
			// frame's reception.
			Expect(c.InstallRxRequest(
				req, nr.Timing{Frame: 1, Slot: 0, Symbol: 0})).To(Succeed())
		})

		It("should not deliver again on repeated invocations", func() {
			Expect(c.InstallRxRequest(
				req, nr.Timing{Frame: 0, Slot: 0, Symbol: 0})).To(Succeed())

			proc.EXPECT().
				Decode(gomock.Any(), gomock.Any()).
				Return(sigproc.DecodeResult{Payload: []byte{9}})
			pduSink.EXPECT().DecodedPdu(gomock.Any())

			c.Run(due, nil)

			Expect(c.Run(due, nil)).To(Equal(sim.TimeNever))
			Expect(c.Run(due+3, nil)).To(Equal(sim.TimeNever))
		})

		It("should reject an allocation that overruns the slot", func() {
			req.Alloc.FirstSymbol = 12
			req.Alloc.NumSymbols = 4
			Expect(c.InstallRxRequest(
				req, nr.Timing{Frame: 0, Slot: 0, Symbol: 12})).NotTo(Succeed())
		})
	})

	Context("redundancy versions", func() {
		runFailedDecode := func(rv uint8) {
			req := RxRequest{
				Alloc: sigproc.Allocation{
					NumRB: 4, FirstSymbol: 0, NumSymbols: 4,
				},
				HarqID: 3, Rv: rv, TbsBytes: 8,
			}
			Expect(c.InstallRxRequest(
				req, nr.Timing{Frame: 0, Slot: 0, Symbol: 0})).To(Succeed())

			proc.EXPECT().
				Decode(gomock.Any(), gomock.Any()).
				Return(sigproc.DecodeResult{CrcFailed: true})
			pduSink.EXPECT().
				DecodedPdu(gomock.Any()).
				Do(func(pdu DecodedPdu) {
					Expect(pdu.CrcFailed).To(BeTrue())
				})

			c.Run(num.SymbolEndOffset(num.IndexOf(0, 3)), nil)
		}

		It("should reset the soft buffer when the final version fails", func() {
			proc.EXPECT().ResetSoftBuffer(uint8(3))
			runFailedDecode(1)
		})

		It("should keep the soft buffer on a non-final failure", func() {
			runFailedDecode(3)
		})
	})

	Context("channel-state measurement", func() {
		It("should measure one slot after the request", func() {
			cfg := sigproc.ReferenceSignalConfig{
				Kind:  sigproc.CSIRS,
				NumRB: 4, FirstSymbol: 0, NumSymbols: 1,
				SequenceID: 7,
			}
			Expect(c.InstallDownlinkControl(
				cfg, nr.Timing{Frame: 0, Slot: 0, Symbol: 0})).To(Succeed())

			key := num.IndexOf(1, 0)
			due := nr.Timing{Frame: 0, Slot: 1, Symbol: 0}.StartTime(num) +
				num.SymbolDuration(key)

			Expect(c.Run(0, nil)).To(Equal(due))

			proc.EXPECT().
				MeasureChannel(gomock.Any(), gomock.Any()).
				DoAndReturn(func(
					job sigproc.CsiJob,
					samples []complex128,
				) sigproc.ChannelReport {
					Expect(job.Configs).To(HaveLen(1))
					Expect(job.Configs[0].SequenceID).To(Equal(uint16(7)))
					return sigproc.ChannelReport{
						Rank:  1,
						RBCqi: []uint8{15, 15, 15, 15},
					}
				})
			cqiSink.EXPECT().
				ChannelQuality(gomock.Any()).
				Do(func(report sigproc.ChannelReport) {
					Expect(report.RBCqi).To(HaveLen(4))
				})

			Expect(c.Run(due, nil)).To(Equal(sim.TimeNever))
		})

		It("should wrap to the next frame from the last slot", func() {
			cfg := sigproc.ReferenceSignalConfig{
				Kind:  sigproc.CSIRS,
				NumRB: 4, NumSymbols: 1,
			}
			lastSlot := num.SlotsPerFrame() - 1
			Expect(c.InstallDownlinkControl(
				cfg, nr.Timing{Frame: 0, Slot: lastSlot, Symbol: 0})).
				To(Succeed())

			due := nr.Timing{Frame: 1, Slot: 0, Symbol: 0}.StartTime(num) +
				num.SymbolDuration(num.IndexOf(0, 0))
			start := nr.Timing{Frame: 0, Slot: lastSlot, Symbol: 0}.
				StartTime(num)

			Expect(c.Run(start, nil)).To(Equal(due))
		})

		It("should reject a non-channel-state downlink request", func() {
			cfg := sigproc.ReferenceSignalConfig{Kind: sigproc.SRS}
			Expect(c.InstallDownlinkControl(
				cfg, nr.Timing{})).NotTo(Succeed())
		})
	})

	Context("next invocation", func() {
		It("should report the earliest pending work", func() {
			rxReq := RxRequest{
				Alloc: sigproc.Allocation{
					NumRB: 4, FirstSymbol: 0, NumSymbols: 2,
				},
				TbsBytes: 8,
			}
			Expect(c.InstallRxRequest(
				rxReq, nr.Timing{Frame: 0, Slot: 0, Symbol: 0})).To(Succeed())

			cfg := sigproc.ReferenceSignalConfig{
				Kind: sigproc.CSIRS, NumRB: 4, NumSymbols: 1,
			}
			Expect(c.InstallDownlinkControl(
				cfg, nr.Timing{Frame: 0, Slot: 0, Symbol: 0})).To(Succeed())

			rxDue := num.SymbolEndOffset(num.IndexOf(0, 1))
			Expect(c.Run(0, nil)).To(Equal(rxDue))
		})
	})
})
