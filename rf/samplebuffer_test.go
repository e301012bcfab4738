package rf

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ransim/sim"
)

var _ = Describe("SampleBuffer", func() {
	var (
		buf  *SampleBuffer
		rate sim.Freq
	)

	BeforeEach(func() {
		buf = NewSampleBuffer(4)
		rate = 1 * sim.MHz // 1 sample per microsecond
	})

	packetWith := func(samples []complex128) *Packet {
		return &Packet{SampleRate: rate, Samples: samples}
	}

	It("should return zeros when nothing was received", func() {
		window := buf.Window(0, 10*sim.Microsecond, rate)

		Expect(window).To(HaveLen(10))
		for _, s := range window {
			Expect(s).To(Equal(complex(0, 0)))
		}
	})

	It("should place a packet at its arrival offset", func() {
		pkt := packetWith([]complex128{1, 2, 3})
		buf.Append(pkt, 4*sim.Microsecond)

		window := buf.Window(0, 10*sim.Microsecond, rate)

		Expect(window[3]).To(Equal(complex(0, 0)))
		Expect(window[4]).To(Equal(complex(1, 0)))
		Expect(window[5]).To(Equal(complex(2, 0)))
		Expect(window[6]).To(Equal(complex(3, 0)))
		Expect(window[7]).To(Equal(complex(0, 0)))
	})

	It("should clip a packet that starts before the window", func() {
		pkt := packetWith([]complex128{1, 2, 3, 4})
		buf.Append(pkt, 0)

		window := buf.Window(2*sim.Microsecond, 4*sim.Microsecond, rate)

		Expect(window[0]).To(Equal(complex(3, 0)))
		Expect(window[1]).To(Equal(complex(4, 0)))
		Expect(window[2]).To(Equal(complex(0, 0)))
	})

	It("should overlay overlapping packets", func() {
		buf.Append(packetWith([]complex128{1, 1}), 0)
		buf.Append(packetWith([]complex128{2, 2}), 1*sim.Microsecond)

		window := buf.Window(0, 3*sim.Microsecond, rate)

		Expect(window[0]).To(Equal(complex(1, 0)))
		Expect(window[1]).To(Equal(complex(3, 0)))
		Expect(window[2]).To(Equal(complex(2, 0)))
	})

	It("should evict the oldest packets beyond capacity", func() {
		for i := 0; i < 6; i++ {
			buf.Append(packetWith([]complex128{complex(float64(i), 0)}),
				sim.VTimeInNs(i)*sim.Microsecond)
		}

		Expect(buf.Len()).To(Equal(4))

		// The first two packets fell out of the history.
		window := buf.Window(0, 2*sim.Microsecond, rate)
		Expect(window[0]).To(Equal(complex(0, 0)))
		Expect(window[1]).To(Equal(complex(0, 0)))
	})
})

var _ = Describe("NoiseSource", func() {
	It("should synthesize noise at the configured level", func() {
		n := NewNoiseSource(290, 5, 30.72*sim.MHz, 1)

		Expect(n.Sigma()).To(BeNumerically(">", 0))

		samples := make([]complex128, 64)
		n.AddTo(samples)

		changed := 0
		for _, s := range samples {
			if s != 0 {
				changed++
			}
		}
		Expect(changed).To(Equal(64))
	})

	It("should be deterministic for the same seed", func() {
		n1 := NewNoiseSource(290, 5, 30.72*sim.MHz, 7)
		n2 := NewNoiseSource(290, 5, 30.72*sim.MHz, 7)

		s1 := make([]complex128, 16)
		s2 := make([]complex128, 16)
		n1.AddTo(s1)
		n2.AddTo(s2)

		Expect(s1).To(Equal(s2))
	})
})
