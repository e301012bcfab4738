package rf

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sarchlab/ransim/sim"
)

// Boltzmann constant, in J/K.
const boltzmann = 1.380649e-23

// A NoiseSource synthesizes complex white Gaussian thermal noise at the
// power spectral density implied by a temperature and a receiver noise
// figure.
type NoiseSource struct {
	sigma float64
	dist  distuv.Normal
}

// NewNoiseSource creates a noise source. The noise power is
// k*T*NF*bandwidth, with the sample rate standing in for the bandwidth.
func NewNoiseSource(
	temperatureK float64,
	noiseFigureDB float64,
	rate sim.Freq,
	seed uint64,
) *NoiseSource {
	nfLinear := math.Pow(10, noiseFigureDB/10)
	power := boltzmann * temperatureK * nfLinear * float64(rate)

	// Half the power on each of I and Q.
	sigma := math.Sqrt(power / 2)

	n := &NoiseSource{sigma: sigma}
	n.dist = distuv.Normal{
		Mu:    0,
		Sigma: sigma,
		Src:   rand.NewSource(seed),
	}

	return n
}

// NewSilentNoiseSource creates a source that adds no noise at all.
func NewSilentNoiseSource() *NoiseSource {
	return &NoiseSource{}
}

// Sigma returns the per-component standard deviation of the noise.
func (n *NoiseSource) Sigma() float64 {
	return n.sigma
}

// AddTo adds one noise realization to the given samples in place.
func (n *NoiseSource) AddTo(samples []complex128) {
	if n.sigma == 0 {
		return
	}

	for i := range samples {
		samples[i] += complex(n.dist.Rand(), n.dist.Rand())
	}
}
