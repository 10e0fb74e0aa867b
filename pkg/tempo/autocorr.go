package tempo

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"rhythmsignal/pkg/beatgrid"
	"rhythmsignal/pkg/onset"
)

// Autocorrelation estimates tempo from the periodicity of the onset score.
// The score curve is autocorrelated with an FFT and the strongest lag inside
// the tempo range wins, weighted towards PreferredBPM so that half and double
// tempo candidates lose ties.
type Autocorrelation struct {
	// HopMs is the frame length of the onset score.
	HopMs float64
	// PreferredBPM centers the log-normal tempo prior.
	PreferredBPM float64
	// MinSeconds is the shortest input that is analyzed.
	MinSeconds float64
}

// NewAutocorrelation returns an estimator with a 10ms hop and a 120 BPM prior.
func NewAutocorrelation() *Autocorrelation {
	return &Autocorrelation{HopMs: onset.DefaultHopMs, PreferredBPM: 120, MinSeconds: 4}
}

// Estimate implements Oracle.
func (a *Autocorrelation) Estimate(samples []float32, sampleRate int) (float64, bool) {
	if sampleRate <= 0 || len(samples) == 0 {
		return 0, false
	}
	if float64(len(samples))/float64(sampleRate) < a.MinSeconds {
		return 0, false
	}

	opts := onset.Options{HopMs: a.HopMs, MinGapMs: onset.DefaultMinGapMs}
	hop := opts.HopSamples(sampleRate)
	frameRate := float64(sampleRate) / float64(hop)

	score := onset.Score(samples, hop)
	floats.AddConst(-stat.Mean(score, nil), score)

	ac := autocorrelate(score)

	minLag := int(math.Ceil(60 * frameRate / beatgrid.MaxBPM))
	maxLag := int(math.Floor(60 * frameRate / beatgrid.MinBPM))
	if maxLag > len(score)-2 {
		maxLag = len(score) - 2
	}
	if minLag < 1 || minLag > maxLag {
		return 0, false
	}

	best, bestVal := -1, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		v := ac[lag] * a.prior(60*frameRate/float64(lag))
		if v > bestVal {
			best, bestVal = lag, v
		}
	}
	if best < 0 {
		return 0, false
	}

	lag := refine(ac, best)
	bpm := 60 * frameRate / lag
	if !Plausible(bpm) {
		return 0, false
	}
	return bpm, true
}

func (a *Autocorrelation) prior(bpm float64) float64 {
	center := a.PreferredBPM
	if center <= 0 {
		center = 120
	}
	octaves := math.Log2(bpm / center)
	return math.Exp(-0.5 * octaves * octaves)
}

// autocorrelate returns the linear autocorrelation of x for lags
// 0..len(x)-1.
func autocorrelate(x []float64) []float64 {
	n := 1
	for n < 2*len(x) {
		n <<= 1
	}
	padded := make([]float64, n)
	copy(padded, x)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, padded)
	for i, c := range coeffs {
		coeffs[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	seq := fft.Sequence(nil, coeffs)
	// the inverse transform is unnormalized
	floats.Scale(1/float64(n), seq)
	return seq[:len(x)]
}

// refine moves the peak at i to the vertex of the parabola through its
// neighbours.
func refine(ac []float64, i int) float64 {
	if i <= 0 || i >= len(ac)-1 {
		return float64(i)
	}
	l, c, r := ac[i-1], ac[i], ac[i+1]
	den := l - 2*c + r
	if den == 0 {
		return float64(i)
	}
	shift := 0.5 * (l - r) / den
	if math.Abs(shift) > 0.5 {
		return float64(i)
	}
	return float64(i) + shift
}
