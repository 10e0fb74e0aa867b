package tempo

import (
	"math"

	"github.com/goccmack/godsp"
	"github.com/goccmack/godsp/dwt"
	"github.com/goccmack/godsp/peaks"
	"golang.org/x/exp/slices"
)

const (
	// waveletLevel is the number of DWT scales summed into the envelope.
	waveletLevel = 4
	// waveletScale is how many input samples one envelope sample covers.
	waveletScale = 1 << waveletLevel
)

// Wavelet estimates tempo from the peaks of a Daubechies-4 wavelet energy
// envelope: the median distance between envelope peaks is taken as the beat.
type Wavelet struct {
	// MinSeconds is the shortest input that is analyzed.
	MinSeconds float64
}

// NewWavelet returns a wavelet estimator for inputs of at least 4 seconds.
func NewWavelet() *Wavelet {
	return &Wavelet{MinSeconds: 4}
}

// Estimate implements Oracle.
func (w *Wavelet) Estimate(samples []float32, sampleRate int) (bpm float64, ok bool) {
	if sampleRate <= 0 || float64(len(samples))/float64(sampleRate) < w.MinSeconds {
		return 0, false
	}

	// godsp panics on inputs it cannot transform
	defer func() {
		if r := recover(); r != nil {
			bpm, ok = 0, false
		}
	}()

	x := make([]float64, pow2Floor(len(samples)))
	for i := range x {
		x[i] = float64(samples[i])
	}

	db4 := dwt.Daubechies4(x, waveletLevel)
	absX := godsp.AbsAll(db4.GetCoefficients())
	sumX := godsp.SumVectors(godsp.DownSampleAll(absX))
	avg := godsp.Average(sumX)
	if !(avg > 0) {
		return 0, false
	}
	sumX = godsp.DivS(sumX, avg)

	envRate := float64(sampleRate) / waveletScale
	sep := int(envRate * 60 / 300)
	if sep < 1 {
		sep = 1
	}
	pks := peaks.Get(sumX, sep)
	if len(pks) < 3 {
		return 0, false
	}
	slices.Sort(pks)

	intervals := make([]float64, 0, len(pks)-1)
	for i := 1; i < len(pks); i++ {
		intervals = append(intervals, float64(pks[i]-pks[i-1]))
	}
	slices.Sort(intervals)
	med := intervals[len(intervals)/2]
	if med <= 0 {
		return 0, false
	}

	bpm = 60 * envRate / med
	if !Plausible(bpm) {
		return 0, false
	}
	return bpm, true
}

func pow2Floor(n int) int {
	if n < 1 {
		return 0
	}
	return 1 << int(math.Floor(math.Log2(float64(n))))
}
