// Package tempo estimates the tempo of a sample buffer.
//
// Estimation is best effort. An Oracle never returns an error: anything that
// goes wrong, including an implausible result, is reported as "no estimate".
// The rest of the program must stay usable when no oracle is available at all.
package tempo

import (
	"math"

	"rhythmsignal/pkg/beatgrid"
)

// Oracle supplies an estimated tempo for a mono sample buffer.
type Oracle interface {
	Estimate(samples []float32, sampleRate int) (bpm float64, ok bool)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(samples []float32, sampleRate int) (float64, bool)

// Estimate calls f and drops implausible results.
func (f OracleFunc) Estimate(samples []float32, sampleRate int) (float64, bool) {
	bpm, ok := f(samples, sampleRate)
	if !ok || !Plausible(bpm) {
		return 0, false
	}
	return bpm, true
}

// Unavailable is the oracle used when no estimator is built in or configured.
type Unavailable struct{}

// Estimate never produces an estimate.
func (Unavailable) Estimate([]float32, int) (float64, bool) {
	return 0, false
}

// Available reports whether o can ever produce an estimate.
func Available(o Oracle) bool {
	if o == nil {
		return false
	}
	switch o.(type) {
	case Unavailable, *Unavailable:
		return false
	}
	return true
}

// Plausible reports whether bpm lies inside the grid's tempo range.
func Plausible(bpm float64) bool {
	return !math.IsNaN(bpm) && bpm >= beatgrid.MinBPM && bpm <= beatgrid.MaxBPM
}

// Chain asks each oracle in turn and returns the first estimate.
type Chain []Oracle

// Estimate implements Oracle.
func (c Chain) Estimate(samples []float32, sampleRate int) (float64, bool) {
	for _, o := range c {
		if o == nil {
			continue
		}
		if bpm, ok := o.Estimate(samples, sampleRate); ok && Plausible(bpm) {
			return bpm, true
		}
	}
	return 0, false
}
