package tempo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clickTrack returns seconds of 20ms bursts spaced at bpm.
func clickTrack(sampleRate int, seconds, bpm float64) []float32 {
	out := make([]float32, int(seconds*float64(sampleRate)))
	period := 60 / bpm
	burst := int(0.02 * float64(sampleRate))
	for t := 0.0; t < seconds; t += period {
		start := int(t * float64(sampleRate))
		for i := 0; i < burst && start+i < len(out); i++ {
			v := float32(0.8)
			if i%2 == 1 {
				v = -v
			}
			out[start+i] = v
		}
	}
	return out
}

func TestAutocorrelationClickTrack(t *testing.T) {
	t.Parallel()

	for _, want := range []float64{100, 120, 140} {
		bpm, ok := NewAutocorrelation().Estimate(clickTrack(11025, 12, want), 11025)
		require.True(t, ok, "bpm %v", want)
		assert.InDelta(t, want, bpm, 3, "bpm %v", want)
	}
}

func TestAutocorrelationNoEstimate(t *testing.T) {
	t.Parallel()

	a := NewAutocorrelation()

	_, ok := a.Estimate(nil, 22050)
	assert.False(t, ok)

	_, ok = a.Estimate(make([]float32, 22050*8), 22050)
	assert.False(t, ok, "silence")

	_, ok = a.Estimate(clickTrack(22050, 2, 120), 22050)
	assert.False(t, ok, "too short")

	_, ok = a.Estimate(clickTrack(22050, 8, 120), 0)
	assert.False(t, ok, "bad rate")
}

func TestAutocorrelate(t *testing.T) {
	t.Parallel()

	ac := autocorrelate([]float64{1, 2, 3})
	require.Len(t, ac, 3)
	assert.InDelta(t, 14, ac[0], 1e-9)
	assert.InDelta(t, 8, ac[1], 1e-9)
	assert.InDelta(t, 3, ac[2], 1e-9)
}

func TestRefine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, refine([]float64{1, 0}, 0))
	assert.Equal(t, 1.0, refine([]float64{1, 2, 1}, 1))
	assert.InDelta(t, 1.25, refine([]float64{0, 3, 2}, 1), 1e-9)
}

func TestWaveletNoEstimate(t *testing.T) {
	t.Parallel()

	w := NewWavelet()

	_, ok := w.Estimate(make([]float32, 11025), 11025)
	assert.False(t, ok, "too short")

	_, ok = w.Estimate(make([]float32, 11025*8), 11025)
	assert.False(t, ok, "silence")

	if bpm, ok := w.Estimate(clickTrack(11025, 8, 120), 11025); ok {
		assert.True(t, Plausible(bpm))
	}
}

func TestPow2Floor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, pow2Floor(0))
	assert.Equal(t, 1, pow2Floor(1))
	assert.Equal(t, 8, pow2Floor(15))
	assert.Equal(t, 16, pow2Floor(16))
}
