package tempo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlausible(t *testing.T) {
	t.Parallel()

	assert.True(t, Plausible(30))
	assert.True(t, Plausible(120))
	assert.True(t, Plausible(300))
	assert.False(t, Plausible(29.9))
	assert.False(t, Plausible(300.1))
	assert.False(t, Plausible(math.NaN()))
	assert.False(t, Plausible(math.Inf(1)))
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	bpm, ok := Unavailable{}.Estimate(clickTrack(11025, 8, 120), 11025)
	assert.False(t, ok)
	assert.Zero(t, bpm)

	assert.False(t, Available(nil))
	assert.False(t, Available(Unavailable{}))
	assert.False(t, Available(&Unavailable{}))
	assert.True(t, Available(NewAutocorrelation()))
}

func TestOracleFuncRejectsImplausible(t *testing.T) {
	t.Parallel()

	_, ok := OracleFunc(func([]float32, int) (float64, bool) { return 999, true }).Estimate(nil, 1)
	assert.False(t, ok)

	bpm, ok := OracleFunc(func([]float32, int) (float64, bool) { return 95, true }).Estimate(nil, 1)
	require.True(t, ok)
	assert.Equal(t, 95.0, bpm)
}

func TestChain(t *testing.T) {
	t.Parallel()

	calls := 0
	fixed := func(bpm float64, ok bool) Oracle {
		return OracleFunc(func([]float32, int) (float64, bool) {
			calls++
			return bpm, ok
		})
	}

	bpm, ok := Chain{nil, Unavailable{}, fixed(0, false), fixed(128, true), fixed(90, true)}.Estimate(nil, 44100)
	require.True(t, ok)
	assert.Equal(t, 128.0, bpm)
	assert.Equal(t, 2, calls)

	_, ok = Chain{}.Estimate(nil, 44100)
	assert.False(t, ok)
}
