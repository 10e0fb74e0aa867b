package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhythmsignal/pkg/onset"
	"rhythmsignal/pkg/tempo"
)

type stubLoader struct {
	buf     *Buffer
	err     error
	gate    chan struct{}
	entered chan struct{}
	opts    DecodeOptions
}

func (l *stubLoader) Load(path string, opts DecodeOptions) (*Buffer, error) {
	l.opts = opts
	if l.entered != nil {
		close(l.entered)
	}
	if l.gate != nil {
		<-l.gate
	}
	return l.buf, l.err
}

// clicks is a stereo buffer with a short burst every half second.
func clicks(sampleRate int, seconds float64) *Buffer {
	frames := int(seconds * float64(sampleRate))
	samples := make([]float32, 2*frames)
	for t := 0.5; t < seconds; t += 0.5 {
		start := int(t * float64(sampleRate))
		for i := 0; i < sampleRate/50 && start+i < frames; i++ {
			v := float32(0.9)
			if i%2 == 1 {
				v = -v
			}
			samples[2*(start+i)] = v
			samples[2*(start+i)+1] = v
		}
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate, Channels: 2}
}

func testOptions() AnalyzerOptions {
	return AnalyzerOptions{SampleRate: 8000, MaxSeconds: 3, TempoSeconds: 120, Onset: onset.DefaultOptions()}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{buf: clicks(8000, 5)}
	a := NewAnalyzer(loader, nil, testOptions(), nil)

	res, err := a.Analyze("/nowhere/clicks.wav")
	require.NoError(t, err)
	assert.Equal(t, 8000, loader.opts.TargetRate)
	assert.False(t, loader.opts.Mono)

	// playback keeps the full stereo track
	assert.Same(t, loader.buf, res.Buffer)
	assert.Equal(t, 5*time.Second, res.Metadata.Duration)
	assert.InDelta(t, 5.0, res.Buffer.Seconds(), 1e-9)
	assert.Equal(t, 2, res.Buffer.Channels)

	// detection only sees the first three seconds: bursts at 0.5 .. 2.5
	require.Len(t, res.Hits, 5)
	for i, h := range res.Hits {
		assert.InDelta(t, 0.5*float64(i+1), h.T, 0.011)
	}
	assert.False(t, a.Busy())
}

func TestAnalyzeDecodeFailure(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{err: decodeError("x.wav", KindUnsupported, nil)}
	a := NewAnalyzer(loader, nil, testOptions(), nil)

	res, err := a.Analyze("x.wav")
	assert.Nil(t, res)
	de, ok := AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnsupported, de.Kind)
	assert.Equal(t, StateIdle, a.Status().State)
}

func TestAnalyzeBusy(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{buf: clicks(8000, 1), gate: make(chan struct{}), entered: make(chan struct{})}
	a := NewAnalyzer(loader, nil, testOptions(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := a.Analyze("first.wav")
		done <- err
	}()
	<-loader.entered

	assert.True(t, a.Busy())
	assert.Equal(t, StateLoading, a.Status().State)
	_, err := a.Analyze("second.wav")
	assert.ErrorIs(t, err, ErrBusy)

	close(loader.gate)
	require.NoError(t, <-done)
	assert.False(t, a.Busy())
}

func TestEstimateTempo(t *testing.T) {
	t.Parallel()

	var got int
	oracle := tempo.OracleFunc(func(samples []float32, sr int) (float64, bool) {
		got = len(samples)
		return 126, true
	})
	opts := testOptions()
	opts.TempoSeconds = 2
	a := NewAnalyzer(&stubLoader{}, oracle, opts, nil)
	assert.True(t, a.TempoAvailable())

	bpm, ok, err := a.EstimateTempo(clicks(8000, 5))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 126.0, bpm)
	assert.Equal(t, 16000, got, "mono, truncated")

	none := NewAnalyzer(&stubLoader{}, nil, opts, nil)
	assert.False(t, none.TempoAvailable())
	_, ok, err = none.EstimateTempo(clicks(8000, 5))
	require.NoError(t, err)
	assert.False(t, ok)
}
