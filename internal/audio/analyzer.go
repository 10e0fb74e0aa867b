package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rhythmsignal/pkg/onset"
	"rhythmsignal/pkg/tempo"
)

type ProcessingState int

const (
	StateIdle ProcessingState = iota
	StateLoading
	StateAnalyzing
)

func (s ProcessingState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnalyzing:
		return "analyzing"
	}
	return "idle"
}

type ProcessingStatus struct {
	State     ProcessingState
	Message   string
	StartTime time.Time
}

// AnalyzerOptions configures decoding and detection.
type AnalyzerOptions struct {
	SampleRate   int
	MaxSeconds   float64
	TempoSeconds float64
	Onset        onset.Options
}

// Analysis is the result of loading one track.
type Analysis struct {
	Path     string
	Buffer   *Buffer // full track for playback
	Hits     []onset.HitEvent
	Metadata *Metadata
}

// Analyzer decodes tracks and runs hit detection and tempo estimation. One
// job runs at a time; a second caller gets ErrBusy.
type Analyzer struct {
	mu     sync.RWMutex
	loader Loader
	oracle tempo.Oracle
	opts   AnalyzerOptions
	status ProcessingStatus
	log    logrus.FieldLogger
}

func NewAnalyzer(loader Loader, oracle tempo.Oracle, opts AnalyzerOptions, log logrus.FieldLogger) *Analyzer {
	if oracle == nil {
		oracle = tempo.Unavailable{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Analyzer{loader: loader, oracle: oracle, opts: opts, log: log}
}

// Analyze decodes path and detects its hits. Detection looks at the first
// MaxSeconds of the mono mix; the returned buffer keeps the whole track.
func (a *Analyzer) Analyze(path string) (*Analysis, error) {
	if err := a.begin(StateLoading, fmt.Sprintf("Loading %s...", path)); err != nil {
		return nil, err
	}
	defer a.finish()

	start := time.Now()
	buf, err := a.loader.Load(path, DecodeOptions{TargetRate: a.opts.SampleRate})
	if err != nil {
		a.log.WithFields(logrus.Fields{"path": path}).WithError(err).Warn("decode failed")
		return nil, err
	}

	md, err := ReadMetadata(path)
	if err != nil {
		a.log.WithError(err).Debug("metadata unavailable")
		md = &Metadata{}
	}
	md.Describe(buf)

	a.setStatus(StateAnalyzing, "Detecting hits...")
	clip := *buf
	clip.Truncate(a.opts.MaxSeconds)
	hits := onset.DetectChannels(clip.Samples, clip.Channels, clip.SampleRate, a.opts.Onset)

	a.log.WithFields(logrus.Fields{
		"path":    path,
		"hits":    len(hits),
		"seconds": buf.Seconds(),
		"elapsed": time.Since(start),
	}).Info("analysis complete")

	return &Analysis{Path: path, Buffer: buf, Hits: hits, Metadata: md}, nil
}

// EstimateTempo asks the oracle about the first TempoSeconds of buf.
func (a *Analyzer) EstimateTempo(buf *Buffer) (float64, bool, error) {
	if buf == nil {
		return 0, false, nil
	}
	if !tempo.Available(a.oracle) {
		return 0, false, nil
	}
	if err := a.begin(StateAnalyzing, "Estimating tempo..."); err != nil {
		return 0, false, err
	}
	defer a.finish()

	bpm, ok := a.oracle.Estimate(a.window(buf, a.opts.TempoSeconds), buf.SampleRate)
	a.log.WithFields(logrus.Fields{"bpm": bpm, "ok": ok}).Info("tempo estimate")
	return bpm, ok, nil
}

// TempoAvailable reports whether EstimateTempo can ever succeed.
func (a *Analyzer) TempoAvailable() bool {
	return tempo.Available(a.oracle)
}

// Status returns the current loading/analysis state.
func (a *Analyzer) Status() ProcessingStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Busy reports whether a job is running.
func (a *Analyzer) Busy() bool {
	return a.Status().State != StateIdle
}

// window returns the mono samples of the first seconds of buf.
func (a *Analyzer) window(buf *Buffer, seconds float64) []float32 {
	mono := *buf.Mono()
	mono.Truncate(seconds)
	return mono.Samples
}

func (a *Analyzer) begin(state ProcessingState, msg string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status.State != StateIdle {
		return ErrBusy
	}
	a.log.Debugf("Status update: [%v] %s", state, msg)
	a.status = ProcessingStatus{State: state, Message: msg, StartTime: time.Now()}
	return nil
}

func (a *Analyzer) setStatus(state ProcessingState, msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.log.Debugf("Status update: [%v] %s", state, msg)
	a.status.State = state
	a.status.Message = msg
}

func (a *Analyzer) finish() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = ProcessingStatus{State: StateIdle}
}
