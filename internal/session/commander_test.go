package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"rhythmsignal/internal/audio"
	"rhythmsignal/internal/project"
	"rhythmsignal/pkg/onset"
	"rhythmsignal/pkg/tempo"
	"rhythmsignal/pkg/timeline"
	"rhythmsignal/pkg/viz"
)

type nopOutput struct{}

func (nopOutput) Write(p []byte) (int, error) { return len(p), nil }
func (nopOutput) Close() error                { return nil }

type nopBackend struct{}

func (nopBackend) Open(int, int) (audio.Output, error) { return nopOutput{}, nil }

type stubLoader struct {
	mu  sync.Mutex
	buf *audio.Buffer
	err error
}

func (l *stubLoader) Load(path string, opts audio.DecodeOptions) (*audio.Buffer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf, l.err
}

func (l *stubLoader) set(buf *audio.Buffer, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf, l.err = buf, err
}

// pulses is a mono buffer at 100 Hz with a spike every second.
func pulses(seconds int) *audio.Buffer {
	samples := make([]float32, seconds*100)
	for i := 100; i < len(samples); i += 100 {
		samples[i] = 1
	}
	return &audio.Buffer{Samples: samples, SampleRate: 100, Channels: 1}
}

type fixture struct {
	c      *Commander
	clock  *testingclock.FakeClock
	loader *stubLoader
	path   string
}

func newFixture(t *testing.T, oracle tempo.Oracle) *fixture {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "pulses.wav")
	require.NoError(t, os.WriteFile(path, []byte("not really a wav"), 0644))

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)

	clk := testingclock.NewFakeClock(time.Unix(1000, 0))
	loader := &stubLoader{buf: pulses(10)}
	analyzer := audio.NewAnalyzer(loader, oracle, audio.AnalyzerOptions{
		SampleRate:   100,
		MaxSeconds:   180,
		TempoSeconds: 120,
		Onset:        onset.DefaultOptions(),
	}, log)

	c := NewCommander(Options{
		Analyzer: analyzer,
		Player:   audio.NewPlayer(nopBackend{}, clk, log),
		Viz:      viz.NewManager(),
		Flash:    timeline.NewFlash(clk, timeline.DefaultFlashDuration),
		Log:      log,
	})
	t.Cleanup(func() { c.shutdown() })
	return &fixture{c: c, clock: clk, loader: loader, path: path}
}

// run executes input and, if it returns a command, feeds the message back.
func (f *fixture) run(t *testing.T, input string) (string, error) {
	t.Helper()
	out, err, cmd := f.c.Execute(input)
	if err != nil || cmd == nil {
		return out, err
	}
	switch msg := cmd().(type) {
	case AnalysisMsg:
		return f.c.ApplyAnalysis(msg)
	case TempoMsg:
		return f.c.ApplyTempo(msg)
	}
	return out, nil
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	_, err := f.run(t, "load "+f.path)
	require.NoError(t, err)
	require.True(t, f.c.IsInTrackMode())
}

func TestTrackCommandsNeedTrack(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	for _, input := range []string{"play", "bpm 100", "downbeat", "auto", "tag x", "save", "info"} {
		_, err, _ := f.c.Execute(input)
		assert.ErrorIs(t, err, ErrNoTrack, input)
	}

	_, err, _ := f.c.Execute("frobnicate")
	assert.Error(t, err)
	_, err, _ = f.c.Execute("   ")
	assert.Error(t, err)
}

func TestHelpDependsOnMode(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	out, err, _ := f.c.Execute(":help")
	require.NoError(t, err)
	assert.Contains(t, out, "load, l <path>")
	assert.NotContains(t, out, "downbeat")

	f.load(t)
	out, _, _ = f.c.Execute("help")
	assert.Contains(t, out, "downbeat")
	assert.Contains(t, out, "Visualization Commands")
}

func TestQuit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err, cmd := f.c.Execute("quit")
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestLoadCommitsAnalysis(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.c.SetBPM(90)
	f.c.SetDownbeat(1.5)

	out, err := f.run(t, "load "+f.path)
	require.NoError(t, err)
	assert.Contains(t, out, "9 hits")

	assert.True(t, f.c.IsInTrackMode())
	assert.Len(t, f.c.Hits(), 9)
	assert.Equal(t, 90.0, f.c.Grid().BPM)
	assert.Equal(t, 0.0, f.c.Grid().DownbeatT0)
	assert.True(t, f.c.Player().Loaded())

	track := f.c.GetCurrentTrack()
	require.NotNil(t, track)
	assert.Equal(t, 10*time.Second, track.Duration)
	assert.Equal(t, 9, track.Hits)

	require.NotNil(t, f.c.Project())
	assert.Equal(t, f.path, f.c.Project().AudioPath)
	assert.Equal(t, 90.0, f.c.Project().BPM)
}

func TestFailedLoadKeepsSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.load(t)
	f.c.SetBPM(100)
	hits := f.c.Hits()

	f.loader.set(nil, errors.New("corrupt"))
	_, err := f.run(t, "load "+f.path)
	require.Error(t, err)

	assert.False(t, f.c.Busy())
	assert.True(t, f.c.IsInTrackMode())
	assert.Equal(t, hits, f.c.Hits())
	assert.Equal(t, 100.0, f.c.Grid().BPM)
	assert.Equal(t, 10*time.Second, f.c.Player().Duration())
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err, cmd := f.c.Execute("load " + filepath.Join(t.TempDir(), "nope.wav"))
	assert.Error(t, err)
	assert.Nil(t, cmd)
	assert.False(t, f.c.Busy())
}

func TestLoadWhileBusy(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err, cmd := f.c.Execute("load " + f.path)
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.True(t, f.c.Busy())

	_, err, _ = f.c.Execute("load " + f.path)
	assert.ErrorIs(t, err, ErrBusy)

	_, err = f.c.ApplyAnalysis(cmd().(AnalysisMsg))
	require.NoError(t, err)
	assert.False(t, f.c.Busy())
}

func TestBPMCommands(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.load(t)

	cases := []struct {
		input string
		want  float64
	}{
		{"bpm 100", 100},
		{"bpm +", 101},
		{"bpm -", 100},
		{"bpm x2", 200},
		{"bpm half", 100},
		{"bpm 1000", 300},
		{"bpm 5", 30},
	}
	for _, tc := range cases {
		_, err, _ := f.c.Execute(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, f.c.Grid().BPM, tc.input)
	}

	_, err, _ := f.c.Execute("bpm fast")
	assert.Error(t, err)

	out, err, _ := f.c.Execute("bpm")
	require.NoError(t, err)
	assert.Contains(t, out, "30.00 BPM")
}

func TestDownbeatCommands(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.load(t)

	_, err, _ := f.c.Execute("downbeat 1.25")
	require.NoError(t, err)
	assert.Equal(t, 1.25, f.c.Grid().DownbeatT0)

	require.NoError(t, f.c.Seek(3*time.Second))
	_, err, _ = f.c.Execute("db")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, f.c.Grid().DownbeatT0, 1e-9)
	assert.InDelta(t, 3.0, f.c.Project().DownbeatT0, 1e-9)

	_, err, _ = f.c.Execute("downbeat soon")
	assert.Error(t, err)
}

func TestTickFlashesOncePerBeat(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.load(t)
	f.c.SetBPM(120)

	// stopped: nothing fires
	assert.False(t, f.c.Tick())

	_, err, _ := f.c.Execute("play")
	require.NoError(t, err)

	// the first poll only records the beat
	assert.False(t, f.c.Tick())
	f.clock.Step(250 * time.Millisecond)
	assert.False(t, f.c.Tick())

	f.clock.Step(300 * time.Millisecond)
	assert.True(t, f.c.Tick())
	assert.True(t, f.c.Flash().On())
	assert.Greater(t, f.c.Viz().State().Flash, 0.9)

	f.clock.Step(100 * time.Millisecond)
	assert.False(t, f.c.Tick())
	assert.False(t, f.c.Flash().On())
	assert.Equal(t, 0.0, f.c.Viz().State().Flash)

	f.clock.Step(400 * time.Millisecond)
	assert.True(t, f.c.Tick())
}

func TestGridChangeRestartsTracking(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.load(t)
	_, err, _ := f.c.Execute("play")
	require.NoError(t, err)

	f.clock.Step(700 * time.Millisecond)
	assert.False(t, f.c.Tick())

	// 60 BPM puts the playhead in a different beat, but that is not a crossing
	f.c.SetBPM(60)
	assert.False(t, f.c.Tick())

	f.clock.Step(time.Second)
	assert.True(t, f.c.Tick())

	require.NoError(t, f.c.SeekBy(3*time.Second))
	assert.False(t, f.c.Tick())
}

func TestTickFrame(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.load(t)
	require.NoError(t, f.c.Seek(5*time.Second))
	f.c.Tick()

	frame := f.c.Viz().State().Frame
	assert.Equal(t, 5.0, frame.Playhead)
	assert.True(t, frame.Window.Contains(5))
	assert.NotEmpty(t, frame.Lines)
	assert.NotEmpty(t, frame.Hits)
}

func TestAutoTempo(t *testing.T) {
	t.Parallel()

	oracle := tempo.OracleFunc(func([]float32, int) (float64, bool) { return 128, true })
	f := newFixture(t, oracle)
	f.load(t)

	out, err := f.run(t, "auto")
	require.NoError(t, err)
	assert.Contains(t, out, "128.00")
	assert.Equal(t, 128.0, f.c.Grid().BPM)
	assert.False(t, f.c.Busy())
}

func TestAutoTempoWithoutEstimate(t *testing.T) {
	t.Parallel()

	oracle := tempo.OracleFunc(func([]float32, int) (float64, bool) { return 0, false })
	f := newFixture(t, oracle)
	f.load(t)
	f.c.SetBPM(97)

	out, err := f.run(t, "auto")
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")
	assert.Equal(t, 97.0, f.c.Grid().BPM)
}

func TestAutoTempoUnavailable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, tempo.Unavailable{})
	f.load(t)
	f.c.SetBPM(97)

	out, err, cmd := f.c.Execute("auto")
	require.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Contains(t, out, "not available")
	assert.Equal(t, 97.0, f.c.Grid().BPM)
}

func TestMarkersAndSave(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.load(t)
	f.c.SetBPM(110)

	out, _, _ := f.c.Execute("markers")
	assert.Contains(t, out, "No markers")

	require.NoError(t, f.c.Seek(2500*time.Millisecond))
	_, err, _ := f.c.Execute("tag chorus in")
	require.NoError(t, err)

	out, _, _ = f.c.Execute("markers")
	assert.Contains(t, out, "chorus in")

	target := filepath.Join(t.TempDir(), "session.json")
	out, err, _ = f.c.Execute("save " + target)
	require.NoError(t, err)
	assert.Contains(t, out, "10 markers")

	p, err := project.Load(target)
	require.NoError(t, err)
	assert.Equal(t, f.path, p.AudioPath)
	assert.Equal(t, 110.0, p.BPM)
	require.Len(t, p.Markers, 10)
	manual := p.Manual()
	require.Len(t, manual, 1)
	assert.Equal(t, "chorus in", manual[0].Label)
	assert.InDelta(t, 2.5, manual[0].T, 1e-9)
}

func TestOpenProjectRestoresGrid(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	dir := t.TempDir()
	projectPath := filepath.Join(dir, "song.json")

	p := project.New(f.path)
	p.BPM = 140
	p.DownbeatT0 = 0.75
	p.AddMarker(project.Marker{T: 4, Label: "drop"})
	require.NoError(t, p.Save(projectPath))

	out, err := f.run(t, "project "+projectPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 manual markers")

	assert.Equal(t, 140.0, f.c.Grid().BPM)
	assert.Equal(t, 0.75, f.c.Grid().DownbeatT0)
	assert.Len(t, f.c.Project().Manual(), 1)

	// saving without a path goes back to the project file
	out, err, _ = f.c.Execute("save")
	require.NoError(t, err)
	assert.Contains(t, out, projectPath)
}

func TestVizCommands(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err, _ := f.c.Execute("theme nord")
	require.NoError(t, err)
	assert.Equal(t, "nord", f.c.Viz().ColorSchemeName())

	f.load(t)
	_, err, cmd := f.c.Execute("viz wave")
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.IsType(t, EnterVizMsg{}, cmd())
	assert.Equal(t, viz.WaveformMode, f.c.Viz().Mode())
}

func TestUnload(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.load(t)
	out, err, _ := f.c.Execute("unload")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Track unloaded"))
	assert.False(t, f.c.IsInTrackMode())
	assert.Nil(t, f.c.GetCurrentTrack())
	assert.Empty(t, f.c.Hits())
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "00:00", FormatDuration(0))
	assert.Equal(t, "01:05", FormatDuration(65*time.Second))
	assert.Equal(t, "00:00", FormatDuration(-time.Second))
}
