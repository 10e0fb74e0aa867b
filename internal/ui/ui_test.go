package ui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"rhythmsignal/internal/audio"
	"rhythmsignal/internal/session"
	"rhythmsignal/pkg/onset"
	"rhythmsignal/pkg/timeline"
	"rhythmsignal/pkg/viz"
)

type nopOutput struct{}

func (nopOutput) Write(p []byte) (int, error) { return len(p), nil }
func (nopOutput) Close() error                { return nil }

type nopBackend struct{}

func (nopBackend) Open(int, int) (audio.Output, error) { return nopOutput{}, nil }

func newTestModel(t *testing.T) (Model, *testingclock.FakeClock) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	clk := testingclock.NewFakeClock(time.Unix(1000, 0))
	c := session.NewCommander(session.Options{
		Analyzer: audio.NewAnalyzer(nil, nil, audio.AnalyzerOptions{}, log),
		Player:   audio.NewPlayer(nopBackend{}, clk, log),
		Viz:      viz.NewManager(),
		Flash:    timeline.NewFlash(clk, 0),
		Log:      log,
	})

	m := NewModel(c)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), clk
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()

	buf := &audio.Buffer{Samples: make([]float32, 1000), SampleRate: 100, Channels: 1}
	next, _ := m.Update(session.AnalysisMsg{
		Path:   "/music/track.wav",
		Result: &audio.Analysis{Path: "/music/track.wav", Buffer: buf, Hits: []onset.HitEvent{{T: 1, Strength: 1}}},
	})
	m = next.(Model)
	require.True(t, m.commander.IsInTrackMode())
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestAnalysisSwitchesToTimeline(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	assert.Equal(t, ModeFull, m.uiMode)

	m = loaded(t, m)
	assert.Equal(t, ModeViz, m.uiMode)
	assert.Contains(t, m.mainOutput, "1 hits")
	assert.Contains(t, m.View(), "BPM")
}

func TestFailedAnalysisStaysInCommandView(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	next, _ := m.Update(session.AnalysisMsg{Path: "/music/x.ogg", Err: io.ErrUnexpectedEOF})
	m = next.(Model)
	assert.Equal(t, ModeFull, m.uiMode)
	assert.Contains(t, m.mainOutput, "Error:")
	assert.False(t, m.commander.IsInTrackMode())
}

func TestTimelineKeys(t *testing.T) {
	t.Parallel()

	m, clk := newTestModel(t)
	m = loaded(t, m)

	m = press(m, "]", "]")
	assert.Equal(t, 122.0, m.commander.Grid().BPM)
	m = press(m, "[")
	assert.Equal(t, 121.0, m.commander.Grid().BPM)

	m = press(m, " ")
	assert.True(t, m.commander.Player().Playing())

	clk.Step(1500 * time.Millisecond)
	m = press(m, "d")
	assert.InDelta(t, 1.5, m.commander.Grid().DownbeatT0, 1e-9)

	m = press(m, " ")
	assert.False(t, m.commander.Player().Playing())

	m = press(m, "right")
	assert.Equal(t, 6500*time.Millisecond, m.commander.Player().Position())

	m = press(m, "tab")
	assert.Equal(t, viz.WaveformMode, m.commander.Viz().Mode())

	m = press(m, "esc")
	assert.Equal(t, ModeFull, m.uiMode)
}

func TestTimelineKeysNeedEmptyPrompt(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m = loaded(t, m)

	m.input.SetValue("b")
	m = press(m, "]")
	assert.Equal(t, 120.0, m.commander.Grid().BPM)
	assert.Equal(t, "b]", m.input.Value())
}

func TestEnterRunsCommand(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m = loaded(t, m)

	m.input.SetValue("bpm 96")
	m = press(m, "enter")
	assert.Equal(t, 96.0, m.commander.Grid().BPM)
	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, []string{"bpm 96"}, m.history)

	m.input.SetValue("bpm fast")
	m = press(m, "enter")
	assert.Contains(t, m.mainOutput, "Error:")
}

func TestTickSchedulesFlashOff(t *testing.T) {
	t.Parallel()

	m, clk := newTestModel(t)
	m = loaded(t, m)
	m = press(m, " ")

	next, cmd := m.Update(tickMsg(clk.Now()))
	m = next.(Model)
	assert.NotNil(t, cmd)

	clk.Step(600 * time.Millisecond)
	next, cmd = m.Update(tickMsg(clk.Now()))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.commander.Flash().On())
	assert.Greater(t, m.commander.Viz().State().Flash, 0.5)
}

func TestTabCompletion(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m.input.SetValue("th")
	m = press(m, "tab")
	assert.Equal(t, "theme", m.input.Value())

	m.input.SetValue("viz w")
	m = press(m, "tab")
	assert.Equal(t, "viz wave", m.input.Value())
	assert.Contains(t, m.tabOutput, "wave")
}

func TestCtrlCPromptsBeforeExit(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m = press(m, "ctrl+c")
	assert.True(t, m.exitPrompt)

	next, cmd := m.Update(key("ctrl+c"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestShortcutsHelp(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m = press(m, "?")
	assert.Contains(t, m.mainOutput, "ctrl+q")

	m = loaded(t, m)
	m = press(m, "?")
	assert.Contains(t, m.mainOutput, "Timeline Keys")
}
