package viz

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"rhythmsignal/pkg/timeline"
)

type Manager struct {
	visualizations map[ViewMode]Visualization
	currentMode    ViewMode
	schemeName     string
	state          ViewState
	mu             sync.RWMutex
}

func NewManager() *Manager {
	m := &Manager{
		visualizations: make(map[ViewMode]Visualization),
		currentMode:    TimelineMode,
		schemeName:     "default",
		state: ViewState{
			Mode:        TimelineMode,
			Width:       80,
			Height:      24,
			ColorScheme: DefaultColorScheme(),
		},
	}
	m.visualizations[TimelineMode] = NewTimelineViz()
	return m
}

func (m *Manager) CycleMode(direction int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	modes := []ViewMode{TimelineMode, WaveformMode}

	currentIdx := -1
	for i, mode := range modes {
		if mode == m.currentMode {
			currentIdx = i
			break
		}
	}

	nextIdx := 0
	if currentIdx != -1 {
		nextIdx = (currentIdx + direction + len(modes)) % len(modes)
	}

	nextMode := modes[nextIdx]
	if _, ok := m.visualizations[nextMode]; !ok {
		return "", fmt.Errorf("visualization not available: %v", nextMode)
	}

	m.currentMode = nextMode
	m.state.Mode = nextMode
	return m.visualizations[nextMode].Name(), nil
}

func (m *Manager) Render() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	viz, ok := m.visualizations[m.currentMode]
	if !ok {
		return "No visualization available"
	}

	var sb strings.Builder

	title := fmt.Sprintf("%s - %s", viz.Name(), viz.Description())
	sb.WriteString(lipgloss.NewStyle().
		Bold(true).
		Foreground(m.state.ColorScheme.Text).
		Render(title))
	sb.WriteString("\n")

	sb.WriteString(viz.Render(m.state))
	sb.WriteString("\n")
	sb.WriteString(StatusLine(m.state))

	if m.currentMode == TimelineMode {
		sb.WriteString("\n")
		sb.WriteString(legend(m.state.ColorScheme))
	}

	return sb.String()
}

// Update stores the frame and indicators for the next Render.
func (m *Manager) Update(frame timeline.Frame, flash float64, bpm float64, playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Frame = frame
	m.state.Flash = flash
	m.state.BPM = bpm
	m.state.Playing = playing
}

func (m *Manager) SetDimensions(width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Width = width
	m.state.Height = height
}

// SetWaveform installs the waveform view for a newly loaded track.
func (m *Manager) SetWaveform(samples []float32, sampleRate int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.visualizations[WaveformMode] = NewWaveformViz(samples, sampleRate)
	m.state.Duration = duration
}

func (m *Manager) SetMode(mode ViewMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.visualizations[mode]; !exists {
		return fmt.Errorf("visualization mode not available: %v", mode)
	}
	m.currentMode = mode
	m.state.Mode = mode
	return nil
}

func (m *Manager) Mode() ViewMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentMode
}

// SetColorScheme switches to a named scheme.
func (m *Manager) SetColorScheme(name string) error {
	scheme, ok := ColorSchemes[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown color scheme %q (available: %s)", name, strings.Join(SchemeNames(), ", "))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.ColorScheme = scheme
	m.schemeName = strings.ToLower(name)
	return nil
}

func (m *Manager) ColorSchemeName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.schemeName
}

func (m *Manager) State() ViewState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}
