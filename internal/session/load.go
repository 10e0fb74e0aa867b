package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"rhythmsignal/internal/audio"
	"rhythmsignal/internal/project"
)

func (c *Commander) handleLoad(path string) (string, error, tea.Cmd) {
	if c.busy {
		return "", ErrBusy, nil
	}
	if c.analyzer == nil {
		return "", fmt.Errorf("no analyzer configured"), nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("cannot open %s: %w", path, err), nil
	}

	c.busy = true
	analyzer := c.analyzer
	c.log.WithFields(logrus.Fields{"path": path}).Info("loading track")
	return fmt.Sprintf("Loading %s...", filepath.Base(path)), nil, func() tea.Msg {
		res, err := analyzer.Analyze(path)
		return AnalysisMsg{Path: path, Result: res, Err: err}
	}
}

func (c *Commander) handleOpenProject(path string) (string, error, tea.Cmd) {
	if c.busy {
		return "", ErrBusy, nil
	}
	p, err := project.Load(path)
	if err != nil {
		return "", err, nil
	}
	audioPath := p.AudioPath
	if !filepath.IsAbs(audioPath) {
		audioPath = filepath.Join(filepath.Dir(path), audioPath)
	}
	p.AudioPath = audioPath

	out, err, cmd := c.handleLoad(audioPath)
	if err != nil {
		return "", fmt.Errorf("project %s: %w", filepath.Base(path), err), nil
	}
	c.pending = &pendingProject{path: path, project: p}
	return out, nil, cmd
}

// ApplyAnalysis commits a finished load. A failed load leaves the current
// track, grid and hits untouched.
func (c *Commander) ApplyAnalysis(msg AnalysisMsg) (string, error) {
	c.busy = false
	pending := c.pending
	c.pending = nil

	if msg.Err != nil {
		if de, ok := audio.AsDecodeError(msg.Err); ok {
			return "", de
		}
		return "", fmt.Errorf("failed to load %s: %w", filepath.Base(msg.Path), msg.Err)
	}
	res := msg.Result
	if res == nil || res.Buffer == nil {
		return "", fmt.Errorf("failed to load %s: no audio", filepath.Base(msg.Path))
	}
	if err := c.player.Load(res.Buffer); err != nil {
		return "", fmt.Errorf("failed to load %s: %w", filepath.Base(msg.Path), err)
	}

	c.track = res
	c.hits = res.Hits
	c.mode = ModeTrack

	if pending != nil && pending.project.AudioPath == msg.Path {
		c.project = pending.project
		c.projectPath = pending.path
		c.grid = c.project.Grid()
	} else {
		c.grid.SetDownbeat(0)
		c.project = project.New(msg.Path)
		c.project.SetGrid(c.grid)
		c.projectPath = ""
	}
	c.tracker.Reset()
	c.flash.Clear()

	mono := res.Buffer.Mono()
	c.vizManager.SetWaveform(mono.Samples, mono.SampleRate, mono.Duration())
	c.refreshViz()

	title := filepath.Base(msg.Path)
	if res.Metadata != nil && res.Metadata.Title != "" {
		title = res.Metadata.Title
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Loaded %s\n", title)
	fmt.Fprintf(&sb, "Duration: %s, %d hits, %.2f BPM", FormatDuration(res.Buffer.Duration()), len(c.hits), c.grid.BPM)
	if c.projectPath != "" {
		fmt.Fprintf(&sb, "\nProject: %s (%d manual markers)", filepath.Base(c.projectPath), len(c.project.Manual()))
	}
	sb.WriteString("\nType 'play' to start, 'auto' to estimate tempo or 'help' for more.")
	return sb.String(), nil
}
