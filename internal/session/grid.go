package session

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"rhythmsignal/pkg/beatgrid"
)

// BPMStep is the nudge applied by "bpm +" and "bpm -".
const BPMStep = 1.0

// setGrid replaces the grid. Any grid change restarts beat tracking so the
// next beat is only reported once it is actually crossed.
func (c *Commander) setGrid(g beatgrid.Grid) {
	g = g.Normalized()
	c.grid = g
	c.tracker.Reset()
	if c.project != nil {
		c.project.SetGrid(g)
	}
	c.log.WithFields(logrus.Fields{"bpm": g.BPM, "downbeat": g.DownbeatT0}).Debug("grid changed")
	c.refreshViz()
}

func (c *Commander) SetBPM(bpm float64) {
	g := c.grid
	g.SetBPM(bpm)
	c.setGrid(g)
}

func (c *Commander) SetDownbeat(t float64) {
	g := c.grid
	g.SetDownbeat(t)
	c.setGrid(g)
}

// NudgeBPM adds delta to the tempo.
func (c *Commander) NudgeBPM(delta float64) {
	c.SetBPM(c.grid.BPM + delta)
}

// MarkDownbeat puts the downbeat at the current playhead.
func (c *Commander) MarkDownbeat() {
	c.SetDownbeat(c.player.Position().Seconds())
}

func (c *Commander) handleBPM(args []string) (string, error, tea.Cmd) {
	if len(args) == 0 {
		return fmt.Sprintf("Tempo: %.2f BPM (range %.0f-%.0f)", c.grid.BPM, beatgrid.MinBPM, beatgrid.MaxBPM), nil, nil
	}
	switch strings.ToLower(args[0]) {
	case "+":
		c.NudgeBPM(BPMStep)
	case "-":
		c.NudgeBPM(-BPMStep)
	case "double", "x2":
		c.SetBPM(c.grid.BPM * 2)
	case "half", "/2":
		c.SetBPM(c.grid.BPM / 2)
	default:
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return "", fmt.Errorf("invalid BPM: %s", args[0]), nil
		}
		c.SetBPM(v)
	}
	return fmt.Sprintf("Tempo set to %.2f BPM", c.grid.BPM), nil, nil
}

func (c *Commander) handleDownbeat(args []string) (string, error, tea.Cmd) {
	if len(args) == 0 {
		c.MarkDownbeat()
	} else {
		t, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return "", fmt.Errorf("invalid time: %s", args[0]), nil
		}
		c.SetDownbeat(t)
	}
	return fmt.Sprintf("Downbeat set to %.3fs", c.grid.DownbeatT0), nil, nil
}

func (c *Commander) handleAuto() (string, error, tea.Cmd) {
	if c.busy {
		return "", ErrBusy, nil
	}
	if !c.analyzer.TempoAvailable() {
		if bpm, ok := c.track.Metadata.TempoHint(); ok {
			c.SetBPM(bpm)
			return fmt.Sprintf("Tempo set to %.2f BPM from file tag", c.grid.BPM), nil, nil
		}
		return "Tempo estimation is not available; BPM unchanged", nil, nil
	}

	c.busy = true
	analyzer, buf := c.analyzer, c.track.Buffer
	return "Estimating tempo...", nil, func() tea.Msg {
		bpm, ok, err := analyzer.EstimateTempo(buf)
		return TempoMsg{BPM: bpm, OK: ok, Err: err}
	}
}

// ApplyTempo commits a finished tempo estimate. Without an estimate the
// file's BPM tag is tried before giving up with the grid unchanged.
func (c *Commander) ApplyTempo(msg TempoMsg) (string, error) {
	c.busy = false
	if msg.Err != nil {
		return "", msg.Err
	}
	if c.track == nil {
		return "", ErrNoTrack
	}
	if msg.OK {
		c.SetBPM(msg.BPM)
		return fmt.Sprintf("Estimated tempo: %.2f BPM", c.grid.BPM), nil
	}
	if bpm, ok := c.track.Metadata.TempoHint(); ok {
		c.SetBPM(bpm)
		return fmt.Sprintf("No estimate; tempo set to %.2f BPM from file tag", c.grid.BPM), nil
	}
	return "Could not estimate tempo; BPM unchanged", nil
}
