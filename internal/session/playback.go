package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"rhythmsignal/pkg/timeline"
)

// SeekStep is how far the arrow keys move the playhead.
const SeekStep = 5 * time.Second

func (c *Commander) handlePlay() (string, error, tea.Cmd) {
	if err := c.player.Play(); err != nil {
		return "", fmt.Errorf("playback failed: %w", err), nil
	}
	return "Playing", nil, nil
}

func (c *Commander) handlePause() (string, error, tea.Cmd) {
	if err := c.player.Pause(); err != nil {
		return "", err, nil
	}
	return fmt.Sprintf("Paused at %s", FormatDuration(c.player.Position())), nil, nil
}

func (c *Commander) handleStop() (string, error, tea.Cmd) {
	if err := c.player.Stop(); err != nil {
		return "", err, nil
	}
	c.tracker.Reset()
	c.flash.Clear()
	return "Stopped", nil, nil
}

func (c *Commander) handleToggle() (string, error, tea.Cmd) {
	if c.player.Playing() {
		return c.handlePause()
	}
	return c.handlePlay()
}

// TogglePlayback is the space bar.
func (c *Commander) TogglePlayback() error {
	if c.track == nil {
		return ErrNoTrack
	}
	_, err, _ := c.handleToggle()
	return err
}

func (c *Commander) handleSeek(args []string) (string, error, tea.Cmd) {
	if len(args) == 0 {
		return "", fmt.Errorf("usage: seek <seconds|+seconds|-seconds>"), nil
	}
	arg := args[0]
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return "", fmt.Errorf("invalid position: %s", arg), nil
	}
	target := time.Duration(v * float64(time.Second))
	if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") {
		target += c.player.Position()
	}
	if err := c.Seek(target); err != nil {
		return "", err, nil
	}
	return fmt.Sprintf("Position: %s", FormatDuration(c.player.Position())), nil, nil
}

// Seek moves the playhead. Beat tracking restarts from the new position.
func (c *Commander) Seek(pos time.Duration) error {
	if c.track == nil {
		return ErrNoTrack
	}
	if err := c.player.Seek(pos); err != nil {
		return err
	}
	c.tracker.Reset()
	c.refreshViz()
	return nil
}

// SeekBy moves the playhead relative to where it is.
func (c *Commander) SeekBy(d time.Duration) error {
	return c.Seek(c.player.Position() + d)
}

// Tick samples the playhead, fires the flash when a new beat has been
// crossed and pushes a fresh frame to the visualizer. It reports whether a
// beat fired.
func (c *Commander) Tick() bool {
	if c.track == nil {
		return false
	}
	fired := false
	if c.player.Playing() {
		if c.tracker.Poll(c.grid, c.player.Position().Seconds()) {
			c.flash.Fire()
			fired = true
		}
	}
	c.refreshViz()
	return fired
}

// Frame is the timeline view at the current playhead.
func (c *Commander) Frame() timeline.Frame {
	var pos, dur float64
	if c.track != nil {
		pos = c.player.Position().Seconds()
		dur = c.player.Duration().Seconds()
	}
	return timeline.Compute(pos, c.grid, dur, c.hits)
}

func (c *Commander) refreshViz() {
	playing := c.track != nil && c.player.Playing()
	c.vizManager.Update(c.Frame(), c.flash.Level(), c.grid.BPM, playing)
}
