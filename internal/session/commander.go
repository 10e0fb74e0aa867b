// Package session owns the state of one editing session: the loaded track,
// its hits, the beat grid and the beat tracker. The UI drives it with text
// commands and a periodic Tick.
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
	"rhythmsignal/pkg/beatgrid"
	"rhythmsignal/pkg/onset"
	"rhythmsignal/pkg/timeline"
	"rhythmsignal/pkg/viz"
)

// Options wires a Commander to its collaborators.
type Options struct {
	Analyzer *audio.Analyzer
	Player   *audio.Player
	Viz      *viz.Manager
	Flash    *timeline.Flash
	Log      logrus.FieldLogger
}

type Commander struct {
	analyzer   *audio.Analyzer
	player     *audio.Player
	vizManager *viz.Manager
	flash      *timeline.Flash
	log        logrus.FieldLogger

	mode    Mode
	busy    bool
	grid    beatgrid.Grid
	tracker beatgrid.Tracker
	hits    []onset.HitEvent
	track   *audio.Analysis

	project     *project.Project
	projectPath string
	pending     *pendingProject
}

func NewCommander(opts Options) *Commander {
	if opts.Viz == nil {
		opts.Viz = viz.NewManager()
	}
	if opts.Flash == nil {
		opts.Flash = timeline.NewFlash(nil, timeline.DefaultFlashDuration)
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Commander{
		analyzer:   opts.Analyzer,
		player:     opts.Player,
		vizManager: opts.Viz,
		flash:      opts.Flash,
		log:        opts.Log,
		mode:       ModeNormal,
		grid:       beatgrid.Default(),
	}
}

func (c *Commander) IsInTrackMode() bool {
	return c.mode == ModeTrack
}

// Busy reports whether a load or tempo estimate is in flight.
func (c *Commander) Busy() bool {
	return c.busy
}

// Status is the analyzer's current loading state.
func (c *Commander) Status() audio.ProcessingStatus {
	if c.analyzer == nil {
		return audio.ProcessingStatus{}
	}
	return c.analyzer.Status()
}

func (c *Commander) Grid() beatgrid.Grid {
	return c.grid
}

func (c *Commander) Hits() []onset.HitEvent {
	return c.hits
}

func (c *Commander) Viz() *viz.Manager {
	return c.vizManager
}

func (c *Commander) Flash() *timeline.Flash {
	return c.flash
}

func (c *Commander) Player() *audio.Player {
	return c.player
}

func (c *Commander) Project() *project.Project {
	return c.project
}

func (c *Commander) GetCurrentTrack() *Track {
	if c.track == nil {
		return nil
	}
	t := &Track{Path: c.track.Path, Duration: c.player.Duration(), Hits: len(c.hits)}
	if md := c.track.Metadata; md != nil {
		t.Title, t.Artist = md.Title, md.Artist
	}
	if t.Title == "" {
		t.Title = filepath.Base(c.track.Path)
	}
	return t
}

func (c *Commander) GetPlaybackStatus() string {
	if c.track == nil {
		return ""
	}
	state := "Stopped"
	switch c.player.State() {
	case audio.StatePlaying:
		state = "Playing"
	case audio.StatePaused:
		state = "Paused"
	}
	status := fmt.Sprintf("[%s] %s / %s",
		state,
		FormatDuration(c.player.Position()),
		FormatDuration(c.player.Duration()))
	return status + "\n" + c.player.RenderTrackBar(60)
}

func (c *Commander) Execute(input string) (string, error, tea.Cmd) {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, ":")

	// a bare path loads the file
	if strings.HasPrefix(input, "/") || strings.HasPrefix(input, "./") || strings.HasPrefix(input, "~/") {
		return c.handleLoad(expandPath(input))
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return "", fmt.Errorf("empty command"), nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		return c.handleHelp()
	case "quit", "q", "exit":
		c.shutdown()
		return "Goodbye!", nil, tea.Quit
	case "load", "l", "open", "o":
		if len(args) == 0 {
			return "", fmt.Errorf("usage: load <path>"), nil
		}
		return c.handleLoad(expandPath(strings.Trim(strings.Join(args, " "), `"'`)))
	case "project":
		if len(args) == 0 {
			return "", fmt.Errorf("usage: project <file.json>"), nil
		}
		return c.handleOpenProject(expandPath(strings.Trim(strings.Join(args, " "), `"'`)))
	case "viz", "v", "theme":
		name := cmd
		if name == "v" {
			name = "viz"
		}
		out, err := viz.Commands[name].Handler(c.vizManager, args)
		if err != nil || name != "viz" || len(args) == 0 {
			return out, err, nil
		}
		return out, nil, func() tea.Msg { return EnterVizMsg{} }
	}

	if c.mode != ModeTrack {
		if _, ok := trackCommands[cmd]; ok {
			return "", ErrNoTrack, nil
		}
		return "", fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd), nil
	}
	return c.handleTrackCommand(cmd, args)
}

var trackCommands = map[string]struct{}{
	"play": {}, "p": {}, "pause": {}, "stop": {}, "toggle": {}, "seek": {},
	"bpm": {}, "downbeat": {}, "db": {}, "auto": {}, "tag": {}, "mark": {},
	"markers": {}, "save": {}, "info": {}, "i": {}, "unload": {},
}

func (c *Commander) handleTrackCommand(cmd string, args []string) (string, error, tea.Cmd) {
	switch cmd {
	case "play", "p":
		return c.handlePlay()
	case "pause":
		return c.handlePause()
	case "stop":
		return c.handleStop()
	case "toggle":
		return c.handleToggle()
	case "seek":
		return c.handleSeek(args)
	case "bpm":
		return c.handleBPM(args)
	case "downbeat", "db":
		return c.handleDownbeat(args)
	case "auto":
		return c.handleAuto()
	case "tag", "mark":
		return c.handleTag(args)
	case "markers":
		return c.handleMarkers()
	case "save":
		return c.handleSave(args)
	case "info", "i":
		return c.handleInfo()
	case "unload":
		c.unload()
		return "Track unloaded. Returning to normal mode.", nil, nil
	default:
		return "", fmt.Errorf("unknown track command: %s (type 'help' for available commands)", cmd), nil
	}
}

func (c *Commander) shutdown() {
	if c.player != nil {
		if err := c.player.Close(); err != nil {
			c.log.WithError(err).Debug("closing player")
		}
	}
}

func (c *Commander) unload() {
	if c.player != nil {
		c.player.Stop()
	}
	c.mode = ModeNormal
	c.track = nil
	c.hits = nil
	c.project = nil
	c.projectPath = ""
	c.tracker.Reset()
	c.flash.Clear()
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return filepath.Clean(path)
}
