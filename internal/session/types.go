package session

import (
	"errors"
	"time"

	"rhythmsignal/internal/audio"
	"rhythmsignal/internal/project"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeTrack
)

var (
	// ErrBusy is returned when a load or tempo estimate is already running.
	ErrBusy = audio.ErrBusy
	// ErrNoTrack is returned by commands that need a loaded track.
	ErrNoTrack = errors.New("no track loaded")
)

// AnalysisMsg carries the result of a background load back to the UI loop.
type AnalysisMsg struct {
	Path   string
	Result *audio.Analysis
	Err    error
}

// TempoMsg carries the result of a background tempo estimate.
type TempoMsg struct {
	BPM float64
	OK  bool
	Err error
}

// EnterVizMsg asks the UI to switch to the timeline view.
type EnterVizMsg struct{}

// Track summarizes the loaded track for the UI.
type Track struct {
	Title    string
	Artist   string
	Path     string
	Duration time.Duration
	Hits     int
}

// pendingProject is a project file whose audio is being loaded.
type pendingProject struct {
	path    string
	project *project.Project
}

func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	min := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return twoDigits(min) + ":" + twoDigits(sec)
}

func twoDigits(val int) string {
	if val < 10 {
		return "0" + string('0'+rune(val))
	}
	if val > 99 {
		val = 99
	}
	return string('0'+rune(val/10)) + string('0'+rune(val%10))
}
