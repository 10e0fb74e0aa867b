package viz

import (
	"time"

	"rhythmsignal/pkg/timeline"
)

type ViewMode int

const (
	TimelineMode ViewMode = iota
	WaveformMode
)

func (m ViewMode) String() string {
	switch m {
	case TimelineMode:
		return "timeline"
	case WaveformMode:
		return "wave"
	}
	return "unknown"
}

// ViewState is what every visualization needs to draw one frame.
type ViewState struct {
	Mode        ViewMode
	Width       int
	Height      int
	ColorScheme ColorScheme

	Frame    timeline.Frame
	Flash    float64 // beat monitor brightness in [0,1]
	BPM      float64
	Playing  bool
	Duration time.Duration
}

// Visualization interface
type Visualization interface {
	Render(state ViewState) string
	Name() string
	Description() string
}
