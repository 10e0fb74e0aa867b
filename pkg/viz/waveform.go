package viz

import (
	"math"

	"rhythmsignal/pkg/utils"
)

const waveformMaxHeight = 24

// WaveformViz draws the peak waveform of the visible window.
type WaveformViz struct {
	data       []float32
	sampleRate int
	maxAmp     float64
}

func NewWaveformViz(data []float32, sampleRate int) *WaveformViz {
	maxAmp := 0.0
	for _, v := range data {
		a := math.Abs(float64(v))
		if a > maxAmp {
			maxAmp = a
		}
	}

	return &WaveformViz{
		data:       data,
		sampleRate: sampleRate,
		maxAmp:     maxAmp,
	}
}

func (w *WaveformViz) Render(state ViewState) string {
	if len(w.data) == 0 || w.sampleRate <= 0 {
		return "No data for waveform."
	}

	availWidth := state.Width
	if availWidth < 1 {
		availWidth = 1
	}
	availHeight := state.Height - 2
	if availHeight < 3 {
		availHeight = 3
	}
	if availHeight > waveformMaxHeight {
		availHeight = waveformMaxHeight
	}

	scheme := state.ColorScheme
	win := state.Frame.Window
	c := newCanvas(availWidth, availHeight+1)
	centerY := availHeight / 2
	half := float64(availHeight/2 - 1)

	maxAmp := w.maxAmp
	if maxAmp == 0 {
		maxAmp = 1
	}

	secondsPerCol := win.Width() / float64(availWidth)
	for x := 0; x < availWidth; x++ {
		startIdx := int((win.Start + float64(x)*secondsPerCol) * float64(w.sampleRate))
		endIdx := int((win.Start + float64(x+1)*secondsPerCol) * float64(w.sampleRate))
		if startIdx >= len(w.data) {
			break
		}
		endIdx = utils.Clamp(endIdx, startIdx+1, len(w.data))

		var minVal, maxVal float64
		for _, v := range w.data[startIdx:endIdx] {
			minVal = math.Min(minVal, float64(v))
			maxVal = math.Max(maxVal, float64(v))
		}

		// screen y grows downwards
		topY := utils.Clamp(centerY-int(maxVal/maxAmp*half), 0, availHeight-1)
		botY := utils.Clamp(centerY-int(minVal/maxAmp*half), 0, availHeight-1)
		for y := topY; y <= botY; y++ {
			ch := "│"
			if y == centerY {
				ch = "─"
			} else if y == topY || y == botY {
				ch = "█"
			}
			c.set(x, y, ch, scheme.Accent)
		}
	}

	for _, line := range state.Frame.Lines {
		if !line.BarHead {
			continue
		}
		c.set(column(win.Fraction(line.T), availWidth), availHeight, "┃", scheme.GridStrong)
	}
	if win.Contains(state.Frame.Playhead) {
		x := column(win.Fraction(state.Frame.Playhead), availWidth)
		for y := 0; y < availHeight; y++ {
			if c.cells[y][x].ch == " " {
				c.set(x, y, "╎", scheme.Playhead)
			}
		}
		c.set(x, availHeight, "▲", scheme.Playhead)
	}

	return c.String()
}

func (w *WaveformViz) Name() string {
	return "Waveform"
}

func (w *WaveformViz) Description() string {
	return "Peak waveform of the visible window"
}
