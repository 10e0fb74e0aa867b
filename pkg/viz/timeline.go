package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	timelineMaxHeight = 24
	timelineMinHeight = 4
)

// TimelineViz draws the scrolling two-bar grid with hits and the playhead.
type TimelineViz struct{}

func NewTimelineViz() *TimelineViz {
	return &TimelineViz{}
}

func (v *TimelineViz) Render(state ViewState) string {
	width := state.Width
	if width < 8 {
		return "Window too narrow"
	}
	// label row, hit rows, baseline, time axis
	rows := state.Height - 3
	if rows > timelineMaxHeight {
		rows = timelineMaxHeight
	}
	if rows < timelineMinHeight {
		rows = timelineMinHeight
	}

	scheme := state.ColorScheme
	frame := state.Frame
	win := frame.Window
	c := newCanvas(width, rows+3)
	base := rows + 1

	for x := 0; x < width; x++ {
		c.set(x, base, "─", scheme.Grid)
	}

	for _, line := range frame.Lines {
		x := column(win.Fraction(line.T), width)
		ch, color := "│", scheme.Grid
		if line.BarHead {
			ch, color = "┃", scheme.GridStrong
		}
		for y := 1; y < base; y++ {
			c.set(x, y, ch, color)
		}
		c.set(x, base, "┴", color)
		labelColor := scheme.Grid
		if line.BarHead {
			labelColor = scheme.Accent
		}
		c.text(x, 0, line.Label, labelColor)
	}

	for _, hit := range frame.Hits {
		x := column(win.Fraction(hit.T), width)
		h := int(math.Ceil(hit.Height * float64(rows)))
		for y := base - 1; y >= base-h && y >= 1; y-- {
			c.set(x, y, "█", scheme.Hit)
		}
	}

	if win.Contains(frame.Playhead) {
		x := column(win.Fraction(frame.Playhead), width)
		c.set(x, 0, "▼", scheme.Playhead)
		for y := 1; y < base; y++ {
			if c.cells[y][x].ch == " " || c.cells[y][x].ch == "│" || c.cells[y][x].ch == "┃" {
				c.set(x, y, "╎", scheme.Playhead)
			}
		}
		c.set(x, base, "╋", scheme.Playhead)
	}

	start, end := formatSeconds(win.Start), formatSeconds(win.End)
	c.text(0, base+1, start, scheme.Text)
	c.text(width-len(end), base+1, end, scheme.Text)

	return c.String()
}

// StatusLine shows the beat monitor, tempo and position.
func StatusLine(state ViewState) string {
	monitor := lipgloss.NewStyle().
		Foreground(MonitorColor(state.ColorScheme, state.Flash)).
		Render("████")
	status := "paused"
	if state.Playing {
		status = "playing"
	}
	info := fmt.Sprintf(" %6.2f BPM | %s / %s | %s",
		state.BPM, formatSeconds(state.Frame.Playhead), formatDuration(state.Duration), status)
	return monitor + lipgloss.NewStyle().Foreground(state.ColorScheme.Text).Render(info)
}

func (v *TimelineViz) Name() string {
	return "Timeline"
}

func (v *TimelineViz) Description() string {
	return "Two-bar beat grid with detected hits"
}

// legend is shown under the timeline.
func legend(scheme ColorScheme) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(scheme.GridStrong).Render("┃ "))
	sb.WriteString("bar  ")
	sb.WriteString(lipgloss.NewStyle().Foreground(scheme.Grid).Render("│ "))
	sb.WriteString("beat  ")
	sb.WriteString(lipgloss.NewStyle().Foreground(scheme.Hit).Render("█ "))
	sb.WriteString("hit  ")
	sb.WriteString(lipgloss.NewStyle().Foreground(scheme.Playhead).Render("▼ "))
	sb.WriteString("playhead")
	return sb.String()
}
