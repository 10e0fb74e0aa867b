package viz

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"rhythmsignal/pkg/utils"
)

// Time utilities
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	min := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", min, sec)
}

func formatSeconds(s float64) string {
	return formatDuration(time.Duration(s * float64(time.Second)))
}

// blend mixes two colors in Lab space. Unparseable colors fall back to the
// nearer end.
func blend(from, to lipgloss.Color, t float64) lipgloss.Color {
	t = utils.Clamp(t, 0, 1)
	if t == 0 {
		return from
	}
	if t == 1 {
		return to
	}
	c1, err1 := colorful.Hex(string(from))
	c2, err2 := colorful.Hex(string(to))
	if err1 != nil || err2 != nil {
		if t < 0.5 {
			return from
		}
		return to
	}
	return lipgloss.Color(c1.BlendLab(c2, t).Clamped().Hex())
}

// MonitorColor is the beat monitor color for a flash level.
func MonitorColor(scheme ColorScheme, level float64) lipgloss.Color {
	return blend(scheme.MonitorOff, scheme.MonitorOn, level)
}

// column maps a window fraction to a cell index in [0, width-1].
func column(fraction float64, width int) int {
	if width <= 1 {
		return 0
	}
	return utils.Clamp(int(fraction*float64(width-1)+0.5), 0, width-1)
}
