package viz

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ColorScheme defines the colors used in visualizations
type ColorScheme struct {
	Background lipgloss.Color
	Text       lipgloss.Color
	Grid       lipgloss.Color
	GridStrong lipgloss.Color
	Accent     lipgloss.Color
	Hit        lipgloss.Color
	Playhead   lipgloss.Color
	MonitorOff lipgloss.Color
	MonitorOn  lipgloss.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Background: lipgloss.Color("#0B0F14"),
		Text:       lipgloss.Color("#D7DEE7"),
		Grid:       lipgloss.Color("#263241"),
		GridStrong: lipgloss.Color("#3B4D63"),
		Accent:     lipgloss.Color("#4CC3FF"),
		Hit:        lipgloss.Color("#44FFAA"),
		Playhead:   lipgloss.Color("#FF4C6A"),
		MonitorOff: lipgloss.Color("#2A3442"),
		MonitorOn:  lipgloss.Color("#FF2E2E"),
	}
}

// ColorSchemes contains all available color schemes
var ColorSchemes = map[string]ColorScheme{
	"default": DefaultColorScheme(),
	"monokai": {
		Background: lipgloss.Color("#272822"),
		Text:       lipgloss.Color("#f8f8f2"),
		Grid:       lipgloss.Color("#49483e"),
		GridStrong: lipgloss.Color("#75715e"),
		Accent:     lipgloss.Color("#66d9ef"),
		Hit:        lipgloss.Color("#a6e22e"),
		Playhead:   lipgloss.Color("#f92672"),
		MonitorOff: lipgloss.Color("#3e3d32"),
		MonitorOn:  lipgloss.Color("#fd971f"),
	},
	"nord": {
		Background: lipgloss.Color("#2e3440"),
		Text:       lipgloss.Color("#d8dee9"),
		Grid:       lipgloss.Color("#3b4252"),
		GridStrong: lipgloss.Color("#4c566a"),
		Accent:     lipgloss.Color("#88c0d0"),
		Hit:        lipgloss.Color("#a3be8c"),
		Playhead:   lipgloss.Color("#bf616a"),
		MonitorOff: lipgloss.Color("#434c5e"),
		MonitorOn:  lipgloss.Color("#d08770"),
	},
	"dracula": {
		Background: lipgloss.Color("#282a36"),
		Text:       lipgloss.Color("#f8f8f2"),
		Grid:       lipgloss.Color("#44475a"),
		GridStrong: lipgloss.Color("#6272a4"),
		Accent:     lipgloss.Color("#8be9fd"),
		Hit:        lipgloss.Color("#50fa7b"),
		Playhead:   lipgloss.Color("#ff79c6"),
		MonitorOff: lipgloss.Color("#343746"),
		MonitorOn:  lipgloss.Color("#ff5555"),
	},
}

// SchemeNames lists the color scheme names in order.
func SchemeNames() []string {
	names := maps.Keys(ColorSchemes)
	slices.Sort(names)
	return names
}
