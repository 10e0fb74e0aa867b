package viz

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Command represents a visualization command
type Command struct {
	Name        string
	Description string
	Handler     func(*Manager, []string) (string, error)
}

var Commands = map[string]Command{
	"viz": {
		Name:        "viz",
		Description: "Change visualization mode (viz [timeline|wave])",
		Handler:     handleVizMode,
	},
	"theme": {
		Name:        "theme",
		Description: "Change color scheme (theme [name])",
		Handler:     handleColorScheme,
	},
}

func GetVizCommands() string {
	var sb strings.Builder
	sb.WriteString("Visualization Commands:\n\n")
	names := maps.Keys(Commands)
	slices.Sort(names)
	for _, name := range names {
		cmd := Commands[name]
		sb.WriteString(fmt.Sprintf("%-12s %s\n", cmd.Name, cmd.Description))
	}
	return sb.String()
}

func handleVizMode(m *Manager, args []string) (string, error) {
	if len(args) == 0 {
		return fmt.Sprintf("Current view: %s (available: timeline, wave)", m.Mode()), nil
	}

	var mode ViewMode
	switch strings.ToLower(args[0]) {
	case "timeline", "grid", "beat":
		mode = TimelineMode
	case "wave", "waveform":
		mode = WaveformMode
	default:
		return "", fmt.Errorf("invalid mode: %s", args[0])
	}

	if err := m.SetMode(mode); err != nil {
		return "", err
	}
	return fmt.Sprintf("Switched to %s view", mode), nil
}

func handleColorScheme(m *Manager, args []string) (string, error) {
	if len(args) == 0 {
		return fmt.Sprintf("Current scheme: %s (available: %s)",
			m.ColorSchemeName(), strings.Join(SchemeNames(), ", ")), nil
	}
	if err := m.SetColorScheme(args[0]); err != nil {
		return "", err
	}
	return fmt.Sprintf("Color scheme set to %s", strings.ToLower(args[0])), nil
}
