package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"rhythmsignal/internal/session"
)

// vizKeys are the single keys the timeline view reacts to while the prompt
// is empty.
var vizKeys = []struct {
	key  string
	desc string
}{
	{"space", "play / pause"},
	{"d", "set downbeat at playhead"},
	{"[ / ]", "tempo -1 / +1 BPM"},
	{"{ / }", "halve / double tempo"},
	{"a", "estimate tempo"},
	{"t", "tag marker at playhead"},
	{"left/right", "seek -5s / +5s"},
	{"tab", "switch view"},
	{"esc, q", "back to command view"},
}

func (m *Model) handleShortcut(key string) (string, error, tea.Cmd) {
	command, ok := m.shortcuts[key]
	if !ok {
		return "", nil, nil
	}
	switch command {
	case "toggle-mode":
		if m.uiMode == ModeFull {
			m.uiMode = ModeMini
		} else {
			m.uiMode = ModeFull
		}
		return "UI mode toggled", nil, nil
	case "clear":
		m.mainOutput = ""
		m.clearTabCompletion()
		return "", nil, nil
	default:
		return m.commander.Execute(command)
	}
}

// handleVizKey runs a timeline key. It reports false for keys that should
// go to the prompt instead.
func (m *Model) handleVizKey(key string) (bool, tea.Cmd) {
	var (
		out string
		err error
		cmd tea.Cmd
	)
	switch key {
	case " ":
		err = m.commander.TogglePlayback()
	case "d":
		out, err, cmd = m.commander.Execute("downbeat")
	case "[":
		m.commander.NudgeBPM(-session.BPMStep)
	case "]":
		m.commander.NudgeBPM(session.BPMStep)
	case "{":
		out, err, cmd = m.commander.Execute("bpm half")
	case "}":
		out, err, cmd = m.commander.Execute("bpm double")
	case "a":
		out, err, cmd = m.commander.Execute("auto")
	case "t":
		out, err, cmd = m.commander.Execute("tag")
	case "left":
		err = m.commander.SeekBy(-session.SeekStep)
	case "right":
		err = m.commander.SeekBy(session.SeekStep)
	case "tab":
		out, err = m.commander.Viz().CycleMode(1)
	case "shift+tab":
		out, err = m.commander.Viz().CycleMode(-1)
	case "esc", "q":
		m.uiMode = ModeFull
	default:
		return false, nil
	}
	m.report(out, err)
	return true, cmd
}

func (m *Model) report(out string, err error) {
	if err != nil {
		m.mainOutput = fmt.Sprintf("Error: %v", err)
	} else if out != "" {
		m.mainOutput = out
	}
}

func (m Model) showShortcuts() string {
	var sb strings.Builder
	sb.WriteString("\nKeyboard Shortcuts:\n")
	keys := maps.Keys(m.shortcuts)
	slices.Sort(keys)
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf("%-12s: %s\n", key, m.shortcuts[key]))
	}
	return sb.String()
}

func (m Model) showVisualizationShortcuts() string {
	var sb strings.Builder
	sb.WriteString("\nTimeline Keys (with an empty prompt):\n")
	for _, k := range vizKeys {
		sb.WriteString(fmt.Sprintf("%-12s: %s\n", k.key, k.desc))
	}
	return sb.String()
}
