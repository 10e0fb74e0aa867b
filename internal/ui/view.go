package ui

import (
	"fmt"
	"strings"
	"time"
)

func (m Model) View() string {
	if !m.ready {
		return "\nInitializing..."
	}

	// a load or tempo estimate in flight takes over the screen
	if m.commander.Busy() && m.uiMode != ModeViz {
		return m.loadingView()
	}

	switch m.uiMode {
	case ModeMini:
		return m.miniView()
	case ModeViz:
		return m.vizView()
	default:
		return m.fullView()
	}
}

func (m Model) loadingView() string {
	var sb strings.Builder
	status := m.commander.Status()
	sb.WriteString(fmt.Sprintf("\n%s %s\n", m.spinner.View(), status.Message))
	if !status.StartTime.IsZero() {
		sb.WriteString(fmt.Sprintf("Elapsed: %s\n", time.Since(status.StartTime).Round(100*time.Millisecond)))
	}
	return sb.String()
}

// miniView is a compact UI.
func (m Model) miniView() string {
	var sb strings.Builder

	if track := m.commander.GetCurrentTrack(); track != nil {
		sb.WriteString(fmt.Sprintf("\n%s\n", trackTitle(track.Artist, track.Title)))
		sb.WriteString(m.commander.GetPlaybackStatus())
	}

	sb.WriteString(fmt.Sprintf("\n%s%s", m.getPrompt(), m.input.View()))
	return sb.String()
}

// fullView is the default UI with a main viewport + input line.
func (m Model) fullView() string {
	var sb strings.Builder

	content := m.mainOutput
	if m.tabOutput != "" {
		content += "\n" + m.tabOutput
	}
	m.viewport.SetContent(content)
	sb.WriteString(m.viewport.View())

	sb.WriteString(fmt.Sprintf("\n%s%s", m.getPrompt(), m.input.View()))

	if m.exitPrompt {
		sb.WriteString("\nPress Ctrl+C again to exit or any other key to continue...")
	}

	return sb.String()
}

// vizView shows the timeline with the last message under it.
func (m Model) vizView() string {
	var sb strings.Builder

	if m.commander.IsInTrackMode() {
		sb.WriteString(m.commander.Viz().Render())
	} else {
		sb.WriteString("\nNo track loaded for visualization")
	}

	line := m.mainOutput
	if m.commander.Busy() {
		line = m.spinner.View() + " " + m.commander.Status().Message
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	sb.WriteString("\n" + line)

	sb.WriteString(fmt.Sprintf("\n%s%s", m.getPrompt(), m.input.View()))
	return sb.String()
}

func (m Model) getPrompt() string {
	if m.searchMode {
		return "search> "
	}
	if m.uiMode == ModeViz {
		return "viz> "
	}
	return "> "
}

func trackTitle(artist, title string) string {
	if artist == "" {
		return title
	}
	return artist + " - " + title
}
