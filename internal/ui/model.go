package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhythmsignal/internal/session"
)

type UIMode int

const (
	ModeFull UIMode = iota
	ModeMini
	ModeViz
)

// tickInterval is how often the playhead is sampled.
const tickInterval = 16 * time.Millisecond

type (
	tickMsg     time.Time
	flashOffMsg struct{}
	startupMsg  struct{ input string }
)

type Model struct {
	input       textinput.Model
	viewport    viewport.Model
	commander   *session.Commander
	spinner     spinner.Model
	style       lipgloss.Style
	ready       bool
	width       int
	height      int
	mainOutput  string
	tabOutput   string
	history     []string
	historyPos  int
	tabState    *TabState
	searchMode  bool
	searchQuery string
	exitPrompt  bool
	uiMode      UIMode
	shortcuts   map[string]string
	startup     []string
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, spinner.Tick, tick()}
	for _, input := range m.startup {
		input := input
		cmds = append(cmds, func() tea.Msg { return startupMsg{input: input} })
	}
	return tea.Sequence(cmds...)
}

// NewModel returns the UI for c. Each startup command runs once, in order,
// as if typed at the prompt.
func NewModel(c *session.Commander, startup ...string) Model {
	input := textinput.New()
	input.Placeholder = "Enter command (type 'help' for list)"
	input.Focus()
	input.CharLimit = 256
	input.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CC3FF"))

	style := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))

	shortcuts := map[string]string{
		"ctrl+q": "quit",
		"ctrl+p": "toggle",
		"ctrl+s": "stop",
		"ctrl+l": "clear",
		"ctrl+t": "toggle-mode",
		"ctrl+w": "save",
	}

	return Model{
		input:      input,
		commander:  c,
		spinner:    s,
		style:      style,
		history:    make([]string, 0),
		historyPos: -1,
		mainOutput: "Welcome to rhythmsignal! Type 'help' for commands.\nPress '?' to show keyboard shortcuts.",
		uiMode:     ModeFull,
		shortcuts:  shortcuts,
		startup:    startup,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
