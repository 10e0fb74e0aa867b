package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"rhythmsignal/internal/session"
)

// TUI wraps our Bubble Tea program.
type TUI struct {
	program   *tea.Program
	commander *session.Commander
	startup   []string
}

// New returns a new TUI handle. The startup commands run once the program
// is up.
func New(c *session.Commander, startup ...string) *TUI {
	return &TUI{commander: c, startup: startup}
}

// Start runs the TUI main loop
func (t *TUI) Start() error {
	p := tea.NewProgram(NewModel(t.commander, t.startup...), tea.WithAltScreen())
	t.program = p
	_, err := p.Run()
	return err
}
