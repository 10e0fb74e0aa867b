package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"rhythmsignal/internal/session"
)

// Update is the main update function for our TUI's bubbletea loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tickMsg:
		if m.commander.Tick() {
			// the flash is time based; this redraw makes sure it goes dark
			return m, tea.Batch(tick(), tea.Tick(m.commander.Flash().Duration(), func(_ time.Time) tea.Msg {
				return flashOffMsg{}
			}))
		}
		return m, tick()

	case flashOffMsg:
		return m, nil

	case startupMsg:
		return m.execute(msg.input)

	case session.AnalysisMsg:
		out, err := m.commander.ApplyAnalysis(msg)
		m.report(out, err)
		if err == nil {
			m.uiMode = ModeViz
		}
		return m, nil

	case session.TempoMsg:
		out, err := m.commander.ApplyTempo(msg)
		m.report(out, err)
		return m, nil

	case session.EnterVizMsg:
		if m.commander.IsInTrackMode() {
			m.uiMode = ModeViz
		}
		return m, nil

	case tea.KeyMsg:
		if m.uiMode == ModeViz && m.commander.IsInTrackMode() && m.input.Value() == "" {
			if handled, cmd := m.handleVizKey(msg.String()); handled {
				return m, cmd
			}
		}

		switch msg.Type {
		case tea.KeyCtrlC:
			// If we're already prompting to exit, this time we really quit:
			if m.exitPrompt {
				return m.execute("quit")
			}
			if m.uiMode == ModeViz {
				m.uiMode = ModeFull
				return m, nil
			}
			if m.commander.IsInTrackMode() {
				return m.execute("unload")
			}
			m.exitPrompt = true
			m.mainOutput = "Press Ctrl+C again to exit or any other key to continue..."
			return m, nil

		case tea.KeyUp:
			if m.historyPos < len(m.history)-1 {
				m.historyPos++
				m.input.SetValue(m.history[len(m.history)-1-m.historyPos])
			}

		case tea.KeyDown:
			if m.historyPos > 0 {
				m.historyPos--
				m.input.SetValue(m.history[len(m.history)-1-m.historyPos])
			} else if m.historyPos == 0 {
				m.historyPos = -1
				m.input.SetValue("")
			}

		case tea.KeyCtrlR:
			if !m.searchMode {
				m.searchMode = true
				m.searchQuery = ""
				m.input.SetValue("")
				m.input.Placeholder = "Search history..."
			}

		case tea.KeyTab:
			if m.searchMode {
				return m, nil
			}
			m.handleTabCompletion()
			return m, nil

		case tea.KeyEnter:
			m.exitPrompt = false
			command := m.input.Value()
			if command == "" {
				break
			}
			if m.searchMode {
				m.searchMode = false
				m.input.Placeholder = "Enter command (type 'help' for list)"
				for i := len(m.history) - 1; i >= 0; i-- {
					if strings.Contains(m.history[i], command) {
						m.input.SetValue(m.history[i])
						break
					}
				}
				return m, nil
			}
			m.history = append(m.history, command)
			m.historyPos = -1
			m.clearTabCompletion()
			m.input.SetValue("")
			if m.uiMode == ModeViz {
				switch command {
				case "q", "quit", "exit":
					m.uiMode = ModeFull
					return m, nil
				case "help", "h", "?":
					m.mainOutput = m.showVisualizationShortcuts()
					return m, nil
				}
			}
			return m.execute(command)

		case tea.KeyRunes:
			if len(msg.Runes) == 1 && msg.Runes[0] == '?' && m.input.Value() == "" {
				if m.uiMode == ModeViz {
					m.mainOutput = m.showVisualizationShortcuts()
				} else {
					m.mainOutput = m.showShortcuts()
				}
				return m, nil
			}
			m.exitPrompt = false

		case tea.KeyEsc:
			if m.searchMode {
				m.searchMode = false
				m.input.Placeholder = "Enter command (type 'help' for list)"
				m.input.SetValue("")
			}
			m.clearTabCompletion()
			m.exitPrompt = false

		case tea.KeyBackspace:
			if len(m.input.Value()) == 0 {
				m.clearTabCompletion()
			}

		default:
			output, err, shortcutCmd := m.handleShortcut(msg.String())
			m.report(output, err)
			if shortcutCmd != nil {
				cmds = append(cmds, shortcutCmd)
			}
			m.exitPrompt = false
			if m.searchMode {
				m.searchQuery = m.input.Value()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-3)
			m.ready = true
		}
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 3
		m.input.Width = msg.Width - 8
		// leave room for the title, the status line and the prompt
		m.commander.Viz().SetDimensions(msg.Width, msg.Height-4)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		var viewportCmd tea.Cmd
		m.viewport, viewportCmd = m.viewport.Update(msg)
		cmds = append(cmds, viewportCmd)
	}

	return m, tea.Batch(cmds...)
}

// execute runs one command line. A busy session keeps the spinner up
// instead of reporting an error.
func (m Model) execute(command string) (tea.Model, tea.Cmd) {
	output, err, cmd := m.commander.Execute(command)
	switch {
	case errors.Is(err, session.ErrBusy):
		m.mainOutput = "Still working on the previous request..."
	case err != nil:
		m.mainOutput = fmt.Sprintf("Error: %v", err)
	default:
		m.mainOutput = output
	}
	return m, cmd
}
