package session

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"rhythmsignal/internal/project"
)

func (c *Commander) handleTag(args []string) (string, error, tea.Cmd) {
	m := project.Marker{
		T:     c.player.Position().Seconds(),
		Label: strings.Join(args, " "),
		Kind:  project.KindManual,
	}
	c.project.AddMarker(m)
	if m.Label == "" {
		return fmt.Sprintf("Marker at %.3fs", m.T), nil, nil
	}
	return fmt.Sprintf("Marker %q at %.3fs", m.Label, m.T), nil, nil
}

func (c *Commander) handleMarkers() (string, error, tea.Cmd) {
	manual := c.project.Manual()
	if len(manual) == 0 {
		return "No markers. Use 'tag [label]' to add one at the playhead.", nil, nil
	}
	var sb strings.Builder
	sb.WriteString("Markers:\n")
	for i, m := range manual {
		fmt.Fprintf(&sb, "%3d. %8.3fs  %s\n", i+1, m.T, m.Label)
	}
	return strings.TrimRight(sb.String(), "\n"), nil, nil
}

// handleSave writes the project. Hits are stored as hit markers next to
// the manual ones so the file describes the whole session.
func (c *Commander) handleSave(args []string) (string, error, tea.Cmd) {
	path := c.projectPath
	if len(args) > 0 {
		path = expandPath(strings.Trim(strings.Join(args, " "), `"'`))
	}
	if path == "" {
		path = defaultProjectPath(c.project.AudioPath)
	}

	out := project.New(c.project.AudioPath)
	out.SetGrid(c.grid)
	for _, m := range project.FromHits(c.hits) {
		out.AddMarker(m)
	}
	for _, m := range c.project.Manual() {
		out.AddMarker(m)
	}
	if err := out.Save(path); err != nil {
		return "", err, nil
	}
	c.projectPath = path
	c.log.WithFields(logrus.Fields{"path": path, "markers": len(out.Markers)}).Info("project saved")
	return fmt.Sprintf("Saved project to %s (%d markers)", path, len(out.Markers)), nil, nil
}

func defaultProjectPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".rhythm.json"
}

func (c *Commander) handleInfo() (string, error, tea.Cmd) {
	var sb strings.Builder
	if md := c.track.Metadata; md != nil {
		sb.WriteString(md.String())
		sb.WriteString("\n")
	}
	sb.WriteString("Session:\n")
	fmt.Fprintf(&sb, "  Tempo:    %.2f BPM\n", c.grid.BPM)
	fmt.Fprintf(&sb, "  Downbeat: %.3fs\n", c.grid.DownbeatT0)
	fmt.Fprintf(&sb, "  Hits:     %d\n", len(c.hits))
	fmt.Fprintf(&sb, "  Markers:  %d\n", len(c.project.Manual()))
	if c.projectPath != "" {
		fmt.Fprintf(&sb, "  Project:  %s\n", c.projectPath)
	}
	if !c.analyzer.TempoAvailable() {
		sb.WriteString("  Auto tempo unavailable\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil, nil
}
