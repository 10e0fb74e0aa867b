package session

import (
	tea "github.com/charmbracelet/bubbletea"

	"rhythmsignal/pkg/viz"
)

func (c *Commander) handleHelp() (string, error, tea.Cmd) {
	if c.mode == ModeTrack {
		return c.handleTrackHelp()
	}
	help := `Available Commands:

help, h              Show this help message
load, l <path>       Load an audio file and detect its hits
project <file>       Open a saved project and its audio
theme [name]         Show or change the color scheme
quit, q, exit        Exit application

Commands can be used with or without a colon prefix (:)
Example: Both "help" and ":help" will work`

	return help, nil, nil
}

func (c *Commander) handleTrackHelp() (string, error, tea.Cmd) {
	help := `Track Mode Commands:

play, p              Play current track
pause                Pause playback
stop                 Stop playback and rewind
toggle               Toggle play/pause
seek <s|+s|-s>       Jump to a position in seconds
bpm [v|+|-|x2|/2]    Show or change the tempo
downbeat, db [s]     Set the downbeat (default: playhead)
auto                 Estimate the tempo
tag, mark [label]    Add a marker at the playhead
markers              List markers
save [path]          Save the project
info, i              Show track and session details
unload               Unload current track and return to normal mode
help, h              Show this help message

Keys in timeline view: space play/pause, d downbeat, [ ] tempo -/+,
a auto tempo, t tag, left/right seek, tab switch view, esc back

`
	return help + viz.GetVizCommands(), nil, nil
}
