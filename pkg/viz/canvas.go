package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cell struct {
	ch    string
	color lipgloss.Color
}

// canvas is a fixed grid of colored cells rendered row by row.
type canvas struct {
	width, height int
	cells         [][]cell
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height, cells: make([][]cell, height)}
	for y := range c.cells {
		c.cells[y] = make([]cell, width)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{ch: " "}
		}
	}
	return c
}

func (c *canvas) set(x, y int, ch string, color lipgloss.Color) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y][x] = cell{ch: ch, color: color}
}

func (c *canvas) text(x, y int, s string, color lipgloss.Color) {
	for i, r := range []rune(s) {
		c.set(x+i, y, string(r), color)
	}
}

// String renders runs of equally colored cells with one style each.
func (c *canvas) String() string {
	var sb strings.Builder
	for y, row := range c.cells {
		var run strings.Builder
		var runColor lipgloss.Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(runColor).Render(run.String()))
			}
			run.Reset()
		}
		for _, cl := range row {
			if cl.color != runColor {
				flush()
				runColor = cl.color
			}
			run.WriteString(cl.ch)
		}
		flush()
		if y < c.height-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
