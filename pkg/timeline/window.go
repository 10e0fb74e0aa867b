// Package timeline computes what a scrolling two-bar timeline shows at a
// given playback time: the visible window, the beat and bar lines inside it,
// and the hits that fall into it. Drawing is left to the caller.
package timeline

import (
	"math"
	"strconv"

	"rhythmsignal/pkg/beatgrid"
	"rhythmsignal/pkg/onset"
	"rhythmsignal/pkg/utils"
)

const (
	// WindowBars is how many bars the window spans.
	WindowBars = 2
	// Lead is the fraction of the window shown before the playhead.
	Lead = 0.25

	minHitHeight = 0.02
	maxHitHeight = 1.0
)

// Window is the visible time range in seconds.
type Window struct {
	Start float64
	End   float64
}

// Width returns End - Start.
func (w Window) Width() float64 {
	return w.End - w.Start
}

// Contains reports whether t lies inside the closed range.
func (w Window) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// Fraction maps t to its relative position in the window.
func (w Window) Fraction(t float64) float64 {
	width := w.Width()
	if width <= 0 {
		return 0
	}
	return (t - w.Start) / width
}

// WindowWidth is the span of WindowBars bars of g.
func WindowWidth(g beatgrid.Grid) float64 {
	return WindowBars * g.BarSeconds()
}

// ComputeWindow places the window so the playhead sits a quarter of the way
// in. With a known duration the window never runs past the end of the track.
// A non-positive duration means unknown.
func ComputeWindow(t float64, g beatgrid.Grid, duration float64) Window {
	width := WindowWidth(g)
	start := math.Max(0, t-Lead*width)
	end := start + width
	if duration > 0 {
		end = math.Min(duration, end)
		start = math.Max(0, end-width)
	}
	return Window{Start: start, End: end}
}

// GridLine is one beat line inside a window.
type GridLine struct {
	T       float64
	Index   int
	BarHead bool
	// Label is the beat number within its bar, starting at 1.
	Label string
}

// maxBeatIndex is the largest beat index whose neighbours still have distinct
// float64 timestamps.
const maxBeatIndex = 1 << 52

// GridLines lists the beat lines of g inside w in time order. Beats before the
// downbeat anchor have negative indices and are included. Windows with
// non-finite bounds, or so far out that beats can no longer be told apart,
// have no lines.
func GridLines(w Window, g beatgrid.Grid) []GridLine {
	beat := g.BeatSeconds()
	if w.End < w.Start || math.IsInf(w.Start, 0) || math.IsInf(w.End, 0) || math.IsNaN(w.Start) || math.IsNaN(w.End) {
		return nil
	}

	kf := math.Floor((w.Start - g.DownbeatT0) / beat)
	if math.Abs(kf) > maxBeatIndex || math.Abs(kf+w.Width()/beat) > maxBeatIndex {
		return nil
	}
	k := int(kf)
	if g.TimeOfBeat(k) < w.Start {
		k++
	}

	limit := int(math.Ceil(w.Width()/beat)) + 1
	var lines []GridLine
	for t := g.TimeOfBeat(k); t <= w.End && len(lines) < limit; t = g.TimeOfBeat(k) {
		lines = append(lines, GridLine{
			T:       t,
			Index:   k,
			BarHead: g.IsBarHead(k),
			Label:   strconv.Itoa(g.BeatInBar(k)),
		})
		k++
	}
	return lines
}

// VisibleHit is a hit inside a window with its drawing height.
type VisibleHit struct {
	T      float64
	Height float64
}

// VisibleHits selects the hits inside w. Very quiet hits keep a minimum
// height so they stay visible.
func VisibleHits(hits []onset.HitEvent, w Window) []VisibleHit {
	var out []VisibleHit
	for _, h := range hits {
		if !w.Contains(h.T) {
			continue
		}
		out = append(out, VisibleHit{
			T:      h.T,
			Height: utils.Clamp(h.Strength, minHitHeight, maxHitHeight),
		})
	}
	return out
}

// Frame is everything the timeline shows at one playback time.
type Frame struct {
	Playhead float64
	Window   Window
	Lines    []GridLine
	Hits     []VisibleHit
}

// Compute builds the frame for playback time t.
func Compute(t float64, g beatgrid.Grid, duration float64, hits []onset.HitEvent) Frame {
	w := ComputeWindow(t, g, duration)
	return Frame{
		Playhead: t,
		Window:   w,
		Lines:    GridLines(w, g),
		Hits:     VisibleHits(hits, w),
	}
}
