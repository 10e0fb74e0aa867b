// Package beatgrid models the tempo grid of a track: a BPM, the timestamp of
// beat zero (the downbeat) and the bar length. All derived values clamp the
// tempo into a playable range instead of failing.
package beatgrid

import (
	"math"

	"rhythmsignal/pkg/utils"
)

const (
	MinBPM = 30.0
	MaxBPM = 300.0

	DefaultBPM         = 120.0
	DefaultBeatsPerBar = 4
)

// Grid is a tempo grid. BPM may briefly hold an out of range value while it
// is being edited; every computation clamps it to [MinBPM, MaxBPM].
type Grid struct {
	BPM         float64
	DownbeatT0  float64
	BeatsPerBar int
}

// New returns a grid with the given tempo and downbeat, normalized.
func New(bpm, downbeatT0 float64, beatsPerBar int) Grid {
	g := Grid{BPM: bpm, BeatsPerBar: beatsPerBar}
	g.SetDownbeat(downbeatT0)
	if g.BeatsPerBar < 1 {
		g.BeatsPerBar = 1
	}
	return g
}

// Default returns 120 BPM, downbeat at 0 and four beats per bar.
func Default() Grid {
	return Grid{BPM: DefaultBPM, DownbeatT0: 0, BeatsPerBar: DefaultBeatsPerBar}
}

// ClampBPM limits bpm to the supported tempo range. NaN maps to the default.
func ClampBPM(bpm float64) float64 {
	if math.IsNaN(bpm) {
		return DefaultBPM
	}
	return utils.Clamp(bpm, MinBPM, MaxBPM)
}

// BeatSeconds is the length of one beat. Always > 0.
func (g Grid) BeatSeconds() float64 {
	return 60.0 / ClampBPM(g.BPM)
}

// Bar returns the bar length in beats, at least 1.
func (g Grid) Bar() int {
	if g.BeatsPerBar < 1 {
		return 1
	}
	return g.BeatsPerBar
}

// BarSeconds is the length of one bar.
func (g Grid) BarSeconds() float64 {
	return float64(g.Bar()) * g.BeatSeconds()
}

// BeatIndexAt returns the index of the beat that contains t. Beat 0 starts at
// DownbeatT0; ok is false for any t before it, and for t so large the index
// does not fit an int.
func (g Grid) BeatIndexAt(t float64) (index int, ok bool) {
	dt := t - g.DownbeatT0
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0, false
	}
	q := floorDiv(dt, g.BeatSeconds())
	if math.IsNaN(q) || q >= float64(math.MaxInt) {
		return 0, false
	}
	return int(q), true
}

// TimeOfBeat returns the timestamp of beat k (k may be negative).
func (g Grid) TimeOfBeat(k int) float64 {
	return g.DownbeatT0 + float64(k)*g.BeatSeconds()
}

// BeatInBar returns the 1-based position of beat k inside its bar.
func (g Grid) BeatInBar(k int) int {
	return utils.FloorMod(k, g.Bar()) + 1
}

// IsBarHead reports whether beat k is the first beat of a bar.
func (g Grid) IsBarHead(k int) bool {
	return utils.FloorMod(k, g.Bar()) == 0
}

// SetBPM stores bpm as entered; derived values clamp it.
func (g *Grid) SetBPM(bpm float64) {
	g.BPM = bpm
}

// SetDownbeat moves beat zero to t, clamped to >= 0.
func (g *Grid) SetDownbeat(t float64) {
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	g.DownbeatT0 = t
}

// Normalized returns a copy with the tempo clamped and a valid bar length.
func (g Grid) Normalized() Grid {
	return Grid{BPM: ClampBPM(g.BPM), DownbeatT0: math.Max(0, g.DownbeatT0), BeatsPerBar: g.Bar()}
}

// floorDiv is floor division whose quotient agrees with the float remainder,
// so a timestamp sitting exactly on a beat maps to that beat.
func floorDiv(a, b float64) float64 {
	mod := math.Mod(a, b)
	div := (a - mod) / b
	if div == 0 {
		return 0
	}
	q := math.Floor(div)
	if div-q > 0.5 {
		q++
	}
	return q
}
