// Package project saves and restores a track's beat grid and markers as JSON.
package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"rhythmsignal/pkg/beatgrid"
	"rhythmsignal/pkg/onset"
)

type MarkerKind string

const (
	KindHit    MarkerKind = "hit"
	KindManual MarkerKind = "manual"
)

// Marker is a labelled point on the track.
type Marker struct {
	T     float64    `json:"t"`
	Label string     `json:"label"`
	Kind  MarkerKind `json:"kind"`
}

// Project is everything needed to reopen a session.
type Project struct {
	AudioPath  string   `json:"audio_path"`
	BPM        float64  `json:"bpm"`
	DownbeatT0 float64  `json:"downbeat_t0"`
	Markers    []Marker `json:"markers"`
}

// ErrNoAudioPath is returned when a project file names no audio file.
var ErrNoAudioPath = errors.New("project has no audio_path")

// New returns a project for audioPath with the default grid.
func New(audioPath string) *Project {
	return &Project{AudioPath: audioPath, BPM: beatgrid.DefaultBPM, Markers: []Marker{}}
}

// FromHits turns detected hits into hit markers.
func FromHits(hits []onset.HitEvent) []Marker {
	markers := make([]Marker, 0, len(hits))
	for _, h := range hits {
		markers = append(markers, Marker{T: h.T, Kind: KindHit})
	}
	return markers
}

// Grid returns the project's beat grid with the default bar length.
func (p *Project) Grid() beatgrid.Grid {
	return beatgrid.New(p.BPM, p.DownbeatT0, beatgrid.DefaultBeatsPerBar)
}

// SetGrid stores the tempo and downbeat of g.
func (p *Project) SetGrid(g beatgrid.Grid) {
	p.BPM = g.BPM
	p.DownbeatT0 = g.DownbeatT0
}

// AddMarker inserts m keeping the markers in time order.
func (p *Project) AddMarker(m Marker) {
	if m.Kind == "" {
		m.Kind = KindManual
	}
	i := sort.Search(len(p.Markers), func(i int) bool { return p.Markers[i].T > m.T })
	p.Markers = append(p.Markers, Marker{})
	copy(p.Markers[i+1:], p.Markers[i:])
	p.Markers[i] = m
}

// Manual returns the markers placed by hand.
func (p *Project) Manual() []Marker {
	var out []Marker
	for _, m := range p.Markers {
		if m.Kind == KindManual {
			out = append(out, m)
		}
	}
	return out
}

// Save writes p to path as indented JSON.
func (p *Project) Save(path string) error {
	out := *p
	if out.Markers == nil {
		out.Markers = []Marker{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}

// Load reads a project file. Missing bpm and downbeat_t0 take their defaults,
// and markers without a kind are hits.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	return Decode(data)
}

// Decode parses project JSON.
func Decode(data []byte) (*Project, error) {
	var raw struct {
		AudioPath  *string  `json:"audio_path"`
		BPM        *float64 `json:"bpm"`
		DownbeatT0 *float64 `json:"downbeat_t0"`
		Markers    []Marker `json:"markers"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if raw.AudioPath == nil {
		return nil, ErrNoAudioPath
	}

	p := New(*raw.AudioPath)
	if raw.BPM != nil {
		p.BPM = *raw.BPM
	}
	if raw.DownbeatT0 != nil {
		p.DownbeatT0 = *raw.DownbeatT0
	}
	for _, m := range raw.Markers {
		if m.Kind == "" {
			m.Kind = KindHit
		}
		p.Markers = append(p.Markers, m)
	}
	return p, nil
}
