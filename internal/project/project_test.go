package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhythmsignal/pkg/beatgrid"
	"rhythmsignal/pkg/onset"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	p := New("/music/loop.wav")
	p.SetGrid(beatgrid.New(97.5, 1.25, 4))
	p.Markers = FromHits([]onset.HitEvent{{T: 0.5, Strength: 1}, {T: 1.0, Strength: 0.2}})
	p.AddMarker(Marker{T: 0.75, Label: "snare"})

	path := filepath.Join(t.TempDir(), "loop.json")
	require.NoError(t, p.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, beatgrid.New(97.5, 1.25, 4), got.Grid())
	assert.Equal(t, []Marker{{T: 0.75, Label: "snare", Kind: KindManual}}, got.Manual())
}

func TestSaveFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, (&Project{AudioPath: "a.mp3", BPM: 120}).Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"audio_path":"a.mp3","bpm":120,"downbeat_t0":0,"markers":[]}`, string(data))
}

func TestDecodeDefaults(t *testing.T) {
	t.Parallel()

	p, err := Decode([]byte(`{"audio_path":"x.flac","markers":[{"t":2.5},{"t":3,"label":"drop","kind":"manual"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "x.flac", p.AudioPath)
	assert.Equal(t, 120.0, p.BPM)
	assert.Equal(t, 0.0, p.DownbeatT0)
	assert.Equal(t, []Marker{
		{T: 2.5, Kind: KindHit},
		{T: 3, Label: "drop", Kind: KindManual},
	}, p.Markers)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"bpm":100}`))
	assert.ErrorIs(t, err, ErrNoAudioPath)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestAddMarkerOrder(t *testing.T) {
	t.Parallel()

	p := New("a.wav")
	for _, ts := range []float64{3, 1, 2, 1} {
		p.AddMarker(Marker{T: ts})
	}
	var times []float64
	for _, m := range p.Markers {
		times = append(times, m.T)
	}
	assert.Equal(t, []float64{1, 1, 2, 3}, times)
}
