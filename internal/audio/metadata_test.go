package audio

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempoHint(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tag  string
		bpm  float64
		want bool
	}{
		{"128", 128, true},
		{" 92.5 ", 92.5, true},
		{"", 0, false},
		{"fast", 0, false},
		{"0", 0, false},
		{"999", 0, false},
	}
	for _, c := range cases {
		bpm, ok := (&Metadata{BPM: c.tag}).TempoHint()
		assert.Equal(t, c.want, ok, c.tag)
		assert.Equal(t, c.bpm, bpm, c.tag)
	}

	var m *Metadata
	_, ok := m.TempoHint()
	assert.False(t, ok)
}

func TestReadMetadataUntagged(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "loop-01.wav")
	writeWAV(t, path, 1000, 1, make([]int, 500))

	md, err := ReadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "loop-01", md.Title)
	assert.Equal(t, "WAV", md.Format)
	assert.Positive(t, md.FileSize)

	md.Describe(&Buffer{Samples: make([]float32, 500), SampleRate: 1000, Channels: 1})
	assert.Equal(t, 500*time.Millisecond, md.Duration)
	assert.Contains(t, md.String(), "loop-01")

	_, err = ReadMetadata(filepath.Join(t.TempDir(), "nope.mp3"))
	assert.Error(t, err)
}

func TestTryDecode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", tryDecode(""))
	assert.Equal(t, "Hello", tryDecode("Hello"))
	assert.Equal(t, "a?b", cleanString("a\x01b"))
}

func TestGetStringTag(t *testing.T) {
	t.Parallel()

	tags := map[string]interface{}{"TBPM": "120", "n": 7, "list": []string{"x"}}
	assert.Equal(t, "120", getStringTag(tags, "TBPM"))
	assert.Equal(t, "7", getStringTag(tags, "n"))
	assert.Equal(t, "x", getStringTag(tags, "list"))
	assert.Equal(t, "", getStringTag(tags, "missing"))
}
