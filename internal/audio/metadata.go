package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"

	"rhythmsignal/pkg/tempo"
)

type Metadata struct {
	Title       string
	Artist      string
	Album       string
	Year        int
	Genre       string
	Track       string
	BPM         string
	Duration    time.Duration
	SampleRate  int
	Channels    int
	Format      string
	FileSize    int64
	AlbumArtist string
	HasArtwork  bool
}

// ReadMetadata reads the tags of the file at path. Files without tags still
// get a title from their name.
func ReadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	md := ExtractMetadata(bytes.NewReader(data))
	md.FileSize = int64(len(data))
	if md.Title == "" {
		md.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if md.Format == "" {
		md.Format = strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	}
	return md, nil
}

// ExtractMetadata reads whatever tags r carries. Missing or unreadable tags
// leave the fields empty.
func ExtractMetadata(r io.ReadSeeker) *Metadata {
	metadata := &Metadata{}

	m, err := tag.ReadFrom(r)
	if err != nil {
		return metadata
	}

	metadata.Title = tryDecode(m.Title())
	metadata.Artist = tryDecode(m.Artist())
	metadata.Album = tryDecode(m.Album())
	metadata.Genre = tryDecode(m.Genre())
	metadata.AlbumArtist = tryDecode(m.AlbumArtist())
	metadata.Year = m.Year()
	metadata.Format = string(m.FileType())
	metadata.HasArtwork = m.Picture() != nil
	if track, _ := m.Track(); track > 0 {
		metadata.Track = strconv.Itoa(track)
	}

	if rawTags := m.Raw(); rawTags != nil {
		metadata.BPM = tryDecode(getStringTag(rawTags, "TBPM"))
		if metadata.BPM == "" {
			metadata.BPM = tryDecode(getStringTag(rawTags, "BPM"))
		}
		if metadata.BPM == "" {
			metadata.BPM = tryDecode(getStringTag(rawTags, "bpm"))
		}
		if metadata.BPM == "" {
			metadata.BPM = tryDecode(getStringTag(rawTags, "tmpo"))
		}
	}

	return metadata
}

// TempoHint parses the BPM tag. Tags outside the grid's tempo range are
// ignored.
func (m *Metadata) TempoHint() (float64, bool) {
	if m == nil || m.BPM == "" {
		return 0, false
	}
	bpm, err := strconv.ParseFloat(strings.TrimSpace(m.BPM), 64)
	if err != nil || !tempo.Plausible(bpm) {
		return 0, false
	}
	return bpm, true
}

// Describe fills in the technical fields from a decoded buffer.
func (m *Metadata) Describe(buf *Buffer) {
	if buf == nil {
		return
	}
	m.Duration = buf.Duration()
	m.SampleRate = buf.SampleRate
	m.Channels = buf.Channels
}

func tryDecode(text string) string {
	if text == "" {
		return ""
	}

	// List of encodings to try
	decoders := []struct {
		name    string
		decoder func([]byte) (string, error)
	}{
		{"UTF-8", func(b []byte) (string, error) { return string(b), nil }},
		{"Windows-1251", func(b []byte) (string, error) {
			decoder := charmap.Windows1251.NewDecoder()
			return decoder.String(string(b))
		}},
		{"KOI8-R", func(b []byte) (string, error) {
			decoder := charmap.KOI8R.NewDecoder()
			return decoder.String(string(b))
		}},
		{"ISO-8859-5", func(b []byte) (string, error) {
			decoder := charmap.ISO8859_5.NewDecoder()
			return decoder.String(string(b))
		}},
		{"CP866", func(b []byte) (string, error) {
			decoder := charmap.CodePage866.NewDecoder()
			return decoder.String(string(b))
		}},
		{"GB18030", func(b []byte) (string, error) {
			decoder := simplifiedchinese.GB18030.NewDecoder()
			return decoder.String(string(b))
		}},
		{"Big5", func(b []byte) (string, error) {
			decoder := traditionalchinese.Big5.NewDecoder()
			return decoder.String(string(b))
		}},
		{"EUC-JP", func(b []byte) (string, error) {
			decoder := japanese.EUCJP.NewDecoder()
			return decoder.String(string(b))
		}},
		{"EUC-KR", func(b []byte) (string, error) {
			decoder := korean.EUCKR.NewDecoder()
			return decoder.String(string(b))
		}},
	}

	// Try each decoder
	input := []byte(text)
	for _, dec := range decoders {
		decoded, err := dec.decoder(input)
		if err == nil && isReadable(decoded) {
			return decoded
		}
	}

	// If nothing worked, try UTF-16
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	if decoded, err := decoder.String(text); err == nil && isReadable(decoded) {
		return decoded
	}

	// As a last resort, try to clean up the string
	return cleanString(text)
}

// isReadable checks if the string contains readable characters
func isReadable(s string) bool {
	if s == "" {
		return false
	}

	readable := 0
	for _, r := range s {
		if r >= 32 && r < 127 || r >= 0x400 && r <= 0x4FF || r >= 0x3040 && r <= 0x30FF || r >= 0x4E00 && r <= 0x9FFF {
			readable++
		}
	}
	return float64(readable)/float64(len([]rune(s))) > 0.5
}

// cleanString removes or replaces problematic characters
func cleanString(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r >= 32 && r < 127 || r >= 0x400 && r <= 0x4FF || r >= 0x3040 && r <= 0x30FF || r >= 0x4E00 && r <= 0x9FFF {
			result.WriteRune(r)
		} else {
			result.WriteRune('?')
		}
	}
	return result.String()
}

func getStringTag(tags map[string]interface{}, key string) string {
	val, ok := tags[key]
	if !ok {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case *tag.Comm:
		return v.Text
	}
	return ""
}

func (m *Metadata) String() string {
	var b strings.Builder

	b.WriteString("┌─── Track Information ──────────────────────────────\n")
	fmt.Fprintf(&b, "│ %-15s: %s\n", "Title", m.Title)
	fmt.Fprintf(&b, "│ %-15s: %s\n", "Artist", m.Artist)
	if m.AlbumArtist != "" && m.AlbumArtist != m.Artist {
		fmt.Fprintf(&b, "│ %-15s: %s\n", "Album Artist", m.AlbumArtist)
	}
	fmt.Fprintf(&b, "│ %-15s: %s\n", "Album", m.Album)
	if m.Track != "" {
		fmt.Fprintf(&b, "│ %-15s: %s\n", "Track", m.Track)
	}
	b.WriteString("├─── Technical Details ─────────────────────────────\n")
	fmt.Fprintf(&b, "│ %-15s: %s\n", "Format", m.Format)
	fmt.Fprintf(&b, "│ %-15s: %d bytes\n", "File Size", m.FileSize)
	if m.Year != 0 {
		fmt.Fprintf(&b, "│ %-15s: %d\n", "Year", m.Year)
	}
	fmt.Fprintf(&b, "│ %-15s: %s\n", "Genre", m.Genre)
	if m.BPM != "" {
		fmt.Fprintf(&b, "│ %-15s: %s\n", "BPM", m.BPM)
	}
	b.WriteString("├─── Audio Specifications ──────────────────────────\n")
	fmt.Fprintf(&b, "│ %-15s: %s\n", "Duration", formatDuration(m.Duration))
	fmt.Fprintf(&b, "│ %-15s: %d Hz\n", "Sample Rate", m.SampleRate)
	fmt.Fprintf(&b, "│ %-15s: %d\n", "Channels", m.Channels)
	if m.HasArtwork {
		fmt.Fprintf(&b, "│ %-15s: %s\n", "Artwork", "embedded")
	}
	b.WriteString("└──────────────────────────────────────────────────\n")

	return b.String()
}
