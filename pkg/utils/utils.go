package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

// NativeExtensions are decoded in process; anything else in
// AudioExtensions goes through the external transcoder.
var NativeExtensions = map[string]bool{
	".wav":  true,
	".wave": true,
	".mp3":  true,
}

var AudioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".wav":  true,
	".wave": true,
	".ogg":  true,
	".opus": true,
	".aac":  true,
	".aiff": true,
	".wma":  true,
}

// Magic numbers for common audio formats, with the offset they appear at.
var MagicNumbers = map[string]struct {
	offset int
	magic  []byte
}{
	"id3":  {0, []byte("ID3")},
	"flac": {0, []byte("fLaC")},
	"riff": {0, []byte("RIFF")},
	"ogg":  {0, []byte("OggS")},
	"aiff": {0, []byte("FORM")},
	"m4a":  {4, []byte("ftyp")},
}

// IsNative reports whether path can be decoded without the transcoder.
func IsNative(path string) bool {
	return NativeExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsAudioFile checks the extension and then the first bytes of the file.
// MP3 files without an ID3 tag are recognized by their frame sync.
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !AudioExtensions[ext] {
		return false
	}

	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	header := make([]byte, 12)
	n, _ := file.Read(header)
	return HasAudioHeader(header[:n])
}

// HasAudioHeader reports whether header starts like a known audio container.
func HasAudioHeader(header []byte) bool {
	for _, m := range MagicNumbers {
		end := m.offset + len(m.magic)
		if len(header) >= end && bytes.Equal(header[m.offset:end], m.magic) {
			return true
		}
	}
	return len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0
}

// GetCompletions lists directories and audio files whose names start with
// the base of partialPath, sorted.
func GetCompletions(partialPath string) []string {
	return complete(partialPath, IsAudioFile)
}

// GetProjectCompletions is GetCompletions for project files.
func GetProjectCompletions(partialPath string) []string {
	return complete(partialPath, func(path string) bool {
		return strings.EqualFold(filepath.Ext(path), ".json")
	})
}

func complete(partialPath string, keep func(path string) bool) []string {
	dir := filepath.Dir(partialPath)
	prefix := filepath.Base(partialPath)
	if strings.HasSuffix(partialPath, string(os.PathSeparator)) {
		dir, prefix = partialPath, ""
	}
	if prefix == "." {
		prefix = ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var completions []string
	for _, entry := range entries {
		name := entry.Name()
		fullPath := filepath.Join(dir, name)

		if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			continue
		}

		// Always include directories
		if entry.IsDir() {
			completions = append(completions, fullPath+string(os.PathSeparator))
			continue
		}

		if keep(fullPath) {
			completions = append(completions, fullPath)
		}
	}

	slices.Sort(completions)
	return completions
}
