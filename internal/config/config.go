// Package config collects the settings shared by the decoder, the analyzer
// and the UI.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"rhythmsignal/internal/logger"
	"rhythmsignal/pkg/onset"
)

const (
	EnvFFmpeg     = "RHYTHMSIGNAL_FFMPEG"
	EnvSampleRate = "RHYTHMSIGNAL_SAMPLE_RATE"
	EnvMaxSeconds = "RHYTHMSIGNAL_MAX_SECONDS"
	EnvLogDir     = "RHYTHMSIGNAL_LOG_DIR"
)

// Config represents options that configure the global behavior of the program
type Config struct {
	// Project logger
	Logger *logrus.Logger

	// FFmpeg is the transcoder used for formats without a native decoder.
	FFmpeg string
	// SampleRate is the analysis rate requested from the transcoder.
	SampleRate int
	// MaxSeconds caps how much audio is decoded for hit detection.
	MaxSeconds float64
	// TempoSeconds caps how much audio the tempo estimate looks at.
	TempoSeconds float64
	// Onset tunes the hit detector.
	Onset onset.Options

	LogDir string
	Debug  bool
	Theme  string
}

// NewConfig creates a Config with reasonable defaults for real usage, then
// applies environment overrides.
func NewConfig() (Config, error) {
	cfg := Config{
		Logger:       logger.GetProjectLogger(),
		FFmpeg:       "ffmpeg",
		SampleRate:   22050,
		MaxSeconds:   180,
		TempoSeconds: 120,
		Onset:        onset.DefaultOptions(),
		Theme:        "default",
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvFFmpeg); ok && v != "" {
		c.FFmpeg = v
	}
	if v, ok := lookup(EnvSampleRate); ok && v != "" {
		sr, err := strconv.Atoi(v)
		if err != nil || sr <= 0 {
			return fmt.Errorf("invalid %s %q", EnvSampleRate, v)
		}
		c.SampleRate = sr
	}
	if v, ok := lookup(EnvMaxSeconds); ok && v != "" {
		s, err := strconv.ParseFloat(v, 64)
		if err != nil || s < 0 {
			return fmt.Errorf("invalid %s %q", EnvMaxSeconds, v)
		}
		c.MaxSeconds = s
	}
	if v, ok := lookup(EnvLogDir); ok {
		c.LogDir = v
	}
	return nil
}

// LogLevel is debug when Debug is set and info otherwise.
func (c Config) LogLevel() logrus.Level {
	if c.Debug {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}
