package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	c := Config{FFmpeg: "ffmpeg", SampleRate: 22050, MaxSeconds: 180}
	require.NoError(t, c.applyEnv(env(nil)))
	assert.Equal(t, "ffmpeg", c.FFmpeg)
	assert.Equal(t, 22050, c.SampleRate)
	assert.Equal(t, 180.0, c.MaxSeconds)
	assert.Equal(t, logrus.InfoLevel, c.LogLevel())

	c.Debug = true
	assert.Equal(t, logrus.DebugLevel, c.LogLevel())
}

func TestEnvOverrides(t *testing.T) {
	t.Parallel()

	c := Config{FFmpeg: "ffmpeg", SampleRate: 22050, MaxSeconds: 180}
	require.NoError(t, c.applyEnv(env(map[string]string{
		EnvFFmpeg:     "/opt/bin/ffmpeg",
		EnvSampleRate: "44100",
		EnvMaxSeconds: "0",
		EnvLogDir:     "/tmp/logs",
	})))
	assert.Equal(t, "/opt/bin/ffmpeg", c.FFmpeg)
	assert.Equal(t, 44100, c.SampleRate)
	assert.Equal(t, 0.0, c.MaxSeconds)
	assert.Equal(t, "/tmp/logs", c.LogDir)
}

func TestEnvInvalid(t *testing.T) {
	t.Parallel()

	c := Config{}
	assert.Error(t, c.applyEnv(env(map[string]string{EnvSampleRate: "fast"})))
	assert.Error(t, c.applyEnv(env(map[string]string{EnvSampleRate: "-1"})))
	assert.Error(t, c.applyEnv(env(map[string]string{EnvMaxSeconds: "-3"})))
}

func TestNewConfig(t *testing.T) {
	t.Setenv(EnvSampleRate, "16000")

	c, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 16000, c.SampleRate)
	assert.Equal(t, 120.0, c.TempoSeconds)
	assert.NotNil(t, c.Logger)
}
