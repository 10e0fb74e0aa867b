package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhythmsignal/internal/config"
	"rhythmsignal/pkg/tempo"
)

func TestStartupCommands(t *testing.T) {
	t.Parallel()

	assert.Nil(t, startup(Options{}))
	assert.Equal(t, []string{"load /a/song.wav"}, startup(Options{AudioPath: "/a/song.wav"}))
	assert.Equal(t, []string{"project /a/song.json"},
		startup(Options{AudioPath: "/a/song.wav", ProjectPath: "/a/song.json"}))
}

func TestNewRejectsUnknownTheme(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfig()
	require.NoError(t, err)
	cfg.Theme = "sepia"

	_, err = New(cfg, Options{})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfig()
	require.NoError(t, err)
	cfg.Theme = "nord"

	a, err := New(cfg, Options{Width: 120, Height: 40})
	require.NoError(t, err)
	assert.Equal(t, "nord", a.commander.Viz().ColorSchemeName())
	assert.Equal(t, 120, a.commander.Viz().State().Width)
	assert.Equal(t, 36, a.commander.Viz().State().Height)
	assert.False(t, a.commander.IsInTrackMode())
}

func TestDefaultOracle(t *testing.T) {
	t.Parallel()

	assert.True(t, tempo.Available(DefaultOracle()))
}
