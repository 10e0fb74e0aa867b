// Package app wires the decoder, analyzer, player and UI together.
package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"rhythmsignal/internal/audio"
	"rhythmsignal/internal/config"
	"rhythmsignal/internal/session"
	"rhythmsignal/internal/ui"
	"rhythmsignal/pkg/tempo"
	"rhythmsignal/pkg/timeline"
	"rhythmsignal/pkg/viz"
)

// Options are the per-run inputs from the command line.
type Options struct {
	AudioPath   string
	ProjectPath string
	// Width and Height are the terminal size, if known before the first
	// resize event.
	Width  int
	Height int
}

type App struct {
	ui        *ui.TUI
	commander *session.Commander
	backend   *audio.OtoBackend
	log       logrus.FieldLogger
}

func New(cfg config.Config, opts Options) (*App, error) {
	log := logrus.FieldLogger(cfg.Logger)
	if cfg.Logger == nil {
		log = logrus.StandardLogger()
	}

	vizManager := viz.NewManager()
	if cfg.Theme != "" {
		if err := vizManager.SetColorScheme(cfg.Theme); err != nil {
			return nil, fmt.Errorf("theme: %w", err)
		}
	}
	if opts.Width > 0 && opts.Height > 0 {
		vizManager.SetDimensions(opts.Width, opts.Height-4)
	}

	decoder := audio.NewDecoder(cfg.FFmpeg, log.WithField("component", "decoder"))
	analyzer := audio.NewAnalyzer(decoder, DefaultOracle(), audio.AnalyzerOptions{
		SampleRate:   cfg.SampleRate,
		MaxSeconds:   cfg.MaxSeconds,
		TempoSeconds: cfg.TempoSeconds,
		Onset:        cfg.Onset,
	}, log.WithField("component", "analyzer"))

	backend := &audio.OtoBackend{}
	commander := session.NewCommander(session.Options{
		Analyzer: analyzer,
		Player:   audio.NewPlayer(backend, nil, log.WithField("component", "player")),
		Viz:      vizManager,
		Flash:    timeline.NewFlash(nil, timeline.DefaultFlashDuration),
		Log:      log.WithField("component", "session"),
	})

	return &App{
		ui:        ui.New(commander, startup(opts)...),
		commander: commander,
		backend:   backend,
		log:       log,
	}, nil
}

// DefaultOracle tries the autocorrelation estimate before the wavelet one.
func DefaultOracle() tempo.Oracle {
	return tempo.Chain{tempo.NewAutocorrelation(), tempo.NewWavelet()}
}

// startup turns the command line into commands typed at the prompt. A
// project wins over a bare audio file since it names its own audio.
func startup(opts Options) []string {
	switch {
	case opts.ProjectPath != "":
		return []string{"project " + opts.ProjectPath}
	case opts.AudioPath != "":
		return []string{"load " + opts.AudioPath}
	}
	return nil
}

func (a *App) Run() error {
	defer a.close()
	a.log.Info("starting UI")
	return a.ui.Start()
}

func (a *App) close() {
	if err := a.commander.Player().Close(); err != nil {
		a.log.WithError(err).Warn("closing player")
	}
	if err := a.backend.Close(); err != nil {
		a.log.WithError(err).Warn("closing audio device")
	}
}
