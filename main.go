package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"

	"rhythmsignal/internal/app"
	"rhythmsignal/internal/config"
	"rhythmsignal/internal/logger"
)

func main() {
	projectPath := flag.String("project", "", "open a saved project file")
	theme := flag.String("theme", "", "color scheme (default, monokai, nord, dracula)")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [audio file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	cfg.Debug = *debug
	if *theme != "" {
		cfg.Theme = *theme
	}

	logPath, err := logger.Init(cfg.LogDir, cfg.LogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	} else {
		defer logger.Close()
		cfg.Logger.WithField("path", logPath).Debug("logging started")
	}

	opts := app.Options{ProjectPath: *projectPath, AudioPath: flag.Arg(0)}
	if w, h, err := term.GetSize(os.Stdout.Fd()); err == nil {
		opts.Width, opts.Height = w, h
	}

	a, err := app.New(cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := a.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
