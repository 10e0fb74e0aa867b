// Package logger holds the project-wide logrus logger. The terminal belongs to
// the UI, so log output goes to a timestamped file instead of stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	mu            sync.Mutex
	projectLogger *logrus.Logger
	logFile       *os.File
)

// GetProjectLogger returns the shared logger. Until Init is called it
// discards everything.
func GetProjectLogger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()

	if projectLogger == nil {
		projectLogger = newLogger(io.Discard, logrus.InfoLevel)
	}
	return projectLogger
}

// Init points the shared logger at a new file in dir and returns its path.
// An empty dir uses ~/.rhythmsignal/logs.
func Init(dir string, level logrus.Level) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".rhythmsignal", "logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("rhythmsignal_%s.log",
		time.Now().Format("2006-01-02_15-04-05")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}

	l := GetProjectLogger()

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	l.SetOutput(f)
	l.SetLevel(level)
	return path, nil
}

// Close flushes and closes the log file, if one is open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	if projectLogger != nil {
		projectLogger.SetOutput(io.Discard)
	}
	return err
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return l
}
