package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/wptts/readaloud/internal/config"
)

// setupLog sends the default logger to a file, since the TUI owns the
// terminal. READALOUD_DEBUG enables debug output.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	logFile, err := config.LogPath(config.AppName + ".log")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}

	log.SetOutput(f)
	log.SetReportTimestamp(true)
	if config.DebugEnabled() {
		log.SetLevel(log.DebugLevel)
	}
	return f.Close, nil
}
