// ABOUTME: zerolog setup for the node
// ABOUTME: Console output, optional log-file mirror, file-only when the TUI owns the terminal
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger. With a TUI on the terminal, logs go
// only to the file (or are discarded if none is configured); otherwise they
// go to the console and are mirrored to the file when one is configured.
// The returned func closes the log file.
func Setup(logFile string, useTUI bool, debug bool) (func(), error) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var file *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			return nil, err
		}
		file = f
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr}

	var w io.Writer
	switch {
	case useTUI && file != nil:
		w = file
	case useTUI:
		w = io.Discard
	case file != nil:
		w = zerolog.MultiLevelWriter(console, file)
	default:
		w = console
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	return func() {
		if file != nil {
			_ = file.Close()
		}
	}, nil
}
