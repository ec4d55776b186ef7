package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// logLevel maps the quiet/verbose flags to a slog level.
// Verbose wins when both are set; someone asking for more detail
// should get it.
func logLevel(quiet, verbose bool) slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// newLogger creates the run logger: text to stderr for readability, plus
// JSON to --log-file when given for machine parsing. The returned cleanup
// closes the log file and must be called after the run finishes.
func newLogger(stderr io.Writer, level slog.Level, logFile string) (*slog.Logger, func() error, error) {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})

	if logFile == "" {
		return slog.New(stderrHandler), func() error { return nil }, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	// File handler captures everything regardless of the console level.
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
	return logger, file.Close, nil
}
