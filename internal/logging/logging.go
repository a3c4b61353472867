// Package logging configures structured logging with tint.
//
// Usage:
//
//	logger, closeFn, err := logging.Setup(logging.Options{Level: "debug", File: path})
//	defer closeFn()
//
// The TUI owns the terminal, so it logs to a file with colour disabled. CLI
// commands log to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// EnvLevel names the environment variable that overrides the level.
const EnvLevel = "MYCOACH_LOG_LEVEL"

// Options select the level and destination.
type Options struct {
	Level string // debug, info, warn, error; empty reads EnvLevel
	File  string // empty logs to stderr
}

// ParseLevel maps a level name to slog. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New returns a tint logger writing to w.
func New(w io.Writer, level slog.Level, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	}))
}

// Setup builds the process logger and installs it as the slog default. The
// returned func closes the log file, if any.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	name := opts.Level
	if strings.TrimSpace(name) == "" {
		name = os.Getenv(EnvLevel)
	}
	level, err := ParseLevel(name)
	if err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(opts.File) == "" {
		logger := New(os.Stderr, level, isTerminal(os.Stderr))
		slog.SetDefault(logger)
		return logger, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := New(file, level, false)
	slog.SetDefault(logger)
	return logger, file.Close, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
