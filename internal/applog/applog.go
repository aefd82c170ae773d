// Package applog builds the structured logger shared by every daemon
// component.
//
// Output goes to a rotating file managed by lumberjack so a daemon left
// running for weeks never grows an unbounded log file, plus stderr when
// Options.Verbose is set (as `heic-readyd run` always does) or when no file
// path is given.
package applog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures logger construction.
type Options struct {
	// FilePath is where rotated logs are written. Empty disables file output.
	FilePath string

	// Verbose also mirrors records to stderr.
	Verbose bool

	// MaxSizeMB is the rotation threshold for the log file.
	MaxSizeMB int
}

// New builds a JSON slog.Logger per Options.
func New(opts Options) (*slog.Logger, error) {
	var writers []io.Writer

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, err
		}
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    maxSize,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}

	if opts.Verbose || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return slog.New(handler), nil
}

// Discard returns a logger that drops everything, for tests that don't care
// about log output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
