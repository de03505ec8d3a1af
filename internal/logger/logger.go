// Package logger provides the structured slog logger used by the server.
// All logs are written in JSON format.
//
// Log files are organized as:
//
//	<logDir>/system.log              current log
//	<logDir>/system-<time>.log.gz    rotated logs
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for system.log.
const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 30
)

// NewSystemLogger creates a JSON slog.Logger that writes to <logDir>/system.log,
// rotating the file once it grows past maxSizeMB. The directory is created if
// it does not exist. The returned closer releases the file.
func NewSystemLogger(logDir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "system.log"),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), w, nil
}

// NewConsoleLogger creates a text slog.Logger writing to w, used by one-shot
// CLI commands.
func NewConsoleLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
