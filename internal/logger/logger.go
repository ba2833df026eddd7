// Package logger provides leveled logging for pubgen.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"strings"
)

// ErrInvalidLevel is returned for a level name other than debug, info, warn or error.
var ErrInvalidLevel = errors.New("log level must be one of: debug, info, warn, error")

// Logger provides structured logging functionality.
type Logger struct {
	internal *slog.Logger
	level    *slog.LevelVar
}

// ParseLevel converts a level name to a slog level. The empty string means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, ErrInvalidLevel
}

// New creates a logger writing text records to w at the given level.
func New(w io.Writer, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	v := new(slog.LevelVar)
	v.Set(lvl)

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: v})
	return &Logger{
		internal: slog.New(handler),
		level:    v,
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	v := new(slog.LevelVar)
	v.Set(slog.LevelError + 1)
	return &Logger{
		internal: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: v})),
		level:    v,
	}
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, args ...any) {
	l.internal.Debug(msg, args...)
}

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, args ...any) {
	l.internal.Warn(msg, args...)
}

// With creates a child logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		internal: l.internal.With(args...),
		level:    l.level,
	}
}
