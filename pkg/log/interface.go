// Package log provides the structured logging interface used across synthcheck.
//
// The interface is slog-compatible (key/value pairs after the message) and is
// backed by zerolog. Components obtain a named logger once and attach
// evaluation context with With:
//
//	logger := log.GetLoggerWithName("efficacy").With(
//	    log.TargetKey, "income",
//	    log.TargetTypeKey, "class",
//	)
//	logger.Info("fold finished", log.FoldKey, 2, log.DurationMsKey, 412)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
type Logger interface {
	// Debug logs a debug-level message with optional key/value pairs.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional key/value pairs.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional key/value pairs.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error it is
	// attached as the "error" field together with its stack trace.
	//
	//	logger.Error("fold failed", err, log.FoldKey, 3)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers. Tests swap in a TestLoggerProvider with SetProvider.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
