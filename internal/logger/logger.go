// Package logger provides structured logging functionality for the
// operational/debug channel. It is distinct from the library's
// Diagnostics type, which is the data-plane reporting channel returned
// from every parse/write call; Logger is wired in optionally by the
// caller and the library never writes to stdout on its own.
package logger

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger for library-wide logging.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// New creates a new structured logger.
func New(cfg Config) *Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithComponent returns a logger with a component attribute, e.g. "mp4",
// "matroska", "id3v2", "planner".
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.With("component", component),
	}
}

// WithContainer returns a logger with container-identifying attributes.
func (l *Logger) WithContainer(format, path string) *Logger {
	return &Logger{
		Logger: l.With("format", format, "path", path),
	}
}

// WithOperation returns a logger with an operation-name attribute, e.g.
// "parse" or "applyChanges".
func (l *Logger) WithOperation(op string) *Logger {
	return &Logger{
		Logger: l.With("operation", op),
	}
}

// Noop returns a logger that discards everything; used as the library's
// zero-value default so callers never need a nil check.
func Noop() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError + 1,
		})),
	}
}

// Default returns a default logger for quick usage.
func Default() *Logger {
	return New(Config{
		Level:  "info",
		Format: "text",
	})
}
