package vecbuf

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with buffer-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithSize adds the buffer length to the logger.
func (l *Logger) WithSize(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("size", n),
	}
}

// LogFill logs a fill operation.
func (l *Logger) LogFill(ctx context.Context, kind string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fill failed",
			"kind", kind,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "fill completed",
			"kind", kind,
		)
	}
}

// LogReduce logs a reduction.
func (l *Logger) LogReduce(ctx context.Context, op string, workers int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reduction failed",
			"op", op,
			"workers", workers,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "reduction completed",
			"op", op,
			"workers", workers,
			"elapsed", elapsed,
		)
	}
}

// LogExport logs an export.
func (l *Logger) LogExport(ctx context.Context, target string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"target", target,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "export completed",
			"target", target,
			"bytes", bytes,
		)
	}
}

// LogImport logs an import. A short read is logged as a warning because
// trailing elements keep their previous values.
func (l *Logger) LogImport(ctx context.Context, source string, tokens, size int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "import failed",
			"source", source,
			"error", err,
		)
	case tokens < size:
		l.WarnContext(ctx, "import read fewer values than buffer size",
			"source", source,
			"tokens", tokens,
		)
	default:
		l.InfoContext(ctx, "import completed",
			"source", source,
			"tokens", tokens,
		)
	}
}
