package colsel

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/colsel/model"
)

// Logger wraps slog.Logger with colsel-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithColumn adds a column field to the logger.
func (l *Logger) WithColumn(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("column", name),
	}
}

// WithAlgo adds the name of a selection strategy to the logger.
func (l *Logger) WithAlgo(algo string) *Logger {
	return &Logger{
		Logger: l.Logger.With("algo", algo),
	}
}

// LogSelect logs a selection.
func (l *Logger) LogSelect(ctx context.Context, column, algo string, rows int, err error) {
	if err != nil {
		l.WarnContext(ctx, "select failed",
			"column", column,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "select completed",
			"column", column,
			"algo", algo,
			"rows", rows,
		)
	}
}

// LogImprintBuild logs the construction of an imprint index.
func (l *Logger) LogImprintBuild(ctx context.Context, col model.ColumnID, rows int, bytes int64, d time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "imprints build failed",
			"column_id", uint64(col),
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "imprints built",
			"column_id", uint64(col),
			"rows", rows,
			"bytes", bytes,
			"duration", d,
		)
	}
}

// LogImprintLoad logs the load of a persisted imprint index.
func (l *Logger) LogImprintLoad(ctx context.Context, col model.ColumnID, err error) {
	if err != nil {
		l.WarnContext(ctx, "imprints load failed",
			"column_id", uint64(col),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "imprints loaded",
			"column_id", uint64(col),
		)
	}
}

// LogPersist logs the write-back of an imprint index. Failures are not
// retried; the index keeps serving from memory.
func (l *Logger) LogPersist(ctx context.Context, col model.ColumnID, bytes int64, d time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "imprints write-back failed",
			"column_id", uint64(col),
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "imprints persisted",
			"column_id", uint64(col),
			"bytes", bytes,
			"duration", d,
		)
	}
}

// LogEvict logs the release of a synced imprint index from memory.
func (l *Logger) LogEvict(ctx context.Context, col model.ColumnID) {
	l.DebugContext(ctx, "imprints evicted",
		"column_id", uint64(col),
	)
}
