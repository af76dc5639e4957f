package application

import (
	"io"
	"log/slog"
	"os"
	"sort"
)

// StructuredLogger provides structured logging with context.
// Entries are JSON objects written to stderr; stdout belongs to the MCP
// stdio transport and must never carry log output.
type StructuredLogger struct {
	logger *slog.Logger
}

// NewStructuredLogger creates a new structured logger writing to stderr.
func NewStructuredLogger() *StructuredLogger {
	return NewStructuredLoggerWithWriter(os.Stderr)
}

// NewStructuredLoggerWithWriter creates a structured logger writing to w.
// This is primarily used for testing.
func NewStructuredLoggerWithWriter(w io.Writer) *StructuredLogger {
	return &StructuredLogger{
		logger: slog.New(slog.NewJSONHandler(w, nil)),
	}
}

// Slog returns the underlying slog.Logger.
func (l *StructuredLogger) Slog() *slog.Logger {
	return l.logger
}

// LogInfo logs an informational message with context.
func (l *StructuredLogger) LogInfo(message string, context map[string]any) {
	l.logger.Info(message, attrs(context)...)
}

// LogError logs an error message with context.
func (l *StructuredLogger) LogError(message string, err error, context map[string]any) {
	args := attrs(context)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.logger.Error(message, args...)
}

// attrs converts a context map into slog attributes in key order.
func attrs(context map[string]any) []any {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys))
	for _, k := range keys {
		args = append(args, slog.Any(k, context[k]))
	}
	return args
}
