package application

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// StructuredLogger provides structured logging with context.
// Entries are JSON objects written to stderr; stdout carries the protocol.
type StructuredLogger struct {
	logger *slog.Logger
}

// NewStructuredLogger creates a new structured logger at info level.
func NewStructuredLogger() *StructuredLogger {
	return NewStructuredLoggerWithWriter(os.Stderr, "info")
}

// NewStructuredLoggerWithWriter creates a structured logger writing to w.
// Unknown levels fall back to info.
func NewStructuredLoggerWithWriter(w io.Writer, level string) *StructuredLogger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	})
	return &StructuredLogger{
		logger: slog.New(handler),
	}
}

// ParseLogLevel maps a configured level name to a slog level.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDebug logs a debug message with context.
func (l *StructuredLogger) LogDebug(message string, context map[string]interface{}) {
	l.logger.Debug(message, attrs(context)...)
}

// LogInfo logs an informational message with context.
func (l *StructuredLogger) LogInfo(message string, context map[string]interface{}) {
	l.logger.Info(message, attrs(context)...)
}

// LogError logs an error message with context.
func (l *StructuredLogger) LogError(message string, err error, context map[string]interface{}) {
	args := attrs(context)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.logger.Error(message, args...)
}

// attrs converts a context map to slog attributes in key order.
func attrs(context map[string]interface{}) []any {
	if len(context) == 0 {
		return nil
	}

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
