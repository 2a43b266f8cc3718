// Package logger provides logging utilities for the worker service.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// Logger provides structured logging functionality.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New creates a logger. mode "production" selects JSON output, anything else the console encoder.
func New(level, mode string) (*Logger, error) {
	var cfg zap.Config

	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{sugar: z.Sugar()}, nil
}

// NewWithCore wraps an existing zap core.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{sugar: zap.New(core).Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Info logs an info level message.
func (l *Logger) Info(msg string, kv ...any) {
	l.sugar.Infow(msg, sanitize(kv)...)
}

// Error logs an error level message.
func (l *Logger) Error(msg string, kv ...any) {
	l.sugar.Errorw(msg, sanitize(kv)...)
}

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, kv ...any) {
	l.sugar.Debugw(msg, sanitize(kv)...)
}

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, kv ...any) {
	l.sugar.Warnw(msg, sanitize(kv)...)
}

// With creates a child logger with the given attributes.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{sugar: l.sugar.With(sanitize(kv)...)}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

// sanitize replaces values logged under email-like keys.
func sanitize(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}

	out := make([]any, 0, len(kv))

	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}

		key, ok := kv[i].(string)
		if ok && strings.Contains(strings.ToLower(key), "email") {
			out = append(out, key, redacted)
			continue
		}

		out = append(out, kv[i], kv[i+1])
	}

	return out
}
