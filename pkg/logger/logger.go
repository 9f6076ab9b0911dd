package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger so the rest of the codebase does not import zap
// directly outside of field construction.
type Logger struct {
	*zap.Logger
}

// New creates a logger with the given level ("debug", "info", "warn",
// "error") and encoding ("json" or "console").
func New(level, encoding string) (*Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if encoding != "" {
		cfg.Encoding = encoding
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &Logger{Logger: zl}, nil
}

// Field creates a field from any value.
func Field(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

// StringField creates a string field.
func StringField(key, value string) zap.Field {
	return zap.String(key, value)
}

// IntField creates an int field.
func IntField(key string, value int) zap.Field {
	return zap.Int(key, value)
}

// Float64Field creates a float64 field.
func Float64Field(key string, value float64) zap.Field {
	return zap.Float64(key, value)
}

// ErrorField creates an error field.
func ErrorField(err error) zap.Field {
	return zap.Error(err)
}

// DebugContext logs a debug message. The context is accepted for symmetry
// with request-scoped call sites; request-scoped fields may be attached here
// later.
func (l *Logger) DebugContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Debug(msg, fields...)
}

// InfoContext logs an info message.
func (l *Logger) InfoContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Info(msg, fields...)
}

// WarnContext logs a warning message.
func (l *Logger) WarnContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Warn(msg, fields...)
}

// ErrorContext logs an error message.
func (l *Logger) ErrorContext(_ context.Context, msg string, fields ...zap.Field) {
	l.Error(msg, fields...)
}
