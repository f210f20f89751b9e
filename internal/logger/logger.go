// Package logger is a thin ctx-aware wrapper around zap.
package logger

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	z *zap.Logger
}

type ctxKey struct{}

var global atomic.Pointer[Logger]

func init() {
	global.Store(&Logger{z: zap.NewNop()})
}

// Init replaces the global logger. Until it runs every call is a no-op.
func Init(level string, asJSON bool) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("logger.Init: parse level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if !asJSON {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("logger.Init: build: %w", err)
	}
	global.Store(&Logger{z: z})
	return nil
}

func L() *Logger { return global.Load() }

func Sync() error { return L().z.Sync() }

// With returns a child of the global logger carrying fields.
func With(fields ...Field) *Logger { return L().With(fields...) }

func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

// ToContext attaches fields that every ctx-aware call will include.
func ToContext(ctx context.Context, fields ...Field) context.Context {
	existing, _ := ctx.Value(ctxKey{}).([]Field)
	merged := make([]Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

func fromContext(ctx context.Context, fields []Field) []Field {
	if ctx == nil {
		return fields
	}
	extra, _ := ctx.Value(ctxKey{}).([]Field)
	if len(extra) == 0 {
		return fields
	}
	return append(extra[:len(extra):len(extra)], fields...)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.z.Debug(msg, fromContext(ctx, fields)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.z.Info(msg, fromContext(ctx, fields)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.z.Warn(msg, fromContext(ctx, fields)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.z.Error(msg, fromContext(ctx, fields)...)
}

func Debug(ctx context.Context, msg string, fields ...Field) { L().z.Debug(msg, fromContext(ctx, fields)...) }
func Info(ctx context.Context, msg string, fields ...Field)  { L().z.Info(msg, fromContext(ctx, fields)...) }
func Warn(ctx context.Context, msg string, fields ...Field)  { L().z.Warn(msg, fromContext(ctx, fields)...) }
func Error(ctx context.Context, msg string, fields ...Field) { L().z.Error(msg, fromContext(ctx, fields)...) }
