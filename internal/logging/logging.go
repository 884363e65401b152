// Package logging provides the structured logger used throughout the
// server, modeled on GoliveKit's slog-backed Logger interface: a small
// set of field constructors plus With/WithContext for scoped loggers,
// rather than ad hoc log.Printf calls.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is the structured logging interface every component depends on.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is a single structured log attribute.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

func Err(err error) Field { return Field{Key: "error", Value: err} }

// slogLogger implements Logger on top of log/slog.
type slogLogger struct {
	logger *slog.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	level  slog.Level
	output io.Writer
	json   bool
}

func WithLevel(level slog.Level) Option { return func(o *options) { o.level = level } }
func WithOutput(w io.Writer) Option { return func(o *options) { o.output = w } }
func WithJSON() Option { return func(o *options) { o.json = true } }
func WithText() Option { return func(o *options) { o.json = false } }

// New builds a Logger. Defaults to an info-level JSON handler on stdout,
// matching the shape a process-supervised server expects to emit.
func New(opts ...Option) Logger {
	cfg := &options{level: slog.LevelInfo, output: os.Stdout, json: true}
	for _, opt := range opts {
		opt(cfg)
	}

	var handler slog.Handler
	if cfg.json {
		handler = slog.NewJSONHandler(cfg.output, &slog.HandlerOptions{Level: cfg.level})
	} else {
		handler = slog.NewTextHandler(cfg.output, &slog.HandlerOptions{Level: cfg.level})
	}
	return &slogLogger{logger: slog.New(handler)}
}

func (l *slogLogger) attrs(fields []Field) []any {
	attrs := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		attrs = append(attrs, f.Key, f.Value)
	}
	return attrs
}

func (l *slogLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, l.attrs(fields)...) }
func (l *slogLogger) Info(msg string, fields ...Field) { l.logger.Info(msg, l.attrs(fields)...) }
func (l *slogLogger) Warn(msg string, fields ...Field) { l.logger.Warn(msg, l.attrs(fields)...) }
func (l *slogLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, l.attrs(fields)...) }

func (l *slogLogger) With(fields ...Field) Logger {
	return &slogLogger{logger: l.logger.With(l.attrs(fields)...)}
}

// Nop discards everything. Useful for tests that don't want log noise.
type Nop struct{}

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field) {}
func (Nop) Warn(string, ...Field) {}
func (Nop) Error(string, ...Field) {}
func (n Nop) With(...Field) Logger { return n }

type ctxKey struct{}

// IntoContext stores a Logger on ctx for handlers that want ambient logging.
func IntoContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves a Logger previously stored with IntoContext,
// falling back to a Nop logger if none is present.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return Nop{}
}
