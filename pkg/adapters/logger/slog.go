package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/correlation"
)

// SlogAdapter implements Logger on top of log/slog.
type SlogAdapter struct {
	logger *slog.Logger
	fields []Field
}

// SlogConfig configures a SlogAdapter.
type SlogConfig struct {
	Logger    *slog.Logger
	Level     Level
	Handler   slog.Handler
	AddSource bool
}

// NewSlogAdapter constructs a SlogAdapter. A nil config produces an
// info-level text handler writing to stderr.
func NewSlogAdapter(config *SlogConfig) *SlogAdapter {
	if config == nil {
		config = &SlogConfig{Level: LevelInfo}
	}
	if config.Logger == nil {
		if config.Handler == nil {
			opts := &slog.HandlerOptions{
				Level:     levelToSlogLevel(config.Level),
				AddSource: config.AddSource,
			}
			config.Handler = slog.NewTextHandler(os.Stderr, opts)
		}
		config.Logger = slog.New(config.Handler)
	}
	return &SlogAdapter{logger: config.Logger}
}

func (l *SlogAdapter) Debug(msg string, fields ...Field) { l.log(context.Background(), slog.LevelDebug, msg, fields...) }
func (l *SlogAdapter) Info(msg string, fields ...Field)  { l.log(context.Background(), slog.LevelInfo, msg, fields...) }
func (l *SlogAdapter) Warn(msg string, fields ...Field)  { l.log(context.Background(), slog.LevelWarn, msg, fields...) }
func (l *SlogAdapter) Error(msg string, fields ...Field) { l.log(context.Background(), slog.LevelError, msg, fields...) }

func (l *SlogAdapter) Fatal(msg string, fields ...Field) {
	l.log(context.Background(), slog.LevelError, msg, fields...)
	os.Exit(1)
}

// DebugContext, InfoContext, WarnContext and ErrorContext log with the
// calling correlation ID attached, for call sites that thread a context
// through (cmd/keymasterctl's subcommands, chiefly).
func (l *SlogAdapter) DebugContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, l.withCorrelation(ctx, fields)...)
}
func (l *SlogAdapter) InfoContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, l.withCorrelation(ctx, fields)...)
}
func (l *SlogAdapter) WarnContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, l.withCorrelation(ctx, fields)...)
}
func (l *SlogAdapter) ErrorContext(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, l.withCorrelation(ctx, fields)...)
}

func (l *SlogAdapter) withCorrelation(ctx context.Context, fields []Field) []Field {
	if ctx == nil {
		return fields
	}
	if id := correlation.FromContext(ctx); id != "" {
		fields = append(fields, String("correlation_id", id))
	}
	return fields
}

func (l *SlogAdapter) With(fields ...Field) Logger {
	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	attrs := make([]slog.Attr, 0, len(all))
	for _, f := range all {
		attrs = append(attrs, fieldToAttr(f))
	}

	return &SlogAdapter{logger: l.logger.With(attrsToAny(attrs)...), fields: all}
}

func (l *SlogAdapter) WithError(err error) Logger {
	return l.With(Error(err))
}

func (l *SlogAdapter) log(ctx context.Context, level slog.Level, msg string, fields ...Field) {
	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	attrs := make([]slog.Attr, 0, len(all))
	for _, f := range all {
		attrs = append(attrs, fieldToAttr(f))
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

func fieldToAttr(field Field) slog.Attr {
	switch v := field.Value.(type) {
	case string:
		return slog.String(field.Key, v)
	case int:
		return slog.Int(field.Key, v)
	case uint64:
		return slog.Uint64(field.Key, v)
	case bool:
		return slog.Bool(field.Key, v)
	case error:
		return slog.Any(field.Key, v)
	default:
		return slog.Any(field.Key, v)
	}
}

func attrsToAny(attrs []slog.Attr) []any {
	result := make([]any, len(attrs))
	for i, attr := range attrs {
		result[i] = attr
	}
	return result
}

func levelToSlogLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError, LevelFatal:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var _ Logger = (*SlogAdapter)(nil)
