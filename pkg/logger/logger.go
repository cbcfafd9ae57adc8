// Package logger is the structured zerolog logger shared by every binary. Request-scoped fields ride
// on the context so handlers, services and workers log with the same request and alert identifiers.
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aresconnect/ares-connect-backend/pkg/env"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Field names shared by the context helpers.
const (
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"
	FieldGroupID   = "group_id"
	FieldAlertID   = "alert_id"
)

type Options struct {
	ServiceName string
	Level       zerolog.Level
	// WarnStack adds a stack trace to warn entries. Errors always carry one.
	WarnStack bool
	// Format is json or console. Empty reads LOG_FORMAT and falls back to json.
	Format string
	Output io.Writer
}

type Logger struct {
	root zerolog.Logger
}

func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if resolveFormat(opts.Format) == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	level := opts.Level
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	root := zerolog.New(out).
		Level(level).
		Hook(stackHook{minLevel: stackThreshold(opts.WarnStack)}).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger()

	return &Logger{root: root}
}

func resolveFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.ToLower(env.Get("LOG_FORMAT", FormatJSON))
	}
	return f
}

func stackThreshold(warnStack bool) zerolog.Level {
	if warnStack {
		return zerolog.WarnLevel
	}
	return zerolog.ErrorLevel
}

// ParseLevel maps a config string to a level. Empty or unknown values mean info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// stackHook stamps a goroutine stack on entries at or above minLevel.
type stackHook struct {
	minLevel zerolog.Level
}

func (h stackHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	if level >= h.minLevel && level < zerolog.NoLevel {
		e.Str("stack", strings.TrimSpace(string(debug.Stack())))
	}
}

// entry returns the logger stored on ctx by one of the With helpers, or the root logger.
func (l *Logger) entry(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if stored := zerolog.Ctx(ctx); stored != nil && stored.GetLevel() != zerolog.Disabled {
			return stored
		}
	}
	return &l.root
}

func (l *Logger) with(ctx context.Context, build func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	child := build(l.entry(ctx).With()).Logger()
	return child.WithContext(ctx)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Interface(key, value)
	})
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Fields(fields)
	})
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, FieldRequestID, requestID)
}

func (l *Logger) WithUserID(ctx context.Context, userID string) context.Context {
	return l.WithField(ctx, FieldUserID, userID)
}

func (l *Logger) WithGroupID(ctx context.Context, groupID string) context.Context {
	return l.WithField(ctx, FieldGroupID, groupID)
}

func (l *Logger) WithAlertID(ctx context.Context, alertID string) context.Context {
	return l.WithField(ctx, FieldAlertID, alertID)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.entry(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.entry(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	l.entry(ctx).Warn().Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	l.entry(ctx).Error().Err(err).Msg(msg)
}
