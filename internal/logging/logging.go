// internal/logging/logging.go
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// Logger is the sink every table, transport and session logs through.
// It is injected; nothing in this module logs through a global.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Nop discards everything. It is the default when no logger is supplied.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop
	}
	return l
}

type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, errors.New("logging: invalid log level")
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SlogLogger adapts log/slog to Logger.
type SlogLogger struct {
	slog  *slog.Logger
	level Level
}

func NewText(w io.Writer, level Level) *SlogLogger {
	return &SlogLogger{
		slog: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:       slog.Level(LevelDebug),
			ReplaceAttr: replaceAttr,
		})),
		level: level,
	}
}

func NewJSON(w io.Writer, level Level) *SlogLogger {
	return &SlogLogger{
		slog: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       slog.Level(LevelDebug),
			ReplaceAttr: replaceAttr,
		})),
		level: level,
	}
}

// With returns a logger that prefixes every record with the given pairs.
func (l *SlogLogger) With(keysAndValues ...any) *SlogLogger {
	return &SlogLogger{slog: l.slog.With(keysAndValues...), level: l.level}
}

func (l *SlogLogger) log(level Level, msg string, v ...any) {
	if l.level > level {
		return
	}
	l.slog.Log(context.Background(), slog.Level(level), msg, v...)
}

func (l *SlogLogger) Debug(msg string, v ...any) { l.log(LevelDebug, msg, v...) }
func (l *SlogLogger) Info(msg string, v ...any)  { l.log(LevelInfo, msg, v...) }
func (l *SlogLogger) Warn(msg string, v ...any)  { l.log(LevelWarn, msg, v...) }
func (l *SlogLogger) Error(msg string, v ...any) { l.log(LevelError, msg, v...) }

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		a.Value = slog.StringValue(Level(level).String())
	}
	return a
}
