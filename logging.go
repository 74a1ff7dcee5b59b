package sched

import (
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Level is a log severity, mirroring the teacher's event loop Logger's
// small fixed level set rather than an open-ended string.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Field is one piece of structured context attached to a log line.
type Field struct {
	Key   string
	Value any
}

// Logger is the scheduler's structured logging seam, shaped after the
// teacher event loop's Logger/LogEntry/IsEnabled trio: callers guard
// expensive field construction with IsEnabled before building a Log call.
type Logger interface {
	Log(level Level, msg string, fields ...Field)
	IsEnabled(level Level) bool
}

// noopLogger discards everything; it is the zero-cost default for
// schedulers constructed without WithLogger.
type noopLogger struct{}

// NewNoOpLogger returns a Logger that discards all log lines.
func NewNoOpLogger() Logger { return noopLogger{} }

func (noopLogger) Log(Level, string, ...Field) {}
func (noopLogger) IsEnabled(Level) bool         { return false }

// logifaceLogger adapts Logger onto github.com/joeycumines/logiface, using
// github.com/joeycumines/stumpy as the line-writer backend, replacing the
// teacher's hand-rolled ANSI pretty-printer with the pack's structured
// logging facade.
type logifaceLogger struct {
	l   *logiface.Logger[*stumpy.Event]
	min Level
}

// NewLogifaceLogger builds a Logger backed by logiface+stumpy, writing
// newline-delimited structured records to w (os.Stderr if nil) at or above
// min.
func NewLogifaceLogger(w *os.File, min Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	l := logiface.New[*stumpy.Event](
		logiface.WithEventFactory[*stumpy.Event](stumpy.EventFactory()),
		logiface.WithWriter[*stumpy.Event](stumpy.NewWriter(w)),
		logiface.WithLevel[*stumpy.Event](toLogifaceLevel(min)),
	)
	return &logifaceLogger{l: l, min: min}
}

func (lg *logifaceLogger) IsEnabled(level Level) bool {
	return level >= lg.min
}

func (lg *logifaceLogger) Log(level Level, msg string, fields ...Field) {
	b := lg.l.Build(toLogifaceLevel(level))
	if b == nil {
		return
	}
	for _, f := range fields {
		b = b.Any(f.Key, f.Value)
	}
	b.Log(msg)
}

func toLogifaceLevel(level Level) logiface.Level {
	switch level {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

// logf is a small convenience used throughout the package to avoid
// constructing a Field slice when the logger is disabled at this level.
func logf(log Logger, level Level, msg string, fields ...Field) {
	if log == nil || !log.IsEnabled(level) {
		return
	}
	log.Log(level, msg, fields...)
}
