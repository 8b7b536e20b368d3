package flowchart

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-logger/glog"
)

// Logger is the logging contract used by the workflow model and its collaborators.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// FieldsLogger extends Logger with structured-field support.
type FieldsLogger interface {
	WithFields(map[string]any) Logger
}

// Level orders log severities.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"trace", "debug", "info", "warn", "error", "fatal"}

func (lv Level) String() string {
	if lv < LevelTrace || lv > LevelFatal {
		return "unknown"
	}
	return levelNames[lv]
}

// FmtLogger writes logfmt-style lines. It is used when no logger is configured.
type FmtLogger struct {
	out    io.Writer
	min    Level
	fields map[string]any
}

// NewFmtLogger logs at info and above to out, or stderr when out is nil.
func NewFmtLogger(out io.Writer) *FmtLogger {
	if out == nil {
		out = os.Stderr
	}
	return &FmtLogger{out: out, min: LevelInfo}
}

// WithLevel returns a copy that drops entries below min.
func (l *FmtLogger) WithLevel(min Level) *FmtLogger {
	cp := *l
	cp.min = min
	return &cp
}

func (l *FmtLogger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *FmtLogger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *FmtLogger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *FmtLogger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *FmtLogger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *FmtLogger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

// WithContext returns l; lines carry no request scope.
func (l *FmtLogger) WithContext(context.Context) Logger { return l }

// WithFields returns a copy carrying fields on every line.
func (l *FmtLogger) WithFields(fields map[string]any) Logger {
	cp := *l
	cp.fields = make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		cp.fields[k] = v
	}
	for k, v := range fields {
		cp.fields[k] = v
	}
	return &cp
}

func (l *FmtLogger) write(level Level, msg string, args []any) {
	if level < l.min {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, " level=%s msg=%q", level, strings.TrimSpace(msg))
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(l.out, b.String())
}

// GlogLogger adapts a go-logger glog.Logger to the Logger contract.
type GlogLogger struct {
	logger glog.Logger
}

// NewGlogLogger wraps base. A nil base logs through a FmtLogger.
func NewGlogLogger(base glog.Logger) *GlogLogger {
	return &GlogLogger{logger: base}
}

func (l *GlogLogger) Trace(msg string, args ...any) { l.emit(LevelTrace, msg, args) }
func (l *GlogLogger) Debug(msg string, args ...any) { l.emit(LevelDebug, msg, args) }
func (l *GlogLogger) Info(msg string, args ...any)  { l.emit(LevelInfo, msg, args) }
func (l *GlogLogger) Warn(msg string, args ...any)  { l.emit(LevelWarn, msg, args) }
func (l *GlogLogger) Error(msg string, args ...any) { l.emit(LevelError, msg, args) }
func (l *GlogLogger) Fatal(msg string, args ...any) { l.emit(LevelFatal, msg, args) }

func (l *GlogLogger) WithContext(ctx context.Context) Logger {
	if l.logger == nil {
		return NewFmtLogger(nil)
	}
	return &GlogLogger{logger: l.logger.WithContext(ctx)}
}

// WithFields scopes the logger when the underlying glog logger supports fields.
func (l *GlogLogger) WithFields(fields map[string]any) Logger {
	if l.logger == nil {
		return NewFmtLogger(nil).WithFields(fields)
	}
	scoped, ok := l.logger.(glog.FieldsLogger)
	if !ok {
		return l
	}
	return &GlogLogger{logger: scoped.WithFields(fields)}
}

func (l *GlogLogger) emit(level Level, msg string, args []any) {
	if l.logger == nil {
		NewFmtLogger(nil).write(level, msg, args)
		return
	}
	switch level {
	case LevelTrace:
		l.logger.Trace(msg, args...)
	case LevelDebug:
		l.logger.Debug(msg, args...)
	case LevelInfo:
		l.logger.Info(msg, args...)
	case LevelWarn:
		l.logger.Warn(msg, args...)
	case LevelError:
		l.logger.Error(msg, args...)
	default:
		l.logger.Fatal(msg, args...)
	}
}

// scopeLogger substitutes a FmtLogger for nil and attaches fields when supported.
func scopeLogger(logger Logger, fields map[string]any) Logger {
	if logger == nil {
		logger = NewFmtLogger(nil)
	}
	if len(fields) == 0 {
		return logger
	}
	if fl, ok := logger.(FieldsLogger); ok {
		return fl.WithFields(fields)
	}
	return logger
}
