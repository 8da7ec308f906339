package logging

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLogger is the zerolog-backed logger implementation.
// Console output goes to stderr with a short timestamp format.
type DefaultLogger struct {
	zl     zerolog.Logger
	level  Level
	fields Fields
}

// NewDefaultLogger creates a new console logger
func NewDefaultLogger() *DefaultLogger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	return &DefaultLogger{
		zl:     zerolog.New(output).With().Timestamp().Logger(),
		level:  InfoLevel,
		fields: make(Fields),
	}
}

// NewLoggerWithWriter creates a logger writing zerolog console output to the given writer
func NewLoggerWithWriter(w zerolog.LevelWriter) *DefaultLogger {
	return &DefaultLogger{
		zl:     zerolog.New(w).With().Timestamp().Logger(),
		level:  InfoLevel,
		fields: make(Fields),
	}
}

func (d *DefaultLogger) event(ev *zerolog.Event, err error, msg string, fields ...Fields) {
	for k, v := range d.fields {
		ev = ev.Any(k, v)
	}
	for _, f := range fields {
		for k, v := range f {
			ev = ev.Any(k, v)
		}
	}
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	if d.level > DebugLevel {
		return
	}
	d.event(d.zl.Debug(), nil, msg, fields...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	if d.level > InfoLevel {
		return
	}
	d.event(d.zl.Info(), nil, msg, fields...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	if d.level > WarnLevel {
		return
	}
	d.event(d.zl.Warn(), nil, msg, fields...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	if d.level > ErrorLevel {
		return
	}
	d.event(d.zl.Error(), err, msg, fields...)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.event(d.zl.Error(), err, msg, fields...)
	os.Exit(1)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields, len(d.fields)+len(fields))
	for k, v := range d.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &DefaultLogger{
		zl:     d.zl,
		level:  d.level,
		fields: newFields,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := ctx.Value(fieldsContextKey{}).(Fields); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

type fieldsContextKey struct{}

// ContextWithFields attaches logging fields to a context for WithContext
func ContextWithFields(ctx context.Context, fields Fields) context.Context {
	return context.WithValue(ctx, fieldsContextKey{}, fields)
}

// init keeps zerolog timestamps in a stable format across the process
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
