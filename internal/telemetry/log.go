// Package telemetry wraps the logger and metrics client cmd/repet uses,
// so the CLI does not reach for zap/statsd directly. pkg/repet does not
// import it.
package telemetry

import (
	"go.uber.org/zap"
)

// Fields is a plain map of structured fields so call sites read
// Fields{"period": p, "channels": n} instead of a slice of zap.Field
// constructors.
type Fields map[string]any

// Logger wraps a *zap.SugaredLogger with a WithFields helper in the
// style of structured loggers that take a field map rather than
// key/value varargs.
type Logger struct {
	base *zap.SugaredLogger
}

// NewLogger builds a production JSON logger, or a development console
// logger when verbose is set.
func NewLogger(verbose bool) (*Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{base: z.Sugar()}, nil
}

// Noop returns a Logger that discards everything, for tests and
// library callers that don't want log output.
func Noop() *Logger {
	return &Logger{base: zap.NewNop().Sugar()}
}

// WithFields returns a child logger carrying the given structured fields.
func (l *Logger) WithFields(fields Fields) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{base: l.base.With(args...)}
}

func (l *Logger) Debugf(template string, args ...any) { l.base.Debugf(template, args...) }
func (l *Logger) Infof(template string, args ...any)  { l.base.Infof(template, args...) }
func (l *Logger) Warnf(template string, args ...any)  { l.base.Warnf(template, args...) }
func (l *Logger) Errorf(template string, args ...any) { l.base.Errorf(template, args...) }

// Sync flushes any buffered log entries; call it before process exit.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
