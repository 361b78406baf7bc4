// Package log is the process logger: a logrus instance behind a small
// interface, writing through a pattern or JSON formatter to stdout and an
// optional rotating file.
package log

import (
	"io"
	"os"
	"sync"
)

type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	Panic(args ...interface{})
	Panicf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

var (
	mu     sync.RWMutex
	logger Logger
)

// GetLogger returns the process logger. Before Init it is an info-level
// text logger on stdout.
func GetLogger() Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger, _ = build(Config{}, os.Stdout)
	}
	return logger
}

// Init replaces the process logger. Stdout is always written; cfg.File adds
// a rotating file.
func Init(cfg Config) error {
	out := NewMultiWriter().Add(os.Stdout)
	if cfg.File.Filename != "" {
		out.AddFileAppender(cfg.File)
	}
	l, err := build(cfg, out)
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// New builds a logger writing to w without touching the process logger.
func New(cfg Config, w io.Writer) (Logger, error) {
	return build(cfg, w)
}

// SetLogger replaces the process logger.
func SetLogger(l Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}
