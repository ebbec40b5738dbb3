// Package logging provides the structured logger shared by every
// component in this module. It is a thin wrapper over
// github.com/charmbracelet/log so callers depend on a small
// project-local type rather than the logging library directly.
package logging

import (
	"os"

	charm "github.com/charmbracelet/log"
)

// Logger is a named, leveled logger. The zero value is not usable;
// construct one with New.
type Logger struct {
	inner *charm.Logger
}

var defaultLevel = charm.InfoLevel

// SetLevel changes the level new Loggers are created at. It does not
// affect Loggers already constructed with New.
func SetLevel(level string) {
	if parsed, err := charm.ParseLevel(level); err == nil {
		defaultLevel = parsed
	}
}

// New returns a Logger that prefixes every line with name, writing to
// stderr in charmbracelet/log's default styled format.
func New(name string) *Logger {
	inner := charm.NewWithOptions(os.Stderr, charm.Options{
		Prefix:          name,
		ReportTimestamp: true,
	})
	inner.SetLevel(defaultLevel)
	return &Logger{inner: inner}
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.inner.Debug(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...interface{})  { l.inner.Info(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.inner.Warn(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.inner.Error(msg, keyvals...) }

// With returns a derived Logger with the given key/value pairs
// attached to every subsequent line.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{inner: l.inner.With(keyvals...)}
}
