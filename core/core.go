package core

import (
	"time"

	"github.com/hupe1980/navmesh/logging"
)

// LoggerAdapter wraps a logging.Logger and exposes convenience methods
// (LogDebug/LogInfo/LogWarn/LogError). It guarantees a non-nil logger by
// substituting a NoOpLogger when constructed with nil.
type LoggerAdapter struct {
	logger logging.Logger
}

// NewLoggerAdapter constructs a LoggerAdapter with a non-nil logger.
func NewLoggerAdapter(l logging.Logger) *LoggerAdapter {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	return &LoggerAdapter{logger: l}
}

// Logger returns the underlying logger.
func (l *LoggerAdapter) Logger() logging.Logger {
	return l.logger
}

// LogDebug logs a debug message.
func (l *LoggerAdapter) LogDebug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// LogInfo logs an info message.
func (l *LoggerAdapter) LogInfo(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// LogWarn logs a warning message.
func (l *LoggerAdapter) LogWarn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// LogError logs an error message.
func (l *LoggerAdapter) LogError(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// LogErrorWithStack logs err with a stack snapshot when the underlying logger
// supports it, and falls back to a plain error entry otherwise.
func (l *LoggerAdapter) LogErrorWithStack(err error, msg string, args ...any) {
	if sl, ok := l.logger.(interface {
		ErrorWithStack(err error, msg string, args ...any)
	}); ok {
		sl.ErrorWithStack(err, msg, args...)
		return
	}
	l.logger.Error(msg, append(args, "error", err)...)
}

// LogTransition reports the outcome of a slot operation. Loggers that provide
// a LogTransition method (such as *logging.NavLogger) format it themselves.
func (l *LoggerAdapter) LogTransition(op, key string, dur time.Duration, success bool, err error) {
	if tl, ok := l.logger.(interface {
		LogTransition(op, key string, dur time.Duration, success bool, err error)
	}); ok {
		tl.LogTransition(op, key, dur, success, err)
		return
	}
	if success {
		l.logger.Debug("Transition completed", "op", op, "key", key, "duration_ms", dur.Milliseconds())
		return
	}
	l.logger.Warn("Transition failed", "op", op, "key", key, "duration_ms", dur.Milliseconds(), "error", err)
}
