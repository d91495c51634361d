package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Logger provides leveled logging capabilities
// This abstraction allows swapping logging implementations
type Logger interface {
	// Error logs an error message
	Error(args ...interface{})

	// Errorf logs a formatted error message
	Errorf(format string, args ...interface{})

	// Warn logs a warning message
	Warn(args ...interface{})

	// Warnf logs a formatted warning message
	Warnf(format string, args ...interface{})

	// Info logs an informational message
	Info(args ...interface{})

	// Infof logs a formatted informational message
	Infof(format string, args ...interface{})

	// Debug logs a debug message
	Debug(args ...interface{})

	// Debugf logs a formatted debug message
	Debugf(format string, args ...interface{})
}

// Level is a log severity
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel maps a config string to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// defaultLogger implements Logger using Go's standard log package
type defaultLogger struct {
	level       atomic.Int32
	errorLogger *log.Logger
	warnLogger  *log.Logger
	infoLogger  *log.Logger
	debugLogger *log.Logger
}

// NewDefaultLogger creates a logger at info level writing to stdout/stderr
func NewDefaultLogger() Logger {
	l := &defaultLogger{
		errorLogger: log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
		warnLogger:  log.New(os.Stderr, "[WARN] ", log.LstdFlags|log.Lshortfile),
		infoLogger:  log.New(os.Stdout, "[INFO] ", log.LstdFlags|log.Lshortfile),
		debugLogger: log.New(os.Stdout, "[DEBUG] ", log.LstdFlags|log.Lshortfile),
	}
	l.level.Store(int32(LevelInfo))
	return l
}

// NewLogger creates a logger writing every level to w, dropping entries below level
func NewLogger(w io.Writer, level Level) Logger {
	l := &defaultLogger{
		errorLogger: log.New(w, "[ERROR] ", log.LstdFlags),
		warnLogger:  log.New(w, "[WARN] ", log.LstdFlags),
		infoLogger:  log.New(w, "[INFO] ", log.LstdFlags),
		debugLogger: log.New(w, "[DEBUG] ", log.LstdFlags),
	}
	l.level.Store(int32(level))
	return l
}

// SetLevel changes the minimum level of a logger built by this package
func SetLevel(logger Logger, level Level) {
	if l, ok := logger.(*defaultLogger); ok {
		l.level.Store(int32(level))
	}
}

func (l *defaultLogger) enabled(level Level) bool {
	return Level(l.level.Load()) <= level
}

// Error logs an error message
func (l *defaultLogger) Error(args ...interface{}) {
	if l.enabled(LevelError) {
		l.errorLogger.Output(3, fmt.Sprint(args...))
	}
}

// Errorf logs a formatted error message
func (l *defaultLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(LevelError) {
		l.errorLogger.Output(3, fmt.Sprintf(format, args...))
	}
}

// Warn logs a warning message
func (l *defaultLogger) Warn(args ...interface{}) {
	if l.enabled(LevelWarn) {
		l.warnLogger.Output(3, fmt.Sprint(args...))
	}
}

// Warnf logs a formatted warning message
func (l *defaultLogger) Warnf(format string, args ...interface{}) {
	if l.enabled(LevelWarn) {
		l.warnLogger.Output(3, fmt.Sprintf(format, args...))
	}
}

// Info logs an informational message
func (l *defaultLogger) Info(args ...interface{}) {
	if l.enabled(LevelInfo) {
		l.infoLogger.Output(3, fmt.Sprint(args...))
	}
}

// Infof logs a formatted informational message
func (l *defaultLogger) Infof(format string, args ...interface{}) {
	if l.enabled(LevelInfo) {
		l.infoLogger.Output(3, fmt.Sprintf(format, args...))
	}
}

// Debug logs a debug message
func (l *defaultLogger) Debug(args ...interface{}) {
	if l.enabled(LevelDebug) {
		l.debugLogger.Output(3, fmt.Sprint(args...))
	}
}

// Debugf logs a formatted debug message
func (l *defaultLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(LevelDebug) {
		l.debugLogger.Output(3, fmt.Sprintf(format, args...))
	}
}
