package concurrency

import (
	"fmt"
	"log"
	"os"
)

// Logger is the narrow logging surface the pool needs.
// Declared here so this package does not import core; core.Logger satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// defaultLogger implements Logger using standard log
type defaultLogger struct {
	info  *log.Logger
	error *log.Logger
}

func newDefaultLogger() Logger {
	return &defaultLogger{
		info:  log.New(os.Stderr, "[INFO] ", log.LstdFlags|log.Lshortfile),
		error: log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
	}
}

// Debugf is dropped by the default logger
func (l *defaultLogger) Debugf(string, ...interface{}) {}

func (l *defaultLogger) Infof(format string, args ...interface{}) {
	l.info.Output(3, fmt.Sprintf(format, args...))
}

func (l *defaultLogger) Errorf(format string, args ...interface{}) {
	l.error.Output(3, fmt.Sprintf(format, args...))
}
