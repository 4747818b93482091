// Package logger provides leveled logging for the sorting server.
// Degraded states (e.g. queries against a rootless tree) must be
// traceable through the severe channel.
package logger

import (
	"log"
	"os"
)

// Logger provides leveled logging with fixed prefixes.
type Logger struct {
	infoLogger   *log.Logger
	warnLogger   *log.Logger
	errorLogger  *log.Logger
	severeLogger *log.Logger
}

// NewLogger creates a new logger instance writing to stdout/stderr.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:   log.New(os.Stdout, "[SORT-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:   log.New(os.Stdout, "[SORT-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger:  log.New(os.Stderr, "[SORT-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
		severeLogger: log.New(os.Stderr, "[SORT-SEVERE] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.infoLogger.Println(msg)
}

// Infof logs a formatted informational message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.infoLogger.Printf(format, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.warnLogger.Println(msg)
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.warnLogger.Printf(format, args...)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.errorLogger.Println(msg)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.errorLogger.Printf(format, args...)
}

// Severe logs conditions that leave the server answering with sentinel
// values, such as depth or order queries while no root category is set.
func (l *Logger) Severe(msg string) {
	l.severeLogger.Println(msg)
}

// Severef logs a formatted severe condition.
func (l *Logger) Severef(format string, args ...interface{}) {
	l.severeLogger.Printf(format, args...)
}
