// Package logger provides logging implementations for archive expansion and
// pattern scanning.
//
// The logger package offers leveled logging plus domain-level summaries of
// expansions and scans. Implementations are thread-safe and support various
// output destinations (console, file, etc.).
package logger

import (
	"strings"

	"github.com/sankz2/pattern-search-tool/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the logging surface consumed by the expander and the scanner.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// RunLogger is a Logger that also renders run summaries.
type RunLogger interface {
	Logger
	LogExpandSummary(result models.ExpandResult)
	LogScanSummary(result models.ScanResult)
}

// ValidLevels lists accepted log levels, most verbose first.
var ValidLevels = []string{"trace", "debug", "info", "warn", "error"}

// IsValidLevel reports whether level is one of ValidLevels (case-insensitive).
func IsValidLevel(level string) bool {
	normalized := strings.ToLower(strings.TrimSpace(level))
	for _, l := range ValidLevels {
		if l == normalized {
			return true
		}
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	if IsValidLevel(level) {
		return strings.ToLower(strings.TrimSpace(level))
	}
	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(message string)                     {}
func (n *NoOpLogger) LogDebug(message string)                     {}
func (n *NoOpLogger) LogInfo(message string)                      {}
func (n *NoOpLogger) LogWarn(message string)                      {}
func (n *NoOpLogger) LogError(message string)                     {}
func (n *NoOpLogger) LogExpandSummary(result models.ExpandResult) {}
func (n *NoOpLogger) LogScanSummary(result models.ScanResult)     {}

// MultiLogger fans every message out to each wrapped logger in order.
type MultiLogger struct {
	loggers []RunLogger
}

// NewMultiLogger creates a MultiLogger. Nil entries are skipped.
func NewMultiLogger(loggers ...RunLogger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

// LogTrace logs a trace-level message to every logger.
func (m *MultiLogger) LogTrace(message string) {
	for _, l := range m.loggers {
		l.LogTrace(message)
	}
}

// LogDebug logs a debug-level message to every logger.
func (m *MultiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

// LogInfo logs an info-level message to every logger.
func (m *MultiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

// LogWarn logs a warning-level message to every logger.
func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

// LogError logs an error-level message to every logger.
func (m *MultiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

// LogExpandSummary forwards the expansion summary to every logger.
func (m *MultiLogger) LogExpandSummary(result models.ExpandResult) {
	for _, l := range m.loggers {
		l.LogExpandSummary(result)
	}
}

// LogScanSummary forwards the scan summary to every logger.
func (m *MultiLogger) LogScanSummary(result models.ScanResult) {
	for _, l := range m.loggers {
		l.LogScanSummary(result)
	}
}
