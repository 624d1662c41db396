// Package logger provides structured JSON logging and metrics tracking for rec-schedule.
//
// Log entries are encoded by zerolog; callers use the small Fields-based API so the
// engine packages never depend on zerolog directly. Levels are DEBUG, INFO, WARN and
// ERROR and every entry carries an RFC3339 timestamp.
//
// Metrics tracking includes counters (incrementing values), gauges (point-in-time values),
// and timings (duration measurements) with automatic statistical aggregation.
//
// Example usage:
//
//	logger.Warn("Routing request failed, using estimate", logger.Fields{
//	    "mode":   "driving",
//	    "status": 502,
//	})
//
//	logger.IncrCounter("distance.source.cache")
//	logger.RecordTiming("distance.resolve", duration)
package logger

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging
type Logger struct {
	minLevel Level
	zl       zerolog.Logger
}

// Fields represents structured log fields
type Fields map[string]interface{}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
		return string(fromZerolog(l))
	}
	defaultLogger = New(LevelInfo, os.Stderr)
}

// New creates a new logger with the specified minimum log level and output destination.
// Messages below the minimum level will be discarded.
func New(level Level, output io.Writer) *Logger {
	zl := zerolog.New(output).Level(toZerolog(level)).With().Timestamp().Logger()
	return &Logger{
		minLevel: level,
		zl:       zl,
	}
}

// ParseLevel maps a case-insensitive level name to a Level, defaulting to INFO.
func ParseLevel(name string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(name))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// SetDefault sets the package-level logger used by Debug, Info, Warn and Error.
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// log writes a structured log entry
func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.shouldLog(level) {
		return
	}

	evt := l.zl.WithLevel(toZerolog(level))
	if evt == nil {
		return
	}

	if len(fields) > 0 {
		// Sorted keys keep output stable for tests and log diffing.
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dict := zerolog.Dict()
		for _, k := range keys {
			dict = dict.Interface(k, fields[k])
		}
		evt = evt.Dict("fields", dict)
	}

	if err != nil {
		evt = evt.Str("error", err.Error())
	}

	evt.Msg(message)
}

// shouldLog determines if a message should be logged based on level
func (l *Logger) shouldLog(level Level) bool {
	return rank(level) >= rank(l.minLevel)
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message with optional structured fields.
// Warnings are used for recovered failures: bad time strings, routing fallbacks.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with optional structured fields and an error object.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	current().Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	current().Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	current().Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	current().Error(message, fields, err)
}

func rank(level Level) int {
	switch level {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	}
	return 1
}

func toZerolog(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func fromZerolog(level zerolog.Level) Level {
	switch level {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return LevelDebug
	case zerolog.WarnLevel:
		return LevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return LevelError
	default:
		return LevelInfo
	}
}
