// Package logging provides the leveled key/value logger shared by the
// glyphflip command, the MCP server and the pipeline.
//
// Output goes to stderr by default because stdout carries MCP protocol
// traffic when the server is running. A nil *Logger discards everything, so
// library callers that do not care about logs can pass nil.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// EnvLevel is the environment variable read by LevelFromEnv.
const EnvLevel = "GLYPHFLIP_LOG_LEVEL"

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a Level.
// Anything else, including the empty string, is LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LevelFromEnv returns the level named by GLYPHFLIP_LOG_LEVEL.
func LevelFromEnv() Level {
	return ParseLevel(os.Getenv(EnvLevel))
}

// Logger provides structured logging with key-value pairs
type Logger struct {
	prefix string
	logger *log.Logger

	mu    sync.RWMutex
	level Level
}

// NewLogger creates a logger writing to stderr with the given prefix.
func NewLogger(prefix string, level Level) *Logger {
	return New(os.Stderr, prefix, level)
}

// New creates a logger writing to w.
func New(w io.Writer, prefix string, level Level) *Logger {
	return &Logger{
		prefix: prefix,
		logger: log.New(w, fmt.Sprintf("[%s] ", prefix), log.LstdFlags),
		level:  level,
	}
}

// SetLevel changes the minimum level that is written.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	if l == nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

// With returns a logger whose prefix is extended with name.
func (l *Logger) With(name string) *Logger {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	level := l.level
	l.mu.RUnlock()
	prefix := l.prefix + "/" + name
	return &Logger{
		prefix: prefix,
		logger: log.New(l.logger.Writer(), fmt.Sprintf("[%s] ", prefix), l.logger.Flags()),
		level:  level,
	}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelDebug, msg, keysAndValues...)
}

// Info logs an informational message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelInfo, msg, keysAndValues...)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelWarn, msg, keysAndValues...)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.logWithKV(LevelError, msg, keysAndValues...)
}

func (l *Logger) logWithKV(level Level, msg string, keysAndValues ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, " %v=<missing>", keysAndValues[i])
		}
	}
	l.logger.Printf("[%s] %s%s", level, msg, b.String())
}
