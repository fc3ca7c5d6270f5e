package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level is a logging threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

// ParseLevel maps a config string to a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "off", "none", "quiet":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Logger provides leveled logging for the dashboard pipeline.
type Logger struct {
	level Level
	out   *log.Logger
	err   *log.Logger
	now   func() time.Time
}

// NewLogger creates a Logger writing info/debug to out and warn/error to errw.
func NewLogger(level Level, out, errw io.Writer) *Logger {
	return &Logger{
		level: level,
		out:   log.New(out, "", 0),
		err:   log.New(errw, "", 0),
		now:   time.Now,
	}
}

// NewStderrLogger logs everything to stderr so command output on stdout stays parseable.
func NewStderrLogger(level Level) *Logger {
	return NewLogger(level, os.Stderr, os.Stderr)
}

// NopLogger discards all output.
func NopLogger() *Logger {
	return NewLogger(LevelOff, io.Discard, io.Discard)
}

func (l *Logger) logf(lv Level, tag string, dst *log.Logger, format string, args ...any) {
	if l == nil || lv < l.level {
		return
	}
	dst.Printf("[%s] %-5s %s", l.now().Format("2006-01-02 15:04:05"), tag, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	if l == nil {
		return
	}
	l.logf(LevelDebug, "DEBUG", l.out, format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	if l == nil {
		return
	}
	l.logf(LevelInfo, "INFO", l.out, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	if l == nil {
		return
	}
	l.logf(LevelWarn, "WARN", l.err, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	if l == nil {
		return
	}
	l.logf(LevelError, "ERROR", l.err, format, args...)
}
