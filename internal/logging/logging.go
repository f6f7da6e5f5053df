package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel orders messages by severity. Messages below the configured level
// are dropped.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("unknown(%d)", int(l))
	}
	return levelNames[l]
}

// tag is the bracketed prefix written before each message, e.g. "[WARN] ".
func (l LogLevel) tag() string {
	return "[" + strings.ToUpper(l.String()) + "] "
}

var (
	currentLevel LogLevel
	levelOnce    sync.Once
)

// GetLevel returns the level read from DEBUG and LOG_LEVEL on first use.
func GetLevel() LogLevel {
	levelOnce.Do(func() {
		currentLevel = ParseLevel(os.Getenv("DEBUG"), os.Getenv("LOG_LEVEL"))
	})
	return currentLevel
}

// ParseLevel resolves the effective level from the DEBUG and LOG_LEVEL values.
// A truthy DEBUG wins; an unknown or empty LOG_LEVEL means info.
func ParseLevel(debug, level string) LogLevel {
	switch strings.ToLower(debug) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}
	level = strings.ToLower(level)
	if level == "warning" {
		return LevelWarn
	}
	for l, name := range levelNames {
		if name == level {
			return LogLevel(l)
		}
	}
	return LevelInfo
}

func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func logf(level LogLevel, prefix, format string, args ...interface{}) {
	if GetLevel() > level {
		return
	}
	log.Printf(level.tag()+prefix+format, args...)
}

func Debug(format string, args ...interface{}) { logf(LevelDebug, "", format, args...) }
func Info(format string, args ...interface{})  { logf(LevelInfo, "", format, args...) }
func Warn(format string, args ...interface{})  { logf(LevelWarn, "", format, args...) }
func Error(format string, args ...interface{}) { logf(LevelError, "", format, args...) }

// Fatal logs regardless of level and exits with status 1.
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// Printf writes without a level tag or filtering. The access log uses it.
func Printf(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// Logger prefixes every message with a component name, e.g. "[WARN] [seek] ...".
// Its methods have the same shape as the package-level functions so they can
// be passed around as diagnostic sinks.
type Logger struct {
	prefix string
}

func Component(name string) *Logger {
	return &Logger{prefix: "[" + name + "] "}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	logf(LevelDebug, l.prefix, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	logf(LevelInfo, l.prefix, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	logf(LevelWarn, l.prefix, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	logf(LevelError, l.prefix, format, args...)
}
