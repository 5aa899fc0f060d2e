// Package badgerlog routes badger's log output through a standard library
// logger.
package badgerlog

import (
	"fmt"
	"log"
	"strings"
)

// Level is the most verbose level that is logged.
type Level uint8

const (
	NoLogging Level = iota
	ErrorLevel
	WarningLevel
	InfoLevel
	DebugLevel
)

var levelNames = [...]string{
	NoLogging:    "none",
	ErrorLevel:   "error",
	WarningLevel: "warning",
	InfoLevel:    "info",
	DebugLevel:   "debug",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// ParseLevel parses a level name as returned by Level.String.
func ParseLevel(name string) (Level, error) {
	for lvl, n := range levelNames {
		if strings.EqualFold(n, name) {
			return Level(lvl), nil
		}
	}
	return NoLogging, fmt.Errorf("unknown log level %q", name)
}

// DefaultLevel is the level used by NewDefaultLogger.
var DefaultLevel = WarningLevel

// Logger implements badger.Logger.
type Logger struct {
	*log.Logger
	level Level
}

// NewDefaultLogger returns a logger writing to log.Default at DefaultLevel.
func NewDefaultLogger() *Logger {
	return NewLogger(log.Default(), DefaultLevel)
}

func NewLogger(log *log.Logger, level Level) *Logger {
	return &Logger{
		Logger: log,
		level:  level,
	}
}

func (l *Logger) logf(level Level, format string, args []interface{}) {
	if l.level >= level {
		// badger terminates most of its messages with a newline already.
		msg := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
		l.Printf("badger: %s: %s", level, msg)
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(ErrorLevel, format, args)
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.logf(WarningLevel, format, args)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(InfoLevel, format, args)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(DebugLevel, format, args)
}
