// Package logging provides a small leveled logger on top of the standard
// library log package. INFO lines track every non-NOOP ship transition;
// DEBUG lines describe decision inputs.
package logging

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Level is a log severity
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var current atomic.Int32

// SetLevel sets the process-wide minimum level from a config string
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		current.Store(int32(LevelDebug))
	case "warn":
		current.Store(int32(LevelWarn))
	case "error":
		current.Store(int32(LevelError))
	default:
		current.Store(int32(LevelInfo))
	}
}

func enabled(l Level) bool {
	return int32(l) >= current.Load()
}

// Debugf logs at debug level
func Debugf(format string, args ...interface{}) {
	if enabled(LevelDebug) {
		log.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
	}
}

// Infof logs at info level
func Infof(format string, args ...interface{}) {
	if enabled(LevelInfo) {
		log.Output(2, "INFO "+fmt.Sprintf(format, args...))
	}
}

// Warnf logs at warn level
func Warnf(format string, args ...interface{}) {
	if enabled(LevelWarn) {
		log.Output(2, "WARN "+fmt.Sprintf(format, args...))
	}
}

// Errorf logs at error level
func Errorf(format string, args ...interface{}) {
	if enabled(LevelError) {
		log.Output(2, "ERROR "+fmt.Sprintf(format, args...))
	}
}

func init() {
	current.Store(int32(LevelInfo))
	log.SetFlags(log.LstdFlags | log.LUTC)
}
