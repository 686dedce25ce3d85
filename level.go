package chanlog

import (
	"strconv"
	"strings"
)

// Level is the severity of a record. Levels are totally ordered and used both
// for the engine-wide threshold and for each binding's threshold.
type Level int64

// Severity levels, lowest first
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelConfig
	LevelWarning
	LevelError
)

var levelNames = [...]string{
	LevelTrace:   "TRACE",
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelConfig:  "CONFIG",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
}

// String returns the upper-case level name
func (lv Level) String() string {
	if lv >= LevelTrace && lv <= LevelError {
		return levelNames[lv]
	}
	return "LEVEL(" + strconv.FormatInt(int64(lv), 10) + ")"
}

// Valid reports whether lv is one of the defined levels
func (lv Level) Valid() bool {
	return lv >= LevelTrace && lv <= LevelError
}

// ParseLevel converts a level name to its Level.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "config":
		return LevelConfig, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use trace, debug, info, config, warning, error)", levelStr)
	}
}
