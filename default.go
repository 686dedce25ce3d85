package chanlog

import (
	"sync/atomic"
	"time"
)

// Global instance for package-level functions
var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewLogger())
}

// Default returns the process-wide engine used by the package-level functions
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide engine and returns the previous one.
// The previous engine is not stopped.
func SetDefault(l *Logger) *Logger {
	if l == nil {
		return defaultLogger.Load()
	}
	return defaultLogger.Swap(l)
}

// Start starts the default engine
func Start() error {
	return Default().Start()
}

// Stop drains and stops the default engine
func Stop() error {
	return Default().Stop()
}

// ApplyConfig applies cfg to the default engine
func ApplyConfig(cfg *Config) error {
	return Default().ApplyConfig(cfg)
}

// ApplyConfigString applies key=value overrides to the default engine
func ApplyConfigString(overrides ...string) error {
	return Default().ApplyConfigString(overrides...)
}

// AddOutput binds sink to channel on the default engine
func AddOutput(sink Sink, minLevel Level, channel int) error {
	return Default().AddOutput(sink, minLevel, channel)
}

// RemoveOutput unbinds sink from channel on the default engine
func RemoveOutput(sink Sink, channel int) bool {
	return Default().RemoveOutput(sink, channel)
}

// SetLevel sets the global threshold of the default engine
func SetLevel(level Level) {
	Default().SetLevel(level)
}

// GetLevel returns the global threshold of the default engine
func GetLevel() Level {
	return Default().Level()
}

// Tracef logs a message at trace level
func Tracef(channel int, format string, args ...any) {
	Default().logf(1, LevelTrace, channel, format, args)
}

// Debugf logs a message at debug level
func Debugf(channel int, format string, args ...any) {
	Default().logf(1, LevelDebug, channel, format, args)
}

// Infof logs a message at info level
func Infof(channel int, format string, args ...any) {
	Default().logf(1, LevelInfo, channel, format, args)
}

// Configf logs a message at config level
func Configf(channel int, format string, args ...any) {
	Default().logf(1, LevelConfig, channel, format, args)
}

// Warningf logs a message at warning level
func Warningf(channel int, format string, args ...any) {
	Default().logf(1, LevelWarning, channel, format, args)
}

// Errorf logs a message at error level
func Errorf(channel int, format string, args ...any) {
	Default().logf(1, LevelError, channel, format, args)
}

// SaveAllLogFiles backs up the log directory of the default engine
func SaveAllLogFiles() error {
	return Default().SaveAllLogFiles()
}

// Flush drains the default engine and waits for completion or timeout
func Flush(timeout time.Duration) error {
	return Default().Flush(timeout)
}
