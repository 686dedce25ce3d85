package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/chanlog"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

const (
	sourceGnet     = "gnet"
	sourceFastHTTP = "fasthttp"
)

// FastHTTPAdapter implements fasthttp's Logger on top of a chanlog engine
type FastHTTPAdapter struct {
	logger        *chanlog.Logger
	channel       int
	defaultLevel  chanlog.Level
	levelDetector func(string) (chanlog.Level, bool) // Detects a level from message content
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger *chanlog.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		defaultLevel:  chanlog.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when no level is detected
func WithDefaultLevel(level chanlog.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content
func WithLevelDetector(detector func(string) (chanlog.Level, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// WithFastHTTPChannel sets the channel records are submitted on
func WithFastHTTPChannel(channel int) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.channel = channel
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := sprintf(format, args)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}

	a.logger.Submit(level, a.channel, "", 0, sourceFastHTTP, "%s", msg)
}

// DetectLogLevel guesses a level from keywords in msg; ok is false when
// nothing matched
func DetectLogLevel(msg string) (level chanlog.Level, ok bool) {
	msgLower := strings.ToLower(msg)

	switch {
	case strings.Contains(msgLower, "error"),
		strings.Contains(msgLower, "failed"),
		strings.Contains(msgLower, "fatal"),
		strings.Contains(msgLower, "panic"):
		return chanlog.LevelError, true
	case strings.Contains(msgLower, "warn"),
		strings.Contains(msgLower, "deprecated"):
		return chanlog.LevelWarning, true
	case strings.Contains(msgLower, "debug"):
		return chanlog.LevelDebug, true
	case strings.Contains(msgLower, "trace"):
		return chanlog.LevelTrace, true
	}
	return 0, false
}

func sprintf(format string, args []any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
