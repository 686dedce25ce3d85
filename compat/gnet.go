package compat

import (
	"os"
	"time"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/chanlog"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter implements gnet's logging.Logger on top of a chanlog engine.
// Every call becomes a record on the adapter's channel.
type GnetAdapter struct {
	logger       *chanlog.Logger
	channel      int
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(logger *chanlog.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithGnetChannel sets the channel records are submitted on
func WithGnetChannel(channel int) GnetOption {
	return func(a *GnetAdapter) {
		a.channel = channel
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logger.Submit(chanlog.LevelDebug, a.channel, "", 0, sourceGnet, format, args...)
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logger.Submit(chanlog.LevelInfo, a.channel, "", 0, sourceGnet, format, args...)
}

// Warnf logs at warning level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logger.Submit(chanlog.LevelWarning, a.channel, "", 0, sourceGnet, format, args...)
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.Submit(chanlog.LevelError, a.channel, "", 0, sourceGnet, format, args...)
}

// Fatalf logs at error level, flushes and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	a.logger.Submit(chanlog.LevelError, a.channel, "", 0, sourceGnet, format, args...)

	// Ensure log is flushed before exit
	_ = a.logger.Flush(100 * time.Millisecond)

	if a.fatalHandler != nil {
		a.fatalHandler(sprintf(format, args))
	}
}
