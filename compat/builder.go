package compat

import (
	"fmt"

	"github.com/lixenwraith/chanlog"
)

// Builder creates gnet and fasthttp adapters sharing one engine. It can use
// an existing *chanlog.Logger or create one from a *chanlog.Config.
type Builder struct {
	logger  *chanlog.Logger
	logCfg  *chanlog.Config
	channel int
	err     error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger specifies an existing engine to use for the adapters.
// If this is set WithConfig is ignored.
func (b *Builder) WithLogger(l *chanlog.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("chanlog/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithConfig provides a configuration for a new engine, used only when no
// engine was given via WithLogger
func (b *Builder) WithConfig(cfg *chanlog.Config) *Builder {
	b.logCfg = cfg
	return b
}

// WithChannel sets the channel adapters built from now on submit to
func (b *Builder) WithChannel(channel int) *Builder {
	b.channel = channel
	return b
}

// getLogger resolves the engine to be used, creating one if necessary
func (b *Builder) getLogger() (*chanlog.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.logger != nil {
		return b.logger, nil
	}

	l := chanlog.NewLogger()
	cfg := b.logCfg
	if cfg == nil {
		cfg = chanlog.DefaultConfig()
	}

	if err := l.ApplyConfig(cfg); err != nil {
		return nil, err
	}

	// Cache the new engine for subsequent builds with this builder
	b.logger = l
	return l, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	opts = append([]GnetOption{WithGnetChannel(b.channel)}, opts...)
	return NewGnetAdapter(l, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	opts = append([]FastHTTPOption{WithFastHTTPChannel(b.channel)}, opts...)
	return NewFastHTTPAdapter(l, opts...), nil
}

// GetLogger returns the underlying engine, creating it if needed. A created
// engine is not started.
func (b *Builder) GetLogger() (*chanlog.Logger, error) {
	return b.getLogger()
}
