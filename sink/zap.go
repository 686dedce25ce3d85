package sink

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/chanlog"
)

// Zap forwards rendered lines into a zap logger. Trace and debug map to
// zap's debug, info and config to info, warning to warn and error to error.
type Zap struct {
	logger *zap.Logger
}

// NewZap wraps logger; nil means zap.NewNop
func NewZap(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zap{logger: logger}
}

// ZapLevel maps a chanlog level to its zap counterpart
func ZapLevel(level chanlog.Level) zapcore.Level {
	switch {
	case level <= chanlog.LevelDebug:
		return zapcore.DebugLevel
	case level <= chanlog.LevelConfig:
		return zapcore.InfoLevel
	case level == chanlog.LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Write implements chanlog.Sink
func (z *Zap) Write(message string, level chanlog.Level) {
	if ce := z.logger.Check(ZapLevel(level), message); ce != nil {
		ce.Write(zap.Stringer("chanlog_level", level))
	}
}

// Sync implements chanlog.Syncer
func (z *Zap) Sync() error {
	return z.logger.Sync()
}
