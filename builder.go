package chanlog

// Builder provides a fluent API for building an engine.
// It wraps a Config instance plus sink bindings and accumulates errors.
type Builder struct {
	cfg     *Config
	outputs []output
	err     error // Accumulate errors for deferred handling
}

type output struct {
	sink     Sink
	minLevel Level
	channel  int
}

// NewBuilder creates a new builder with default values
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new, idle Logger with the configuration and bindings.
// The caller starts it.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := NewLogger()

	if err := logger.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	for _, o := range b.outputs {
		if err := logger.AddOutput(o.sink, o.minLevel, o.channel); err != nil {
			return nil, err
		}
	}

	return logger, nil
}

// Level sets the global threshold
func (b *Builder) Level(level Level) *Builder {
	b.cfg.Level = int64(level)
	return b
}

// LevelString sets the global threshold from a string
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, err := ParseLevel(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = int64(levelVal)
	return b
}

// MaxChannels caps the number of distinct channels (0=unbounded)
func (b *Builder) MaxChannels(n int64) *Builder {
	b.cfg.MaxChannels = n
	return b
}

// QueueCapacity sets the initial capacity of each buffer
func (b *Builder) QueueCapacity(n int64) *Builder {
	b.cfg.QueueInitialCapacity = n
	return b
}

// WorkerPeriodMs sets the time between drain cycles
func (b *Builder) WorkerPeriodMs(ms int64) *Builder {
	b.cfg.WorkerPeriodMs = ms
	return b
}

// LogFile sets the log file path used by SaveAllLogFiles
func (b *Builder) LogFile(path string) *Builder {
	b.cfg.LogFilePath = path
	return b
}

// ClearAtStart truncates opener sinks on Start
func (b *Builder) ClearAtStart(clear bool) *Builder {
	b.cfg.ClearAtStart = clear
	return b
}

// BackupDirectory sets where SaveAllLogFiles places copies
func (b *Builder) BackupDirectory(dir string) *Builder {
	b.cfg.BackupDirectory = dir
	return b
}

// Format sets the output format
func (b *Builder) Format(format string) *Builder {
	b.cfg.Format = format
	return b
}

// TimestampFormat sets the time layout of rendered lines
func (b *Builder) TimestampFormat(layout string) *Builder {
	b.cfg.TimestampFormat = layout
	return b
}

// Sanitize toggles hex-encoding of non-printable message bytes
func (b *Builder) Sanitize(enable bool) *Builder {
	b.cfg.Sanitize = enable
	return b
}

// HeartbeatLevel sets the heartbeat monitoring level
func (b *Builder) HeartbeatLevel(level int64) *Builder {
	b.cfg.HeartbeatLevel = level
	return b
}

// HeartbeatIntervalS sets the heartbeat interval
func (b *Builder) HeartbeatIntervalS(interval int64) *Builder {
	b.cfg.HeartbeatIntervalS = interval
	return b
}

// HeartbeatChannel sets the channel heartbeats are routed to
func (b *Builder) HeartbeatChannel(channel int) *Builder {
	b.cfg.HeartbeatChannel = int64(channel)
	return b
}

// InternalErrorsToStderr enables diagnostics on stderr
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Output binds sink to channel at Build time
func (b *Builder) Output(sink Sink, minLevel Level, channel int) *Builder {
	if b.err != nil {
		return b
	}
	if sink == nil {
		b.err = ErrNilSink
		return b
	}
	b.outputs = append(b.outputs, output{sink: sink, minLevel: minLevel, channel: channel})
	return b
}

// Example usage:
// logger, err := chanlog.NewBuilder().
//
//	LevelString("debug").
//	WorkerPeriodMs(50).
//	Output(chanlog.NewConsoleSink("stdout", true), chanlog.LevelInfo, 0).
//	Output(chanlog.NewFileSink("./logs/app.log"), chanlog.LevelWarning, 0).
//	Build()
//
// if err == nil {
//
//	 _ = logger.Start()
//	 defer logger.Stop()
//	 logger.Infof(0, "engine started")
//
// }
