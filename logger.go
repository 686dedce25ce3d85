package chanlog

import (
	"fmt"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"

	"github.com/lixenwraith/chanlog/formatter"
)

// Logger is the asynchronous engine: producers append records to a double
// buffer and a single worker goroutine drains it to channel-bound sinks
type Logger struct {
	currentConfig atomic.Value // stores *Config
	state         State
	initMu        sync.Mutex // Serializes lifecycle and configuration changes

	queue    *doubleBuffer
	channels *channelTable

	stopChan chan struct{} // Closed to stop the current worker
	done     chan struct{} // Closed by the current worker on exit
}

// NewLogger creates an idle engine with default settings
func NewLogger() *Logger {
	cfg := DefaultConfig()
	l := &Logger{
		queue:    newDoubleBuffer(int(cfg.QueueInitialCapacity)),
		channels: newChannelTable(cfg.MaxChannels),
	}
	l.currentConfig.Store(cfg)

	l.state.Lifecycle.Store(stateIdle)
	l.state.Level.Store(cfg.Level)
	l.state.StartTime.Store(time.Time{})
	l.state.flushRequestChan = make(chan chan struct{}, 1)

	return l
}

// ApplyConfig validates and applies cfg. Invalid values are rejected, never
// clamped. The level and channel limit apply immediately. When the engine is
// running and the worker period, queue capacity, output format or heartbeat
// settings change, the worker is stopped (draining everything queued) and
// restarted with the new settings. The file path, clear flag and backup
// directory take effect at the next Start or SaveAllLogFiles call.
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	return l.applyConfig(cfg.Clone())
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// Start opens bound sinks and spawns the worker. Safe to call multiple times;
// a stopped engine may be started again. Records queued while idle or stopped
// are delivered by the first drain cycle. Sink open failures are returned but
// do not prevent the engine from running.
func (l *Logger) Start() error {
	l.initMu.Lock()
	defer l.initMu.Unlock()
	return l.start()
}

// Stop signals the worker, waits for its final swap-and-drain cycle and syncs
// bound sinks. Calling it on an engine that is not running is a no-op.
func (l *Logger) Stop() error {
	l.initMu.Lock()
	defer l.initMu.Unlock()
	return l.stop()
}

// Running reports whether the worker is active
func (l *Logger) Running() bool {
	return l.state.Lifecycle.Load() == stateRunning
}

// Submit enqueues a record with explicit source location. It never blocks
// beyond the buffer lock and works in every lifecycle state.
func (l *Logger) Submit(level Level, channel int, file string, line int, function string, format string, args ...any) {
	if level < l.Level() {
		l.state.Filtered.Add(1)
		return
	}
	rec := newRecord(level, channel, file, line, function, format, args)
	l.enqueue(&rec)
}

// Logf logs at the given level, capturing the caller's location
func (l *Logger) Logf(level Level, channel int, format string, args ...any) {
	l.logf(1, level, channel, format, args)
}

// Tracef logs a message at trace level
func (l *Logger) Tracef(channel int, format string, args ...any) {
	l.logf(1, LevelTrace, channel, format, args)
}

// Debugf logs a message at debug level
func (l *Logger) Debugf(channel int, format string, args ...any) {
	l.logf(1, LevelDebug, channel, format, args)
}

// Infof logs a message at info level
func (l *Logger) Infof(channel int, format string, args ...any) {
	l.logf(1, LevelInfo, channel, format, args)
}

// Configf logs a message at config level
func (l *Logger) Configf(channel int, format string, args ...any) {
	l.logf(1, LevelConfig, channel, format, args)
}

// Warningf logs a message at warning level
func (l *Logger) Warningf(channel int, format string, args ...any) {
	l.logf(1, LevelWarning, channel, format, args)
}

// Errorf logs a message at error level
func (l *Logger) Errorf(channel int, format string, args ...any) {
	l.logf(1, LevelError, channel, format, args)
}

// Dump logs a structural rendering of v under label. Rendering happens on the
// calling goroutine and only when level passes the global threshold; the
// result is truncated like any other message.
func (l *Logger) Dump(level Level, channel int, label string, v any) {
	if level < l.Level() {
		l.state.Filtered.Add(1)
		return
	}
	l.logf(1, level, channel, "%s: %s", []any{label, formatter.Dump(v)})
}

// SetLevel changes the global threshold; records below it are discarded at
// submission. It takes effect for the next submission.
func (l *Logger) SetLevel(level Level) {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	cfg := l.getConfig().Clone()
	cfg.Level = int64(level)
	l.currentConfig.Store(cfg)
	l.state.Level.Store(int64(level))
}

// Level returns the global threshold
func (l *Logger) Level() Level {
	return Level(l.state.Level.Load())
}

// AddOutput binds sink to channel with its own minimum level. A sink may be
// bound to several channels and a channel may hold several sinks; records are
// written in binding order. When the engine is running, a sink new to the
// engine that implements Opener is opened immediately. Bindings added while
// a drain cycle is in flight apply from the next cycle.
func (l *Logger) AddOutput(sink Sink, minLevel Level, channel int) error {
	if sink == nil {
		return ErrNilSink
	}
	if !reflect.TypeOf(sink).Comparable() {
		return fmtErrorf("%w: %T", ErrUncomparableSink, sink)
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	known := l.isBound(sink)
	if err := l.channels.add(sink, minLevel, channel); err != nil {
		return err
	}

	if !known && l.Running() {
		if o, ok := sink.(Opener); ok {
			if err := o.Open(l.getConfig().ClearAtStart); err != nil {
				return fmtErrorf("failed to open sink %T: %w", sink, err)
			}
		}
	}
	return nil
}

// RemoveOutput unbinds sink from channel and reports whether a binding existed
func (l *Logger) RemoveOutput(sink Sink, channel int) bool {
	if sink == nil || !reflect.TypeOf(sink).Comparable() {
		return false
	}
	return l.channels.remove(sink, channel)
}

// Flush requests an immediate drain cycle followed by a sync of bound sinks
// and waits for it to complete or for timeout
func (l *Logger) Flush(timeout time.Duration) error {
	l.state.flushMutex.Lock()
	defer l.state.flushMutex.Unlock()

	l.initMu.Lock()
	running := l.Running()
	done := l.done
	l.initMu.Unlock()

	if !running {
		return ErrNotRunning
	}
	if timeout < minWaitTime {
		timeout = minWaitTime
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	confirmChan := make(chan struct{})

	select {
	case l.state.flushRequestChan <- confirmChan:
	case <-done:
		// Worker exited through Stop, which drained everything
		return nil
	case <-timer.C:
		return fmtErrorf("failed to send flush request to processor within %v", timeout)
	}

	select {
	case <-confirmChan:
		return nil
	case <-done:
		return nil
	case <-timer.C:
		return fmtErrorf("timeout waiting for flush confirmation (%v)", timeout)
	}
}

// Stats returns a snapshot of the engine counters
func (l *Logger) Stats() Stats {
	s := Stats{
		Running:      l.Running(),
		Level:        l.Level(),
		Channels:     l.channels.channelCount(),
		Pending:      l.queue.pending(),
		Submitted:    l.state.Submitted.Load(),
		Filtered:     l.state.Filtered.Load(),
		Dispatched:   l.state.Dispatched.Load(),
		Unrouted:     l.state.Unrouted.Load(),
		SinkFailures: l.state.SinkFailures.Load(),
		DrainCycles:  l.state.DrainCycles.Load(),
		MaxBatch:     l.state.MaxBatch.Load(),
	}
	if s.Running {
		if start, ok := l.state.StartTime.Load().(time.Time); ok && !start.IsZero() {
			s.Uptime = xclock.Now().Sub(start)
		}
	}
	return s
}

// logf captures the caller skip frames above itself and enqueues the record
func (l *Logger) logf(skip int, level Level, channel int, format string, args []any) {
	if level < l.Level() {
		l.state.Filtered.Add(1)
		return
	}
	file, line, function := callerInfo(skip + 1)
	rec := newRecord(level, channel, file, line, function, format, args)
	l.enqueue(&rec)
}

func (l *Logger) enqueue(rec *Record) {
	l.queue.push(rec)
	l.state.Submitted.Add(1)
}

// getConfig returns the current configuration (thread-safe)
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

// isBound reports whether sink has any binding, initMu held
func (l *Logger) isBound(sink Sink) bool {
	for _, s := range l.channels.sinks() {
		if s == sink {
			return true
		}
	}
	return false
}

// start is the internal implementation of Start, assuming initMu is held
func (l *Logger) start() error {
	if l.Running() {
		return nil
	}

	cfg := l.getConfig()

	var openErr error
	for _, s := range l.channels.sinks() {
		if o, ok := s.(Opener); ok {
			if err := o.Open(cfg.ClearAtStart); err != nil {
				openErr = combineErrors(openErr, fmtErrorf("failed to open sink %T: %w", s, err))
			}
		}
	}

	l.state.StartTime.Store(xclock.Now())
	l.startWorker(cfg)
	l.state.Lifecycle.Store(stateRunning)

	return openErr
}

// stop is the internal implementation of Stop, assuming initMu is held
func (l *Logger) stop() error {
	if !l.state.Lifecycle.CompareAndSwap(stateRunning, stateDraining) {
		return nil
	}

	l.stopWorker()
	l.state.Lifecycle.Store(stateStopped)

	return l.syncSinks()
}

// startWorker spawns exactly one worker bound to cfg
func (l *Logger) startWorker(cfg *Config) {
	l.stopChan = make(chan struct{})
	l.done = make(chan struct{})
	go l.processLogs(cfg, l.stopChan, l.done)
}

// stopWorker signals the worker and joins it. There is no timeout: the final
// cycle must finish so no queued record is lost.
func (l *Logger) stopWorker() {
	close(l.stopChan)
	<-l.done
}

// applyConfig is the internal implementation for applying configuration, assuming initMu is held
func (l *Logger) applyConfig(cfg *Config) error {
	oldCfg := l.getConfig()
	running := l.Running()
	needsRestart := running && configRequiresRestart(oldCfg, cfg)

	if needsRestart {
		l.stopWorker()
	}

	l.currentConfig.Store(cfg)
	l.state.Level.Store(cfg.Level)
	l.channels.setLimit(cfg.MaxChannels)

	if cfg.QueueInitialCapacity != oldCfg.QueueInitialCapacity && (needsRestart || !running) {
		l.queue.resize(int(cfg.QueueInitialCapacity))
	}

	if needsRestart {
		l.startWorker(cfg)
	}

	return nil
}

// syncSinks calls Sync on every bound Syncer
func (l *Logger) syncSinks() error {
	var err error
	for _, s := range l.channels.sinks() {
		if syncer, ok := s.(Syncer); ok {
			if syncErr := syncer.Sync(); syncErr != nil {
				err = combineErrors(err, fmtErrorf("failed to sync sink %T: %w", s, syncErr))
			}
		}
	}
	return err
}

// internalLog handles writing internal logger diagnostics to stderr, if enabled
func (l *Logger) internalLog(format string, args ...any) {
	if !l.getConfig().InternalErrorsToStderr {
		return
	}
	fmt.Fprintf(os.Stderr, errorPrefix+format, args...)
}
