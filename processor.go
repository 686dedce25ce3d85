package chanlog

import (
	"time"

	"github.com/lixenwraith/chanlog/formatter"
	"github.com/lixenwraith/chanlog/sanitizer"
)

// TimerSet holds all timers used in processLogs
type TimerSet struct {
	drainTicker     *time.Ticker
	heartbeatTicker *time.Ticker
	heartbeatChan   <-chan time.Time
}

// processLogs is the worker loop. It runs one swap-and-drain cycle per period,
// serves flush requests and heartbeats, and performs a final cycle when stop
// is closed.
func (l *Logger) processLogs(cfg *Config, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timers := l.setupProcessingTimers(cfg)
	defer l.closeProcessingTimers(timers)

	f := newLineFormatter(cfg)

	// Send initial heartbeat immediately instead of waiting for first tick
	if cfg.HeartbeatLevel > heartbeatOff {
		l.handleHeartbeat(cfg)
	}

	for {
		select {
		case <-timers.drainTicker.C:
			l.drainCycle(f)

		case confirmChan := <-l.state.flushRequestChan:
			l.handleFlushRequest(f, confirmChan)

		case <-timers.heartbeatChan:
			l.handleHeartbeat(cfg)

		case <-stop:
			l.drainCycle(f)
			// Answer a request that raced with stop; its records were just drained
			select {
			case confirmChan := <-l.state.flushRequestChan:
				close(confirmChan)
			default:
			}
			return
		}
	}
}

// newLineFormatter builds the worker-local formatter for cfg
func newLineFormatter(cfg *Config) *formatter.Formatter {
	san := sanitizer.New()
	if cfg.Sanitize {
		san.Policy(sanitizer.PolicyTxt)
	}
	return formatter.New(san).
		Type(cfg.Format).
		TimestampFormat(cfg.TimestampFormat)
}

// setupProcessingTimers creates and configures all necessary timers for the processor
func (l *Logger) setupProcessingTimers(cfg *Config) *TimerSet {
	timers := &TimerSet{}

	period := time.Duration(cfg.WorkerPeriodMs) * time.Millisecond
	if period <= 0 {
		period = time.Duration(DefaultConfig().WorkerPeriodMs) * time.Millisecond
	}
	timers.drainTicker = time.NewTicker(period)

	timers.heartbeatChan = l.setupHeartbeatTimer(cfg, timers)

	return timers
}

// closeProcessingTimers stops all active timers
func (l *Logger) closeProcessingTimers(timers *TimerSet) {
	timers.drainTicker.Stop()
	if timers.heartbeatTicker != nil {
		timers.heartbeatTicker.Stop()
	}
}

// setupHeartbeatTimer configures the heartbeat timer if heartbeats are enabled
func (l *Logger) setupHeartbeatTimer(cfg *Config, timers *TimerSet) <-chan time.Time {
	if cfg.HeartbeatLevel <= heartbeatOff {
		return nil
	}
	intervalS := cfg.HeartbeatIntervalS
	if intervalS <= 0 {
		intervalS = DefaultConfig().HeartbeatIntervalS
	}
	timers.heartbeatTicker = time.NewTicker(time.Duration(intervalS) * time.Second)
	return timers.heartbeatTicker.C
}

// handleFlushRequest handles an explicit flush request
func (l *Logger) handleFlushRequest(f *formatter.Formatter, confirmChan chan struct{}) {
	l.drainCycle(f)
	if err := l.syncSinks(); err != nil {
		l.internalLog("flush sync failed: %v\n", err)
	}
	close(confirmChan) // Signal completion back to the Flush caller
}

// drainCycle swaps the buffers and dispatches every record of the new back.
// The channel table is loaded once so bindings changed mid-cycle apply from
// the next cycle.
func (l *Logger) drainCycle(f *formatter.Formatter) {
	batch := l.queue.swap()
	if n := len(batch); n > 0 {
		table := l.channels.load()
		for i := range batch {
			l.dispatch(table, &batch[i], f)
		}
		l.state.recordBatch(uint64(n))
	}
	l.queue.reset()
	l.state.DrainCycles.Add(1)
}

// dispatch writes rec to every satisfied binding of its channel. The line is
// rendered once and only if some binding accepts the record.
func (l *Logger) dispatch(table map[int][]binding, rec *Record, f *formatter.Formatter) {
	var line string
	rendered := false

	n := route(table, rec, func(s Sink) {
		if !rendered {
			line = renderLine(rec, f)
			rendered = true
		}
		l.writeSink(s, line, rec.level)
	})

	if n == 0 {
		l.state.Unrouted.Add(1)
		return
	}
	l.state.Dispatched.Add(uint64(n))
}

// renderLine formats rec; the result is copied out of the formatter buffer
func renderLine(rec *Record, f *formatter.Formatter) string {
	entry := formatter.Entry{
		Time:     rec.created,
		Level:    rec.level.String(),
		Channel:  rec.channel,
		File:     rec.file[:rec.fileLen],
		Line:     rec.line,
		Function: rec.function[:rec.funcLen],
		Message:  rec.messageBytes(),
	}
	return string(f.Format(&entry))
}

// writeSink isolates the worker from a panicking sink
func (l *Logger) writeSink(s Sink, line string, level Level) {
	defer func() {
		if r := recover(); r != nil {
			l.state.SinkFailures.Add(1)
			l.internalLog("sink %T panicked: %v\n", s, r)
		}
	}()
	s.Write(line, level)
}
