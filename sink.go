package chanlog

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Sink receives rendered log lines. Write is called from the engine's worker
// goroutine and must not panic or block indefinitely; failures are kept on the
// sink's own status surface and never reported back to the engine.
//
// The engine holds a non-owning reference: whoever registers a sink owns it
// and must keep it usable until the engine is stopped or the binding removed.
// Sinks are compared by identity, so implementations should be pointer types.
type Sink interface {
	Write(message string, level Level)
}

// Opener is implemented by sinks that acquire resources when the engine starts.
// clearAtStart carries Config.ClearAtStart.
type Opener interface {
	Open(clearAtStart bool) error
}

// Syncer is implemented by sinks that buffer output. Sync may be called from
// goroutines other than the worker.
type Syncer interface {
	Sync() error
}

// StatusReporter exposes the last write failure of a sink
type StatusReporter interface {
	Err() error
}

// sinkStatus is the shared error surface of the built-in sinks
type sinkStatus struct {
	errMu    sync.Mutex
	lastErr  error
	failures atomic.Uint64
}

func (s *sinkStatus) fail(err error) {
	s.failures.Add(1)
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

// Err returns the most recent write error, or nil
func (s *sinkStatus) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

// Failures returns the number of failed writes
func (s *sinkStatus) Failures() uint64 {
	return s.failures.Load()
}

// ANSI colour per level for console output
var levelColors = [...]string{
	LevelTrace:   "\x1b[90m",
	LevelDebug:   "\x1b[36m",
	LevelInfo:    "\x1b[32m",
	LevelConfig:  "\x1b[34m",
	LevelWarning: "\x1b[33m",
	LevelError:   "\x1b[31m",
}

const colorReset = "\x1b[0m"

// WriterSink writes one line per message to an io.Writer
type WriterSink struct {
	sinkStatus
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

// NewWriterSink wraps w. A nil writer discards output.
func NewWriterSink(w io.Writer) *WriterSink {
	if w == nil {
		w = io.Discard
	}
	return &WriterSink{w: w, buf: make([]byte, 0, MessageCapacity+64)}
}

// Write implements Sink
func (s *WriterSink) Write(message string, level Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf[:0], message...)
	s.buf = append(s.buf, '\n')
	if _, err := s.w.Write(s.buf); err != nil {
		s.fail(err)
	}
}

// ConsoleSink writes to standard output or standard error, optionally
// coloured by level
type ConsoleSink struct {
	WriterSink
	color bool
}

// NewConsoleSink creates a console sink. target is "stdout" or "stderr";
// anything else falls back to stdout.
func NewConsoleSink(target string, color bool) *ConsoleSink {
	var w io.Writer = os.Stdout
	if target == "stderr" {
		w = os.Stderr
	}
	c := &ConsoleSink{color: color}
	c.w = w
	c.buf = make([]byte, 0, MessageCapacity+64)
	return c
}

// Write implements Sink
func (c *ConsoleSink) Write(message string, level Level) {
	if !c.color || !level.Valid() {
		c.WriterSink.Write(message, level)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = append(c.buf[:0], levelColors[level]...)
	c.buf = append(c.buf, message...)
	c.buf = append(c.buf, colorReset...)
	c.buf = append(c.buf, '\n')
	if _, err := c.w.Write(c.buf); err != nil {
		c.fail(err)
	}
}
