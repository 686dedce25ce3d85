// Package sink provides chanlog sinks that bridge into other logging and
// file-management libraries.
package sink

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lixenwraith/chanlog"
)

// RotatingConfig controls size-based rotation
type RotatingConfig struct {
	Filename   string // Active file; backups are created next to it
	MaxSizeMB  int    // Rotate once the active file would exceed this size
	MaxBackups int    // Rotated files kept (0=all)
	MaxAgeDays int    // Rotated files older than this are removed (0=never)
	Compress   bool   // Gzip rotated files
	LocalTime  bool   // Backup timestamps in local time instead of UTC
}

// Rotating is a file sink that rotates by size
type Rotating struct {
	mu       sync.Mutex
	lj       *lumberjack.Logger
	buf      []byte
	lastErr  error
	failures atomic.Uint64
}

// NewRotating creates a rotating sink; the file is opened on first write
func NewRotating(cfg RotatingConfig) *Rotating {
	return &Rotating{
		lj: &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		},
		buf: make([]byte, 0, chanlog.MessageCapacity+64),
	}
}

// Open implements chanlog.Opener. Clearing rotates the existing file out of
// the way instead of discarding it.
func (r *Rotating) Open(clearAtStart bool) error {
	if !clearAtStart {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lj.Rotate(); err != nil {
		r.fail(err)
		return fmt.Errorf("sink: rotate '%s': %w", r.lj.Filename, err)
	}
	return nil
}

// Write implements chanlog.Sink
func (r *Rotating) Write(message string, level chanlog.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf[:0], message...)
	r.buf = append(r.buf, '\n')
	if _, err := r.lj.Write(r.buf); err != nil {
		r.fail(err)
	}
}

// Rotate forces a rotation
func (r *Rotating) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lj.Rotate()
}

// Close closes the active file; a later write reopens it
func (r *Rotating) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lj.Close()
}

// Err implements chanlog.StatusReporter
func (r *Rotating) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Failures returns the number of failed operations
func (r *Rotating) Failures() uint64 {
	return r.failures.Load()
}

// fail records err, mu held
func (r *Rotating) fail(err error) {
	r.failures.Add(1)
	r.lastErr = err
}
