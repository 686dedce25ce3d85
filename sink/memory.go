package sink

import (
	"sync"

	"github.com/lixenwraith/chanlog"
)

// Memory keeps the most recent lines in a fixed-size ring
type Memory struct {
	mu      sync.Mutex
	lines   []string
	levels  []chanlog.Level
	next    int
	full    bool
	dropped uint64
}

// NewMemory creates a ring holding up to capacity lines; capacity below one is raised to one
func NewMemory(capacity int) *Memory {
	if capacity < 1 {
		capacity = 1
	}
	return &Memory{
		lines:  make([]string, capacity),
		levels: make([]chanlog.Level, capacity),
	}
}

// Write implements chanlog.Sink
func (m *Memory) Write(message string, level chanlog.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.full {
		m.dropped++
	}
	m.lines[m.next] = message
	m.levels[m.next] = level
	m.next++
	if m.next == len(m.lines) {
		m.next = 0
		m.full = true
	}
}

// Lines returns the retained lines, oldest first
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.full {
		return append([]string(nil), m.lines[:m.next]...)
	}
	out := make([]string, 0, len(m.lines))
	out = append(out, m.lines[m.next:]...)
	return append(out, m.lines[:m.next]...)
}

// Levels returns the levels of the retained lines, oldest first
func (m *Memory) Levels() []chanlog.Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.full {
		return append([]chanlog.Level(nil), m.levels[:m.next]...)
	}
	out := make([]chanlog.Level, 0, len(m.levels))
	out = append(out, m.levels[m.next:]...)
	return append(out, m.levels[:m.next]...)
}

// Len returns the number of retained lines
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.full {
		return len(m.lines)
	}
	return m.next
}

// Dropped returns how many lines were overwritten
func (m *Memory) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Reset discards all retained lines
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.lines)
	m.next = 0
	m.full = false
	m.dropped = 0
}
