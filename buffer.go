package chanlog

import (
	"sync"
)

// doubleBuffer is a pair of record sequences. Producers append to front under
// mu; the worker swaps the pair under mu and then reads the new back without
// holding it. Only the worker touches back.
type doubleBuffer struct {
	mu    sync.Mutex
	front *[]Record
	back  *[]Record
	a, b  []Record
}

func newDoubleBuffer(capacity int) *doubleBuffer {
	d := &doubleBuffer{
		a: make([]Record, 0, capacity),
		b: make([]Record, 0, capacity),
	}
	d.front = &d.a
	d.back = &d.b
	return d
}

// push appends rec to the front sequence. Nothing is ever dropped: front
// grows without bound if producers outpace the worker for long.
func (d *doubleBuffer) push(rec *Record) {
	d.mu.Lock()
	*d.front = append(*d.front, *rec)
	d.mu.Unlock()
}

// swap exchanges front and back and returns the records to drain.
// The previous back must have been reset by the caller.
func (d *doubleBuffer) swap() []Record {
	d.mu.Lock()
	d.front, d.back = d.back, d.front
	d.mu.Unlock()
	return *d.back
}

// reset empties the back sequence, keeping its capacity for reuse as a front.
// Slots are zeroed so drained records do not linger in memory.
func (d *doubleBuffer) reset() {
	back := *d.back
	clear(back)
	*d.back = back[:0]
}

// pending returns the number of records waiting in front
func (d *doubleBuffer) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(*d.front)
}

// resize replaces both sequences with empty ones of the given capacity,
// carrying over anything still queued in front. Worker must not be running.
func (d *doubleBuffer) resize(capacity int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	queued := *d.front
	if capacity < len(queued) {
		capacity = len(queued)
	}
	d.a = make([]Record, len(queued), capacity)
	copy(d.a, queued)
	d.b = make([]Record, 0, capacity)
	d.front = &d.a
	d.back = &d.b
}
