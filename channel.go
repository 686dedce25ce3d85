package chanlog

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// binding attaches a sink to a channel with its own minimum level
type binding struct {
	sink     Sink
	minLevel Level
}

// channelTable maps channel ids to their bindings.
// Readers load an immutable snapshot; writers serialize on mu, clone and
// publish, so a reader sees either the old or the new table, never a torn one.
type channelTable struct {
	mu          sync.Mutex
	snapshot    atomic.Pointer[map[int][]binding]
	maxChannels int64
}

func newChannelTable(maxChannels int64) *channelTable {
	t := &channelTable{maxChannels: maxChannels}
	empty := make(map[int][]binding)
	t.snapshot.Store(&empty)
	return t
}

// setLimit changes the channel cap; existing channels are kept even when over it
func (t *channelTable) setLimit(maxChannels int64) {
	t.mu.Lock()
	t.maxChannels = maxChannels
	t.mu.Unlock()
}

// load returns the current immutable snapshot
func (t *channelTable) load() map[int][]binding {
	return *t.snapshot.Load()
}

// clone copies the map and the binding slices of the current snapshot, mu held
func (t *channelTable) clone() map[int][]binding {
	cur := t.load()
	next := make(map[int][]binding, len(cur)+1)
	for id, bs := range cur {
		next[id] = append([]binding(nil), bs...)
	}
	return next
}

// add appends a binding, creating the channel entry on first use
func (t *channelTable) add(sink Sink, minLevel Level, channel int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.load()
	if _, exists := cur[channel]; !exists && t.maxChannels > 0 && int64(len(cur)) >= t.maxChannels {
		return fmtErrorf("%w: %d channels in use, cannot add channel %d", ErrChannelLimit, len(cur), channel)
	}

	next := t.clone()
	next[channel] = append(next[channel], binding{sink: sink, minLevel: minLevel})
	t.snapshot.Store(&next)
	return nil
}

// remove drops every binding of sink on channel and reports whether any existed
func (t *channelTable) remove(sink Sink, channel int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	bs, exists := t.load()[channel]
	if !exists {
		return false
	}

	kept := make([]binding, 0, len(bs))
	for _, b := range bs {
		if b.sink != sink {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(bs) {
		return false
	}

	next := t.clone()
	if len(kept) == 0 {
		delete(next, channel)
	} else {
		next[channel] = kept
	}
	t.snapshot.Store(&next)
	return true
}

// route calls fn for each binding of the record's channel whose threshold is
// satisfied, in registration order, and returns the number of calls
func route(table map[int][]binding, rec *Record, fn func(Sink)) int {
	bs := table[rec.channel]
	n := 0
	for i := range bs {
		if rec.level >= bs[i].minLevel {
			fn(bs[i].sink)
			n++
		}
	}
	return n
}

// sinks returns each distinct bound sink once, ordered by lowest channel id
// and then binding order. Bound sinks are always comparable.
func (t *channelTable) sinks() []Sink {
	table := t.load()
	seen := make(map[Sink]struct{})
	var out []Sink
	for _, id := range slices.Sorted(maps.Keys(table)) {
		for _, b := range table[id] {
			if _, ok := seen[b.sink]; ok {
				continue
			}
			seen[b.sink] = struct{}{}
			out = append(out, b.sink)
		}
	}
	return out
}

// channelCount returns the number of channels with at least one binding
func (t *channelTable) channelCount() int {
	return len(t.load())
}
