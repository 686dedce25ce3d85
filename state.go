package chanlog

import (
	"sync"
	"sync/atomic"
	"time"
)

// State encapsulates the runtime state of the engine
type State struct {
	Lifecycle atomic.Int32 // stateIdle, stateRunning, stateDraining, stateStopped
	Level     atomic.Int64 // Global threshold, read on every submission

	flushRequestChan chan chan struct{} // Channel to request a drain cycle
	flushMutex       sync.Mutex         // Protect concurrent Flush calls

	// Counters
	Submitted         atomic.Uint64 // Records accepted into the queue
	Filtered          atomic.Uint64 // Records rejected by the global threshold
	Dispatched        atomic.Uint64 // Sink writes performed
	Unrouted          atomic.Uint64 // Drained records that matched no binding
	SinkFailures      atomic.Uint64 // Recovered sink panics
	DrainCycles       atomic.Uint64 // Completed swap-and-drain cycles
	MaxBatch          atomic.Uint64 // Largest batch drained in one cycle
	HeartbeatSequence atomic.Uint64 // Counter for heartbeat sequence numbers
	StartTime         atomic.Value  // Stores time.Time of the last Start
}

// Stats is a point-in-time copy of the engine counters
type Stats struct {
	Running      bool
	Level        Level
	Channels     int
	Pending      int
	Submitted    uint64
	Filtered     uint64
	Dispatched   uint64
	Unrouted     uint64
	SinkFailures uint64
	DrainCycles  uint64
	MaxBatch     uint64
	Uptime       time.Duration
}

// recordBatch raises MaxBatch to n if larger
func (s *State) recordBatch(n uint64) {
	for {
		cur := s.MaxBatch.Load()
		if n <= cur || s.MaxBatch.CompareAndSwap(cur, n) {
			return
		}
	}
}
