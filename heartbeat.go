package chanlog

import (
	"fmt"
	"runtime"
	"time"

	"github.com/trickstertwo/xclock"
)

// handleHeartbeat processes a heartbeat timer tick
func (l *Logger) handleHeartbeat(cfg *Config) {
	if cfg.HeartbeatLevel >= heartbeatProc {
		l.logProcHeartbeat(cfg)
	}

	if cfg.HeartbeatLevel >= heartbeatSys {
		l.logSysHeartbeat(cfg)
	}
}

// logProcHeartbeat logs engine statistics
func (l *Logger) logProcHeartbeat(cfg *Config) {
	sequence := l.state.HeartbeatSequence.Add(1)

	var uptimeHours float64
	if startTime, ok := l.state.StartTime.Load().(time.Time); ok && !startTime.IsZero() {
		uptimeHours = xclock.Now().Sub(startTime).Hours()
	}

	l.writeHeartbeatRecord(cfg, "type=proc sequence=%d uptime_hours=%.2f submitted=%d filtered=%d dispatched=%d unrouted=%d sink_failures=%d pending=%d max_batch=%d",
		[]any{
			sequence,
			uptimeHours,
			l.state.Submitted.Load(),
			l.state.Filtered.Load(),
			l.state.Dispatched.Load(),
			l.state.Unrouted.Load(),
			l.state.SinkFailures.Load(),
			l.queue.pending(),
			l.state.MaxBatch.Load(),
		})
}

// logSysHeartbeat logs Go runtime statistics
func (l *Logger) logSysHeartbeat(cfg *Config) {
	sequence := l.state.HeartbeatSequence.Load()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	l.writeHeartbeatRecord(cfg, "type=sys sequence=%d alloc_mb=%s sys_mb=%s num_gc=%d num_goroutine=%d",
		[]any{
			sequence,
			fmt.Sprintf("%.2f", float64(memStats.Alloc)/(1024*1024)),
			fmt.Sprintf("%.2f", float64(memStats.Sys)/(1024*1024)),
			memStats.NumGC,
			runtime.NumGoroutine(),
		})
}

// writeHeartbeatRecord queues a heartbeat at info level on the heartbeat
// channel. It bypasses the global threshold; bindings still filter it.
func (l *Logger) writeHeartbeatRecord(cfg *Config, format string, args []any) {
	rec := newRecord(LevelInfo, int(cfg.HeartbeatChannel), "", 0, "heartbeat", format, args)
	l.enqueue(&rec)
}
