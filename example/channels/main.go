// Binds several sinks to several channels with different thresholds and
// reconfigures the engine while it runs.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/chanlog"
	"github.com/lixenwraith/chanlog/sink"
)

const (
	logDirectory = "./temp_logs"

	chanApp   = 0
	chanAudit = 1
	chanDebug = 2
)

func main() {
	if err := os.RemoveAll(logDirectory); err != nil {
		fmt.Printf("Warning: could not remove old log directory: %v\n", err)
	}

	zl, err := zap.NewDevelopment()
	if err != nil {
		fmt.Printf("Fatal: could not create zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()

	mem := sink.NewMemory(100)
	rotating := sink.NewRotating(sink.RotatingConfig{
		Filename:   filepath.Join(logDirectory, "audit.log"),
		MaxSizeMB:  1,
		MaxBackups: 3,
	})
	defer rotating.Close()

	logger, err := chanlog.NewBuilder().
		LevelString("debug").
		WorkerPeriodMs(50).
		LogFile(filepath.Join(logDirectory, "app.log")).
		ClearAtStart(true).
		MaxChannels(3).
		// App channel: console for everything, file for warnings and up
		Output(chanlog.NewConsoleSink("stdout", true), chanlog.LevelTrace, chanApp).
		Output(chanlog.NewFileSink(filepath.Join(logDirectory, "app.log")), chanlog.LevelWarning, chanApp).
		// Audit channel: rotating file and zap
		Output(rotating, chanlog.LevelInfo, chanAudit).
		Output(sink.NewZap(zl), chanlog.LevelInfo, chanAudit).
		// Debug channel: in-memory ring
		Output(mem, chanlog.LevelTrace, chanDebug).
		Build()
	if err != nil {
		fmt.Printf("Fatal: could not build logger: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Start(); err != nil {
		fmt.Printf("Warning: sinks failed to open: %v\n", err)
	}

	fmt.Println("--- Phase 1: routing ---")
	logger.Debugf(chanApp, "console only")
	logger.Warningf(chanApp, "console and app.log")
	logger.Infof(chanAudit, "user=%s action=%s", "alice", "login")
	logger.Tracef(chanDebug, "filtered by the debug global level")
	logger.Debugf(chanDebug, "kept in memory")
	logger.Infof(7, "no binding on channel 7, counted as unrouted")

	// A fourth channel exceeds the cap
	if err := logger.AddOutput(mem, chanlog.LevelTrace, 3); err != nil {
		fmt.Printf("AddOutput on channel 3: %v\n", err)
	}
	time.Sleep(100 * time.Millisecond)

	fmt.Println("\n--- Phase 2: JSON format and error-only app console ---")
	if err := logger.ApplyConfigString("format=json", "level=info"); err != nil {
		fmt.Printf("Reconfig failed: %v\n", err)
	}
	logger.RemoveOutput(mem, chanDebug)
	logger.Debugf(chanApp, "filtered by the info global level")
	logger.Errorf(chanApp, "rendered as JSON code=%d", 503)
	logger.Dump(chanlog.LevelInfo, chanApp, "config", logger.GetConfig())
	if err := logger.Flush(time.Second); err != nil {
		fmt.Printf("Flush failed: %v\n", err)
	}

	if err := logger.Stop(); err != nil {
		fmt.Printf("Stop failed: %v\n", err)
	}

	fmt.Println("\n--- Memory sink contents ---")
	for _, line := range mem.Lines() {
		fmt.Println(line)
	}

	stats := logger.Stats()
	fmt.Printf("\nSubmitted=%d Filtered=%d Dispatched=%d Unrouted=%d\n",
		stats.Submitted, stats.Filtered, stats.Dispatched, stats.Unrouted)

	if err := logger.SaveAllLogFiles(); err != nil {
		fmt.Printf("Backup failed: %v\n", err)
	}
	fmt.Printf("Check the '%s' directory for log files.\n", logDirectory)
}
