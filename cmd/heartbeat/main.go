package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/chanlog"
)

func main() {
	// Test cycle: disable -> PROC -> PROC+SYS -> PROC -> disable
	levels := []struct {
		level       int64
		description string
	}{
		{0, "Heartbeats disabled"},
		{1, "PROC heartbeats only"},
		{2, "PROC+SYS heartbeats"},
		{1, "PROC heartbeats only (reducing from 2)"},
		{0, "Heartbeats disabled (final)"},
	}

	// A single engine reconfigured while running
	logger := chanlog.NewLogger()
	if err := logger.AddOutput(chanlog.NewConsoleSink("stdout", true), chanlog.LevelTrace, 0); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind console: %v\n", err)
		os.Exit(1)
	}
	if err := logger.AddOutput(chanlog.NewConsoleSink("stderr", false), chanlog.LevelInfo, 9); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind heartbeat console: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start logger: %v\n", err)
		os.Exit(1)
	}

	for _, levelConfig := range levels {
		err := logger.ApplyConfigString(
			"level=debug",
			"heartbeat_interval_s=2", // Short interval for testing
			"heartbeat_channel=9",
			fmt.Sprintf("heartbeat_level=%d", levelConfig.level),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to reconfigure logger: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n--- Testing heartbeat level %d: %s ---\n", levelConfig.level, levelConfig.description)
		logger.Infof(0, "heartbeat test started level=%d", levelConfig.level)

		// Generate some logs to move the counters
		for j := 0; j < 10; j++ {
			logger.Debugf(0, "debug test log iteration=%d", j)
			logger.Warningf(0, "warning test log iteration=%d", j)
			time.Sleep(50 * time.Millisecond)
		}

		// Wait for heartbeats to generate (slightly longer than the interval)
		time.Sleep(2500 * time.Millisecond)
		logger.Infof(0, "heartbeat test completed level=%d", levelConfig.level)
	}

	if err := logger.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to stop logger: %v\n", err)
	}
	fmt.Println("\nHeartbeat test program completed")
}
