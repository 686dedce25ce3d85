package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/chanlog"
)

const configFile = "stress_config.toml"

// Example TOML content for stress test
var tomlContent = `
# Example stress_config.toml
[log]
  level = 1 # Debug
  queue_initial_capacity = 4096
  worker_period_ms = 20
  log_file_path = "./stress_logs/stress.log"
  clear_at_start = true
  format = "txt"
  heartbeat_level = 1
  heartbeat_interval_s = 1
  heartbeat_channel = 1
`

var levels = []chanlog.Level{
	chanlog.LevelDebug,
	chanlog.LevelInfo,
	chanlog.LevelWarning,
	chanlog.LevelError,
}

// producer submits events tagged with its id and sequence number
func producer(logger *chanlog.Logger, id, events int, stop <-chan struct{}, sent *atomic.Int64, wg *sync.WaitGroup) {
	defer wg.Done()
	for seq := 0; seq < events; seq++ {
		select {
		case <-stop:
			return
		default:
		}
		level := levels[rand.IntN(len(levels))]
		logger.Logf(level, 0, "producer=%d seq=%d rnd=%d", id, seq, rand.Int64())
		sent.Add(1)
	}
}

func main() {
	producers := flag.Int("producers", 8, "number of producer goroutines")
	events := flag.Int("events", 10000, "events per producer")
	flag.Parse()

	fmt.Println("--- chanlog Stress Test ---")

	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(configFile)

	cfg, err := chanlog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := chanlog.NewLogger()
	if err := logger.ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to apply config: %v\n", err)
		os.Exit(1)
	}

	file := chanlog.NewFileSink(cfg.LogFilePath)
	if err := logger.AddOutput(file, chanlog.LevelTrace, 0); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind file sink: %v\n", err)
		os.Exit(1)
	}
	// Heartbeats go to the console so progress is visible
	if err := logger.AddOutput(chanlog.NewConsoleSink("stdout", true), chanlog.LevelInfo, 1); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind console sink: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start logger: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting stress test: %d producers x %d events -> %s\n", *producers, *events, cfg.LogFilePath)
	fmt.Println("Press Ctrl+C to stop early.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	stopChan := make(chan struct{})
	go func() {
		<-sigChan
		fmt.Println("\n[Signal Received] Stopping producers...")
		close(stopChan)
	}()

	var wg sync.WaitGroup
	var sent atomic.Int64
	startTime := time.Now()
	for i := 0; i < *producers; i++ {
		wg.Add(1)
		go producer(logger, i, *events, stopChan, &sent, &wg)
	}
	wg.Wait()
	produceTime := time.Since(startTime)

	if err := logger.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Logger stop error: %v\n", err)
	}
	totalTime := time.Since(startTime)

	stats := logger.Stats()
	fmt.Println("\n--- Test Finished ---")
	fmt.Printf("Sent %d events in %v (drained after %v)\n", sent.Load(), produceTime.Round(time.Millisecond), totalTime.Round(time.Millisecond))
	if produceTime > 0 {
		fmt.Printf("Approximate submits/sec: %.0f\n", float64(sent.Load())/produceTime.Seconds())
	}
	fmt.Printf("Submitted=%d Dispatched=%d Unrouted=%d DrainCycles=%d MaxBatch=%d SinkFailures=%d\n",
		stats.Submitted, stats.Dispatched, stats.Unrouted, stats.DrainCycles, stats.MaxBatch, stats.SinkFailures)
	if err := file.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "File sink error: %v\n", err)
	}

	if err := logger.SaveAllLogFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Backup failed: %v\n", err)
	} else {
		fmt.Printf("Log files backed up under '%s'\n", filepath.Join(filepath.Dir(cfg.LogFilePath), cfg.BackupDirectory))
	}
}
