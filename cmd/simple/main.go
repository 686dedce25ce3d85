package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/lixenwraith/chanlog"
)

const configFile = "simple_config.toml"

// Example TOML content
var tomlContent = `
# Example simple_config.toml
[log]
  level = 1 # Debug
  log_file_path = "./simple_logs/simple.log"
  clear_at_start = true
  worker_period_ms = 100
  # Other settings use defaults
`

func main() {
	fmt.Println("--- Simple Logger Example ---")

	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
	} else {
		fmt.Printf("Created config file: %s\n", configFile)
	}

	cfg, err := chanlog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Channel 1 is bound to both the console and the file
	if err := chanlog.ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to apply config: %v\n", err)
		os.Exit(1)
	}
	if err := chanlog.AddOutput(chanlog.NewConsoleSink("stdout", false), chanlog.LevelTrace, 1); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind console: %v\n", err)
		os.Exit(1)
	}
	if err := chanlog.AddOutput(chanlog.NewFileSink(cfg.LogFilePath), chanlog.LevelTrace, 1); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind file: %v\n", err)
		os.Exit(1)
	}
	if err := chanlog.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start logger: %v\n", err)
	}
	fmt.Println("Logger started.")

	chanlog.Tracef(1, "trace is below the configured level and is filtered")
	chanlog.Debugf(1, "this is a debug message user_id=%d", 123)
	chanlog.Infof(1, "application starting...")
	chanlog.Warningf(1, "potential issue detected threshold=%.2f", 0.95)
	chanlog.Errorf(1, "an error occurred code=%d", 500)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			chanlog.Infof(1, "goroutine started id=%d", id)
			time.Sleep(time.Duration(50+id*50) * time.Millisecond)
			chanlog.Infof(1, "goroutine finished id=%d", id)
		}(i)
	}
	wg.Wait()

	fmt.Println("Stopping logger...")
	if err := chanlog.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "Logger stop error: %v\n", err)
	}

	if err := chanlog.SaveAllLogFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Backup failed: %v\n", err)
	}

	fmt.Println("--- Example Finished ---")
	fmt.Printf("Check '%s' and its backup directory.\n", cfg.LogFilePath)
}
