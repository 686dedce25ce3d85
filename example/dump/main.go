package main

import (
	"fmt"

	"github.com/lixenwraith/chanlog"
)

// TestPayload defines a struct for testing complex value rendering
type TestPayload struct {
	RequestID uint64
	User      string
	Metrics   map[string]float64
}

func main() {
	fmt.Println("--- Logger Dump and Sanitize Test ---")

	byteRecord := []byte("binary\ndata\twith\x00null")

	structRecord := TestPayload{
		RequestID: 9223372036854775807,
		User:      "test_user",
		Metrics: map[string]float64{
			"latency_ms":  15.7,
			"cpu_percent": 88.2,
		},
	}

	run := func(title string, overrides ...string) {
		fmt.Printf("\n[%s]\n", title)
		logger := chanlog.NewLogger()
		if err := logger.ApplyConfigString(overrides...); err != nil {
			fmt.Printf("Failed to configure logger: %v\n", err)
			return
		}
		if err := logger.AddOutput(chanlog.NewConsoleSink("stdout", false), chanlog.LevelTrace, 0); err != nil {
			fmt.Printf("Failed to bind console: %v\n", err)
			return
		}
		_ = logger.Start()
		logger.Infof(0, "byte record -> %s", byteRecord)
		logger.Dump(chanlog.LevelInfo, 0, "struct record", structRecord)
		_ = logger.Stop()
	}

	// Control bytes are hex-encoded in txt lines
	run("txt, sanitized", "format=txt", "sanitize=true")
	// Control bytes reach the sink untouched
	run("txt, raw", "format=txt", "sanitize=false")
	// JSON escaping always applies
	run("json", "format=json")

	fmt.Println("\n--- Test Complete ---")
}
