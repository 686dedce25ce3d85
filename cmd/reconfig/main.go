package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/chanlog"
	"github.com/lixenwraith/chanlog/sink"
)

// Simulate rapid reconfiguration while a producer is running
func main() {
	var count atomic.Int64

	mem := sink.NewMemory(1 << 16)
	if err := chanlog.AddOutput(mem, chanlog.LevelTrace, 0); err != nil {
		fmt.Printf("AddOutput error: %v\n", err)
		return
	}
	if err := chanlog.Start(); err != nil {
		fmt.Printf("Start error: %v\n", err)
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			chanlog.Infof(0, "test log %d", i)
			count.Add(1)
			time.Sleep(time.Millisecond)
		}
	}()

	// Capacity and period changes rebuild the worker
	for i := 0; i < 10; i++ {
		err := chanlog.ApplyConfigString(
			fmt.Sprintf("queue_initial_capacity=%d", 100*(i+1)),
			fmt.Sprintf("worker_period_ms=%d", 10+i),
		)
		if err != nil {
			fmt.Printf("Reconfig error: %v\n", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)
	close(stop)
	<-done

	if err := chanlog.Stop(); err != nil {
		fmt.Printf("Stop error: %v\n", err)
	}

	stats := chanlog.Default().Stats()
	fmt.Printf("Total logs attempted: %d\n", count.Load())
	fmt.Printf("Delivered: %d (ring dropped %d)\n", int64(mem.Len())+int64(mem.Dropped()), mem.Dropped())
	fmt.Printf("Submitted=%d Dispatched=%d DrainCycles=%d\n", stats.Submitted, stats.Dispatched, stats.DrainCycles)
	if int64(stats.Dispatched) != count.Load() {
		fmt.Println("MISMATCH: some records were not delivered")
	}
}
