package chanlog

import (
	"time"
)

// Record field capacities in bytes. The last byte of each is reserved, so
// stored text never exceeds capacity-1 bytes.
const (
	FileCapacity     = 128
	FunctionCapacity = 128
	MessageCapacity  = 512
)

// DefaultChannel is used by the package-level helpers when no channel is given
const DefaultChannel = 0

// Engine lifecycle states
const (
	stateIdle int32 = iota
	stateRunning
	stateDraining
	stateStopped
)

// Heartbeat levels
const (
	heartbeatOff   int64 = 0
	heartbeatProc  int64 = 1
	heartbeatSys   int64 = 2
	maxHeartbeatLv       = heartbeatSys
)

// Timers
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Subdirectory timestamp layout used by SaveAllLogFiles
	backupTimeLayout = "060102_150405"
)
