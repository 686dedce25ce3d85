package chanlog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStopLifecycle(t *testing.T) {
	logger, sink := createTestLogger(t)
	assert.True(t, logger.Running())

	require.NoError(t, logger.Stop())
	assert.False(t, logger.Running())
	assert.Equal(t, stateStopped, logger.state.Lifecycle.Load())

	// Restart spawns a fresh worker
	require.NoError(t, logger.Start())
	assert.True(t, logger.Running())
	logger.Infof(DefaultChannel, "after restart")
	require.NoError(t, logger.Stop())

	require.Len(t, sink.Lines(), 1)
	assert.Contains(t, sink.Lines()[0], "after restart")
}

func TestStartAlreadyStarted(t *testing.T) {
	logger, _ := createTestLogger(t)

	done := logger.done
	assert.NoError(t, logger.Start())
	assert.True(t, logger.Running())
	assert.Equal(t, done, logger.done, "no second worker")
}

func TestStopWithoutStart(t *testing.T) {
	logger := NewLogger()
	assert.NoError(t, logger.Stop())
	assert.NoError(t, logger.Stop())
	assert.Equal(t, stateIdle, logger.state.Lifecycle.Load())
}

func TestStopAlreadyStopped(t *testing.T) {
	logger, _ := createTestLogger(t)

	require.NoError(t, logger.Stop())
	assert.NoError(t, logger.Stop())
	assert.False(t, logger.Running())
}

func TestSubmitBeforeStartIsQueued(t *testing.T) {
	logger := NewLogger()
	require.NoError(t, logger.ApplyConfigString("worker_period_ms=5"))
	sink := &recordingSink{}
	require.NoError(t, logger.AddOutput(sink, LevelTrace, 0))

	logger.Infof(0, "early")
	assert.Equal(t, 1, logger.Stats().Pending)
	assert.Empty(t, sink.Lines())

	require.NoError(t, logger.Start())
	require.NoError(t, logger.Stop())

	require.Len(t, sink.Lines(), 1)
	assert.Contains(t, sink.Lines()[0], "early")
	assert.Equal(t, 0, logger.Stats().Pending)
}

func TestSubmitAfterStopWaitsForNextStart(t *testing.T) {
	logger, sink := createTestLogger(t)
	require.NoError(t, logger.Stop())

	logger.Infof(DefaultChannel, "late")
	assert.Empty(t, sink.Lines())
	assert.Equal(t, 1, logger.Stats().Pending)

	require.NoError(t, logger.Start())
	require.NoError(t, logger.Stop())
	require.Len(t, sink.Lines(), 1)
}

func TestStartOpensAndStopSyncs(t *testing.T) {
	logger := NewLogger()
	require.NoError(t, logger.ApplyConfigString("clear_at_start=true", "worker_period_ms=5"))

	s := &openerSink{}
	// Bound twice, opened once
	require.NoError(t, logger.AddOutput(s, LevelInfo, 1))
	require.NoError(t, logger.AddOutput(s, LevelInfo, 2))

	require.NoError(t, logger.Start())
	assert.Equal(t, []bool{true}, s.opens)

	require.NoError(t, logger.Stop())
	assert.Equal(t, 1, s.syncs)
}

func TestStartReportsOpenFailure(t *testing.T) {
	logger := NewLogger()
	require.NoError(t, logger.ApplyConfigString("worker_period_ms=5"))

	broken := &openerSink{openErr: errors.New("disk gone")}
	require.NoError(t, logger.AddOutput(broken, LevelInfo, 0))

	err := logger.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	assert.True(t, logger.Running(), "engine runs despite a failing sink")

	logger.Infof(0, "still routed")
	require.NoError(t, logger.Stop())
	assert.Len(t, broken.Lines(), 1)
}

func TestStopDrainsEverything(t *testing.T) {
	logger := NewLogger()
	// Period long enough that only the final cycle drains
	require.NoError(t, logger.ApplyConfigString("worker_period_ms=60000"))
	sink := &recordingSink{}
	require.NoError(t, logger.AddOutput(sink, LevelTrace, 0))
	require.NoError(t, logger.Start())

	for i := 0; i < 500; i++ {
		logger.Infof(0, "record %d", i)
	}
	require.NoError(t, logger.Stop())

	assert.Len(t, sink.Lines(), 500)
	assert.Equal(t, uint64(500), logger.Stats().MaxBatch)
}
