package chanlog

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xclock"
)

// recordingSink keeps every line it receives
type recordingSink struct {
	mu     sync.Mutex
	lines  []string
	levels []Level
}

func (s *recordingSink) Write(message string, level Level) {
	s.mu.Lock()
	s.lines = append(s.lines, message)
	s.levels = append(s.levels, level)
	s.mu.Unlock()
}

func (s *recordingSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *recordingSink) Levels() []Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Level(nil), s.levels...)
}

// panicSink panics on every write
type panicSink struct{}

func (panicSink) Write(string, Level) { panic("sink exploded") }

// openerSink records Open and Sync calls
type openerSink struct {
	recordingSink
	opens   []bool
	openErr error
	syncs   int
}

func (s *openerSink) Open(clearAtStart bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens = append(s.opens, clearAtStart)
	return s.openErr
}

func (s *openerSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs++
	return nil
}

// createTestLogger creates a running engine with a fast worker and one
// recording sink bound to DefaultChannel at trace level
func createTestLogger(t *testing.T) (*Logger, *recordingSink) {
	t.Helper()
	logger := NewLogger()

	cfg := DefaultConfig()
	cfg.WorkerPeriodMs = 5
	cfg.QueueInitialCapacity = 64
	require.NoError(t, logger.ApplyConfig(cfg))

	sink := &recordingSink{}
	require.NoError(t, logger.AddOutput(sink, LevelTrace, DefaultChannel))
	require.NoError(t, logger.Start())
	t.Cleanup(func() { _ = logger.Stop() })

	return logger, sink
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()

	assert.NotNil(t, logger)
	assert.False(t, logger.Running())
	assert.Equal(t, LevelTrace, logger.Level())
	assert.Equal(t, stateIdle, logger.state.Lifecycle.Load())
	assert.Equal(t, 0, logger.Stats().Channels)
}

func TestSubmitDelivers(t *testing.T) {
	logger, sink := createTestLogger(t)

	logger.Submit(LevelInfo, DefaultChannel, "main.cpp", 10, "main", "value=%d", 42)
	require.NoError(t, logger.Stop())

	lines := sink.Lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], "] [INFO]: value=42"), lines[0])
	assert.Equal(t, []Level{LevelInfo}, sink.Levels())
}

func TestGlobalLevelGating(t *testing.T) {
	logger, sink := createTestLogger(t)
	logger.SetLevel(LevelWarning)

	logger.Infof(DefaultChannel, "filtered")
	logger.Debugf(DefaultChannel, "filtered")
	logger.Warningf(DefaultChannel, "kept warning")
	logger.Errorf(DefaultChannel, "kept error")
	require.NoError(t, logger.Stop())

	lines := sink.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "kept warning")
	assert.Contains(t, lines[1], "kept error")

	stats := logger.Stats()
	assert.Equal(t, uint64(2), stats.Filtered)
	assert.Equal(t, uint64(2), stats.Submitted)
	assert.Equal(t, int64(LevelWarning), logger.GetConfig().Level)
}

// One channel bound to a console-like sink at info and a file-like sink at warning
func TestBindingThresholds(t *testing.T) {
	logger := NewLogger()
	require.NoError(t, logger.ApplyConfigString("worker_period_ms=5"))

	console := &recordingSink{}
	file := &recordingSink{}
	const channel = 1
	require.NoError(t, logger.AddOutput(console, LevelInfo, channel))
	require.NoError(t, logger.AddOutput(file, LevelWarning, channel))
	require.NoError(t, logger.Start())

	logger.Debugf(channel, "debug")
	logger.Infof(channel, "info")
	logger.Warningf(channel, "warning")
	logger.Errorf(channel, "error")
	require.NoError(t, logger.Stop())

	assert.Equal(t, []Level{LevelInfo, LevelWarning, LevelError}, console.Levels())
	assert.Equal(t, []Level{LevelWarning, LevelError}, file.Levels())

	stats := logger.Stats()
	assert.Equal(t, uint64(5), stats.Dispatched)
	assert.Equal(t, uint64(1), stats.Unrouted)
}

func TestChannelRouting(t *testing.T) {
	logger, defaultSink := createTestLogger(t)

	net := &recordingSink{}
	db := &recordingSink{}
	require.NoError(t, logger.AddOutput(net, LevelTrace, 1))
	require.NoError(t, logger.AddOutput(db, LevelTrace, 2))
	require.NoError(t, logger.AddOutput(defaultSink, LevelError, 2))

	logger.Infof(1, "net message")
	logger.Infof(2, "db message")
	logger.Errorf(2, "db failure")
	logger.Infof(3, "nobody listens")
	require.NoError(t, logger.Stop())

	require.Len(t, net.Lines(), 1)
	assert.Contains(t, net.Lines()[0], "net message")
	require.Len(t, db.Lines(), 2)
	require.Len(t, defaultSink.Lines(), 1)
	assert.Contains(t, defaultSink.Lines()[0], "db failure")
	assert.Equal(t, uint64(1), logger.Stats().Unrouted)
	assert.Equal(t, 3, logger.Stats().Channels)
}

func TestRemoveOutput(t *testing.T) {
	logger, sink := createTestLogger(t)

	assert.True(t, logger.RemoveOutput(sink, DefaultChannel))
	assert.False(t, logger.RemoveOutput(sink, DefaultChannel))
	assert.False(t, logger.RemoveOutput(nil, DefaultChannel))

	logger.Infof(DefaultChannel, "dropped")
	require.NoError(t, logger.Stop())
	assert.Empty(t, sink.Lines())
}

func TestAddOutputErrors(t *testing.T) {
	logger := NewLogger()
	assert.ErrorIs(t, logger.AddOutput(nil, LevelInfo, 0), ErrNilSink)

	require.NoError(t, logger.ApplyConfigString("max_channels=2"))
	require.NoError(t, logger.AddOutput(&recordingSink{}, LevelInfo, 10))
	require.NoError(t, logger.AddOutput(&recordingSink{}, LevelInfo, 20))
	// Existing channels accept more sinks
	require.NoError(t, logger.AddOutput(&recordingSink{}, LevelInfo, 10))

	err := logger.AddOutput(&recordingSink{}, LevelInfo, 30)
	assert.ErrorIs(t, err, ErrChannelLimit)
}

// sliceSink is a valid Sink whose dynamic type cannot be compared
type sliceSink struct{ lines []string }

func (sliceSink) Write(string, Level) {}

// orderedOpener appends its name to a shared log when opened
type orderedOpener struct {
	name string
	log  *[]string
}

func (*orderedOpener) Write(string, Level) {}

func (o *orderedOpener) Open(bool) error {
	*o.log = append(*o.log, o.name)
	return nil
}

func TestAddOutputUncomparableSink(t *testing.T) {
	logger := NewLogger()

	err := logger.AddOutput(sliceSink{}, LevelTrace, 1)
	assert.ErrorIs(t, err, ErrUncomparableSink)
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, logger.AddOutput(sliceSink{}, LevelTrace, 2), ErrUncomparableSink)
		assert.False(t, logger.RemoveOutput(sliceSink{}, 1))
		require.NoError(t, logger.Start())
		logger.Infof(1, "still alive")
		require.NoError(t, logger.Stop())
	})
	assert.Equal(t, 0, logger.Stats().Channels)

	// A pointer to the same type is fine
	require.NoError(t, logger.AddOutput(&sliceSink{}, LevelTrace, 1))
}

func TestStartOpensSinksInOrder(t *testing.T) {
	logger := NewLogger()
	var opened []string
	a := &orderedOpener{name: "a", log: &opened}
	b := &orderedOpener{name: "b", log: &opened}
	c := &orderedOpener{name: "c", log: &opened}
	require.NoError(t, logger.AddOutput(c, LevelTrace, 7))
	require.NoError(t, logger.AddOutput(a, LevelTrace, 2))
	require.NoError(t, logger.AddOutput(b, LevelTrace, 2))
	require.NoError(t, logger.AddOutput(c, LevelTrace, 0))

	require.NoError(t, logger.Start())
	require.NoError(t, logger.Stop())

	assert.Equal(t, []string{"c", "a", "b"}, opened)
}

func TestAddOutputOpensWhileRunning(t *testing.T) {
	logger, _ := createTestLogger(t)

	s := &openerSink{}
	require.NoError(t, logger.AddOutput(s, LevelInfo, 5))
	require.NoError(t, logger.AddOutput(s, LevelInfo, 6))
	assert.Equal(t, []bool{false}, s.opens, "a sink is opened once")
}

func TestSinkPanicIsolated(t *testing.T) {
	logger, _ := createTestLogger(t)

	after := &recordingSink{}
	require.NoError(t, logger.AddOutput(panicSink{}, LevelTrace, 4))
	require.NoError(t, logger.AddOutput(after, LevelTrace, 4))

	logger.Infof(4, "first")
	logger.Infof(4, "second")
	require.NoError(t, logger.Stop())

	assert.Len(t, after.Lines(), 2)
	assert.Equal(t, uint64(2), logger.Stats().SinkFailures)
}

func TestCallerCapture(t *testing.T) {
	logger := NewLogger()
	require.NoError(t, logger.ApplyConfigString("format=json", "worker_period_ms=5"))
	sink := &recordingSink{}
	require.NoError(t, logger.AddOutput(sink, LevelTrace, 0))
	require.NoError(t, logger.Start())

	logger.Infof(0, "method")
	logger.Logf(LevelWarning, 0, "generic %s", "call")
	require.NoError(t, logger.Stop())

	lines := sink.Lines()
	require.Len(t, lines, 2)
	for _, line := range lines {
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &decoded), line)
		assert.Equal(t, "logger_test.go", decoded["file"])
		assert.Equal(t, "chanlog.TestCallerCapture", decoded["function"])
		assert.Greater(t, decoded["line"], float64(0))
	}
}

func TestDump(t *testing.T) {
	logger, sink := createTestLogger(t)

	logger.Dump(LevelDebug, DefaultChannel, "state", map[string]int{"b": 2, "a": 1})
	logger.SetLevel(LevelError)
	logger.Dump(LevelDebug, DefaultChannel, "skipped", struct{}{})
	require.NoError(t, logger.Stop())

	lines := sink.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "[DEBUG]: state: (map[string]int)")
	assert.Less(t, strings.Index(lines[0], `"a"`), strings.Index(lines[0], `"b"`))
}

func TestApplyConfigString(t *testing.T) {
	tests := []struct {
		name      string
		overrides []string
		verify    func(t *testing.T, cfg *Config)
		wantError string
	}{
		{
			name:      "named level and numbers",
			overrides: []string{"level=warning", "worker_period_ms=25", "queue_initial_capacity=16"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(LevelWarning), cfg.Level)
				assert.Equal(t, int64(25), cfg.WorkerPeriodMs)
				assert.Equal(t, int64(16), cfg.QueueInitialCapacity)
			},
		},
		{
			name:      "numeric level and bools",
			overrides: []string{"level=5", "clear_at_start=true", "sanitize=false"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(LevelError), cfg.Level)
				assert.True(t, cfg.ClearAtStart)
				assert.False(t, cfg.Sanitize)
			},
		},
		{
			name:      "file settings",
			overrides: []string{"log_file_path=/tmp/app/app.log", "backup_directory=old"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/tmp/app/app.log", cfg.LogFilePath)
				assert.Equal(t, "old", cfg.BackupDirectory)
			},
		},
		{
			name:      "unknown key",
			overrides: []string{"colour=blue"},
			wantError: "unknown configuration key",
		},
		{
			name:      "missing separator",
			overrides: []string{"level"},
			wantError: "expected key=value",
		},
		{
			name:      "bad integer",
			overrides: []string{"worker_period_ms=fast"},
			wantError: "invalid integer value for worker_period_ms",
		},
		{
			name:      "validation rejects instead of clamping",
			overrides: []string{"worker_period_ms=0"},
			wantError: "worker_period_ms must be positive",
		},
		{
			name:      "multiple errors combined",
			overrides: []string{"level=loud", "sanitize=maybe"},
			wantError: "multiple configuration errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger()
			before := logger.GetConfig()

			err := logger.ApplyConfigString(tt.overrides...)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				assert.Equal(t, before, logger.GetConfig(), "failed overrides leave config untouched")
				return
			}
			require.NoError(t, err)
			tt.verify(t, logger.GetConfig())
		})
	}
}

func TestApplyConfigNil(t *testing.T) {
	logger := NewLogger()
	assert.Error(t, logger.ApplyConfig(nil))
}

func TestApplyConfigWhileRunning(t *testing.T) {
	logger, sink := createTestLogger(t)

	logger.Infof(DefaultChannel, "before")
	require.NoError(t, logger.ApplyConfigString("worker_period_ms=7", "queue_initial_capacity=8", "level=info"))
	assert.True(t, logger.Running())
	assert.Equal(t, LevelInfo, logger.Level())

	// Restart drained the record queued before the change
	assert.Len(t, sink.Lines(), 1)

	logger.Debugf(DefaultChannel, "filtered")
	logger.Infof(DefaultChannel, "after")
	require.NoError(t, logger.Stop())

	lines := sink.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "after")
}

func TestFlush(t *testing.T) {
	logger := NewLogger()
	require.NoError(t, logger.ApplyConfigString("worker_period_ms=60000"))
	sink := &openerSink{}
	require.NoError(t, logger.AddOutput(sink, LevelTrace, 0))

	assert.ErrorIs(t, logger.Flush(time.Second), ErrNotRunning)

	require.NoError(t, logger.Start())
	defer logger.Stop()

	logger.Infof(0, "flushed without waiting for the period")
	require.NoError(t, logger.Flush(time.Second))

	assert.Len(t, sink.Lines(), 1)
	sink.mu.Lock()
	assert.Equal(t, 1, sink.syncs)
	sink.mu.Unlock()
}

func TestFrozenClockTimestamps(t *testing.T) {
	old := xclock.Default()
	defer xclock.SetDefault(old)
	xclock.SetDefault(xclock.NewFrozen(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))

	logger, sink := createTestLogger(t)
	logger.Configf(DefaultChannel, "frozen")
	require.NoError(t, logger.Stop())

	require.Len(t, sink.Lines(), 1)
	assert.Equal(t, "[Mon Jan  1 12:00:00 2024] [CONFIG]: frozen", sink.Lines()[0])
}

func TestSanitizedOutput(t *testing.T) {
	logger, sink := createTestLogger(t)

	logger.Infof(DefaultChannel, "bell\x07 and escape\x1b")
	require.NoError(t, logger.Stop())

	require.Len(t, sink.Lines(), 1)
	assert.True(t, strings.HasSuffix(sink.Lines()[0], "bell<07> and escape<1b>"))

	require.NoError(t, logger.ApplyConfigString("sanitize=false"))
	require.NoError(t, logger.Start())
	logger.Infof(DefaultChannel, "raw\x07")
	require.NoError(t, logger.Stop())
	assert.True(t, strings.HasSuffix(sink.Lines()[1], "raw\x07"))
}
