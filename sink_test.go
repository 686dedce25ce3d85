package chanlog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("write refused") }

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)

	s.Write("first", LevelInfo)
	s.Write("second", LevelError)

	assert.Equal(t, "first\nsecond\n", buf.String())
	assert.NoError(t, s.Err())
	assert.Equal(t, uint64(0), s.Failures())
}

func TestWriterSinkFailureStaysLocal(t *testing.T) {
	s := NewWriterSink(failingWriter{})

	assert.NotPanics(t, func() { s.Write("lost", LevelInfo) })
	assert.EqualError(t, s.Err(), "write refused")
	assert.Equal(t, uint64(1), s.Failures())

	var _ StatusReporter = s
}

func TestWriterSinkNilDiscards(t *testing.T) {
	s := NewWriterSink(nil)
	assert.NotPanics(t, func() { s.Write("nowhere", LevelInfo) })
	assert.NoError(t, s.Err())
}

func TestConsoleSinkColor(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleSink("stderr", true)
	c.w = &buf

	c.Write("warned", LevelWarning)
	c.Write("odd", Level(99))

	assert.Equal(t, "\x1b[33mwarned\x1b[0m\nodd\n", buf.String())
}

func TestConsoleSinkTargets(t *testing.T) {
	assert.Equal(t, os.Stderr, NewConsoleSink("stderr", false).w)
	assert.Equal(t, os.Stdout, NewConsoleSink("stdout", false).w)
	assert.Equal(t, os.Stdout, NewConsoleSink("bogus", false).w)
}

func TestFileSink(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir", "app.log")
	s := NewFileSink(path)
	assert.Equal(t, path, s.Path())

	// Lazy open creates parent directories
	s.Write("one", LevelInfo)
	require.NoError(t, s.Sync())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(data))

	// Open without clearing appends
	require.NoError(t, s.Open(false))
	s.Write("two", LevelInfo)
	require.NoError(t, s.Close())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))

	// Clearing truncates
	require.NoError(t, s.Open(true))
	s.Write("three", LevelInfo)
	require.NoError(t, s.Close())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "three\n", string(data))

	assert.NoError(t, s.Err())
	assert.NoError(t, s.Close(), "closing twice is harmless")
}

func TestFileSinkOpenFailure(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// Parent path is a regular file
	s := NewFileSink(filepath.Join(blocker, "app.log"))
	assert.Error(t, s.Open(false))
	assert.Error(t, s.Err())

	s.Write("dropped", LevelInfo)
	assert.Equal(t, uint64(2), s.Failures())
}

func TestBuiltinSinkCapabilities(t *testing.T) {
	var _ Sink = (*WriterSink)(nil)
	var _ Sink = (*ConsoleSink)(nil)
	var _ Sink = (*FileSink)(nil)
	var _ Opener = (*FileSink)(nil)
	var _ Syncer = (*FileSink)(nil)
	var _ StatusReporter = (*FileSink)(nil)
}
