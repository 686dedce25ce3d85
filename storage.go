package chanlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/trickstertwo/xclock"
)

// FileSink appends lines to a file. The file is created with its parent
// directories on Open, or lazily on the first write if the sink was never
// opened.
type FileSink struct {
	sinkStatus
	mu   sync.Mutex
	path string
	file *os.File
	buf  []byte
}

// NewFileSink creates a file sink for path without touching the filesystem
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path, buf: make([]byte, 0, MessageCapacity+64)}
}

// Path returns the file path
func (s *FileSink) Path() string {
	return s.path
}

// Open implements Opener. A previously opened file is closed first;
// clearAtStart truncates the file.
func (s *FileSink) Open(clearAtStart bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		if err := s.file.Close(); err != nil {
			s.fail(err)
		}
		s.file = nil
	}

	file, err := createLogFile(s.path, clearAtStart)
	if err != nil {
		s.fail(err)
		return err
	}
	s.file = file
	return nil
}

// Write implements Sink
func (s *FileSink) Write(message string, level Level) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		file, err := createLogFile(s.path, false)
		if err != nil {
			s.fail(err)
			return
		}
		s.file = file
	}

	s.buf = append(s.buf[:0], message...)
	s.buf = append(s.buf, '\n')
	if _, err := s.file.Write(s.buf); err != nil {
		s.fail(fmtErrorf("failed to write to log file '%s': %w", s.path, err))
	}
}

// Sync implements Syncer
func (s *FileSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return fmtErrorf("failed to sync log file '%s': %w", s.path, err)
	}
	return nil
}

// Close syncs and closes the file; a later write reopens it in append mode
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	var err error
	if syncErr := s.file.Sync(); syncErr != nil {
		err = fmtErrorf("failed to sync log file '%s': %w", s.path, syncErr)
	}
	if closeErr := s.file.Close(); closeErr != nil {
		err = combineErrors(err, fmtErrorf("failed to close log file '%s': %w", s.path, closeErr))
	}
	s.file = nil
	return err
}

// createLogFile opens path for appending, creating parent directories
func createLogFile(path string, truncate bool) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmtErrorf("failed to create log directory '%s': %w", dir, err)
		}
	}

	flags := os.O_APPEND | os.O_CREATE | os.O_WRONLY
	if truncate {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmtErrorf("failed to open/create log file '%s': %w", path, err)
	}
	return file, nil
}

// SaveAllLogFiles copies every regular file in the directory of the
// configured log file into a new timestamped subdirectory of the backup
// directory. Bound sinks are synced first. It returns ErrFileLoggingDisabled
// when no log file path is configured.
func (l *Logger) SaveAllLogFiles() error {
	cfg := l.getConfig()
	if cfg.LogFilePath == "" {
		return ErrFileLoggingDisabled
	}

	if err := l.syncSinks(); err != nil {
		l.internalLog("sync before backup failed: %v\n", err)
	}

	dir := filepath.Dir(cfg.LogFilePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmtErrorf("failed to read log directory '%s': %w", dir, err)
	}

	backupRoot := cfg.BackupDirectory
	if !filepath.IsAbs(backupRoot) {
		backupRoot = filepath.Join(dir, backupRoot)
	}
	now := xclock.Now()
	dest := filepath.Join(backupRoot, fmt.Sprintf("%s_%d", now.Format(backupTimeLayout), now.Nanosecond()))
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmtErrorf("failed to create backup directory '%s': %w", dest, err)
	}

	var saveErr error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		src := filepath.Join(dir, entry.Name())
		if err := copyFile(src, filepath.Join(dest, entry.Name())); err != nil {
			saveErr = combineErrors(saveErr, err)
		}
	}
	return saveErr
}

// copyFile copies src to dst, replacing dst
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmtErrorf("failed to open '%s' for backup: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmtErrorf("failed to create backup file '%s': %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmtErrorf("failed to copy '%s' to '%s': %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmtErrorf("failed to close backup file '%s': %w", dst, err)
	}
	return nil
}
