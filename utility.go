package chanlog

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

const errorPrefix = "chanlog: "

var (
	// ErrNilSink is returned when a nil sink is bound
	ErrNilSink = errors.New(errorPrefix + "sink cannot be nil")
	// ErrUncomparableSink is returned when a sink's dynamic type cannot be
	// compared with ==, so it could not be told apart from other bindings
	ErrUncomparableSink = errors.New(errorPrefix + "sink type is not comparable")
	// ErrChannelLimit is returned when a binding would exceed max_channels
	ErrChannelLimit = errors.New(errorPrefix + "channel limit reached")
	// ErrFileLoggingDisabled is returned by SaveAllLogFiles without log_file_path
	ErrFileLoggingDisabled = errors.New(errorPrefix + "file logging not configured")
	// ErrNotRunning is returned by operations that need the worker
	ErrNotRunning = errors.New(errorPrefix + "logger not running")
)

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, errorPrefix) && !strings.HasPrefix(format, "%w") {
		format = errorPrefix + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return errors.Join(err1, err2)
}

// parseKeyValue splits a "key=value" string
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// callerInfo resolves the source location skip frames above its caller.
// The file is reduced to its base name and the function to the part after
// the last path separator, e.g. "main.(*server).handle".
func callerInfo(skip int) (file string, line int, function string) {
	pc, fullPath, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "(unknown)", 0, "(unknown)"
	}
	file = filepath.Base(fullPath)
	function = "(unknown)"
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
		function = name
	}
	return file, line, function
}
