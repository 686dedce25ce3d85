// Package formatter renders drained log records into output lines.
package formatter

import (
	"bytes"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/chanlog/sanitizer"
)

const (
	FormatTxt  = "txt"
	FormatJSON = "json"
)

// Entry is the view of a record handed to the formatter; byte fields alias
// worker-owned storage and are only valid for the duration of Format
type Entry struct {
	Time     time.Time
	Level    string
	Channel  int
	File     []byte
	Line     int
	Function []byte
	Message  []byte
}

// Formatter manages the buffered formatting of log entries; not safe for
// concurrent use, each worker owns one
type Formatter struct {
	txtSanitizer    *sanitizer.Sanitizer
	jsonSanitizer   *sanitizer.Sanitizer
	format          string
	timestampFormat string
	buf             []byte
}

// New creates a formatter; s sanitizes message text in txt output, nil means passthrough
func New(s ...*sanitizer.Sanitizer) *Formatter {
	san := sanitizer.New()
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	}
	return &Formatter{
		txtSanitizer:    san,
		jsonSanitizer:   sanitizer.New().Policy(sanitizer.PolicyJSON),
		format:          FormatTxt,
		timestampFormat: time.ANSIC,
		buf:             make([]byte, 0, 1024),
	}
}

// Type sets the output format ("txt" or "json"); unknown values fall back to txt
func (f *Formatter) Type(format string) *Formatter {
	f.format = format
	return f
}

// TimestampFormat sets the timestamp layout
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// Format renders e without a trailing newline. The returned slice is reused
// by the next call.
func (f *Formatter) Format(e *Entry) []byte {
	f.buf = f.buf[:0]
	if f.format == FormatJSON {
		return f.formatJSON(e)
	}
	return f.formatTxt(e)
}

// formatTxt produces "[<timestamp>] [<LEVEL>]: <message>"
func (f *Formatter) formatTxt(e *Entry) []byte {
	f.buf = append(f.buf, '[')
	f.buf = e.Time.AppendFormat(f.buf, f.timestampFormat)
	f.buf = append(f.buf, "] ["...)
	f.buf = append(f.buf, e.Level...)
	f.buf = append(f.buf, "]: "...)
	f.buf = f.txtSanitizer.Append(f.buf, e.Message)
	return f.buf
}

func (f *Formatter) formatJSON(e *Entry) []byte {
	f.buf = append(f.buf, `{"time":"`...)
	f.buf = e.Time.AppendFormat(f.buf, f.timestampFormat)
	f.buf = append(f.buf, `","level":"`...)
	f.buf = append(f.buf, e.Level...)
	f.buf = append(f.buf, `","channel":`...)
	f.buf = strconv.AppendInt(f.buf, int64(e.Channel), 10)

	if len(e.File) > 0 {
		f.buf = append(f.buf, `,"file":"`...)
		f.buf = f.jsonSanitizer.Append(f.buf, e.File)
		f.buf = append(f.buf, `","line":`...)
		f.buf = strconv.AppendInt(f.buf, int64(e.Line), 10)
	}
	if len(e.Function) > 0 {
		f.buf = append(f.buf, `,"function":"`...)
		f.buf = f.jsonSanitizer.Append(f.buf, e.Function)
		f.buf = append(f.buf, '"')
	}

	f.buf = append(f.buf, `,"message":"`...)
	f.buf = f.jsonSanitizer.Append(f.buf, e.Message)
	f.buf = append(f.buf, `"}`...)
	return f.buf
}

var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true, // Cleaner for logs
	DisableCapacities:       true, // Less noise
	SortKeys:                true, // Consistent map output
}

// Dump renders v with type and structure information for debug logging
func Dump(v any) string {
	var b bytes.Buffer
	dumper.Fdump(&b, v)
	// Trim trailing new line added by spew
	return string(bytes.TrimSpace(b.Bytes()))
}
