package chanlog

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/trickstertwo/xclock"
)

// Record is one immutable log occurrence. Text fields live in fixed-capacity
// arrays so a record never points back into caller memory and can be copied
// into a buffer slot by value.
type Record struct {
	created   time.Time
	level     Level
	channel   int
	line      int
	fileLen   uint16
	funcLen   uint16
	msgLen    uint16
	truncated bool
	file      [FileCapacity]byte
	function  [FunctionCapacity]byte
	message   [MessageCapacity]byte
}

// scratchPool holds render buffers so formatting on the caller goroutine does
// not allocate per record once the pool is warm
var scratchPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, MessageCapacity)
		return &b
	},
}

// newRecord renders format and args on the calling goroutine and captures the
// current time
func newRecord(level Level, channel int, file string, line int, function string, format string, args []any) Record {
	var r Record
	r.created = xclock.Now()
	r.level = level
	r.channel = channel
	r.line = line

	n, cut := copyBounded(r.file[:], file)
	r.fileLen = uint16(n)
	r.truncated = cut
	n, cut = copyBounded(r.function[:], function)
	r.funcLen = uint16(n)
	r.truncated = r.truncated || cut

	// Formats without verbs need no rendering pass
	if len(args) == 0 && strings.IndexByte(format, '%') < 0 {
		n, cut = copyBounded(r.message[:], format)
	} else {
		bp := scratchPool.Get().(*[]byte)
		buf := fmt.Appendf((*bp)[:0], format, args...)
		n, cut = copyBoundedBytes(r.message[:], buf)
		// Oversized buffers are not returned to keep pool memory bounded
		if cap(buf) <= 4*MessageCapacity {
			*bp = buf[:0]
			scratchPool.Put(bp)
		}
	}
	r.msgLen = uint16(n)
	r.truncated = r.truncated || cut

	return r
}

// copyBounded copies src into dst leaving the last byte of dst unused and
// reports whether src was cut
func copyBounded(dst []byte, src string) (int, bool) {
	limit := len(dst) - 1
	if len(src) <= limit {
		return copy(dst, src), false
	}
	return copy(dst[:limit], src[:limit]), true
}

// copyBoundedBytes is copyBounded for rendered byte buffers
func copyBoundedBytes(dst []byte, src []byte) (int, bool) {
	limit := len(dst) - 1
	if len(src) <= limit {
		return copy(dst, src), false
	}
	return copy(dst[:limit], src[:limit]), true
}

// Level returns the record severity
func (r *Record) Level() Level { return r.level }

// ChannelID returns the routing channel of the record
func (r *Record) ChannelID() int { return r.channel }

// Time returns the creation timestamp
func (r *Record) Time() time.Time { return r.created }

// File returns the source file name, possibly truncated
func (r *Record) File() string { return string(r.file[:r.fileLen]) }

// Line returns the source line number
func (r *Record) Line() int { return r.line }

// Function returns the function name, possibly truncated
func (r *Record) Function() string { return string(r.function[:r.funcLen]) }

// Message returns the rendered message text, possibly truncated
func (r *Record) Message() string { return string(r.message[:r.msgLen]) }

// Truncated reports whether any text field was cut to fit its capacity
func (r *Record) Truncated() bool { return r.truncated }

// messageBytes exposes the message without copying, valid while r is unchanged
func (r *Record) messageBytes() []byte { return r.message[:r.msgLen] }

// FormattedMessage renders the record as "[<timestamp>] [<LEVEL>]: <message>".
// The timestamp uses the ctime layout without a trailing newline.
func (r *Record) FormattedMessage() string {
	var sb strings.Builder
	sb.Grow(len(time.ANSIC) + int(r.msgLen) + 16)
	sb.WriteByte('[')
	sb.WriteString(r.created.Format(time.ANSIC))
	sb.WriteString("] [")
	sb.WriteString(r.level.String())
	sb.WriteString("]: ")
	sb.Write(r.messageBytes())
	return sb.String()
}
