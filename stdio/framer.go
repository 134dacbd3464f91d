package stdio

import (
	"bytes"
	"encoding/json"
)

// framer accumulates raw input one read unit at a time and emits complete
// JSON message units. After each accumulation it tests whether the
// cumulative buffer, trimmed of surrounding whitespace, is syntactically
// valid JSON; if so the trimmed buffer is one message and the buffer resets.
//
// MCP's stdio transport sends one JSON value per line, but validating the
// cumulative buffer tolerates clients that pretty-print a value across
// several lines. An empty or whitespace-only buffer is never a message.
type framer struct {
	buf bytes.Buffer
}

// push appends one line of input and reports whether the buffer became a
// complete message. The returned slice is a copy and stays valid after
// subsequent pushes.
func (f *framer) push(line []byte) ([]byte, bool) {
	f.buf.Write(line)
	f.buf.WriteByte('\n')

	trimmed := bytes.TrimSpace(f.buf.Bytes())
	if len(trimmed) == 0 {
		return nil, false
	}
	if !json.Valid(trimmed) {
		return nil, false
	}

	msg := make([]byte, len(trimmed))
	copy(msg, trimmed)
	f.buf.Reset()
	return msg, true
}

// pending reports whether the buffer holds leftover input that never became
// a complete message. At end-of-input such a remainder is dropped, not
// reported as a parse error; callers log it for diagnosability.
func (f *framer) pending() bool {
	return len(bytes.TrimSpace(f.buf.Bytes())) > 0
}
