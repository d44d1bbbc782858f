package sse

import (
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// State is the decoder's lifecycle state.
type State int

const (
	StateStreaming State = iota // Accepting feeds.
	StateDone                   // Terminal; further feeds are no-ops.
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "streaming"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Decoder turns a chunked byte stream into an ordered sequence of frames.
// A Decoder is not safe for concurrent use; it belongs to the single task
// reading the stream.
type Decoder struct {
	text    transform.Transformer
	pending []byte // trailing bytes of an incomplete UTF-8 sequence
	buf     string // decoded text not yet terminated by Delimiter
	state   State
}

// NewDecoder returns a Decoder in StateStreaming. A byte order mark at the
// very start of the stream is dropped.
func NewDecoder() *Decoder {
	return &Decoder{text: unicode.UTF8BOM.NewDecoder()}
}

// State returns the current lifecycle state.
func (d *Decoder) State() State { return d.state }

// Buffered returns the decoded text held back because it is not yet
// terminated by a delimiter.
func (d *Decoder) Buffered() string { return d.buf }

// Feed appends chunk to the buffer and returns every frame completed by it,
// in arrival order. The trailing undelimited segment stays buffered for the
// next call. An empty chunk, or any chunk after Finish, returns nil and
// leaves the decoder untouched.
func (d *Decoder) Feed(chunk []byte) []Frame {
	if d.state == StateDone || len(chunk) == 0 {
		return nil
	}
	d.buf += d.decodeText(chunk)

	// Delimiters are matched left to right without overlap, so "a\n\n\n"
	// yields frame "a" and keeps "\n". The last part is always the tail;
	// with no delimiter it is the whole buffer and nothing is emitted.
	parts := strings.Split(d.buf, Delimiter)
	if len(parts) == 1 {
		return nil
	}
	d.buf = parts[len(parts)-1]

	frames := make([]Frame, len(parts)-1)
	for i, p := range parts[:len(parts)-1] {
		frames[i] = Frame(p)
	}
	return frames
}

// Decode strips the data prefix from f and parses the remainder as JSON.
// Frames without the prefix return ErrNoData; malformed payloads return a
// *DecodeError. Neither affects the decoder's state.
func (d *Decoder) Decode(f Frame) (Event, error) {
	payload, ok := strings.CutPrefix(string(f), Prefix)
	if !ok {
		return Event{}, ErrNoData
	}
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return Event{}, &DecodeError{Frame: f, Err: err}
	}
	return evt, nil
}

// Finish marks the end of the upstream stream. Any undelimited remainder,
// including a partial multi-byte sequence, is discarded; this is not an
// error. The decoder moves to StateDone.
func (d *Decoder) Finish() {
	d.buf = ""
	d.pending = nil
	d.state = StateDone
}

// decodeText converts chunk to a string, prefixed by bytes held back from
// the previous chunk. A multi-byte sequence cut off at the end is held back
// again instead of being replaced with U+FFFD. Invalid bytes become U+FFFD.
func (d *Decoder) decodeText(chunk []byte) string {
	src := make([]byte, 0, len(d.pending)+len(chunk))
	src = append(src, d.pending...)
	src = append(src, chunk...)

	var out strings.Builder
	// Each invalid source byte expands to at most three bytes (U+FFFD).
	dst := make([]byte, 3*len(src)+4)
	for len(src) > 0 {
		nDst, nSrc, err := d.text.Transform(dst, src, false)
		out.Write(dst[:nDst])
		src = src[nSrc:]
		if errors.Is(err, transform.ErrShortDst) && nSrc > 0 {
			continue
		}
		// ErrShortSrc leaves an incomplete sequence (or a possible byte
		// order mark) in src to be retried with the next chunk.
		break
	}
	d.pending = append([]byte(nil), src...)
	return out.String()
}
