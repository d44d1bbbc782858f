// Package sse decodes the chat endpoint's server-sent-event style response.
//
// The wire format is a sequence of frames separated by a blank line
// ("\n\n"). A data-bearing frame starts with the literal prefix "data:"
// followed by a JSON object; the only recognized field is "token".
//
// A [Decoder] is fed raw network chunks in arrival order. It holds back
// incomplete UTF-8 sequences and the undelimited tail of the stream between
// calls, so frames and multi-byte characters may be split across reads at
// any byte offset.
package sse

import (
	"errors"
	"fmt"
)

const (
	// Delimiter separates adjacent frames.
	Delimiter = "\n\n"

	// Prefix marks a data-bearing frame.
	Prefix = "data:"
)

// ErrNoData is returned by Decode for frames that do not begin with Prefix.
var ErrNoData = errors.New("sse: frame has no data prefix")

// Frame is one delimiter-bounded unit of the stream, without the delimiter.
type Frame string

// Event is the decoded payload of a data frame. Token is nil when the JSON
// object does not carry a "token" field.
type Event struct {
	Token *string `json:"token"`
}

// Text returns the token, or "" when absent.
func (e Event) Text() string {
	if e.Token == nil {
		return ""
	}
	return *e.Token
}

// DecodeError reports a data frame whose payload is not valid JSON.
// It is scoped to a single frame and never aborts the stream.
type DecodeError struct {
	Frame Frame
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sse: decode frame %q: %v", string(e.Frame), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
