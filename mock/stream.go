package mock

import (
	"io"

	"github.com/fwojciec/ragchat"
)

// Interface compliance check.
var _ ragchat.Stream = (*Stream)(nil)

// Stream is a test double for ragchat.Stream.
// Set the function fields for the methods you need. NextFn and MessageFn
// panic when nil to catch missing setup. CloseFn and StateFn are nil-safe
// (no-op and zero value) because callers commonly defer stream.Close().
type Stream struct {
	NextFn    func() (ragchat.Event, error)
	StateFn   func() ragchat.StreamState
	MessageFn func() (ragchat.Message, error)
	CloseFn   func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (ragchat.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() ragchat.StreamState {
	if s.StateFn == nil {
		return ragchat.StreamStateNew
	}
	return s.StateFn()
}

// Message delegates to MessageFn.
func (s *Stream) Message() (ragchat.Message, error) {
	return s.MessageFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// TokenStream returns a Stream that yields one EventToken per token, then
// err (io.EOF when err is nil).
func TokenStream(err error, tokens ...string) *Stream {
	if err == nil {
		err = io.EOF
	}
	i := 0
	return &Stream{
		NextFn: func() (ragchat.Event, error) {
			if i >= len(tokens) {
				return nil, err
			}
			i++
			return ragchat.EventToken{Token: tokens[i-1]}, nil
		},
	}
}
