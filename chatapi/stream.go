package chatapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/ragchat"
	"github.com/fwojciec/ragchat/sse"
)

// stream implements [ragchat.Stream] by feeding an HTTP response body
// through an [sse.Decoder].
type stream struct {
	body    io.ReadCloser
	ctx     context.Context
	logger  *slog.Logger
	decoder *sse.Decoder
	chunk   []byte
	frames  []sse.Frame // extracted but not yet decoded
	text    strings.Builder
	state   ragchat.StreamState
	err     error // terminal error, if any
	started time.Time
}

// Interface compliance check.
var _ ragchat.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, chunkSize int, logger *slog.Logger) *stream {
	return &stream{
		body:    body,
		ctx:     ctx,
		logger:  logger,
		decoder: sse.NewDecoder(),
		chunk:   make([]byte, chunkSize),
		state:   ragchat.StreamStateNew,
		started: time.Now(),
	}
}

// Next returns the next token event. Returns io.EOF once the body is
// exhausted and every complete frame has been delivered.
func (s *stream) Next() (ragchat.Event, error) {
	switch s.state {
	case ragchat.StreamStateComplete:
		return nil, io.EOF
	case ragchat.StreamStateError:
		return nil, s.err
	case ragchat.StreamStateClosed:
		return nil, fmt.Errorf("chatapi: %w", ragchat.ErrStreamClosed)
	}

	for {
		if evt, ok := s.nextFrameEvent(); ok {
			s.state = ragchat.StreamStateStreaming
			return evt, nil
		}
		if len(s.frames) > 0 {
			continue
		}

		if s.decoder.State() == sse.StateDone {
			s.state = ragchat.StreamStateComplete
			s.logger.Debug("stream complete", "bytes", s.text.Len(), "elapsed", time.Since(s.started))
			return nil, io.EOF
		}

		n, err := s.body.Read(s.chunk)
		if n > 0 {
			s.state = ragchat.StreamStateStreaming
			s.frames = append(s.frames, s.decoder.Feed(s.chunk[:n])...)
		}
		if err == io.EOF {
			if rest := s.decoder.Buffered(); rest != "" {
				s.logger.Debug("discarding partial trailing frame", "bytes", len(rest))
			}
			s.decoder.Finish()
			continue
		}
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
	}
}

// nextFrameEvent pops one pending frame and decodes it. It reports false
// when the frame carried no token or failed to decode; those frames are
// skipped without ending the stream.
func (s *stream) nextFrameEvent() (ragchat.Event, bool) {
	if len(s.frames) == 0 {
		return nil, false
	}
	f := s.frames[0]
	s.frames = s.frames[1:]

	evt, err := s.decoder.Decode(f)
	var de *sse.DecodeError
	switch {
	case errors.Is(err, sse.ErrNoData):
		s.logger.Debug("skipping frame without data prefix", "frame", string(f))
		return nil, false
	case errors.As(err, &de):
		s.logger.Warn("failed to parse JSON from stream", "frame", string(de.Frame), "error", de.Err)
		return nil, false
	case err != nil:
		s.logger.Warn("skipping undecodable frame", "error", err)
		return nil, false
	}

	tok := evt.Text()
	if tok == "" {
		return nil, false
	}
	s.text.WriteString(tok)
	return ragchat.EventToken{Token: tok}, true
}

// State returns the current stream state.
func (s *stream) State() ragchat.StreamState {
	return s.state
}

// Message returns the assistant message assembled so far.
func (s *stream) Message() (ragchat.Message, error) {
	if s.state == ragchat.StreamStateNew {
		return ragchat.Message{}, fmt.Errorf("chatapi: no data received yet")
	}
	return ragchat.Message{
		Role:      ragchat.RoleAssistant,
		Content:   s.text.String(),
		Failed:    s.state == ragchat.StreamStateError,
		Timestamp: s.started,
	}, nil
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != ragchat.StreamStateComplete && s.state != ragchat.StreamStateError {
		s.state = ragchat.StreamStateClosed
	}
	if s.decoder.State() != sse.StateDone {
		s.decoder.Finish()
	}
	return s.body.Close()
}

// terminate records a fatal read error. Context cancellation is reported
// as the context's error so callers can tell an abort from a network fault.
func (s *stream) terminate(err error) {
	s.state = ragchat.StreamStateError
	s.decoder.Finish()
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.err = fmt.Errorf("chatapi: %w", ctxErr)
		return
	}
	s.err = fmt.Errorf("chatapi: %w: %w", ragchat.ErrTransport, err)
}
