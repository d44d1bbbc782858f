package ragchat

import (
	"context"
	"io"
	"sync"
	"time"
)

// Exchange runs one question/response cycle at a time against an Asker.
type Exchange struct {
	asker Asker

	mu       sync.Mutex
	inFlight bool
}

// NewExchange creates an Exchange that opens streams through asker.
func NewExchange(asker Asker) *Exchange {
	return &Exchange{asker: asker}
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent func(Event)
	now     func() time.Time
}

// WithEventHandler sets a callback that receives each streaming event during
// the run. If nil or not set, events are silently discarded.
func WithEventHandler(h func(Event)) RunOption {
	return func(c *runConfig) {
		c.onEvent = h
	}
}

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) RunOption {
	return func(c *runConfig) {
		c.now = now
	}
}

// InFlight reports whether a Run is currently streaming.
func (e *Exchange) InFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// Run submits req, streams the response into session.Transcript and returns
// once the stream ends. A transport or credential failure replaces the
// in-progress assistant message with an error notice and is returned.
// A Run started while another is in flight returns ErrExchangeInFlight
// without touching the session.
func (e *Exchange) Run(ctx context.Context, session *Session, req Request, opts ...RunOption) error {
	cfg := runConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := req.Validate(); err != nil {
		return err
	}
	if !e.acquire() {
		return ErrExchangeInFlight
	}
	defer e.release()

	session.Transcript = Reduce(session.Transcript, ActionSubmit{Question: req.Question, Time: cfg.now()})
	session.UpdatedAt = cfg.now()

	err := e.drain(ctx, session, req, &cfg)
	if err != nil {
		session.Transcript = Reduce(session.Transcript, ActionFail{Err: err})
	} else {
		session.Transcript = Reduce(session.Transcript, ActionComplete{})
	}
	session.UpdatedAt = cfg.now()
	return err
}

func (e *Exchange) drain(ctx context.Context, session *Session, req Request, cfg *runConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stream, err := e.asker.Ask(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		evt, err := stream.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if tok, ok := evt.(EventToken); ok {
			session.Transcript = Reduce(session.Transcript, ActionToken{Token: tok.Token})
		}
		if cfg.onEvent != nil {
			cfg.onEvent(evt)
		}
	}
}

func (e *Exchange) acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return false
	}
	e.inFlight = true
	return true
}

func (e *Exchange) release() {
	e.mu.Lock()
	e.inFlight = false
	e.mu.Unlock()
}
