package ragchat

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized indicates the endpoint rejected the API key (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized: invalid API key")

	// ErrTransport indicates the exchange failed at the HTTP or network level.
	ErrTransport = errors.New("transport error")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrExchangeInFlight indicates a question was submitted while another
	// exchange was still streaming.
	ErrExchangeInFlight = errors.New("exchange already in flight")
)

// StatusError reports a non-2xx, non-401 response from the chat endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: status %d", e.StatusCode)
}

// Unwrap makes StatusError match ErrTransport.
func (e *StatusError) Unwrap() error { return ErrTransport }
