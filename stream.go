package ragchat

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving tokens.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Asker.Ask.
//
// Message() returns the assistant message assembled from the tokens received
// so far. It returns an error only in StreamStateNew.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Message() (Message, error)
	Close() error
}
