package ragchat

import "context"

// Asker opens one exchange with a chat endpoint.
type Asker interface {
	Ask(ctx context.Context, req Request) (Stream, error)
}
