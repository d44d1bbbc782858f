package chatapi

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/ragchat"
)

// NewStream exports newStream for testing with scripted readers.
func NewStream(ctx context.Context, body io.ReadCloser, chunkSize int, logger *slog.Logger) ragchat.Stream {
	return newStream(ctx, body, chunkSize, logger)
}
