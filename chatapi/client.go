package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/fwojciec/ragchat"
)

// Interface compliance check.
var _ ragchat.Asker = (*Client)(nil)

// Client implements [ragchat.Asker] over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	chunkSize  int
}

// Option configures a [Client].
type Option func(*Client)

// WithEndpoint sets the full chat endpoint URL. Useful for testing with httptest.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger that receives skipped-frame diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithChunkSize sets the maximum number of bytes read from the response body
// per decoder feed. Non-positive values keep the default.
func WithChunkSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// New creates a new [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint:   defaultEndpoint,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
		chunkSize:  defaultChunkSize,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Endpoint returns the URL questions are POSTed to.
func (c *Client) Endpoint() string { return c.endpoint }

// Ask POSTs the question and returns a [ragchat.Stream] over the streamed
// answer. A 401 response returns an error wrapping [ragchat.ErrUnauthorized];
// any other non-2xx status returns a [*ragchat.StatusError]; network
// failures wrap [ragchat.ErrTransport].
func (c *Client) Ask(ctx context.Context, req ragchat.Request) (ragchat.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("chatapi: %w", err)
	}

	body, err := json.Marshal(apiRequest{Question: req.Question})
	if err != nil {
		return nil, fmt.Errorf("chatapi: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chatapi: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, req.APIKey)

	c.logger.Debug("sending question", "endpoint", c.endpoint, "bytes", len(body))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("chatapi: %w", ctx.Err())
		}
		return nil, fmt.Errorf("chatapi: %w: %w", ragchat.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	return newStream(ctx, resp.Body, c.chunkSize, c.logger), nil
}

// statusError drains the body so the connection can be reused and maps the
// status to the error taxonomy.
func statusError(resp *http.Response) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("chatapi: %w", ragchat.ErrUnauthorized)
	}
	return fmt.Errorf("chatapi: %w", &ragchat.StatusError{StatusCode: resp.StatusCode})
}
