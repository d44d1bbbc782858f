// Package chatapi implements [ragchat.Asker] for a knowledge-base chat
// endpoint that streams its answer as "data:" frames.
//
// The response body is read one chunk at a time and fed through an
// [sse.Decoder]; each decoded frame carrying a token becomes one
// [ragchat.EventToken] on the pull-based [ragchat.Stream].
package chatapi

const (
	defaultEndpoint  = "http://localhost:5678/api/chat"
	defaultChunkSize = 4096
	apiKeyHeader     = "x-api-key"
)

// apiRequest is the JSON body POSTed to the chat endpoint.
type apiRequest struct {
	Question string `json:"question"`
}
