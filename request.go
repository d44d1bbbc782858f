package ragchat

import (
	"fmt"
	"strings"
)

// Request is a single question forwarded to the chat endpoint together with
// the credential that authorizes it.
type Request struct {
	Question string
	APIKey   string
}

// Validate checks that both the question and the API key are non-blank.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("question must not be blank: %w", ErrValidation)
	}
	if strings.TrimSpace(r.APIKey) == "" {
		return fmt.Errorf("API key must not be blank: %w", ErrValidation)
	}
	return nil
}
