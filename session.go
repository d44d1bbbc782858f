package ragchat

import (
	"time"

	"github.com/google/uuid"
)

// Session is one persisted conversation.
type Session struct {
	ID         string
	Transcript Transcript
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSession returns an empty session with a fresh random ID.
func NewSession(now time.Time) Session {
	return Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
