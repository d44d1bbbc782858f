package ragchat

import "time"

// Message is a single entry of the visible transcript.
type Message struct {
	Role    Role
	Content string
	// Failed marks an assistant message whose content was replaced by an
	// error notice because its exchange failed.
	Failed    bool
	Timestamp time.Time
}
