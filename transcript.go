package ragchat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Transcript is the ordered, role-tagged conversation shown to the user.
// Pending is true while an exchange is streaming into the last assistant
// message.
type Transcript struct {
	Messages []Message
	Pending  bool
}

// Typing reports whether an exchange is in flight and no token has arrived
// yet, i.e. the last assistant message is still empty.
func (t Transcript) Typing() bool {
	if !t.Pending || len(t.Messages) == 0 {
		return false
	}
	last := t.Messages[len(t.Messages)-1]
	return last.Role == RoleAssistant && last.Content == ""
}

// Action is a sealed interface for transcript state transitions.
type Action interface {
	action()
}

// ActionSubmit records a user question and opens an empty assistant message.
type ActionSubmit struct {
	Question string
	Time     time.Time
}

// ActionToken appends streamed text to the in-progress assistant message.
type ActionToken struct {
	Token string
}

// ActionFail replaces the in-progress assistant message with an error notice.
type ActionFail struct {
	Err error
}

// ActionComplete closes the in-progress exchange.
type ActionComplete struct{}

func (ActionSubmit) action()   {}
func (ActionToken) action()    {}
func (ActionFail) action()     {}
func (ActionComplete) action() {}

// Interface compliance checks.
var (
	_ Action = ActionSubmit{}
	_ Action = ActionToken{}
	_ Action = ActionFail{}
	_ Action = ActionComplete{}
)

// Reduce returns the transcript that results from applying a to t.
// It never modifies t's backing array, so snapshots held by callers stay
// valid.
//
// Submissions while an exchange is pending are ignored; tokens, failures and
// completions with no exchange pending are ignored as well.
func Reduce(t Transcript, a Action) Transcript {
	switch a := a.(type) {
	case ActionSubmit:
		if t.Pending {
			return t
		}
		msgs := make([]Message, len(t.Messages), len(t.Messages)+2)
		copy(msgs, t.Messages)
		msgs = append(msgs,
			Message{Role: RoleUser, Content: a.Question, Timestamp: a.Time},
			Message{Role: RoleAssistant, Timestamp: a.Time},
		)
		return Transcript{Messages: msgs, Pending: true}

	case ActionToken:
		if !t.Pending || a.Token == "" {
			return t
		}
		return t.withLast(func(m *Message) { m.Content += a.Token })

	case ActionFail:
		if !t.Pending {
			return t
		}
		notice := "**Error:** " + ErrorNotice(a.Err)
		out := t.withLast(func(m *Message) {
			m.Content = notice
			m.Failed = true
		})
		out.Pending = false
		return out

	case ActionComplete:
		if !t.Pending {
			return t
		}
		return Transcript{Messages: t.Messages, Pending: false}
	}
	return t
}

// withLast copies the transcript and applies fn to its last assistant
// message. Transcripts whose last entry is not an assistant message are
// returned unchanged.
func (t Transcript) withLast(fn func(*Message)) Transcript {
	n := len(t.Messages)
	if n == 0 || t.Messages[n-1].Role != RoleAssistant {
		return t
	}
	msgs := make([]Message, n)
	copy(msgs, t.Messages)
	fn(&msgs[n-1])
	return Transcript{Messages: msgs, Pending: t.Pending}
}

// ErrorNotice returns the user-facing text for a failed exchange. Credential
// and status failures get fixed wording; other errors lose the package
// scopes added while wrapping.
func ErrorNotice(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "Unknown error."
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized: Invalid API Key."
	case errors.As(err, &se):
		return fmt.Sprintf("HTTP error! Status: %d", se.StatusCode)
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	}
	return trimScope(err.Error())
}

// trimScope drops leading "pkg: " prefixes, where pkg is a single lowercase
// word.
func trimScope(msg string) string {
	for {
		scope, rest, ok := strings.Cut(msg, ": ")
		if !ok || scope == "" || strings.ContainsFunc(scope, func(r rune) bool {
			return !unicode.IsLower(r) && !unicode.IsDigit(r)
		}) {
			return msg
		}
		msg = rest
	}
}
