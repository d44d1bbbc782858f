// Package json persists ragchat state as JSON files: conversation sessions
// in a versioned envelope and the flat key-value file that holds the API
// key.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/ragchat"
)

// envelope is the v1 wire format for a persisted session.
type envelope struct {
	Version   int          `json:"version"`
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Pending   bool         `json:"pending,omitempty"`
	Messages  []messageDTO `json:"messages"`
}

// messageDTO is the JSON representation of a Message. Type carries the role.
type messageDTO struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Failed    bool      `json:"failed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalSession serializes a Session to JSON in v1 envelope format.
func MarshalSession(s ragchat.Session) ([]byte, error) {
	env := envelope{
		Version:   1,
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Pending:   s.Transcript.Pending,
		Messages:  make([]messageDTO, len(s.Transcript.Messages)),
	}
	for i, msg := range s.Transcript.Messages {
		switch msg.Role {
		case ragchat.RoleUser, ragchat.RoleAssistant:
		default:
			return nil, fmt.Errorf("message %d: unknown role: %q", i, msg.Role)
		}
		env.Messages[i] = messageDTO{
			Type:      string(msg.Role),
			Content:   msg.Content,
			Failed:    msg.Failed,
			Timestamp: msg.Timestamp,
		}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSession deserializes a Session from JSON in v1 envelope format.
// A session saved mid-exchange is restored with its last assistant message
// marked failed, since the stream that fed it is gone.
func UnmarshalSession(data []byte) (ragchat.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ragchat.Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return ragchat.Session{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]ragchat.Message, len(env.Messages))
	for i, dto := range env.Messages {
		role := ragchat.Role(dto.Type)
		switch role {
		case ragchat.RoleUser, ragchat.RoleAssistant:
		default:
			return ragchat.Session{}, fmt.Errorf("message %d: unknown message type: %q", i, dto.Type)
		}
		msgs[i] = ragchat.Message{
			Role:      role,
			Content:   dto.Content,
			Failed:    dto.Failed,
			Timestamp: dto.Timestamp,
		}
	}
	tr := ragchat.Transcript{Messages: msgs, Pending: env.Pending}
	if tr.Pending {
		tr = ragchat.Reduce(tr, ragchat.ActionFail{Err: errInterrupted})
	}
	return ragchat.Session{
		ID:         env.ID,
		Transcript: tr,
		CreatedAt:  env.CreatedAt,
		UpdatedAt:  env.UpdatedAt,
	}, nil
}

var errInterrupted = errors.New("response interrupted")

// Save writes a Session to a JSON file, creating parent directories as needed.
func Save(path string, s ragchat.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeAtomic(path, data)
}

// Load reads a Session from a JSON file.
func Load(path string) (ragchat.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ragchat.Session{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSession(data)
}

// writeAtomic writes data to a sibling temp file and renames it over path.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
