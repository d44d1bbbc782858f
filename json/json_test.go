package json_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/ragchat"
	ragjson "github.com/fwojciec/ragchat/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() ragchat.Session {
	ts := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	return ragchat.Session{
		ID:        "sess-123",
		CreatedAt: ts,
		UpdatedAt: ts.Add(5 * time.Minute),
		Transcript: ragchat.Transcript{Messages: []ragchat.Message{
			{Role: ragchat.RoleUser, Content: "What is in the repo?", Timestamp: ts},
			{Role: ragchat.RoleAssistant, Content: "A **Go** module.", Timestamp: ts.Add(time.Second)},
			{Role: ragchat.RoleUser, Content: "And tests?", Timestamp: ts.Add(2 * time.Second)},
			{Role: ragchat.RoleAssistant, Content: "**Error:** HTTP error: status 500", Failed: true, Timestamp: ts.Add(3 * time.Second)},
		}},
	}
}

func TestMarshalSession_RoundTrip(t *testing.T) {
	t.Parallel()
	session := sampleSession()

	data, err := ragjson.MarshalSession(session)
	require.NoError(t, err)

	got, err := ragjson.UnmarshalSession(data)
	require.NoError(t, err)

	assert.Equal(t, session.ID, got.ID)
	assert.True(t, session.CreatedAt.Equal(got.CreatedAt), "CreatedAt mismatch")
	assert.True(t, session.UpdatedAt.Equal(got.UpdatedAt), "UpdatedAt mismatch")
	require.Len(t, got.Transcript.Messages, 4)
	for i, want := range session.Transcript.Messages {
		m := got.Transcript.Messages[i]
		assert.Equal(t, want.Role, m.Role, "message %d", i)
		assert.Equal(t, want.Content, m.Content, "message %d", i)
		assert.Equal(t, want.Failed, m.Failed, "message %d", i)
		assert.True(t, want.Timestamp.Equal(m.Timestamp), "message %d timestamp", i)
	}
	assert.False(t, got.Transcript.Pending)
}

func TestMarshalSession_JSONFieldNames(t *testing.T) {
	t.Parallel()
	data, err := ragjson.MarshalSession(sampleSession())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	var version int
	require.NoError(t, json.Unmarshal(raw["version"], &version))
	assert.Equal(t, 1, version)
	assert.Contains(t, raw, "id")
	assert.Contains(t, raw, "created_at")
	assert.Contains(t, raw, "updated_at")
	assert.NotContains(t, raw, "pending")

	var msgs []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["messages"], &msgs))
	require.Len(t, msgs, 4)
	assert.JSONEq(t, `"user"`, string(msgs[0]["type"]))
	assert.Contains(t, msgs[0], "content")
	assert.Contains(t, msgs[0], "timestamp")
	assert.NotContains(t, msgs[0], "failed")
	assert.JSONEq(t, `true`, string(msgs[3]["failed"]))
}

func TestMarshalSession_EmptySession(t *testing.T) {
	t.Parallel()
	data, err := ragjson.MarshalSession(ragchat.Session{ID: "empty"})
	require.NoError(t, err)

	got, err := ragjson.UnmarshalSession(data)
	require.NoError(t, err)
	assert.Equal(t, "empty", got.ID)
	assert.Empty(t, got.Transcript.Messages)
}

func TestMarshalSession_UnknownRole(t *testing.T) {
	t.Parallel()
	s := ragchat.Session{Transcript: ragchat.Transcript{Messages: []ragchat.Message{{Role: "system"}}}}
	_, err := ragjson.MarshalSession(s)
	assert.Error(t, err)
}

func TestUnmarshalSession_PendingIsMarkedInterrupted(t *testing.T) {
	t.Parallel()
	data := []byte(`{
		"version": 1,
		"id": "mid-stream",
		"created_at": "2026-10-14T12:00:00Z",
		"updated_at": "2026-10-14T12:00:00Z",
		"pending": true,
		"messages": [
			{"type": "user", "content": "q", "timestamp": "2026-10-14T12:00:00Z"},
			{"type": "assistant", "content": "half an ans", "timestamp": "2026-10-14T12:00:00Z"}
		]
	}`)
	got, err := ragjson.UnmarshalSession(data)
	require.NoError(t, err)
	assert.False(t, got.Transcript.Pending)
	last := got.Transcript.Messages[1]
	assert.True(t, last.Failed)
	assert.Equal(t, "**Error:** response interrupted", last.Content)
}

func TestUnmarshalSession_UnknownMessageType(t *testing.T) {
	t.Parallel()
	data := []byte(`{
		"version": 1,
		"id": "test",
		"created_at": "2026-02-18T12:00:00Z",
		"updated_at": "2026-02-18T12:00:00Z",
		"messages": [
			{"type": "tool_result", "content": ""}
		]
	}`)
	_, err := ragjson.UnmarshalSession(data)
	assert.Error(t, err)
}

func TestUnmarshalSession_UnsupportedVersion(t *testing.T) {
	t.Parallel()
	data := []byte(`{"version": 99, "id": "test", "messages": []}`)
	_, err := ragjson.UnmarshalSession(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported envelope version")
}

func TestUnmarshalSession_Garbage(t *testing.T) {
	t.Parallel()
	_, err := ragjson.UnmarshalSession([]byte("not json"))
	assert.Error(t, err)
}

func TestSave_And_Load(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session.json")
	session := sampleSession()

	require.NoError(t, ragjson.Save(path, session))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	got, err := ragjson.Load(path)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	require.Len(t, got.Transcript.Messages, 4)
}

func TestLoad_NonexistentFile(t *testing.T) {
	t.Parallel()
	_, err := ragjson.Load("/nonexistent/path/session.json")
	assert.Error(t, err)
}

func TestSave_CreatesParentDirectories(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "deep", "session.json")

	require.NoError(t, ragjson.Save(path, ragchat.Session{ID: "nested-save"}))

	got, err := ragjson.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nested-save", got.ID)
}
