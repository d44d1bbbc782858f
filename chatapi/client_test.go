package chatapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/ragchat"
	"github.com/fwojciec/ragchat/chatapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RequestFormat(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret-key", r.Header.Get("x-api-key"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data:{\"token\":\"ok\"}\n\n"))
	}))
	defer srv.Close()

	client := chatapi.New(chatapi.WithEndpoint(srv.URL + "/api/chat"))
	s, err := client.Ask(context.Background(), ragchat.Request{Question: "What is RAG?", APIKey: "secret-key"})
	require.NoError(t, err)
	defer s.Close()

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured, &body))
	assert.Equal(t, map[string]any{"question": "What is RAG?"}, body)
}

func TestClient_DefaultEndpoint(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "http://localhost:5678/api/chat", chatapi.New().Endpoint())
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	t.Run("401 is a credential error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := chatapi.New(chatapi.WithEndpoint(srv.URL))
		_, err := client.Ask(context.Background(), ragchat.Request{Question: "q", APIKey: "bad"})
		require.ErrorIs(t, err, ragchat.ErrUnauthorized)
		assert.NotErrorIs(t, err, ragchat.ErrTransport)
	})

	t.Run("other non-2xx is a status error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := chatapi.New(chatapi.WithEndpoint(srv.URL))
		_, err := client.Ask(context.Background(), ragchat.Request{Question: "q", APIKey: "k"})
		var se *ragchat.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadGateway, se.StatusCode)
		assert.ErrorIs(t, err, ragchat.ErrTransport)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("network failure is a transport error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		client := chatapi.New(chatapi.WithEndpoint(url))
		_, err := client.Ask(context.Background(), ragchat.Request{Question: "q", APIKey: "k"})
		assert.ErrorIs(t, err, ragchat.ErrTransport)
	})

	t.Run("blank question is rejected before any request", func(t *testing.T) {
		t.Parallel()
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		client := chatapi.New(chatapi.WithEndpoint(srv.URL))
		_, err := client.Ask(context.Background(), ragchat.Request{Question: "   ", APIKey: "k"})
		assert.ErrorIs(t, err, ragchat.ErrValidation)
		assert.False(t, called)
	})

	t.Run("blank key is rejected", func(t *testing.T) {
		t.Parallel()
		client := chatapi.New(chatapi.WithEndpoint("http://127.0.0.1:0"))
		_, err := client.Ask(context.Background(), ragchat.Request{Question: "q"})
		assert.ErrorIs(t, err, ragchat.ErrValidation)
	})
}
