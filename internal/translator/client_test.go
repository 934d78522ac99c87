// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func answer(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
}

func TestTranslate_SendsPromptAndReturnsText(t *testing.T) {
	var got chatRequest
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		answer(w, "```sql\nSELECT name FROM users\n```")
	})

	c := New(Config{Endpoint: srv.URL, Model: "test-model", APIKey: "gsk_test", Temperature: 0.2})
	text, err := c.Translate(context.Background(), "list user names", "users(id INTEGER, name TEXT)", "postgresql")
	require.NoError(t, err)
	assert.Equal(t, "```sql\nSELECT name FROM users\n```", text)

	assert.Equal(t, "test-model", got.Model)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	user := got.Messages[1].Content
	assert.Contains(t, user, "users(id INTEGER, name TEXT)")
	assert.Contains(t, user, "postgresql")
	assert.Contains(t, user, "list user names")
	assert.Contains(t, user, "Return only the SQL query.")
}

func TestTranslate_Errors(t *testing.T) {
	t.Run("no key", func(t *testing.T) {
		_, err := New(Config{Endpoint: "http://127.0.0.1:1"}).Translate(context.Background(), "q", "", "")
		assert.ErrorIs(t, err, ErrNoAPIKey)
	})

	t.Run("empty answer", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) { answer(w, "  ") })
		_, err := New(Config{Endpoint: srv.URL, APIKey: "k"}).Translate(context.Background(), "q", "", "")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"choices":[]}`)) })
		_, err := New(Config{Endpoint: srv.URL, APIKey: "k"}).Translate(context.Background(), "q", "", "")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("status", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
		})
		_, err := New(Config{Endpoint: srv.URL, APIKey: "k"}).Translate(context.Background(), "q", "", "")
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusUnauthorized, se.Code)
		assert.Contains(t, err.Error(), "invalid api key")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		_, err := New(Config{Endpoint: url, APIKey: "k"}).Translate(context.Background(), "q", "", "")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})
		_, err := New(Config{Endpoint: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond}).
			Translate(context.Background(), "q", "", "")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestPrompt(t *testing.T) {
	p := Prompt("  how many orders?  ", "", "")
	assert.Contains(t, p, "Question: how many orders?\n")
	assert.NotContains(t, p, "Database schema")
	assert.NotContains(t, p, "Write SQL for")
}
