package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/recruiter/internal/ai"
)

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   FireworksModel,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func TestCompleterSendsPromptsOnce(t *testing.T) {
	var (
		calls   atomic.Int32
		payload map[string]any
		auth    string
		path    string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(` {"selected": false, "feedback": "no"} `)))
	}))
	defer srv.Close()

	c, err := NewFireworks(Options{APIKey: "fw-key", BaseURL: srv.URL + "/inference/v1/", Timeout: time.Second}, nil)
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "You are a recruiter", "Analyze this resume")
	require.NoError(t, err)

	assert.Equal(t, `{"selected": false, "feedback": "no"}`, out)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Bearer fw-key", auth)
	assert.Equal(t, "/inference/v1/chat/completions", path)
	assert.Equal(t, FireworksModel, payload["model"])
	assert.EqualValues(t, 40, payload["top_k"])
	assert.EqualValues(t, 2048, payload["max_tokens"])
	assert.InDelta(t, 0.6, payload["temperature"], 0.0001)

	messages, ok := payload["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestCompleterDoesNotRetryServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom"}}`))
	}))
	defer srv.Close()

	c, err := New(Options{APIKey: "key", BaseURL: srv.URL + "/v1/", Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleterEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("   ")))
	}))
	defer srv.Close()

	c, err := New(Options{APIKey: "key", BaseURL: srv.URL + "/v1/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, OpenAIModel, c.Model())

	_, err = c.Complete(context.Background(), "sys", "user")
	assert.True(t, errors.Is(err, ai.ErrEmptyResponse))
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Options{}, nil)
	assert.Error(t, err)
}
