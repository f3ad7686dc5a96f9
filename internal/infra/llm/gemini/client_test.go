package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/nutrition-advisor/internal/infra/llm"
)

func TestGenerateSuccess(t *testing.T) {
	var body map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp-1",
			"object": "chat.completion",
			"created": 1720000000,
			"model": "gemini-2.0-flash",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  Eat more leafy greens.  "}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
		}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", srv.URL, time.Second)
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), llm.Request{
		Model:       "gemini-2.0-flash",
		Prompt:      "Analyze the following data",
		Temperature: 0.4,
	})
	require.NoError(t, err)
	require.Equal(t, "Eat more leafy greens.", resp.Text)
	require.Equal(t, 120, resp.Usage.PromptTokens)
	require.Equal(t, 150, resp.Usage.TotalTokens)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "gemini-2.0-flash", body["model"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	user := messages[0].(map[string]any)
	require.Equal(t, "user", user["role"])
	require.Equal(t, "Analyze the following data", user["content"])
}

func TestGenerateQuotaErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", srv.URL+"/", time.Second)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), llm.Request{Model: "gemini-2.0-flash", Prompt: "hi"})
	require.Error(t, err)
	require.ErrorIs(t, err, llm.ErrQuotaExceeded)
	require.EqualValues(t, 1, calls.Load())
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "resp-2", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-key", srv.URL, time.Second)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), llm.Request{Model: "m", Prompt: "hi"})
	require.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(" ", "", 0)
	require.Error(t, err)
}
