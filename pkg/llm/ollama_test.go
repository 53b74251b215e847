package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careergini/orchestrator/pkg/observability"
)

// completionFixture is the minimal OpenAI-compatible reply Ollama sends.
func completionFixture(content string) map[string]any {
	return map[string]any{
		"id":    "chatcmpl-test",
		"model": "phi3:mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 5,
			"total_tokens":      17,
		},
	}
}

func newCompletionServer(t *testing.T, content string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionFixture(content))
	}))
}

// TestOllama_Complete tests the round trip against a fake backend.
func TestOllama_Complete(t *testing.T) {
	var captured map[string]any
	srv := newCompletionServer(t, "generated answer", &captured)
	defer srv.Close()

	client := NewOllama(WithBaseURL(srv.URL))

	resp, err := client.Complete(context.Background(), Request{
		SystemPrompt: "you are a coach",
		Profile:      ProfileFast,
		Messages:     []Message{{Role: RoleUser, Content: "advise me"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "generated answer", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 17, resp.Usage.TotalTokens)

	// System prompt precedes the conversation.
	msgs := captured["messages"].([]any)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
}

// TestOllama_ProfileSampling tests each task profile sends its sampling
// settings.
func TestOllama_ProfileSampling(t *testing.T) {
	tests := []struct {
		profile     TaskProfile
		temperature float64
		topP        float64
	}{
		{ProfileReasoning, 0.7, 0.9},
		{ProfileFast, 0.3, 0.95},
		{ProfileCoding, 0.2, 0.9},
	}

	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			var captured map[string]any
			srv := newCompletionServer(t, "ok", &captured)
			defer srv.Close()

			client := NewOllama(WithBaseURL(srv.URL))
			_, err := client.Complete(context.Background(), Request{
				Profile:  tt.profile,
				Messages: []Message{{Role: RoleUser, Content: "hi"}},
			})

			require.NoError(t, err)
			assert.InDelta(t, tt.temperature, captured["temperature"].(float64), 0.001)
			assert.InDelta(t, tt.topP, captured["top_p"].(float64), 0.001)
		})
	}
}

// TestOllama_ProfileModels tests per-profile model overrides.
func TestOllama_ProfileModels(t *testing.T) {
	var captured map[string]any
	srv := newCompletionServer(t, "ok", &captured)
	defer srv.Close()

	client := NewOllama(
		WithBaseURL(srv.URL),
		WithModel("llama3"),
		WithProfileModel(ProfileCoding, "codellama"),
	)

	_, err := client.Complete(context.Background(), Request{
		Profile:  ProfileCoding,
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "codellama", captured["model"])
}

// TestOllama_EmptyChoices tests a contentless completion errors.
func TestOllama_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "model": "m", "choices": []}`))
	}))
	defer srv.Close()

	client := NewOllama(WithBaseURL(srv.URL))
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

// TestOllama_RetryConfig tests a transient backend failure is retried
// under the configured policy.
func TestOllama_RetryConfig(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionFixture("recovered"))
	}))
	defer srv.Close()

	client := NewOllama(
		WithBaseURL(srv.URL),
		WithRetryConfig(RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond}),
	)

	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, 2, calls)
}

// TestOllama_NoRetryByDefault tests the default policy makes exactly one
// attempt.
func TestOllama_NoRetryByDefault(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewOllama(WithBaseURL(srv.URL))
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

// captureRecorder records the last completion metric it saw.
type captureRecorder struct {
	observability.NoopMetrics
	calls   int
	profile string
	err     error
}

func (c *captureRecorder) RecordCompletion(_ context.Context, profile string, _ time.Duration, err error) {
	c.calls++
	c.profile = profile
	c.err = err
}

// TestOllama_CompletionMetrics tests each call records its task profile
// and outcome.
func TestOllama_CompletionMetrics(t *testing.T) {
	t.Run("success tagged with profile", func(t *testing.T) {
		srv := newCompletionServer(t, "ok", nil)
		defer srv.Close()

		rec := &captureRecorder{}
		client := NewOllama(WithBaseURL(srv.URL), WithMetrics(rec))

		_, err := client.Complete(context.Background(), Request{
			Profile:  ProfileCoding,
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, rec.calls)
		assert.Equal(t, "coding", rec.profile)
		assert.NoError(t, rec.err)
	})

	t.Run("empty profile records the fast tier", func(t *testing.T) {
		srv := newCompletionServer(t, "ok", nil)
		defer srv.Close()

		rec := &captureRecorder{}
		client := NewOllama(WithBaseURL(srv.URL), WithMetrics(rec))

		_, err := client.Complete(context.Background(), Request{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})

		require.NoError(t, err)
		assert.Equal(t, "fast", rec.profile)
	})

	t.Run("failure recorded with error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": "x", "model": "m", "choices": []}`))
		}))
		defer srv.Close()

		rec := &captureRecorder{}
		client := NewOllama(WithBaseURL(srv.URL), WithMetrics(rec))

		_, err := client.Complete(context.Background(), Request{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})

		require.Error(t, err)
		assert.Equal(t, 1, rec.calls)
		assert.Error(t, rec.err)
	})
}

// TestIsRetryableTransport tests error classification.
func TestIsRetryableTransport(t *testing.T) {
	assert.True(t, isRetryableTransport(errTest("dial tcp 127.0.0.1:11434: connection refused")))
	assert.True(t, isRetryableTransport(errTest("unexpected EOF")))
	assert.False(t, isRetryableTransport(errTest("invalid request")))
}

type errTest string

func (e errTest) Error() string { return string(e) }
