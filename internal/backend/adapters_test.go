package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenlabs/solace/internal/emotion"
	"github.com/havenlabs/solace/internal/lexicon"
	"github.com/havenlabs/solace/internal/sentiment"
	"github.com/havenlabs/solace/internal/text"
)

func adapterRequest() *Request {
	input := "i feel anxious about tomorrow"
	return &Request{
		Text:       input,
		Normalized: text.Normalize(input),
		Emotion:    &emotion.Result{Primary: lexicon.Anxious, Confidence: 0.7},
		Sentiment:  sentiment.Score{Compound: -0.4, Intensity: sentiment.IntensityMedium},
	}
}

func TestGeminiAttempt(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		var req geminiGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.SystemInstruction)
		require.NotEmpty(t, req.Contents)

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": "That sounds hard. I'm here with you."}},
					"role":  "model",
				},
				"finishReason": "STOP",
			}},
		})
	}))
	defer srv.Close()

	g := NewGemini(&Config{Endpoint: srv.URL, APIKey: "test-key", Model: "gemini-1.5-flash"})
	cand, err := g.Attempt(context.Background(), adapterRequest())
	require.NoError(t, err)

	assert.Equal(t, "/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "That sounds hard. I'm here with you.", cand.Message)
	assert.Equal(t, TypeAISupportive, cand.Type)
	assert.Equal(t, "gemini", cand.Source)
}

func TestGeminiRequiresAPIKey(t *testing.T) {
	g := NewGemini(&Config{Endpoint: "http://127.0.0.1:1"})
	assert.False(t, g.Available())

	_, err := g.Attempt(context.Background(), adapterRequest())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGeminiErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGemini(&Config{Endpoint: srv.URL, APIKey: "k"})
	_, err := g.Attempt(context.Background(), adapterRequest())
	require.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	g := NewGemini(&Config{Endpoint: srv.URL, APIKey: "k"})
	_, err := g.Attempt(context.Background(), adapterRequest())
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	g := NewGemini(&Config{Endpoint: srv.URL, APIKey: "k"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.Attempt(ctx, adapterRequest())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestOllamaAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   req.Model,
			Message: ollamaMessage{Role: "assistant", Content: "I hear you. That's a lot to sit with."},
			Done:    true,
		})
	}))
	defer srv.Close()

	o := NewOllama(&Config{Endpoint: srv.URL, Model: "llama3"})
	require.True(t, o.Available())

	cand, err := o.Attempt(context.Background(), adapterRequest())
	require.NoError(t, err)
	assert.Equal(t, "I hear you. That's a lot to sit with.", cand.Message)
	assert.Equal(t, "ollama", cand.Source)
	assert.Equal(t, "llama3", cand.Model)
}

func TestOllamaEmptyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaChatResponse{Done: true})
	}))
	defer srv.Close()

	o := NewOllama(&Config{Endpoint: srv.URL})
	_, err := o.Attempt(context.Background(), adapterRequest())
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestFactory(t *testing.T) {
	b, err := New("template", nil)
	require.NoError(t, err)
	assert.Equal(t, "template", b.Name())
	assert.True(t, b.Available())

	b, err = New("gemini", &Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", b.Name())

	_, err = New("carrier-pigeon", nil)
	assert.Error(t, err)
}

func TestMetricsWrapper(t *testing.T) {
	tpl := WithMetrics(NewTemplate())

	for i := 0; i < 3; i++ {
		_, err := tpl.Attempt(context.Background(), adapterRequest())
		require.NoError(t, err)
	}

	stats := tpl.Stats()
	assert.EqualValues(t, 3, stats.Calls)
	assert.EqualValues(t, 0, stats.Errors)
	assert.Zero(t, stats.ErrorRate)

	all := AllStats()
	assert.Contains(t, all, "template")
}
