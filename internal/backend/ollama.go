package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ollama generates responses through a local Ollama server. Unlike the cloud
// backends it needs no API key; availability means an endpoint is set.
type Ollama struct {
	baseBackend
}

// NewOllama creates an Ollama backend.
func NewOllama(cfg *Config) *Ollama {
	return &Ollama{baseBackend: newBaseBackend(cfg, "ollama")}
}

// Available reports whether an endpoint is configured.
func (o *Ollama) Available() bool {
	return o.config.Endpoint != ""
}

// Attempt sends the classified request to Ollama.
func (o *Ollama) Attempt(ctx context.Context, req *Request) (*Candidate, error) {
	if o.config.Endpoint == "" {
		return nil, fmt.Errorf("%w: ollama endpoint not configured", ErrUnavailable)
	}

	start := time.Now()

	body := ollamaChatRequest{
		Model:  o.config.Model,
		Stream: false,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(req)},
		},
	}
	body.Options.Temperature = o.config.Temperature
	body.Options.NumPredict = o.config.MaxTokens

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.config.Endpoint+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: ollama status %d: %s", ErrTransport, resp.StatusCode, string(errBody))
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	msg := strings.TrimSpace(out.Message.Content)
	if msg == "" {
		return nil, ErrEmptyResponse
	}

	return &Candidate{
		Message: msg,
		Type:    TypeAISupportive,
		Source:  o.Name(),
		Model:   o.config.Model,
		Latency: time.Since(start),
	}, nil
}

// Ollama API types.
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature,omitempty"`
		NumPredict  int     `json:"num_predict,omitempty"`
	} `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}
