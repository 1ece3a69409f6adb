package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBodySize limits how much of an error response body is read.
const maxErrorBodySize = 1 * 1024 * 1024

// Gemini generates responses through the Google Gemini API.
type Gemini struct {
	baseBackend
}

// NewGemini creates a Gemini backend.
func NewGemini(cfg *Config) *Gemini {
	return &Gemini{baseBackend: newBaseBackend(cfg, "gemini")}
}

// Attempt sends the classified request to Gemini.
func (g *Gemini) Attempt(ctx context.Context, req *Request) (*Candidate, error) {
	if g.config.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key not configured", ErrUnavailable)
	}

	start := time.Now()

	body := geminiGenerateRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildUserPrompt(req)}},
		}},
	}
	body.GenerationConfig.MaxOutputTokens = g.config.MaxTokens
	body.GenerationConfig.Temperature = g.config.Temperature

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.config.Endpoint, g.config.Model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Key goes in the header, not the URL, to keep it out of logs.
	httpReq.Header.Set("x-goog-api-key", g.config.APIKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, wrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: gemini status %d: %s", ErrTransport, resp.StatusCode, string(errBody))
	}

	var out geminiGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	var content strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		content.WriteString(part.Text)
	}
	msg := strings.TrimSpace(content.String())
	if msg == "" {
		return nil, ErrEmptyResponse
	}

	return &Candidate{
		Message: msg,
		Type:    TypeAISupportive,
		Source:  g.Name(),
		Model:   g.config.Model,
		Latency: time.Since(start),
	}, nil
}

func wrapTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// Gemini API types.
type geminiGenerateRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
		Temperature     float64 `json:"temperature,omitempty"`
	} `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}
