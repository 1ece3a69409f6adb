package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAI generates responses through the OpenAI Responses API.
type OpenAI struct {
	config *Config
	client *openai.Client
}

// NewOpenAI creates an OpenAI backend.
func NewOpenAI(cfg *Config) *OpenAI {
	if cfg == nil {
		cfg = DefaultConfig("openai")
	}
	defaults := DefaultConfig("openai")
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	cfg.Name = "openai"

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	client := openai.NewClient(opts...)

	return &OpenAI{config: cfg, client: &client}
}

func (o *OpenAI) Name() string    { return o.config.Name }
func (o *OpenAI) Available() bool { return o.config.APIKey != "" }

// Attempt sends the classified request to OpenAI.
func (o *OpenAI) Attempt(ctx context.Context, req *Request) (*Candidate, error) {
	if o.config.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key not configured", ErrUnavailable)
	}

	start := time.Now()

	params := responses.ResponseNewParams{
		Model:           o.config.Model,
		MaxOutputTokens: openai.Int(int64(o.config.MaxTokens)),
		Instructions:    openai.String(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(buildUserPrompt(req), responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return nil, wrapTransportErr(err)
	}

	msg := strings.TrimSpace(resp.OutputText())
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
