package backend

import (
	"net/http"
	"time"
)

// Config holds the settings for one generative backend.
type Config struct {
	// Name identifies the backend (gemini, openai, ollama, template).
	Name string `mapstructure:"name" yaml:"name"`

	// Endpoint is the API base URL.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// APIKey for authentication. Local backends leave this empty.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Model is the model identifier to request.
	Model string `mapstructure:"model" yaml:"model"`

	// MaxTokens bounds the generated response length.
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`

	// Temperature controls randomness (0.0-1.0).
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`

	// Timeout for a single attempt.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DefaultConfig returns sensible defaults for a named backend.
func DefaultConfig(name string) *Config {
	switch name {
	case "gemini":
		return &Config{
			Name:        "gemini",
			Endpoint:    "https://generativelanguage.googleapis.com/v1beta",
			Model:       "gemini-1.5-flash",
			MaxTokens:   512,
			Temperature: 0.7,
			Timeout:     10 * time.Second,
		}
	case "openai":
		return &Config{
			Name:        "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   512,
			Temperature: 0.7,
			Timeout:     10 * time.Second,
		}
	case "ollama":
		return &Config{
			Name:        "ollama",
			Endpoint:    "http://127.0.0.1:11434",
			Model:       "llama3",
			MaxTokens:   512,
			Temperature: 0.7,
			Timeout:     10 * time.Second,
		}
	default:
		return &Config{
			Name:        name,
			MaxTokens:   512,
			Temperature: 0.7,
			Timeout:     10 * time.Second,
		}
	}
}

// baseBackend provides the shared pieces of the HTTP-based adapters.
type baseBackend struct {
	config *Config
	client *http.Client
}

func newBaseBackend(cfg *Config, name string) baseBackend {
	if cfg == nil {
		cfg = DefaultConfig(name)
	}
	defaults := DefaultConfig(name)
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaults.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	cfg.Name = name

	return baseBackend{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (b *baseBackend) Name() string {
	return b.config.Name
}

func (b *baseBackend) Available() bool {
	return b.config.APIKey != ""
}
