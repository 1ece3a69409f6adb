package backend

import (
	"fmt"
	"os"
)

// New creates a backend by name, wrapped with metrics collection. API keys
// fall back to the conventional environment variables when the config leaves
// them empty.
func New(name string, cfg *Config) (Backend, error) {
	if cfg == nil {
		cfg = DefaultConfig(name)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = apiKeyFromEnv(name)
	}

	var b Backend
	switch name {
	case "gemini":
		b = NewGemini(cfg)
	case "openai":
		b = NewOpenAI(cfg)
	case "ollama":
		b = NewOllama(cfg)
	case "template":
		b = NewTemplate()
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	return WithMetrics(b), nil
}

func apiKeyFromEnv(name string) string {
	envVars := map[string]string{
		"gemini": "GEMINI_API_KEY",
		"openai": "OPENAI_API_KEY",
	}
	if envVar, ok := envVars[name]; ok {
		return os.Getenv(envVar)
	}
	return ""
}
