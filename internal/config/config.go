package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/havenlabs/solace/internal/backend"
	"github.com/havenlabs/solace/internal/emotion"
	"github.com/havenlabs/solace/internal/health"
	"github.com/havenlabs/solace/internal/orchestrator"
	"github.com/havenlabs/solace/internal/sentiment"
)

// Config holds all application configuration for the Solace engine.
// It is loaded from ~/.solace/config.yaml and can be overridden by
// environment variables.
type Config struct {
	Emotion      emotion.Config      `mapstructure:"emotion" yaml:"emotion"`
	Sentiment    sentiment.Config    `mapstructure:"sentiment" yaml:"sentiment"`
	Breaker      health.Config       `mapstructure:"breaker" yaml:"breaker"`
	Orchestrator orchestrator.Config `mapstructure:"orchestrator" yaml:"orchestrator"`
	Backends     BackendsConfig      `mapstructure:"backends" yaml:"backends"`
	Server       ServerConfig        `mapstructure:"server" yaml:"server"`
	Logging      LoggingConfig       `mapstructure:"logging" yaml:"logging"`
}

// BackendsConfig selects and tunes the response backends.
type BackendsConfig struct {
	// Order is the failover order of the generative backends. The template
	// backend always runs last and is not listed here.
	Order []string `mapstructure:"order" yaml:"order"`
	// Settings maps backend names to their tuning.
	Settings map[string]*backend.Config `mapstructure:"settings" yaml:"settings"`
}

// ServerConfig tunes the HTTP server.
type ServerConfig struct {
	// Port the server listens on.
	Port int `mapstructure:"port" yaml:"port"`
	// ShutdownTimeout bounds graceful shutdown on SIGTERM.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LoggingConfig tunes structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`
	// File is an optional log file path; empty logs to stderr only.
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns the stock configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	solaceDir := filepath.Join(homeDir, ".solace")

	return &Config{
		Emotion:      emotion.DefaultConfig(),
		Sentiment:    sentiment.DefaultConfig(),
		Breaker:      health.DefaultConfig(),
		Orchestrator: orchestrator.DefaultConfig(),
		Backends: BackendsConfig{
			Order: []string{"gemini", "openai", "ollama"},
			Settings: map[string]*backend.Config{
				"gemini": backend.DefaultConfig("gemini"),
				"openai": backend.DefaultConfig("openai"),
				"ollama": backend.DefaultConfig("ollama"),
			},
		},
		Server: ServerConfig{
			Port:            8470,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(solaceDir, "logs", "solace.log"),
		},
	}
}

// Load reads configuration from the default location (~/.solace/config.yaml)
// and merges with environment variables. If no config file exists, it
// creates one with default values.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return LoadFromPath(filepath.Join(homeDir, ".solace", "config.yaml"))
}

// LoadFromPath reads configuration from a specific file path and merges
// with environment variables. A missing file is created with defaults.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfigFile(path, Default()); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Example: SOLACE_BACKENDS_SETTINGS_GEMINI_API_KEY
	v.SetEnvPrefix("SOLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Logging.File = expandPath(cfg.Logging.File)
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills in missing values with the stock configuration.
func (c *Config) applyDefaults() {
	defaults := Default()

	if len(c.Backends.Order) == 0 {
		c.Backends.Order = defaults.Backends.Order
	}
	if c.Backends.Settings == nil {
		c.Backends.Settings = defaults.Backends.Settings
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Orchestrator.Strategy == "" {
		c.Orchestrator.Strategy = defaults.Orchestrator.Strategy
	}
	if c.Orchestrator.AttemptTimeout == 0 {
		c.Orchestrator.AttemptTimeout = defaults.Orchestrator.AttemptTimeout
	}
	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = defaults.Breaker.FailureThreshold
	}
	if c.Breaker.OpenFor == 0 {
		c.Breaker.OpenFor = defaults.Breaker.OpenFor
	}
}

// Save writes the current configuration to the default config file location.
func (c *Config) Save() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return c.SaveToPath(filepath.Join(homeDir, ".solace", "config.yaml"))
}

// SaveToPath writes the current configuration to a specific file path.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return writeConfigFile(path, c)
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	if _, err := orchestrator.ResolveStrategy(string(c.Orchestrator.Strategy)); err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}

	known := map[string]bool{"gemini": true, "openai": true, "ollama": true}
	for _, name := range c.Backends.Order {
		if !known[name] {
			return fmt.Errorf("backends.order contains unknown backend %q", name)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	return nil
}

func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// expandPath expands a leading tilde to the user's home directory.
func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
