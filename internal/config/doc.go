// Package config manages Solace application configuration.
//
// Configuration is stored in ~/.solace/config.yaml and can be overridden
// with SOLACE_-prefixed environment variables (dots replaced by
// underscores, e.g. SOLACE_SERVER_PORT).
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal().Err(err).Msg("failed to load config")
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal().Err(err).Msg("invalid config")
//	}
//
// Load creates the config file with defaults on first run. The section
// structs map onto the tuning types of the engine packages, so a loaded
// Config can be passed straight into orchestrator.New and backend.New.
package config
