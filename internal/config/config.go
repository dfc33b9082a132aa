package config

import (
	"fmt"
	"os"
)

// Config holds all client configuration.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Logger  LoggerConfig
}

// APIConfig holds the execution context used to resolve the backend URL.
type APIConfig struct {
	// BaseURL, when set, overrides all endpoint resolution heuristics.
	BaseURL string
	// Hostname is the host the storefront is currently served from.
	// Empty outside a browser-like context.
	Hostname string
	// UserAgent is the client user agent, used for the mobile heuristic.
	UserAgent string
}

// StorageConfig holds the location of the durable client-side store.
type StorageConfig struct {
	Dir string
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL:   getEnv("GRANDSON_API_URL", ""),
			Hostname:  getEnv("GRANDSON_HOSTNAME", ""),
			UserAgent: getEnv("GRANDSON_USER_AGENT", ""),
		},
		Storage: StorageConfig{
			Dir: getEnv("GRANDSON_STATE_DIR", ".grandson"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage directory is required")
	}

	if _, ok := logLevels[c.Logger.Level]; !ok {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	return nil
}

// Environment returns the endpoint-resolution context of this configuration.
func (c *Config) Environment() Environment {
	return Environment{
		BaseURLOverride: c.API.BaseURL,
		Hostname:        c.API.Hostname,
		UserAgent:       c.API.UserAgent,
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
