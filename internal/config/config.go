package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override reconcile.yaml. The API token is only
// ever read from the environment (or a .env file); it never lives in yaml.
const (
	EnvBaseURL  = "MOVINGWISE_API_URL"
	EnvToken    = "MOVINGWISE_API_TOKEN"
	EnvLogLevel = "MOVINGWISE_LOG_LEVEL"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "reconcile.yaml"

// Config represents the top-level reconcile.yaml configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig locates the Movingwise backend.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // 0 = no explicit timeout
}

// Timeout converts the configured timeout to a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// DefaultsConfig holds workflow defaults.
type DefaultsConfig struct {
	PageSize int `yaml:"page_size"`
}

// LogConfig controls logging and the local action log.
type LogConfig struct {
	Level          string `yaml:"level"`
	ActionsDir     string `yaml:"actions_dir"`
	ActionsEnabled bool   `yaml:"actions_enabled"`
}

// Load reads a reconcile.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new setup.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
		},
		Defaults: DefaultsConfig{
			PageSize: 20,
		},
		Log: LogConfig{
			Level:          "info",
			ActionsDir:     "logs",
			ActionsEnabled: true,
		},
	}
}

// LoadWithEnv loads configuration for a command run: a .env file if present,
// then reconcile.yaml at path (Default when the file is absent), then
// environment overrides on top.
func LoadWithEnv(path string) (*Config, error) {
	// Missing .env is fine; it is only one way to supply the token.
	_ = godotenv.Load()

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return cfg, nil
}
