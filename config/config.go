// Package config loads configuration for the framequery CLI from an
// optional YAML file with FRAMEQUERY_* environment overrides.
//
// Precedence: defaults, then file values, then environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the CLI needs to build a client.
type Config struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
	Timeout      time.Duration
	MaxRetries   int
	LogLevel     string
}

// fileConfig mirrors the YAML layout. Durations are Go duration strings
// ("5s", "30m") since yaml.v3 has no native time.Duration decoding.
type fileConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	PollInterval string `yaml:"poll_interval"`
	Timeout      string `yaml:"timeout"`
	MaxRetries   *int   `yaml:"max_retries"`
	LogLevel     string `yaml:"log_level"`
}

// Default returns the CLI defaults, matching the SDK's own.
func Default() *Config {
	return &Config{
		PollInterval: 5 * time.Second,
		Timeout:      24 * time.Hour,
		MaxRetries:   2,
		LogLevel:     "info",
	}
}

// Load reads the YAML file at path (a missing file is fine; an empty path
// skips the file entirely) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			if err := applyFile(cfg, &fc); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// No config file is a valid setup.
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyFile(cfg *Config, fc *fileConfig) error {
	if fc.APIKey != "" {
		cfg.APIKey = fc.APIKey
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FRAMEQUERY_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("FRAMEQUERY_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("FRAMEQUERY_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv("FRAMEQUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("FRAMEQUERY_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("FRAMEQUERY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
