package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadEnv loads variables from the given .env files into the process environment. Missing
// files are ignored; existing variables are never overwritten.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads and parses a YAML configuration file. ${VAR} references are expanded from the
// environment before parsing. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL")
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 30 * time.Second
	}

	if cfg.Retry.Retries < 0 {
		return fmt.Errorf("retry.retries must not be negative")
	}
	if cfg.Retry.Delay < 0 || cfg.Retry.MaxDelay < 0 {
		return fmt.Errorf("retry.delay and retry.max_delay must not be negative")
	}
	if cfg.Retry.MaxDelay > 0 && cfg.Retry.MaxDelay < cfg.Retry.Delay {
		return fmt.Errorf("retry.max_delay must be >= retry.delay")
	}

	if cfg.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must not be negative")
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 1
	}
	if cfg.RateLimit.MaxRequestsOverride < 0 {
		return fmt.Errorf("rate_limit.max_requests_override must not be negative")
	}

	if cfg.Auth.Secret != "" && cfg.Auth.Subject == "" {
		return fmt.Errorf("auth.subject is required when auth.secret is set")
	}

	if cfg.Mock.MaxRequests < 0 || cfg.Mock.WindowSecs < 0 {
		return fmt.Errorf("mock.max_requests and mock.window_secs must not be negative")
	}
	return nil
}
