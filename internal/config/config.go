package config

import "time"

// Config is the root configuration structure for campaignctl.
type Config struct {
	API       API       `yaml:"api"`
	Retry     Retry     `yaml:"retry"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Auth      Auth      `yaml:"auth"`
	Mock      Mock      `yaml:"mock"`
	Metrics   Metrics   `yaml:"metrics"`
}

// API locates the email-marketing service.
type API struct {
	BaseURL  string            `yaml:"base_url"`
	BasePath string            `yaml:"base_path"`
	Timeout  time.Duration     `yaml:"timeout"`
	Headers  map[string]string `yaml:"headers,omitempty"`
}

// Retry configures the client's retry budget.
type Retry struct {
	Retries  int           `yaml:"retries"`
	Delay    time.Duration `yaml:"delay"`
	MaxDelay time.Duration `yaml:"max_delay"` // 0 disables the cap
}

// RateLimit configures the client-side throttle. RPS 0 disables it.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// MaxRequestsOverride caps the quota the server reports. 0 trusts the server.
	MaxRequestsOverride int `yaml:"max_requests_override"`
}

// Auth configures signed service tokens. An empty secret sends no Authorization header.
type Auth struct {
	Secret    string        `yaml:"secret"`
	Issuer    string        `yaml:"issuer"`
	Audience  string        `yaml:"audience"`
	Subject   string        `yaml:"subject"`
	AccountID string        `yaml:"account_id"`
	TTL       time.Duration `yaml:"ttl"`
}

// Mock configures the in-memory backend used with --mock.
type Mock struct {
	Latency     time.Duration `yaml:"latency"`
	MaxRequests int           `yaml:"max_requests"`
	WindowSecs  int64         `yaml:"window_secs"`
}

// Metrics enables dumping the client's Prometheus metrics after a command.
type Metrics struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: API{
			BaseURL:  "http://localhost:8080",
			BasePath: "/api/v1",
			Timeout:  30 * time.Second,
		},
		Retry: Retry{
			Retries: 3,
			Delay:   time.Second,
		},
		Auth: Auth{
			Issuer:   "campaignctl",
			Audience: "campaign-api",
			Subject:  "campaignctl",
			TTL:      15 * time.Minute,
		},
	}
}
