package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("CAMPAIGN_API_SECRET", "from-env")
	path := writeFile(t, "campaignctl.yaml", `
api:
  base_url: https://mail.example.com
  timeout: 5s
  headers:
    X-Tenant: acme
retry:
  retries: 5
  delay: 200ms
  max_delay: 2s
rate_limit:
  rps: 10
auth:
  secret: ${CAMPAIGN_API_SECRET}
  account_id: acc_42
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://mail.example.com", cfg.API.BaseURL)
	require.Equal(t, "/api/v1", cfg.API.BasePath)
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.Equal(t, "acme", cfg.API.Headers["X-Tenant"])
	require.Equal(t, 5, cfg.Retry.Retries)
	require.Equal(t, 200*time.Millisecond, cfg.Retry.Delay)
	require.Equal(t, 2*time.Second, cfg.Retry.MaxDelay)
	require.Equal(t, 1, cfg.RateLimit.Burst)
	require.Equal(t, "from-env", cfg.Auth.Secret)
	require.Equal(t, "campaignctl", cfg.Auth.Subject)
	require.Equal(t, "acc_42", cfg.Auth.AccountID)
}

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFillsZeroTimeout(t *testing.T) {
	cfg, err := Load(writeFile(t, "c.yaml", "api:\n  timeout: 0s\nrate_limit:\n  max_requests_override: 40\n"))
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.Equal(t, 40, cfg.RateLimit.MaxRequestsOverride)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"relative url":   "api:\n  base_url: /nope\n",
		"negative retry": "retry:\n  retries: -1\n",
		"cap below base": "retry:\n  delay: 2s\n  max_delay: 1s\n",
		"negative rps":   "rate_limit:\n  rps: -3\n",
		"negative cap":   "rate_limit:\n  max_requests_override: -1\n",
		"no subject":     "auth:\n  secret: x\n  subject: \"\"\n",
		"bad yaml":       "api: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", content))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read config file")
}

func TestLoadEnv(t *testing.T) {
	path := writeFile(t, ".env", "CAMPAIGNCTL_TEST_VAR=loaded\n")
	t.Setenv("CAMPAIGNCTL_TEST_VAR", "")
	require.NoError(t, os.Unsetenv("CAMPAIGNCTL_TEST_VAR"))

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "absent.env")))
	require.Equal(t, "loaded", os.Getenv("CAMPAIGNCTL_TEST_VAR"))
}
