package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, []string{
		"https://www.paypal.com",
		"https://www.google.com",
		"https://www.microsoft.com",
	}, cfg.LegitimateDomains)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "phishguard/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, int64(5<<20), cfg.Fetch.MaxBodyBytes)
	assert.Equal(t, "heuristic", cfg.Analysis.DomainReducer)
	assert.Zero(t, cfg.Analysis.Workers)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "phishguard", cfg.Logger.ServiceName)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	yamlConfig := []byte(`
legitimate_domains:
  - https://www.commbank.com.au
  - "  "
  - ebay.de
fetch:
  timeout: 3s
analysis:
  domain_reducer: publicsuffix
  workers: 4
logger:
  format: json
`)
	require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://www.commbank.com.au", "ebay.de"}, cfg.LegitimateDomains)
	assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "phishguard/1.0", cfg.Fetch.UserAgent, "unset keys keep their default")
	assert.Equal(t, "publicsuffix", cfg.Analysis.DomainReducer)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PHISHGUARD_FETCH_TIMEOUT", "250ms")
	t.Setenv("PHISHGUARD_DATABASE_URL", "postgres://localhost/phishguard")
	t.Setenv("PHISHGUARD_LEGITIMATE_DOMAINS", "paypal.com,google.com")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.Timeout)
	assert.Equal(t, "postgres://localhost/phishguard", cfg.Database.URL)
	assert.Equal(t, []string{"paypal.com", "google.com"}, cfg.LegitimateDomains)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "No legitimate domains",
			mutate:  func(c *Config) { c.LegitimateDomains = []string{" "} },
			wantErr: "legitimate_domains must contain at least one domain",
		},
		{
			name:    "Zero timeout",
			mutate:  func(c *Config) { c.Fetch.Timeout = 0 },
			wantErr: "fetch.timeout must be positive",
		},
		{
			name:    "Zero body cap",
			mutate:  func(c *Config) { c.Fetch.MaxBodyBytes = 0 },
			wantErr: "fetch.max_body_bytes must be positive",
		},
		{
			name:    "Unknown reducer",
			mutate:  func(c *Config) { c.Analysis.DomainReducer = "tldextract" },
			wantErr: "analysis.domain_reducer",
		},
		{
			name:    "Negative workers",
			mutate:  func(c *Config) { c.Analysis.Workers = -1 },
			wantErr: "analysis.workers must not be negative",
		},
		{
			name:    "Unknown log format",
			mutate:  func(c *Config) { c.Logger.Format = "xml" },
			wantErr: "logger.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	v := viper.New()
	v.Set("fetch.timeout", "-1s")

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
