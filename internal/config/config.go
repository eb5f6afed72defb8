package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/stoik/phishguard/internal/domain/detection"
)

// EnvPrefix is prepended to every environment variable override,
// e.g. PHISHGUARD_FETCH_TIMEOUT for fetch.timeout
const EnvPrefix = "PHISHGUARD"

// Config is the root configuration for phishguard
type Config struct {
	// LegitimateDomains is the ordered list of sites to protect. Entries may
	// be full URLs or bare hostnames.
	LegitimateDomains []string       `mapstructure:"legitimate_domains" yaml:"legitimate_domains"`
	Fetch             FetchConfig    `mapstructure:"fetch" yaml:"fetch"`
	Analysis          AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Logger            LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Database          DatabaseConfig `mapstructure:"database" yaml:"database"`
	Server            ServerConfig   `mapstructure:"server" yaml:"server"`
}

// FetchConfig controls page retrieval
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent    string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// AnalysisConfig controls the detectors and the orchestrator
type AnalysisConfig struct {
	// DomainReducer is "heuristic" or "publicsuffix"
	DomainReducer string `mapstructure:"domain_reducer" yaml:"domain_reducer"`
	// Workers bounds the fan-out over legitimate domains; 0 means one per domain
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// DatabaseConfig enables report persistence when URL is set
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// SetDefaults registers every default value on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("legitimate_domains", []string{
		"https://www.paypal.com",
		"https://www.google.com",
		"https://www.microsoft.com",
	})

	// -- Fetch --
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.user_agent", "phishguard/1.0")
	v.SetDefault("fetch.max_body_bytes", 5<<20)

	// -- Analysis --
	v.SetDefault("analysis.domain_reducer", detection.ReducerHeuristic)
	v.SetDefault("analysis.workers", 0)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "phishguard")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Database --
	v.SetDefault("database.url", "")

	// -- Server --
	v.SetDefault("server.listen_addr", ":8080")
}

// NewViper returns a viper instance that reads PHISHGUARD_ environment overrides
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewDefaultConfig returns the configuration produced by the defaults alone
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load applies defaults to v, decodes it and validates the result
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.LegitimateDomains = cleanDomains(cfg.LegitimateDomains)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for values the analysis cannot run with
func (c *Config) Validate() error {
	var errs []error

	if len(cleanDomains(c.LegitimateDomains)) == 0 {
		errs = append(errs, errors.New("legitimate_domains must contain at least one domain"))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout must be positive"))
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("fetch.max_body_bytes must be positive"))
	}
	if _, err := detection.ReducerFor(c.Analysis.DomainReducer); err != nil {
		errs = append(errs, fmt.Errorf("analysis.domain_reducer: %w", err))
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, errors.New("analysis.workers must not be negative"))
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format))
	}

	return errors.Join(errs...)
}

// cleanDomains trims entries and drops blanks, keeping order
func cleanDomains(domains []string) []string {
	cleaned := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = strings.TrimSpace(d); d != "" {
			cleaned = append(cleaned, d)
		}
	}
	return cleaned
}
