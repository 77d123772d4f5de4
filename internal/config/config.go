package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hctools/hc-bulk/internal/utils"
)

// DefaultAPIURL is the hosted management API endpoint used when no other
// base URL is configured.
const DefaultAPIURL = "https://healthchecks.io/api/v3"

// Config captures the settings required to run hc-bulk.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Retry   RetryConfig   `yaml:"retry"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures access to the remote check-management API.
type APIConfig struct {
	Key     string        `yaml:"key"`
	PingKey string        `yaml:"pingKey"`
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig controls backoff behaviour when the API rate-limits us.
type RetryConfig struct {
	InitialDelay time.Duration `yaml:"initialDelay"`
	MaxDelay     time.Duration `yaml:"maxDelay"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from an optional YAML file and environment
// overrides. The file path may also come from HC_BULK_CONFIG.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("HC_BULK_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Validate checks that the settings are sufficient to reach the API.
// A missing API key is a usage error surfaced before any remote call.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return utils.NewUsageError("missing API key; use --api-key or set HC_API_KEY")
	}
	if c.Retry.InitialDelay <= 0 || c.Retry.MaxDelay < c.Retry.InitialDelay {
		return utils.NewUsageError("invalid retry delays: initial %v, max %v", c.Retry.InitialDelay, c.Retry.MaxDelay)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultAPIURL,
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			InitialDelay: time.Second,
			MaxDelay:     8 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HC_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	// Legacy variable name, still honoured when HC_API_KEY is unset.
	if cfg.API.Key == "" {
		if v := os.Getenv("HEALTHCHECKS_API_KEY"); v != "" {
			cfg.API.Key = v
		}
	}
	if v := os.Getenv("HC_PING_KEY"); v != "" {
		cfg.API.PingKey = v
	}
	if v := os.Getenv("HC_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("HC_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv("HC_BULK_RETRY_INITIAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retry.InitialDelay = d
		}
	}
	if v := os.Getenv("HC_BULK_RETRY_MAX"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retry.MaxDelay = d
		}
	}
	if v := os.Getenv("HC_BULK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HC_BULK_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
}
