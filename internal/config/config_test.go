package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hctools/hc-bulk/internal/utils"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HC_BULK_CONFIG", "HC_API_KEY", "HEALTHCHECKS_API_KEY", "HC_PING_KEY",
		"HC_API_URL", "HC_API_TIMEOUT", "HC_BULK_RETRY_INITIAL",
		"HC_BULK_RETRY_MAX", "HC_BULK_LOG_LEVEL", "HC_BULK_LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != DefaultAPIURL {
		t.Fatalf("unexpected base URL: %s", cfg.API.BaseURL)
	}
	if cfg.Retry.InitialDelay != time.Second || cfg.Retry.MaxDelay != 8*time.Second {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level: %s", cfg.Logging.Level)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "hc-bulk.yaml")
	if err := os.WriteFile(path, []byte(`api:
  key: file-key
  baseURL: https://hc.internal/api/v3
retry:
  maxDelay: 16s
`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("HC_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Key != "env-key" {
		t.Fatalf("env override lost: %s", cfg.API.Key)
	}
	if cfg.API.BaseURL != "https://hc.internal/api/v3" {
		t.Fatalf("file value lost: %s", cfg.API.BaseURL)
	}
	if cfg.Retry.MaxDelay != 16*time.Second {
		t.Fatalf("unexpected max delay: %v", cfg.Retry.MaxDelay)
	}
	if cfg.Retry.InitialDelay != time.Second {
		t.Fatalf("default initial delay lost: %v", cfg.Retry.InitialDelay)
	}
}

func TestLoadLegacyKeyVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEALTHCHECKS_API_KEY", "legacy-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.Key != "legacy-key" {
		t.Fatalf("legacy variable ignored: %q", cfg.API.Key)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidateMissingKeyIsUsageError(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = cfg.Validate()
	var usageErr *utils.UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestValidateRejectsBadRetryDelays(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.API.Key = "k"
	cfg.Retry.MaxDelay = cfg.Retry.InitialDelay / 2
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for max delay below initial delay")
	}
}
