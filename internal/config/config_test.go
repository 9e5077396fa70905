package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, name)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML overrides a handful of defaults.
const validConfigYAML = `
stack:
  local_dir: "./testdata/surveys"
  years: [2017, 2018]
  concurrency: 1
salaries:
  fetch_mode: "http"
  jobs:
    - slug: "Data-Engineer-Salary-by-State"
      title: "Data Engineer"
cache:
  data_dir: "./cache"
logging:
  level: "debug"
`

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate, got %v", err)
	}

	if len(cfg.Salaries.Jobs) != 7 {
		t.Errorf("Expected 7 default jobs, got %d", len(cfg.Salaries.Jobs))
	}

	if cfg.Stack.Years[0] != 2017 || cfg.Stack.Years[len(cfg.Stack.Years)-1] != 2023 {
		t.Errorf("Expected default years 2017..2023, got %v", cfg.Stack.Years)
	}
}

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, "devsurvey.yaml", validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Stack.IsLocal() {
		t.Error("Expected local survey source")
	}

	if len(cfg.Stack.Years) != 2 {
		t.Errorf("Expected 2 years, got %d", len(cfg.Stack.Years))
	}

	if len(cfg.Salaries.Jobs) != 1 || cfg.Salaries.Jobs[0].Title != "Data Engineer" {
		t.Errorf("Expected a single Data Engineer job, got %+v", cfg.Salaries.Jobs)
	}

	// Untouched sections keep their defaults.
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Expected default retry attempts, got %d", cfg.Retry.MaxAttempts)
	}

	if len(cfg.Features.Languages) != 12 {
		t.Errorf("Expected default languages, got %v", cfg.Features.Languages)
	}
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Salaries.FetchMode != FetchBrowser && os.Getenv(EnvFetchMode) == "" {
		t.Errorf("Expected browser fetch mode, got %s", cfg.Salaries.FetchMode)
	}
}

func TestLoadConfig_LocalOverride(t *testing.T) {
	configPath := createTempConfigFile(t, "devsurvey.yaml", validConfigYAML)

	local := "cache:\n  data_dir: \"./override\"\n"
	if err := os.WriteFile(LocalPath(configPath), []byte(local), 0644); err != nil {
		t.Fatalf("Failed to write local config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Cache.DataDir != "./override" && os.Getenv(EnvDataDir) == "" {
		t.Errorf("Expected local override for data dir, got %s", cfg.Cache.DataDir)
	}

	if cfg.Salaries.FetchMode != FetchHTTP && os.Getenv(EnvFetchMode) == "" {
		t.Errorf("Expected fetch mode from base file to survive merge, got %s", cfg.Salaries.FetchMode)
	}
}

func TestLoadConfig_LocalOverrideZeroValues(t *testing.T) {
	configPath := createTempConfigFile(t, "devsurvey.yaml", validConfigYAML)

	local := "salaries:\n  browser:\n    headless: false\n    settle_ms: 0\n"
	if err := os.WriteFile(LocalPath(configPath), []byte(local), 0644); err != nil {
		t.Fatalf("Failed to write local config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Salaries.Browser.Headless {
		t.Error("Expected headless: false from the local file to take effect")
	}

	if cfg.Salaries.Browser.SettleMs != 0 {
		t.Errorf("Expected settle_ms: 0 from the local file, got %d", cfg.Salaries.Browser.SettleMs)
	}

	// Keys the local file leaves out keep their loaded values.
	if cfg.Salaries.Browser.NavigationTimeoutSec != 30 {
		t.Errorf("NavigationTimeoutSec = %d", cfg.Salaries.Browser.NavigationTimeoutSec)
	}

	if len(cfg.Salaries.Jobs) != 1 || cfg.Stack.Concurrency != 1 {
		t.Errorf("Base file values lost: jobs=%d concurrency=%d", len(cfg.Salaries.Jobs), cfg.Stack.Concurrency)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "config.yaml", "invalid: yaml: content: [}")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestLocalPath(t *testing.T) {
	got := LocalPath("configs/devsurvey.yaml")
	if got != "configs/devsurvey.local.yaml" {
		t.Errorf("LocalPath() = %s", got)
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDataDir:   "/tmp/data",
		EnvSurveyDir: "/tmp/surveys",
		EnvLogLevel:  "WARN",
		EnvFetchMode: "HTTP",
	}

	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Cache.DataDir != "/tmp/data" {
		t.Errorf("DataDir = %s", cfg.Cache.DataDir)
	}

	if cfg.Stack.LocalDir != "/tmp/surveys" {
		t.Errorf("LocalDir = %s", cfg.Stack.LocalDir)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %s", cfg.Logging.Level)
	}

	if cfg.Salaries.FetchMode != FetchHTTP {
		t.Errorf("FetchMode = %s", cfg.Salaries.FetchMode)
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"no years", func(c *Config) { c.Stack.Years = nil }, ErrNoYears},
		{"bad year", func(c *Config) { c.Stack.Years = []int{1999} }, ErrInvalidYear},
		{"no source", func(c *Config) { c.Stack.URLPrefix = "" }, ErrMissingSource},
		{"bad prefix", func(c *Config) { c.Stack.URLPrefix = "s3://bucket/stack/" }, ErrInvalidURL},
		{"relative base url", func(c *Config) { c.Salaries.BaseURL = "/Salaries/" }, ErrInvalidURL},
		{"concurrency", func(c *Config) { c.Stack.Concurrency = 0 }, ErrInvalidConcurrency},
		{"no base url", func(c *Config) { c.Salaries.BaseURL = "" }, ErrMissingBaseURL},
		{"no jobs", func(c *Config) { c.Salaries.Jobs = nil }, ErrNoJobs},
		{"job slug", func(c *Config) { c.Salaries.Jobs[0].Slug = "" }, ErrJobMissingSlug},
		{"job title", func(c *Config) { c.Salaries.Jobs[0].Title = "" }, ErrJobMissingTitle},
		{"fetch mode", func(c *Config) { c.Salaries.FetchMode = "curl" }, ErrInvalidFetchMode},
		{"list column", func(c *Config) { c.Features.ListColumns[0].Terms = nil }, ErrEmptyListColumn},
		{"max attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, ErrInvalidMaxAttempts},
		{"initial delay", func(c *Config) { c.Retry.InitialDelayMs = -1 }, ErrInvalidInitialDelay},
		{"backoff", func(c *Config) { c.Retry.BackoffMultiplier = 0.5 }, ErrInvalidBackoffMultiplier},
		{"timeout", func(c *Config) { c.Retry.TimeoutSec = 0 }, ErrInvalidTimeout},
		{"data dir", func(c *Config) { c.Cache.DataDir = "" }, ErrMissingDataDir},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfig_Validate_LocalDirWithoutPrefix(t *testing.T) {
	cfg := Default()
	cfg.Stack.URLPrefix = ""
	cfg.Stack.LocalDir = "./surveys"

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected local dir to satisfy source requirement, got %v", err)
	}
}

// --- RetryPolicy Tests ---

func TestRetryPolicy_GetRetryDelay(t *testing.T) {
	rp := RetryPolicy{
		InitialDelayMs:    100,
		MaxDelayMs:        1000,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 0},                        // First attempt, no delay
		{2, 200 * time.Millisecond},   // 100 * 2
		{3, 400 * time.Millisecond},   // 100 * 2 * 2
		{4, 800 * time.Millisecond},   // 100 * 2 * 2 * 2
		{5, 1000 * time.Millisecond},  // Capped at max
		{10, 1000 * time.Millisecond}, // Still capped
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			got := rp.GetRetryDelay(tt.attempt)
			if got != tt.expected {
				t.Errorf("GetRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestRetryPolicy_GetTimeout(t *testing.T) {
	rp := RetryPolicy{TimeoutSec: 30}
	expected := 30 * time.Second

	if got := rp.GetTimeout(); got != expected {
		t.Errorf("GetTimeout() = %v, want %v", got, expected)
	}
}

func TestBrowserConfig_Durations(t *testing.T) {
	b := BrowserConfig{SettleMs: 1500}

	if b.SettleDelay() != 1500*time.Millisecond {
		t.Errorf("SettleDelay() = %v", b.SettleDelay())
	}

	if b.NavigationTimeout() != 30*time.Second {
		t.Errorf("NavigationTimeout() default = %v", b.NavigationTimeout())
	}
}

// --- Config Helper Method Tests ---

func TestConfig_String(t *testing.T) {
	cfg := Default()
	str := cfg.String()

	if !strings.Contains(str, "Years: 7") || !strings.Contains(str, "Jobs: 7") {
		t.Errorf("String() = %s", str)
	}
}

func TestConfig_YAML(t *testing.T) {
	data, err := Default().YAML()
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}

	if !strings.Contains(string(data), "fetch_mode: browser") {
		t.Errorf("YAML() missing fetch mode:\n%s", data)
	}
}

func TestConfig_SaveConfig(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "saved.yaml")

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig of saved file failed: %v", err)
	}

	if len(loaded.Features.Databases) != len(cfg.Features.Databases) {
		t.Errorf("Saved config lost databases: %v", loaded.Features.Databases)
	}
}
