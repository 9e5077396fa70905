// Package config provides configuration management for the survey pipeline.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"devsurvey/pkg/utils"
)

// Configuration validation errors.
var (
	ErrNoYears                  = errors.New("stack.years must list at least one year")
	ErrInvalidYear              = errors.New("stack.years entries must be between 2011 and 2100")
	ErrMissingSource            = errors.New("stack.url_prefix or stack.local_dir is required")
	ErrInvalidURL               = errors.New("url must be absolute http(s) with a host")
	ErrInvalidConcurrency       = errors.New("stack.concurrency must be at least 1")
	ErrNoJobs                   = errors.New("salaries.jobs must list at least one job")
	ErrJobMissingSlug           = errors.New("job slug is required")
	ErrJobMissingTitle          = errors.New("job title is required")
	ErrMissingBaseURL           = errors.New("salaries.base_url is required")
	ErrInvalidFetchMode         = errors.New("salaries.fetch_mode must be 'browser' or 'http'")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrMissingDataDir           = errors.New("cache.data_dir is required")
	ErrEmptyListColumn          = errors.New("features.list_columns entries need name, source and terms")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Fetch modes for salary pages.
const (
	FetchBrowser = "browser"
	FetchHTTP    = "http"
)

// Environment overrides, applied after the YAML files.
const (
	EnvDataDir   = "DEVSURVEY_DATA_DIR"
	EnvSurveyDir = "DEVSURVEY_SURVEY_DIR"
	EnvLogLevel  = "DEVSURVEY_LOG_LEVEL"
	EnvFetchMode = "DEVSURVEY_FETCH_MODE"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Stack    StackConfig    `yaml:"stack"`
	Salaries SalaryConfig   `yaml:"salaries"`
	Features FeaturesConfig `yaml:"features"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Retry    RetryPolicy    `yaml:"retry"`
}

// StackConfig describes where the yearly survey exports come from.
type StackConfig struct {
	URLPrefix   string `yaml:"url_prefix"`
	LocalDir    string `yaml:"local_dir"`
	Years       []int  `yaml:"years"`
	Concurrency int    `yaml:"concurrency"`
}

// IsLocal returns true if survey files are read from disk.
func (s *StackConfig) IsLocal() bool {
	return s.LocalDir != ""
}

// SalaryConfig describes the salary pages to scrape.
type SalaryConfig struct {
	BaseURL   string        `yaml:"base_url"`
	FetchMode string        `yaml:"fetch_mode"`
	Jobs      []JobConfig   `yaml:"jobs"`
	Browser   BrowserConfig `yaml:"browser"`
}

// JobConfig pairs a URL suffix with the job title written to the table.
type JobConfig struct {
	Slug  string `yaml:"slug"`
	Title string `yaml:"title"`
}

// BrowserConfig controls the headless browser used for salary pages.
type BrowserConfig struct {
	Bin                  string `yaml:"bin"`
	SettleMs             int    `yaml:"settle_ms"`
	NavigationTimeoutSec int    `yaml:"navigation_timeout_sec"`
	Headless             bool   `yaml:"headless"`
}

// SettleDelay is how long a page may take to render its salary table.
func (b *BrowserConfig) SettleDelay() time.Duration {
	return time.Duration(b.SettleMs) * time.Millisecond
}

// NavigationTimeout bounds a single page load.
func (b *BrowserConfig) NavigationTimeout() time.Duration {
	if b.NavigationTimeoutSec <= 0 {
		return 30 * time.Second
	}

	return time.Duration(b.NavigationTimeoutSec) * time.Second
}

// FeaturesConfig lists the keywords turned into yes/no columns.
type FeaturesConfig struct {
	Languages   []string           `yaml:"languages"`
	Databases   []string           `yaml:"databases"`
	Platforms   []string           `yaml:"platforms"`
	ListColumns []ListColumnConfig `yaml:"list_columns"`
}

// ListColumnConfig collapses several aliases into one yes/no column.
type ListColumnConfig struct {
	Name   string   `yaml:"name"`
	Source string   `yaml:"source"`
	Terms  []string `yaml:"terms"`
}

// CacheConfig defines where stage snapshots live.
type CacheConfig struct {
	DataDir string `yaml:"data_dir"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// Default returns the configuration the pipeline runs with when no file is given.
func Default() *Config {
	return &Config{
		Stack: StackConfig{
			URLPrefix:   "https://tonyfraser-data.s3.amazonaws.com/stack/",
			Years:       []int{2017, 2018, 2019, 2020, 2021, 2022, 2023},
			Concurrency: 2,
		},
		Salaries: SalaryConfig{
			BaseURL:   "https://www.ziprecruiter.com/Salaries/What-Is-the-Average-",
			FetchMode: FetchBrowser,
			Jobs: []JobConfig{
				{Slug: "DATA-Scientist-Salary-by-State", Title: "Data Scientist"},
				{Slug: "Data-Engineer-Salary-by-State", Title: "Data Engineer"},
				{Slug: "Data-Analyst-Salary-by-State", Title: "Data Analyst"},
				{Slug: "Machine-Learning-Engineer-Salary-by-State", Title: "Machine Learning Engineer"},
				{Slug: "Quantitative-Analyst-Salary-by-State", Title: "Quantitative Analyst"},
				{Slug: "BIG-DATA-Engineer-Salary-by-State", Title: "Big Data Engineer"},
				{Slug: "Statistician-Salary-by-State", Title: "Statistician"},
			},
			Browser: BrowserConfig{
				Headless:             true,
				SettleMs:             5000,
				NavigationTimeoutSec: 30,
			},
		},
		Features: FeaturesConfig{
			Languages: []string{"Python", "SQL", "Java", "JavaScript", "Ruby", "PHP", "C++", "Swift", "Scala", "R", "Rust", "Julia"},
			Databases: []string{"MySQL", "Microsoft SQL Server", "MongoDB", "PostgreSQL", "Oracle", "IBM DB2", "Redis", "SQLite", "MariaDB"},
			Platforms: []string{"Microsoft Azure", "Google Cloud", "IBM Cloud or Watson", "Kubernetes", "Linux", "Windows"},
			ListColumns: []ListColumnConfig{
				{
					Name:   "aws",
					Source: "PlatformWorkedWith",
					Terms:  []string{"AWS", "aws", "Amazon Web Services", "Amazon Web Services (AWS)"},
				},
			},
		},
		Cache: CacheConfig{
			DataDir: "622data_nogit",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        300,
		},
	}
}

// LoadConfig loads configuration from a YAML file layered over Default.
// A sibling "<name>.local.yaml" is merged on top when present, then
// environment overrides (optionally from .env) are applied.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}

		if err := mergeLocal(cfg, LocalPath(path)); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LocalPath returns the override file name for a config path:
// configs/devsurvey.yaml -> configs/devsurvey.local.yaml.
func LocalPath(path string) string {
	ext := filepath.Ext(path)

	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func mergeLocal(cfg *Config, localPath string) error {
	data, err := os.ReadFile(localPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read local config: %w", err)
	}

	// Decoding over the loaded config replaces exactly the keys the local
	// file sets, false and 0 included.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse local YAML: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from environment variables looked up with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDataDir); v != "" {
		c.Cache.DataDir = v
	}

	if v := getenv(EnvSurveyDir); v != "" {
		c.Stack.LocalDir = v
	}

	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v := getenv(EnvFetchMode); v != "" {
		c.Salaries.FetchMode = strings.ToLower(v)
	}
}

// YAML renders the configuration as it would be loaded.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return data, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Stack.Years) == 0 {
		return ErrNoYears
	}

	for i, year := range c.Stack.Years {
		if year < 2011 || year > 2100 {
			return fmt.Errorf("%w: years[%d]=%d", ErrInvalidYear, i, year)
		}
	}

	if c.Stack.URLPrefix == "" && c.Stack.LocalDir == "" {
		return ErrMissingSource
	}

	urls := utils.NewHTTPHelper()

	if c.Stack.URLPrefix != "" && !urls.IsValidURL(c.Stack.URLPrefix) {
		return fmt.Errorf("%w: stack.url_prefix=%q", ErrInvalidURL, c.Stack.URLPrefix)
	}

	if c.Stack.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if c.Salaries.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if !urls.IsValidURL(c.Salaries.BaseURL) {
		return fmt.Errorf("%w: salaries.base_url=%q", ErrInvalidURL, c.Salaries.BaseURL)
	}

	if len(c.Salaries.Jobs) == 0 {
		return ErrNoJobs
	}

	for i, job := range c.Salaries.Jobs {
		if job.Slug == "" {
			return fmt.Errorf("%w: jobs[%d]", ErrJobMissingSlug, i)
		}

		if job.Title == "" {
			return fmt.Errorf("%w: jobs[%d]", ErrJobMissingTitle, i)
		}
	}

	if c.Salaries.FetchMode != FetchBrowser && c.Salaries.FetchMode != FetchHTTP {
		return ErrInvalidFetchMode
	}

	for i, lc := range c.Features.ListColumns {
		if lc.Name == "" || lc.Source == "" || len(lc.Terms) == 0 {
			return fmt.Errorf("%w: list_columns[%d]", ErrEmptyListColumn, i)
		}
	}

	// Validate retry policy
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Cache.DataDir == "" {
		return ErrMissingDataDir
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	source := c.Stack.URLPrefix
	if c.Stack.IsLocal() {
		source = c.Stack.LocalDir
	}

	return fmt.Sprintf(
		"Config{Years: %d, Source: %s, Jobs: %d, FetchMode: %s, DataDir: %s}",
		len(c.Stack.Years),
		source,
		len(c.Salaries.Jobs),
		c.Salaries.FetchMode,
		c.Cache.DataDir,
	)
}
