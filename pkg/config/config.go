package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the scraping and transformation pipeline.
// A Config value is passed into the scraper, checkpoint store and transformer
// at construction; nothing reads ambient globals.
type Config struct {
	// Jira holds remote endpoint settings
	Jira JiraConfig `yaml:"jira" json:"jira"`

	// Scraper holds pagination and pacing settings
	Scraper ScraperConfig `yaml:"scraper" json:"scraper"`

	// Retry holds the transport retry policy bounds
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Storage holds directory layout for checkpoints, raw batches and output
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Projects are the project keys processed by the pipeline command
	Projects []string `yaml:"projects" json:"projects"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// JiraConfig holds settings for the remote Jira REST API.
type JiraConfig struct {
	BaseURL   string   `yaml:"base_url" json:"base_url"`
	Fields    []string `yaml:"fields" json:"fields"`
	Expand    string   `yaml:"expand" json:"expand"`
	UserAgent string   `yaml:"user_agent" json:"user_agent"`
}

// ScraperConfig holds pagination and pacing settings.
type ScraperConfig struct {
	PageSize          int           `yaml:"page_size" json:"page_size"`
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout"`
	PolitenessDelay   time.Duration `yaml:"politeness_delay" json:"politeness_delay"`
	RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown" json:"rate_limit_cooldown"`
	ProjectPause      time.Duration `yaml:"project_pause" json:"project_pause"`
}

// RetryConfig holds the exponential backoff bounds for transient transport
// failures.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	MinWait      time.Duration `yaml:"min_wait" json:"min_wait"`
	MaxWait      time.Duration `yaml:"max_wait" json:"max_wait"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
	JitterFactor float64       `yaml:"jitter_factor" json:"jitter_factor"`
}

// StorageConfig holds the on-disk layout. Raw, processed and checkpoint
// directories default to subdirectories of DataDir when left empty.
type StorageConfig struct {
	DataDir       string `yaml:"data_dir" json:"data_dir"`
	RawDir        string `yaml:"raw_dir" json:"raw_dir"`
	ProcessedDir  string `yaml:"processed_dir" json:"processed_dir"`
	CheckpointDir string `yaml:"checkpoint_dir" json:"checkpoint_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config with documented defaults, mirroring the
// public Apache Jira instance.
func DefaultConfig() *Config {
	return &Config{
		Jira: JiraConfig{
			BaseURL: "https://issues.apache.org/jira/rest/api/2",
			Fields: []string{
				"summary",
				"description",
				"status",
				"priority",
				"assignee",
				"reporter",
				"created",
				"updated",
				"resolutiondate",
				"labels",
				"comment",
			},
			Expand:    "comments",
			UserAgent: "jiraminer/1.0",
		},
		Scraper: ScraperConfig{
			PageSize:          100,
			RequestTimeout:    30 * time.Second,
			PolitenessDelay:   1 * time.Second,
			RateLimitCooldown: 60 * time.Second,
			ProjectPause:      5 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:  5,
			MinWait:      2 * time.Second,
			MaxWait:      60 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Projects: []string{"KAFKA", "SPARK", "HADOOP"},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration: defaults, then an optional YAML
// file, then environment variables. Directory defaults are resolved last so
// an overridden DataDir propagates.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	cfg.ResolveDirs()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file. An empty path searches
// the standard locations; finding none is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadFromEnv loads overrides from the environment, reading a .env file
// first when one is present.
func (c *Config) LoadFromEnv() error {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	if baseURL := os.Getenv("JIRAMINER_BASE_URL"); baseURL != "" {
		c.Jira.BaseURL = baseURL
	}
	if userAgent := os.Getenv("JIRAMINER_USER_AGENT"); userAgent != "" {
		c.Jira.UserAgent = userAgent
	}
	if pageSize := os.Getenv("JIRAMINER_PAGE_SIZE"); pageSize != "" {
		if val, err := strconv.Atoi(pageSize); err == nil && val > 0 {
			c.Scraper.PageSize = val
		}
	}
	if dataDir := os.Getenv("JIRAMINER_DATA_DIR"); dataDir != "" {
		c.Storage.DataDir = dataDir
	}
	if projects := os.Getenv("JIRAMINER_PROJECTS"); projects != "" {
		c.Projects = splitAndTrim(projects)
	}
	if logLevel := os.Getenv("JIRAMINER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// ResolveDirs fills the raw, processed and checkpoint directories from
// DataDir where they were not set explicitly.
func (c *Config) ResolveDirs() {
	if c.Storage.RawDir == "" {
		c.Storage.RawDir = filepath.Join(c.Storage.DataDir, "raw")
	}
	if c.Storage.ProcessedDir == "" {
		c.Storage.ProcessedDir = filepath.Join(c.Storage.DataDir, "processed")
	}
	if c.Storage.CheckpointDir == "" {
		c.Storage.CheckpointDir = filepath.Join(c.Storage.DataDir, "checkpoints")
	}
}

// findConfigFile searches for a config file in standard locations.
func (c *Config) findConfigFile() string {
	locations := []string{
		".jiraminer.yaml",
		".jiraminer.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "jiraminer", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".jiraminer.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Jira.BaseURL == "" {
		errs = append(errs, errors.New("jira base URL is required"))
	}
	if len(c.Jira.Fields) == 0 {
		errs = append(errs, errors.New("at least one jira field is required"))
	}

	if c.Scraper.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Scraper.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Scraper.PolitenessDelay < 0 {
		errs = append(errs, errors.New("politeness delay cannot be negative"))
	}
	if c.Scraper.RateLimitCooldown < 0 {
		errs = append(errs, errors.New("rate limit cooldown cannot be negative"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if c.Retry.MinWait < 0 || c.Retry.MaxWait < c.Retry.MinWait {
		errs = append(errs, errors.New("retry wait bounds are inverted"))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}
	if c.Retry.JitterFactor < 0 || c.Retry.JitterFactor > 1 {
		errs = append(errs, errors.New("jitter factor must be between 0 and 1"))
	}

	if c.Storage.DataDir == "" {
		errs = append(errs, errors.New("data directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
