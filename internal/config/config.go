package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Brands         []string            `yaml:"brands"`
	QueryTemplates map[string][]string `yaml:"query_templates"`
	RunsPerQuery   int                 `yaml:"runs_per_query"`

	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	RateLimitDelay time.Duration `yaml:"rate_limit_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	Workers        int           `yaml:"workers"`

	ConfidenceLevel   float64 `yaml:"confidence_level"`
	SignificanceAlpha float64 `yaml:"significance_alpha"`

	Storage  StorageConfig  `yaml:"storage"`
	API      APIConfig      `yaml:"api,omitempty"`
	Schedule ScheduleConfig `yaml:"schedule,omitempty"`
}

// StorageConfig selects where survey results and history rows are kept.
type StorageConfig struct {
	// Results backend: "jsonfile" or "mongodb"
	Results    string `yaml:"results"`
	ResultsDir string `yaml:"results_dir,omitempty"`
	MongoURI   string `yaml:"mongo_uri,omitempty"`
	MongoDB    string `yaml:"mongo_database,omitempty"`

	// History backend: "csv" or "sqlite"
	History     string `yaml:"history"`
	HistoryFile string `yaml:"history_file,omitempty"`
	SQLitePath  string `yaml:"sqlite_path,omitempty"`
}

// APIConfig represents the read-only HTTP API configuration
type APIConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// ScheduleConfig represents recurring survey configuration
type ScheduleConfig struct {
	// Cron is a standard 5-field cron expression, e.g. "0 6 * * *"
	Cron     string `yaml:"cron,omitempty"`
	Provider string `yaml:"provider,omitempty"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Brands: []string{"OpenAI", "Anthropic", "Google", "Meta", "Mistral"},
		QueryTemplates: map[string][]string{
			"general": {
				"What are the best AI companies right now?",
				"Which AI labs are leading the field?",
			},
			"coding": {
				"Which AI model is best for writing code?",
				"What AI coding assistant would you recommend?",
			},
			"research": {
				"Which AI lab publishes the most influential research?",
			},
		},
		RunsPerQuery:      3,
		Temperature:       0.7,
		MaxTokens:         1000,
		RateLimitDelay:    2 * time.Second,
		RequestTimeout:    90 * time.Second,
		MaxRetries:        3,
		Workers:           1,
		ConfidenceLevel:   0.95,
		SignificanceAlpha: 0.05,
		Storage: StorageConfig{
			Results:     "jsonfile",
			ResultsDir:  "results",
			History:     "csv",
			HistoryFile: "som_history.csv",
		},
		API: APIConfig{
			Host: "localhost",
			Port: 8080,
		},
	}
}

// Validate checks the fields every survey depends on.
func (c *Config) Validate() error {
	if len(c.Brands) == 0 {
		return fmt.Errorf("config: brands list is empty")
	}
	seen := make(map[string]bool, len(c.Brands))
	for _, b := range c.Brands {
		if b == "" {
			return fmt.Errorf("config: empty brand name")
		}
		if seen[b] {
			return fmt.Errorf("config: duplicate brand %q", b)
		}
		seen[b] = true
	}
	if len(c.QueryTemplates) == 0 {
		return fmt.Errorf("config: query_templates is empty")
	}
	if c.RunsPerQuery <= 0 {
		return fmt.Errorf("config: runs_per_query must be positive, got %d", c.RunsPerQuery)
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("config: confidence_level must be in (0, 1), got %g", c.ConfidenceLevel)
	}
	if c.SignificanceAlpha <= 0 || c.SignificanceAlpha >= 1 {
		return fmt.Errorf("config: significance_alpha must be in (0, 1), got %g", c.SignificanceAlpha)
	}
	return nil
}

// Categories returns the template category names in sorted order.
func (c *Config) Categories() []string {
	cats := make([]string, 0, len(c.QueryTemplates))
	for cat := range c.QueryTemplates {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".som-monitor/config.yaml"
	}
	return filepath.Join(home, ".som-monitor", "config.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// APIKey reads the credential for a provider from the environment.
func APIKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "google":
		return os.Getenv("GEMINI_API_KEY")
	case "perplexity":
		return os.Getenv("PERPLEXITY_API_KEY")
	}
	return ""
}
