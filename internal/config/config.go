// Package config handles configuration loading for riskdesk.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingCredentials indicates a required secret was not configured.
// Credential problems fail immediately and loudly, with no partial output.
var ErrMissingCredentials = errors.New("config: missing credentials")

// Config represents the complete application configuration. It is built once
// at startup and passed explicitly into the pipeline constructor; nothing
// reads the process environment after this point.
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"       yaml:"llm"`
	Committee CommitteeConfig `mapstructure:"committee" yaml:"committee"`
	Data      DataConfig      `mapstructure:"data"      yaml:"data"`
	GitHub    GitHubConfig    `mapstructure:"github"    yaml:"github"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// LLMConfig holds generation provider configuration.
type LLMConfig struct {
	Primary         string  `mapstructure:"primary"           yaml:"primary"` // "gemini" or "openai"
	GeminiKey       string  `mapstructure:"gemini_key"        yaml:"gemini_key"`
	OpenAIKey       string  `mapstructure:"openai_key"        yaml:"openai_key"`
	Model           string  `mapstructure:"model"             yaml:"model"`
	Temperature     float64 `mapstructure:"temperature"       yaml:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	MaxRetries      int     `mapstructure:"max_retries"       yaml:"max_retries"`
	BackoffBaseMS   int     `mapstructure:"backoff_base_ms"   yaml:"backoff_base_ms"`
	TimeoutSec      int     `mapstructure:"timeout_sec"       yaml:"timeout_sec"`
}

// BackoffBase returns the retry backoff base as a duration.
func (c LLMConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseMS) * time.Millisecond
}

// Timeout returns the per-request timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CommitteeConfig holds pipeline behavior settings.
type CommitteeConfig struct {
	MaxRepairPasses int    `mapstructure:"max_repair_passes" yaml:"max_repair_passes"`
	Benchmark       string `mapstructure:"benchmark"         yaml:"benchmark"` // "" disables the benchmark block
	Headlines       int    `mapstructure:"headlines"         yaml:"headlines"` // max headlines appended to a report
}

// DataConfig holds market-data provider settings.
type DataConfig struct {
	PrimaryBaseURL string `mapstructure:"primary_base_url" yaml:"primary_base_url"`
	PrimaryAPIKey  string `mapstructure:"primary_api_key"  yaml:"primary_api_key"`
	StooqBaseURL   string `mapstructure:"stooq_base_url"   yaml:"stooq_base_url"`
	YahooBaseURL   string `mapstructure:"yahoo_base_url"   yaml:"yahoo_base_url"`
	NewsFeedURL    string `mapstructure:"news_feed_url"    yaml:"news_feed_url"` // %s is replaced with the ticker
	TimeoutSec     int    `mapstructure:"timeout_sec"      yaml:"timeout_sec"`
}

// Timeout returns the fetch timeout as a duration.
func (c DataConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// GitHubConfig holds the comment-thread sink settings.
type GitHubConfig struct {
	Token        string   `mapstructure:"token"         yaml:"token"`
	Repository   string   `mapstructure:"repository"    yaml:"repository"` // "owner/repo"
	AllowedUsers []string `mapstructure:"allowed_users" yaml:"allowed_users"`
	ChunkSize    int      `mapstructure:"chunk_size"    yaml:"chunk_size"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.riskdesk/config.yaml (home directory)
//  3. /etc/riskdesk/config.yaml (system)
//
// Environment variables override config file values.
// Format: RISKDESK_<SECTION>_<KEY>, e.g., RISKDESK_LLM_GEMINI_KEY.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".riskdesk"))
	v.AddConfigPath("/etc/riskdesk")

	v.SetEnvPrefix("RISKDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("RISKDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// ValidateForGeneration checks that at least one generation provider key is
// configured. This is a fatal startup error, not a degraded state.
func (c *Config) ValidateForGeneration() error {
	if c.LLM.GeminiKey == "" && c.LLM.OpenAIKey == "" {
		return fmt.Errorf("%w: set RISKDESK_LLM_GEMINI_KEY or RISKDESK_LLM_OPENAI_KEY", ErrMissingCredentials)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.primary", "gemini")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.4)
	v.SetDefault("llm.max_output_tokens", 1200)
	v.SetDefault("llm.max_retries", 5)
	v.SetDefault("llm.backoff_base_ms", 1500)
	v.SetDefault("llm.timeout_sec", 120)

	// Committee defaults
	v.SetDefault("committee.max_repair_passes", 2)
	v.SetDefault("committee.benchmark", "SPY")
	v.SetDefault("committee.headlines", 5)

	// Data provider defaults
	v.SetDefault("data.primary_base_url", "https://api.massive.com")
	v.SetDefault("data.stooq_base_url", "https://stooq.com")
	v.SetDefault("data.yahoo_base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("data.news_feed_url", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s")
	v.SetDefault("data.timeout_sec", 60)

	// GitHub sink defaults
	v.SetDefault("github.chunk_size", 60000)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("RISKDESK_LLM_GEMINI_KEY"); key != "" {
		cfg.LLM.GeminiKey = key
	}
	if key := os.Getenv("RISKDESK_LLM_OPENAI_KEY"); key != "" {
		cfg.LLM.OpenAIKey = key
	}
	if key := os.Getenv("RISKDESK_DATA_PRIMARY_API_KEY"); key != "" {
		cfg.Data.PrimaryAPIKey = key
	}
	if key := os.Getenv("GITHUB_TOKEN"); key != "" && cfg.GitHub.Token == "" {
		cfg.GitHub.Token = key
	}
	if repo := os.Getenv("GITHUB_REPOSITORY"); repo != "" && cfg.GitHub.Repository == "" {
		cfg.GitHub.Repository = repo
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
