package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mlevkin/leakradar/internal/models"
)

// Config holds all configuration for LeakRadar
type Config struct {
	// Storage configuration
	StorageDir string `mapstructure:"storage_dir"`

	// Output format (text, json, both)
	Format string `mapstructure:"format"`

	// Number of last runs shown by the history command
	LastRuns int `mapstructure:"last_runs"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`

	// Disable AI enrichment even when an OpenAI key is available
	NoEnrich bool `mapstructure:"no_enrich"`

	// GitHub token for code search (from config or LEAKRADAR_GITHUB_TOKEN)
	GitHubToken string `mapstructure:"github_token"`

	// Google Custom Search API key (LEAKRADAR_GOOGLE_KEY)
	GoogleKey string `mapstructure:"google_key"`

	// Google Custom Search engine ID (LEAKRADAR_GOOGLE_CX)
	GoogleCX string `mapstructure:"google_cx"`

	// OpenAI API key for finding enrichment (LEAKRADAR_OPENAI_KEY)
	OpenAIKey string `mapstructure:"openai_key"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		StorageDir: ".leakradar",
		Format:     "text",
		LastRuns:   7,
		Verbose:    false,
		Debug:      false,
	}
}

// Load loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (~/.leakradar.yaml or ./leakradar.yaml)
// 3. Environment variables (LEAKRADAR_*)
// 4. CLI flags (handled by caller)
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration from a specific file path
// If path is empty, it searches for config in standard locations
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("storage_dir", defaults.StorageDir)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("last_runs", defaults.LastRuns)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("no_enrich", false)
	v.SetDefault("github_token", "")
	v.SetDefault("google_key", "")
	v.SetDefault("google_cx", "")
	v.SetDefault("openai_key", "")

	// Set config file settings
	v.SetConfigName("leakradar")
	v.SetConfigType("yaml")

	if configPath != "" {
		// Use explicit config file path
		v.SetConfigFile(configPath)
	} else {
		// Search for config in standard locations
		// 1. Current directory
		v.AddConfigPath(".")

		// 2. Home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}

		// 3. XDG config directory
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "leakradar"))
		}
	}

	// Enable environment variable support
	v.SetEnvPrefix("LEAKRADAR")
	v.AutomaticEnv()

	// Try to read config file (ignore error if not found)
	if err := v.ReadInConfig(); err != nil {
		// Only return error if it's not a "file not found" error
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Unmarshal into config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate format
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"both": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (must be text, json, or both)", c.Format)
	}

	// Validate last_runs (must be positive)
	if c.LastRuns <= 0 {
		return fmt.Errorf("last_runs must be positive")
	}

	// Validate storage_dir is not empty
	if c.StorageDir == "" {
		return fmt.Errorf("storage_dir cannot be empty")
	}

	return nil
}

// Credentials assembles the credential set from the loaded configuration
func (c *Config) Credentials() models.Credentials {
	return models.Credentials{
		GitHubToken: c.GitHubToken,
		GoogleKey:   c.GoogleKey,
		GoogleCX:    c.GoogleCX,
		OpenAIKey:   c.OpenAIKey,
	}
}

// GetStoragePath returns the absolute path to the storage directory
func (c *Config) GetStoragePath() (string, error) {
	// Expand ~ to home directory
	if len(c.StorageDir) >= 2 && c.StorageDir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, c.StorageDir[2:]), nil
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(c.StorageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# LeakRadar Configuration
# Save this file as ~/.leakradar.yaml or ./leakradar.yaml

# Directory to store scan reports
storage_dir: .leakradar

# Output format: text, json, or both
format: text

# Number of runs shown by the history command
last_runs: 7

# Enable verbose output
verbose: false

# Enable debug mode
debug: false

# Disable AI enrichment even when an OpenAI key is configured
no_enrich: false

# Credentials. Each can also be set via environment variables:
#   LEAKRADAR_GITHUB_TOKEN, LEAKRADAR_GOOGLE_KEY,
#   LEAKRADAR_GOOGLE_CX, LEAKRADAR_OPENAI_KEY
# github_token: ghp_your_token_here
# google_key: AIza_your_key_here
# google_cx: your_search_engine_id
# openai_key: sk-your_key_here
`
}
