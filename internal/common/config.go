// Package common provides shared utilities for Fathom
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Fathom
type Config struct {
	Environment string           `toml:"environment"`
	Watchlist   []string         `toml:"watchlist"`
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Providers   ProvidersConfig  `toml:"providers"`
	Analysis    AnalysisConfig   `toml:"analysis"`
	Commentary  CommentaryConfig `toml:"commentary"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

// StorageConfig holds report store configuration. Backend "badger" uses the
// embedded store at Path; "surreal" connects to Address with the remaining
// fields.
type StorageConfig struct {
	Backend   string `toml:"backend" validate:"oneof=badger surreal"`
	Path      string `toml:"path"`
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ProvidersConfig holds market data provider configurations
type ProvidersConfig struct {
	Yahoo YahooConfig `toml:"yahoo"`
}

// YahooConfig holds Yahoo Finance endpoint configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// AnalysisConfig holds the scoring and forecast defaults.
type AnalysisConfig struct {
	Preset             int     `toml:"preset" validate:"oneof=5 8 15"`
	Policy             string  `toml:"policy" validate:"oneof=aggregate gate"`
	SentimentThreshold float64 `toml:"sentiment_threshold" validate:"min=0.05,max=0.1"`
	ForecastYears      int     `toml:"forecast_years" validate:"min=1,max=10"`
	LookbackYears      int     `toml:"lookback_years" validate:"min=1,max=10"`
	RefreshInterval    string  `toml:"refresh_interval"`
}

// GetRefreshInterval parses and returns the watchlist refresh interval.
func (c *AnalysisConfig) GetRefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// CommentaryConfig holds the optional report commentary configuration.
type CommentaryConfig struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level" mapstructure:"level"`
	Format     string   `toml:"format" mapstructure:"format"`
	Outputs    []string `toml:"outputs" mapstructure:"outputs"`
	FilePath   string   `toml:"file_path" mapstructure:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int      `toml:"max_backups" mapstructure:"max_backups"`
}

// DefaultWatchTicker returns the first watchlist entry, or empty string.
func (c *Config) DefaultWatchTicker() string {
	if len(c.Watchlist) > 0 {
		return c.Watchlist[0]
	}
	return ""
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:   "badger",
			Path:      "data/reports",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "fathom",
			Database:  "fathom",
			Username:  "root",
			Password:  "root",
		},
		Providers: ProvidersConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Analysis: AnalysisConfig{
			Preset:             5,
			Policy:             "aggregate",
			SentimentThreshold: 0.05,
			ForecastYears:      5,
			LookbackYears:      5,
			RefreshInterval:    "6h",
		},
		Commentary: CommentaryConfig{
			Enabled: false,
			Model:   "gemini-2.0-flash",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console", "file"},
			FilePath:   "./logs/fathom.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the config against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FATHOM_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FATHOM_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FATHOM_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FATHOM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("FATHOM_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if path := os.Getenv("FATHOM_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if addr := os.Getenv("FATHOM_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	if wl := os.Getenv("FATHOM_WATCHLIST"); wl != "" {
		var tickers []string
		for _, t := range strings.Split(wl, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, strings.ToUpper(t))
			}
		}
		config.Watchlist = tickers
	}

	if preset := os.Getenv("FATHOM_PRESET"); preset != "" {
		if p, err := strconv.Atoi(preset); err == nil {
			config.Analysis.Preset = p
		}
	}

	if policy := os.Getenv("FATHOM_POLICY"); policy != "" {
		config.Analysis.Policy = strings.ToLower(policy)
	}

	// Commentary overrides
	if v := os.Getenv("FATHOM_COMMENTARY"); v != "" {
		config.Commentary.Enabled = v == "on" || v == "true"
	}
	if v := os.Getenv("FATHOM_GEMINI_MODEL"); v != "" {
		config.Commentary.Model = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key for the named service from environment
// variables, falling back to the configured value.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key": {"GEMINI_API_KEY", "FATHOM_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
