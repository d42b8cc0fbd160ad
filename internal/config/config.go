// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "ivlens/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig     `mapstructure:"server"`
	MarketData  MarketDataConfig `mapstructure:"marketdata"`
	Analysis    AnalysisConfig   `mapstructure:"analysis"`
	UI          UIConfig         `mapstructure:"ui"`
	Credentials Credentials      `mapstructure:"-"` // Loaded separately
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string   `mapstructure:"address"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// MarketDataConfig holds quote backend configuration.
type MarketDataConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// AnalysisConfig holds engine defaults the user can tune.
type AnalysisConfig struct {
	RollingWindow  int    `mapstructure:"rolling_window"`
	DefaultHorizon int    `mapstructure:"default_horizon"`
	HistoryPeriod  string `mapstructure:"history_period"`
}

// UIConfig holds CLI output configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// Credentials holds interpretation provider credentials.
type Credentials struct {
	OpenAI    OpenAICredentials    `mapstructure:"openai"`
	Secondary SecondaryCredentials `mapstructure:"secondary"`
}

// OpenAICredentials holds the primary provider's credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// SecondaryCredentials holds the optional OpenAI-compatible fallback
// provider's credentials.
type SecondaryCredentials struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/ivlens"
	}
	return filepath.Join(home, ".config", "ivlens")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if werr := createTemplateConfig(configDir); werr != nil {
				return werr
			}
			return v.Unmarshal(target)
		}
		return err
	}
	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}
	return v.Unmarshal(creds)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("marketdata.base_url", "http://localhost:8000")
	v.SetDefault("analysis.rolling_window", 20)
	v.SetDefault("analysis.default_horizon", 30)
	v.SetDefault("analysis.history_period", "1y")
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("IVLENS_SECONDARY_API_KEY"); v != "" {
		cfg.Credentials.Secondary.APIKey = v
	}
	if v := os.Getenv("IVLENS_SECONDARY_BASE_URL"); v != "" {
		cfg.Credentials.Secondary.BaseURL = v
	}
	if v := os.Getenv("IVLENS_BACKEND_URL"); v != "" {
		cfg.MarketData.BaseURL = v
	}
	if v := os.Getenv("IVLENS_SERVER_ADDR"); v != "" {
		cfg.Server.Address = v
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Analysis.RollingWindow < 2 {
		return fmt.Errorf("%w: rolling_window must be at least 2", apperrors.ErrConfigInvalid)
	}
	if c.Analysis.DefaultHorizon < 1 || c.Analysis.DefaultHorizon > 365 {
		return fmt.Errorf("%w: default_horizon must be within 1..365", apperrors.ErrConfigInvalid)
	}
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("%w: marketdata base_url required", apperrors.ErrConfigInvalid)
	}
	return nil
}
