// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"aurora-quote/internal/errors"
	"aurora-quote/internal/logging"
)

// Environment variables that override file values
const (
	EnvRatePerHour = "AURORA_RATE_PER_HOUR"
	EnvCurrency    = "AURORA_CURRENCY"
	EnvCatalog     = "AURORA_CATALOG"
	EnvSheet       = "AURORA_CATALOG_SHEET"
	EnvLogLevel    = "AURORA_LOG_LEVEL"
	EnvLogFormat   = "AURORA_LOG_FORMAT"
	EnvFailBroken  = "AURORA_FAIL_ON_BROKEN"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `json:"pricing"`

	// Catalog says where the service matrix comes from
	Catalog CatalogConfig `json:"catalog"`

	// Diagnostics controls the startup self-check
	Diagnostics DiagnosticsConfig `json:"diagnostics"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// RatePerHour overrides the matrix rate when non-zero. 0 uses the
	// rate the matrix declares, then the built-in rate.
	RatePerHour float64 `json:"rate_per_hour,omitempty"`

	// Currency is printed after prices
	Currency string `json:"currency"`
}

// CatalogConfig contains catalog source settings
type CatalogConfig struct {
	// Path is a .json, .hcl or .xlsx matrix; empty means the built-in one
	Path string `json:"path,omitempty"`

	// Sheet is the spreadsheet sheet for .xlsx matrices
	Sheet string `json:"sheet,omitempty"`
}

// DiagnosticsConfig contains self-check settings
type DiagnosticsConfig struct {
	// SelfCheckOnStart runs the validator and self-check before each command
	SelfCheckOnStart bool `json:"self_check_on_start"`

	// FailOnBroken turns a failed self-check into a non-zero exit
	FailOnBroken bool `json:"fail_on_broken"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			Currency: "RUB",
		},
		Diagnostics: DiagnosticsConfig{
			SelfCheckOnStart: true,
			FailOnBroken:     false,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the per-user configuration file
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "aurora-quote.json"
	}
	return filepath.Join(homeDir, ".aurora-quote", "config.json")
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("failed to read config", err).WithContext("path", path)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Config("invalid config file", err).WithContext("path", path)
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("failed to create config directory", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Config("failed to encode config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Config("failed to write config", err)
	}
	return nil
}

// LoadDotEnv reads .env files into the process environment. Missing files
// are not an error; variables already set are left alone.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, file := range files {
		_ = godotenv.Load(file)
	}
}

// ApplyEnv overrides file values with AURORA_* environment variables
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvRatePerHour); ok && strings.TrimSpace(v) != "" {
		rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Config(EnvRatePerHour+" is not a number", err)
		}
		c.Pricing.RatePerHour = rate
	}
	if v, ok := os.LookupEnv(EnvCurrency); ok && v != "" {
		c.Pricing.Currency = v
	}
	if v, ok := os.LookupEnv(EnvCatalog); ok && v != "" {
		c.Catalog.Path = v
	}
	if v, ok := os.LookupEnv(EnvSheet); ok && v != "" {
		c.Catalog.Sheet = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := os.LookupEnv(EnvFailBroken); ok && v != "" {
		fail, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Config(EnvFailBroken+" is not a boolean", err)
		}
		c.Diagnostics.FailOnBroken = fail
	}
	return nil
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
