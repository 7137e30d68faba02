package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Source      SourceConfig      `yaml:"source"`
	Destination DestinationConfig `yaml:"destination"`
	Import      ImportConfig      `yaml:"import"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SourceConfig points at the legacy WooCommerce database (read-only)
type SourceConfig struct {
	DSN string `yaml:"dsn"`
}

// DestinationConfig points at the shop database the catalog is imported into
type DestinationConfig struct {
	DSN string `yaml:"dsn"`
}

// ImportConfig carries the locale values stamped onto imported records
type ImportConfig struct {
	LanguageID string `yaml:"language_id"`
	CurrencyID string `yaml:"currency_id"`
	SiteID     string `yaml:"site_id"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from the given file and environment variables.
// An empty path falls back to WOOMIGRATE_CONFIG or ./config.yaml; a config
// file is optional as long as the DSNs arrive via environment.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = getConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a configuration with default values
func defaultConfig() *Config {
	return &Config{
		Import: ImportConfig{
			LanguageID: "en",
			CurrencyID: "EUR",
			SiteID:     "default",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// getConfigPath returns the configuration file path
func getConfigPath() string {
	if path := os.Getenv("WOOMIGRATE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// applyEnv overrides configuration with environment variables
func (c *Config) applyEnv() {
	if dsn := os.Getenv("WOOMIGRATE_SOURCE_DSN"); dsn != "" {
		c.Source.DSN = dsn
	}
	if dsn := os.Getenv("WOOMIGRATE_DESTINATION_DSN"); dsn != "" {
		c.Destination.DSN = dsn
	}
	if lang := os.Getenv("WOOMIGRATE_LANGUAGE_ID"); lang != "" {
		c.Import.LanguageID = lang
	}
	if currency := os.Getenv("WOOMIGRATE_CURRENCY_ID"); currency != "" {
		c.Import.CurrencyID = currency
	}
	if site := os.Getenv("WOOMIGRATE_SITE_ID"); site != "" {
		c.Import.SiteID = site
	}
	if level := os.Getenv("WOOMIGRATE_LOGGING_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("WOOMIGRATE_LOGGING_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Source.DSN == "" {
		return fmt.Errorf("source.dsn is required")
	}
	if c.Destination.DSN == "" {
		return fmt.Errorf("destination.dsn is required")
	}
	if c.Import.LanguageID == "" {
		return fmt.Errorf("import.language_id is required")
	}
	if c.Import.CurrencyID == "" {
		return fmt.Errorf("import.currency_id is required")
	}
	return nil
}
