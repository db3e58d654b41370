// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Google access
	APIKey          string `json:"api_key,omitempty"`          // Gemini API key
	CredentialsFile string `json:"credentials_file,omitempty"` // Service-account JSON for Sheets/Slides/Drive
	SpreadsheetID   string `json:"spreadsheet_id,omitempty"`   // Master spreadsheet holding all sheets

	// Server
	Port          int    `json:"port,omitempty"`           // Callback server port
	WebhookSecret string `json:"webhook_secret,omitempty"` // Optional JWT secret for inbound callbacks

	// Persistence
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL (optional audit log)

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills a Config from well-known environment variables. Values
// already set (e.g. from a config file) win over the environment.
func (c *Config) FromEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if c.SpreadsheetID == "" {
		c.SpreadsheetID = os.Getenv("SPREADSHEET_ID")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.WebhookSecret == "" {
		c.WebhookSecret = os.Getenv("WEBHOOK_SECRET")
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.CredentialsFile != "" {
		if _, err := os.Stat(c.CredentialsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: credentials file not found: %s", c.CredentialsFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.CredentialsFile == "" {
		result.CredentialsFile = defaults.CredentialsFile
	}
	if result.SpreadsheetID == "" {
		result.SpreadsheetID = defaults.SpreadsheetID
	}
	if result.WebhookSecret == "" {
		result.WebhookSecret = defaults.WebhookSecret
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.Port == 0 {
		if defaults.Port > 0 {
			result.Port = defaults.Port
		} else {
			result.Port = 8080
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
