package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# IVLens Configuration

[server]
# HTTP listen address for the analytics API
address = ":8080"
# CORS allowed origins for the dashboard frontend
allow_origins = ["*"]

[marketdata]
# Base URL of the quote backend
base_url = "http://localhost:8000"

[analysis]
# Rolling window for realized volatility (trading days)
rolling_window = 20
# Default projection horizon in calendar days
default_horizon = 30
# History period fetched for analysis: 6mo, 1y, 2y
history_period = "1y"

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
`

const credentialsTemplate = `# IVLens Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[openai]
api_key = ""
model = ""

# Optional OpenAI-compatible fallback provider
[secondary]
api_key = ""
base_url = ""
model = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	// Use restricted permissions for credentials file
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}
	return nil
}
