// Package config provides configuration loading and validation for the
// server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must
// be provided via CLI flags.
type Config struct {
	// Paths
	Template string `json:"template,omitempty"` // Path to the LaTeX paper template
	RunsDir  string `json:"runs_dir,omitempty"` // Directory generation runs are written under

	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Models
	GeminiModel string `json:"gemini_model,omitempty"` // Override for the Gemini model name
	GroqModel   string `json:"groq_model,omitempty"`   // Override for the Groq model name

	// Behavior
	MaxRetries int  `json:"max_retries,omitempty"` // Retry ceiling for provider calls
	Verbose    bool `json:"verbose,omitempty"`     // Print detailed debug information
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		Template:   filepath.Join("paper", "research-pap.tex"),
		RunsDir:    "runs",
		Port:       8080,
		MaxRetries: 3,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}

	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.RunsDir == "" {
		result.RunsDir = defaults.RunsDir
	}
	if result.GeminiModel == "" {
		result.GeminiModel = defaults.GeminiModel
	}
	if result.GroqModel == "" {
		result.GroqModel = defaults.GroqModel
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
