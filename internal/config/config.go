// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/company-analyst/internal/llm"
	"github.com/jonathan/company-analyst/internal/types"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Persistence
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Provider
	Provider        string `json:"provider,omitempty"`          // LLM provider: gemini, openai, or anthropic
	Model           string `json:"model,omitempty"`             // Provider model override
	GeminiAPIKey    string `json:"gemini_api_key,omitempty"`    // Gemini API key
	OpenAIAPIKey    string `json:"openai_api_key,omitempty"`    // OpenAI API key
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty"` // Anthropic API key

	// Report behavior
	CacheDays int    `json:"cache_days,omitempty"` // Cache validity window in days (1-90)
	Weights   string `json:"weights,omitempty"`    // Priority weights, e.g. "growth:30,stability:20,..."
	ExportDir string `json:"export_dir,omitempty"` // Directory for exported report artifacts

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

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Provider != "" {
		switch llm.Provider(c.Provider) {
		case llm.ProviderGemini, llm.ProviderOpenAI, llm.ProviderAnthropic:
		default:
			return fmt.Errorf("config error: unknown provider %q", c.Provider)
		}
	}

	if c.CacheDays < 0 || c.CacheDays > 90 {
		return fmt.Errorf("config error: 'cache_days' must be between 0 and 90")
	}

	if c.Weights != "" {
		if _, err := types.ParseWeights(c.Weights); err != nil {
			return fmt.Errorf("config error: invalid 'weights': %w", err)
		}
	}

	return nil
}

// APIKeyFor returns the configured API key for a provider, falling back
// to the conventional environment variable.
func (c *Config) APIKeyFor(provider llm.Provider) string {
	switch provider {
	case llm.ProviderGemini:
		if c.GeminiAPIKey != "" {
			return c.GeminiAPIKey
		}
		return os.Getenv("GEMINI_API_KEY")
	case llm.ProviderOpenAI:
		if c.OpenAIAPIKey != "" {
			return c.OpenAIAPIKey
		}
		return os.Getenv("OPENAI_API_KEY")
	case llm.ProviderAnthropic:
		if c.AnthropicAPIKey != "" {
			return c.AnthropicAPIKey
		}
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.AnthropicAPIKey == "" {
		result.AnthropicAPIKey = defaults.AnthropicAPIKey
	}
	if result.Weights == "" {
		result.Weights = defaults.Weights
	}
	if result.ExportDir == "" {
		result.ExportDir = defaults.ExportDir
	}

	// Int fields: use default if zero
	if result.CacheDays == 0 {
		if defaults.CacheDays > 0 {
			result.CacheDays = defaults.CacheDays
		} else {
			result.CacheDays = types.DefaultCacheDays
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
