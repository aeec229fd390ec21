// Package llm provides the provider abstraction for report generation.
// All backends expose a single capability: generate text from a prompt.
package llm

import "fmt"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
)

// Default models per provider.
const (
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultOpenAIModel    = "gpt-4o"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

// Config holds provider selection and generation parameters. It is
// injected at construction; business logic never reads the environment.
type Config struct {
	Provider    Provider
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float32
}

// DefaultConfig returns the default configuration for a provider.
func DefaultConfig(provider Provider) *Config {
	cfg := &Config{
		Provider:    provider,
		MaxTokens:   8000,
		Temperature: 0.7,
	}
	switch provider {
	case ProviderOpenAI:
		cfg.Model = DefaultOpenAIModel
	case ProviderAnthropic:
		cfg.Model = DefaultAnthropicModel
	default:
		cfg.Provider = ProviderGemini
		cfg.Model = DefaultGeminiModel
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("API key is required for provider %s", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required for provider %s", c.Provider)
	}
	return nil
}
