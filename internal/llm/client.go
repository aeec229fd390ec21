package llm

import (
	"context"
	"fmt"
)

// Client is an abstraction over LLM providers. The report pipeline only
// needs one capability: turn a prompt into raw text.
type Client interface {
	// Generate produces raw text for a prompt, blocking until the
	// provider responds or ctx is cancelled.
	Generate(ctx context.Context, prompt string) (string, error)
	// Model returns the provider model identifier in use.
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a client for the configured provider. Providers are
// interchangeable: substituting one never changes any other component.
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		return nil, fmt.Errorf("llm config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	case ProviderOpenAI:
		return NewOpenAIClient(config)
	case ProviderAnthropic:
		return NewAnthropicClient(config)
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
}
