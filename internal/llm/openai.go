package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client for the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	client := openai.NewClient(option.WithAPIKey(config.APIKey))
	return &OpenAIClient{
		client: client,
		config: config,
	}, nil
}

// Generate produces raw text for a prompt.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:               openai.F(openai.ChatModel(c.config.Model)),
		MaxCompletionTokens: openai.F(int64(c.config.MaxTokens)),
		Temperature:         openai.F(float64(c.config.Temperature)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return completion.Choices[0].Message.Content, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (c *OpenAIClient) Close() error {
	return nil
}
