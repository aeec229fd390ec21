package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicEndpoint   = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// AnthropicClient implements Client for the Anthropic messages API.
type AnthropicClient struct {
	config     *Config
	httpClient *http.Client
	endpoint   string
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(config *Config) (*AnthropicClient, error) {
	return &AnthropicClient{
		config:   config,
		endpoint: anthropicEndpoint,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Generate produces raw text for a prompt.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(anthropicRequest{
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.config.APIKey)
	httpReq.Header.Set("Anthropic-Version", anthropicAPIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider:   string(ProviderAnthropic),
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	return parsed.Content[0].Text, nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.config.Model
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (c *AnthropicClient) Close() error {
	return nil
}
