package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/openai/openai-go"
	"google.golang.org/api/googleapi"
)

// ProviderError is an HTTP-level failure from a provider backend.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API request failed with status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsTransient reports whether a provider error is worth retrying:
// timeouts, rate limits, and server-side failures. Auth and invalid
// request errors are not transient and must surface immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return transientStatus(providerErr.StatusCode)
	}

	// Gemini surfaces googleapi errors; OpenAI has its own error type.
	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) {
		return transientStatus(googleErr.Code)
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return transientStatus(openaiErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		code >= http.StatusInternalServerError
}
