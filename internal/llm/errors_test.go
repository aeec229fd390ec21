package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestProviderError_Message(t *testing.T) {
	err := &ProviderError{Provider: "anthropic", StatusCode: 429, Message: "rate limited"}
	assert.Equal(t, "anthropic API request failed with status 429: rate limited", err.Error())
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &ProviderError{StatusCode: http.StatusTooManyRequests}, true},
		{"request timeout", &ProviderError{StatusCode: http.StatusRequestTimeout}, true},
		{"server error", &ProviderError{StatusCode: http.StatusBadGateway}, true},
		{"auth failure", &ProviderError{StatusCode: http.StatusUnauthorized}, false},
		{"bad request", &ProviderError{StatusCode: http.StatusBadRequest}, false},
		{"wrapped provider error", fmt.Errorf("generating report: %w", &ProviderError{StatusCode: 503}), true},
		{"googleapi rate limit", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"googleapi not found", &googleapi.Error{Code: http.StatusNotFound}, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("calling provider: %w", context.DeadlineExceeded), true},
		{"network timeout", timeoutErr{}, true},
		{"plain error", errors.New("malformed response"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestTransientStatus(t *testing.T) {
	assert.True(t, transientStatus(429))
	assert.True(t, transientStatus(408))
	assert.True(t, transientStatus(500))
	assert.True(t, transientStatus(599))
	assert.False(t, transientStatus(400))
	assert.False(t, transientStatus(401))
	assert.False(t, transientStatus(200))
}
