package ci

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-github/v56/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eeerrors "github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

func responseError(code int, msg string) error {
	return &github.ErrorResponse{
		Response: &http.Response{StatusCode: code, Request: &http.Request{Method: http.MethodGet}},
		Message:  msg,
	}
}

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errType  ErrorType
		expected string
	}{
		{ErrorTypeUnknown, "unknown"},
		{ErrorTypeAuth, "authentication"},
		{ErrorTypeNetwork, "network"},
		{ErrorTypeRateLimit, "rate_limit"},
		{ErrorTypeNotFound, "not_found"},
		{ErrorType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.errType.String())
		})
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"404", responseError(http.StatusNotFound, "Not Found"), ErrorTypeNotFound},
		{"410", responseError(http.StatusGone, "Gone"), ErrorTypeNotFound},
		{"401", responseError(http.StatusUnauthorized, "Bad credentials"), ErrorTypeAuth},
		{"403 permission", responseError(http.StatusForbidden, "Resource not accessible by integration"), ErrorTypeAuth},
		{"403 secondary rate limit", responseError(http.StatusForbidden, "You have exceeded a secondary rate limit"), ErrorTypeRateLimit},
		{"429", responseError(http.StatusTooManyRequests, "slow down"), ErrorTypeRateLimit},
		{"502", responseError(http.StatusBadGateway, "Server Error"), ErrorTypeNetwork},
		{"typed rate limit", &github.RateLimitError{Message: "API rate limit exceeded"}, ErrorTypeRateLimit},
		{"typed abuse", &github.AbuseRateLimitError{Message: "abuse"}, ErrorTypeRateLimit},
		{"deadline", fmt.Errorf("get run: %w", context.DeadlineExceeded), ErrorTypeNetwork},
		{"dns message", fmt.Errorf("dial tcp: lookup api.github.com: no such host"), ErrorTypeNetwork},
		{"retries exhausted", fmt.Errorf("GET https://api.github.com giving up after 3 attempt(s)"), ErrorTypeNetwork},
		{"auth message", fmt.Errorf("Bad credentials"), ErrorTypeAuth},
		{"unknown", fmt.Errorf("something odd"), ErrorTypeUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ClassifyError(tc.err))
		})
	}
}

func TestMapFetchError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, mapFetchError(nil, "get run"))

	err := mapFetchError(responseError(http.StatusNotFound, "Not Found"), "get run 1")
	require.ErrorIs(t, err, eeerrors.ErrRunNotFound)
	assert.Contains(t, err.Error(), "get run 1")

	require.ErrorIs(t, mapFetchError(responseError(http.StatusUnauthorized, "Bad credentials"), "x"), eeerrors.ErrGitHubAuth)
	require.ErrorIs(t, mapFetchError(fmt.Errorf("something odd"), "x"), eeerrors.ErrTransientFetch)

	canceled := mapFetchError(fmt.Errorf("get: %w", context.Canceled), "x")
	require.ErrorIs(t, canceled, context.Canceled)
	assert.NotErrorIs(t, canceled, eeerrors.ErrTransientFetch)
}

func TestPatternMatcher(t *testing.T) {
	t.Parallel()

	m := NewPatternMatcher("rate limit", "abuse")
	assert.True(t, m.Matches("API RATE LIMIT exceeded"))
	assert.False(t, m.Matches("not found"))
}
