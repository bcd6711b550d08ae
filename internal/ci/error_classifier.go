package ci

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"strings"

	"github.com/google/go-github/v56/github"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

// ErrorType represents the classification of a GitHub API error.
type ErrorType int

const (
	// ErrorTypeUnknown indicates the error could not be classified.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuth indicates an authentication or authorization error.
	ErrorTypeAuth
	// ErrorTypeNetwork indicates a network or server-side error.
	ErrorTypeNetwork
	// ErrorTypeRateLimit indicates an API rate limit error.
	ErrorTypeRateLimit
	// ErrorTypeNotFound indicates the resource does not exist (any more).
	ErrorTypeNotFound
)

// String returns a human-readable name for the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeUnknown:
		return "unknown"
	case ErrorTypeAuth:
		return "authentication"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// PatternMatcher checks if a string contains any of a list of patterns.
// All patterns must be lowercase.
type PatternMatcher struct {
	patterns []string
}

// NewPatternMatcher creates a new PatternMatcher with the given patterns.
func NewPatternMatcher(patterns ...string) *PatternMatcher {
	return &PatternMatcher{patterns: patterns}
}

// Matches returns true if the lowercased input contains any of the patterns.
func (m *PatternMatcher) Matches(s string) bool {
	lower := strings.ToLower(s)
	for _, pattern := range m.patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

//nolint:gochecknoglobals // Package-level immutable pattern matchers
var (
	authPatterns = NewPatternMatcher(
		"bad credentials",
		"requires authentication",
		"must have admin rights",
		"resource not accessible by integration",
		"invalid token",
		"token expired",
	)

	networkPatterns = NewPatternMatcher(
		"could not resolve host",
		"no such host",
		"connection refused",
		"connection reset",
		"network is unreachable",
		"i/o timeout",
		"tls handshake timeout",
		"eof",
		"giving up after",
		"timeout",
	)

	rateLimitPatterns = NewPatternMatcher(
		"rate limit exceeded",
		"api rate limit",
		"secondary rate limit",
		"abuse detection",
		"too many requests",
	)

	notFoundPatterns = NewPatternMatcher(
		"404 not found",
		"not found",
	)
)

// ClassifyError determines the error type of a GitHub API error.
//
// Typed go-github errors are inspected first (status codes are more reliable
// than messages); anything else falls back to message patterns.
// Classification priority: rate limit, auth, not found, network.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if stderrors.As(err, &rateErr) || stderrors.As(err, &abuseErr) {
		return ErrorTypeRateLimit
	}

	var respErr *github.ErrorResponse
	if stderrors.As(err, &respErr) && respErr.Response != nil {
		if t, ok := classifyStatus(respErr.Response.StatusCode, respErr.Message); ok {
			return t
		}
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeNetwork
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return ErrorTypeNetwork
	}

	return classifyMessage(err.Error())
}

func classifyStatus(code int, message string) (ErrorType, bool) {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrorTypeRateLimit, true
	case code == http.StatusForbidden && rateLimitPatterns.Matches(message):
		return ErrorTypeRateLimit, true
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrorTypeAuth, true
	case code == http.StatusNotFound || code == http.StatusGone:
		return ErrorTypeNotFound, true
	case code >= http.StatusInternalServerError:
		return ErrorTypeNetwork, true
	default:
		return ErrorTypeUnknown, false
	}
}

func classifyMessage(msg string) ErrorType {
	lower := strings.ToLower(msg)
	switch {
	case rateLimitPatterns.Matches(lower):
		return ErrorTypeRateLimit
	case authPatterns.Matches(lower):
		return ErrorTypeAuth
	case notFoundPatterns.Matches(lower):
		return ErrorTypeNotFound
	case networkPatterns.Matches(lower):
		return ErrorTypeNetwork
	default:
		return ErrorTypeUnknown
	}
}

// mapFetchError converts a GitHub API error into the fetch taxonomy:
// not found and auth failures are fatal, everything else is transient.
// Context cancellation is passed through untouched so callers can tell an
// abandoned poll from a failed one.
func mapFetchError(err error, what string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}

	switch ClassifyError(err) {
	case ErrorTypeNotFound:
		return errors.Wrap(errors.Classify(errors.ErrRunNotFound, err), what)
	case ErrorTypeAuth:
		return errors.Wrap(errors.Classify(errors.ErrGitHubAuth, err), what)
	case ErrorTypeUnknown, ErrorTypeNetwork, ErrorTypeRateLimit:
		return errors.Wrap(errors.Classify(errors.ErrTransientFetch, err), what)
	default:
		return errors.Wrap(errors.Classify(errors.ErrTransientFetch, err), what)
	}
}

// isNotFound reports whether err is a 404/410 from the API.
func isNotFound(err error) bool {
	var respErr *github.ErrorResponse
	if !stderrors.As(err, &respErr) || respErr.Response == nil {
		return false
	}
	return respErr.Response.StatusCode == http.StatusNotFound || respErr.Response.StatusCode == http.StatusGone
}
