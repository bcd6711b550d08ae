// Package errors provides centralized error handling for eebuilder.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrRunNotFound indicates the CI run (or one of its jobs) no longer
	// resolves. Observation of the run must stop.
	ErrRunNotFound = errors.New("run not found")

	// ErrTransientFetch indicates a network, rate-limit or server-side failure
	// while reading from the CI API. The next poll retries unconditionally.
	ErrTransientFetch = errors.New("transient fetch error")

	// ErrParseAnomaly indicates a raw log line could not be fully parsed.
	// It is never fatal: the line degrades to a best-effort entry.
	ErrParseAnomaly = errors.New("log line parse anomaly")

	// ErrGitHubAuth indicates the GitHub API rejected our credentials.
	ErrGitHubAuth = errors.New("github authentication failed")

	// ErrRunNotLocated indicates no run could be found after triggering a build.
	ErrRunNotLocated = errors.New("run not located")

	// ErrRunFailed indicates the observed run completed without success.
	ErrRunFailed = errors.New("run did not succeed")

	// ErrWatchAlreadyStarted indicates Start was called on a watcher that
	// has already left the idle state.
	ErrWatchAlreadyStarted = errors.New("watch already started")

	// ErrWatchStopped indicates the watcher was stopped before the run finished.
	ErrWatchStopped = errors.New("watch stopped")

	// ErrInvalidRunID indicates a run identifier could not be parsed.
	ErrInvalidRunID = errors.New("invalid run id")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidGitHub indicates an invalid GitHub configuration value.
	ErrConfigInvalidGitHub = errors.New("invalid GitHub configuration")

	// ErrConfigInvalidWatch indicates an invalid watch configuration value.
	ErrConfigInvalidWatch = errors.New("invalid watch configuration")

	// ErrConfigInvalidHTTP indicates an invalid HTTP client configuration value.
	ErrConfigInvalidHTTP = errors.New("invalid HTTP configuration")

	// ErrConfigInvalidServer indicates an invalid server configuration value.
	ErrConfigInvalidServer = errors.New("invalid server configuration")

	// ErrConfigInvalidLocator indicates an invalid run locator configuration value.
	ErrConfigInvalidLocator = errors.New("invalid locator configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}

// IsFatalFetch reports whether a fetch error should end observation of a run
// instead of being retried on the next poll.
func IsFatalFetch(err error) bool {
	return errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrGitHubAuth)
}
