// Package logging provides zerolog helpers that keep credentials out of logs.
//
// GitHub tokens travel in Authorization headers and job log downloads are
// served from pre-signed URLs, so both have to be scrubbed before anything
// reaches the console or the rotating log file.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// redactionRule replaces matches of pattern with replacement.
type redactionRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// sensitivePatterns match credential formats that can show up in messages,
// request URLs, and error strings.
var sensitivePatterns = []redactionRule{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_) and fine-grained PATs
	{regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`), RedactedValue},
	{regexp.MustCompile(`github_pat_[a-zA-Z0-9_]{22,}`), RedactedValue},

	// Bearer and token authorization schemes
	{regexp.MustCompile(`(?i)\b(bearer|token)\s+[a-zA-Z0-9_.-]{20,}`), RedactedValue},

	// Authorization headers with values
	{regexp.MustCompile(`(?i)authorization\s*[:=]\s*["']?[a-zA-Z0-9_.-]{20,}["']?`), RedactedValue},

	// Signature and token query parameters on pre-signed log download URLs.
	// The parameter name is kept so redacted URLs stay readable.
	{
		regexp.MustCompile(`(?i)([?&](?:sig|signature|x-amz-signature|x-amz-credential|x-amz-security-token|token|jwt)=)[^&\s"']+`),
		"${1}" + RedactedValue,
	},

	// Generic secret assignments
	{regexp.MustCompile(`(?i)(secret|password|credential|passwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`), RedactedValue},
}

// sensitiveFieldNames are log field names whose values are always redacted.
// Matching is case-insensitive.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"token",
	"password",
	"passwd",
	"secret",
	"credential",
	"authorization",
	"bearer",
}

// SensitiveDataHook is a zerolog hook that flags events whose message carries
// something that looks like a credential.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
// zerolog does not allow rewriting the message from a hook, so the event is
// marked instead; FilteringWriter does the actual scrubbing on output.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, rule := range sensitivePatterns {
		if rule.pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every sensitive match in value with [REDACTED].
func FilterSensitiveValue(value string) string {
	result := value
	for _, rule := range sensitivePatterns {
		result = rule.pattern.ReplaceAllString(result, rule.replacement)
	}
	return result
}

// IsSensitiveFieldName reports whether a field name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns [REDACTED] for sensitive field names and the filtered
// value otherwise.
//
//	logger.Debug().Str("url", logging.SafeValue("url", u)).Msg("fetching logs")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter wraps an io.Writer and scrubs sensitive data from output.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter around w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports the original length so callers
// never see a short write when redaction shrinks the payload.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// FilteringWriteCloser pairs a FilteringWriter with the closer of the
// underlying sink, typically a rotating log file.
type FilteringWriteCloser struct {
	*FilteringWriter
	closer io.Closer
}

// NewFilteringWriteCloser wraps wc so everything written is scrubbed first.
func NewFilteringWriteCloser(wc io.WriteCloser) *FilteringWriteCloser {
	return &FilteringWriteCloser{FilteringWriter: NewFilteringWriter(wc), closer: wc}
}

// Close closes the underlying sink.
func (f *FilteringWriteCloser) Close() error {
	return f.closer.Close()
}
