package ci

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/logging"
)

// HTTPOptions configures the transport used to reach the GitHub API.
type HTTPOptions struct {
	// Token authenticates requests. Empty means anonymous access.
	Token string
	// RetryMax is the number of in-request retries for 429/5xx and
	// connection errors. Zero disables retries; the poll loop retries anyway.
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// NewHTTPClient builds an *http.Client that retries transient failures and
// attaches the bearer token. Final responses are passed through unchanged so
// the GitHub client can still read status codes and rate-limit headers.
//
// Redirects are not followed: the token transport would otherwise send the
// bearer token to whatever host the API redirects to. Log downloads resolve
// the signed URL first and fetch it with NewDownloadClient.
func NewHTTPClient(ctx context.Context, opts HTTPOptions, logger zerolog.Logger) *http.Client {
	rc := newRetryClient(opts, logger.With().Str("component", "github_http").Logger())

	if opts.Token != "" {
		rc.HTTPClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	}
	rc.HTTPClient.CheckRedirect = stopAtRedirect

	return rc.StandardClient()
}

// NewDownloadClient builds the client used for signed log-download URLs.
// It never carries credentials; opts.Token is ignored.
func NewDownloadClient(opts HTTPOptions, logger zerolog.Logger) *http.Client {
	rc := newRetryClient(opts, logger.With().Str("component", "log_download").Logger())
	return rc.StandardClient()
}

func newRetryClient(opts HTTPOptions, logger zerolog.Logger) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{logger: logger}
	return rc
}

func stopAtRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
// Request attempts are noisy, so they are logged at debug level.
type leveledLogger struct {
	logger zerolog.Logger
}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(redact(keysAndValues)).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(redact(keysAndValues)).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(redact(keysAndValues)).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(redact(keysAndValues)).Msg(msg)
}

// redact filters string values so a signed log-download URL never ends up
// in a log file.
func redact(keysAndValues []interface{}) []interface{} {
	out := make([]interface{}, len(keysAndValues))
	for i, v := range keysAndValues {
		switch val := v.(type) {
		case string:
			v = logging.FilterSensitiveValue(val)
		case fmt.Stringer:
			v = logging.FilterSensitiveValue(val.String())
		}
		out[i] = v
	}
	return out
}
