package ci

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoglobals // fixed test clock origin
var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newTestClient starts a fake GitHub API served by mux and returns a client
// pointed at it. In-request retries are disabled so each failure is seen once.
func newTestClient(t *testing.T, mux *http.ServeMux) (*GitHubClient, *clock.Mock) {
	t.Helper()
	return newTestClientWithToken(t, mux, "")
}

// newTokenTestClient is newTestClient with an API token configured.
func newTokenTestClient(t *testing.T, mux *http.ServeMux, token string) *GitHubClient {
	t.Helper()
	client, _ := newTestClientWithToken(t, mux, token)
	return client
}

func newTestClientWithToken(t *testing.T, mux *http.ServeMux, token string) (*GitHubClient, *clock.Mock) {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	clk := clock.NewMock()
	clk.Set(testEpoch)

	client, err := NewGitHubClient(Options{
		Owner:          "acme",
		Repo:           "ee",
		Workflow:       "build-ee.yml",
		Ref:            "main",
		BaseURL:        server.URL,
		HTTPClient:     NewHTTPClient(context.Background(), HTTPOptions{Token: token}, zerolog.Nop()),
		DownloadClient: NewDownloadClient(HTTPOptions{}, zerolog.Nop()),
		Clock:          clk,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	return client, clk
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
