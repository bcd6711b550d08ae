// Package ci reads build runs from the GitHub Actions REST API.
//
// GitHubClient is the snapshot fetcher of the observation pipeline: it turns
// API responses into domain snapshots and maps API failures onto the fetch
// error taxonomy (errors.ErrRunNotFound, errors.ErrGitHubAuth,
// errors.ErrTransientFetch). It also locates the run created by a
// workflow_dispatch trigger.
package ci

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/go-github/v56/github"
	"github.com/rs/zerolog"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

// Options configures a GitHubClient.
type Options struct {
	// Owner and Repo name the repository that runs the image build workflow.
	Owner string
	Repo  string
	// Workflow is the workflow file name used for dispatch and run lookup.
	Workflow string
	// Ref is the git ref a dispatched workflow runs on.
	Ref string
	// BaseURL overrides the API endpoint, e.g. https://ghe.example.com/api/v3/.
	BaseURL string
	// HTTPClient performs API requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	// DownloadClient fetches signed log URLs. It must not attach the API
	// token. Defaults to NewDownloadClient with in-request retries disabled.
	DownloadClient *http.Client
	// Clock provides the time. Defaults to the wall clock.
	Clock clock.Clock
	// Logger receives client diagnostics.
	Logger zerolog.Logger
}

// GitHubClient talks to the GitHub Actions API for one repository.
type GitHubClient struct {
	gh       *github.Client
	download *http.Client
	owner    string
	repo     string
	workflow string
	ref      string
	clock    clock.Clock
	logger   zerolog.Logger
}

// NewGitHubClient creates a client for the repository named in opts.
func NewGitHubClient(opts Options) (*GitHubClient, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, errors.Wrap(errors.ErrEmptyValue, "github owner and repo are required")
	}

	gh := github.NewClient(opts.HTTPClient)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid github api url %q", opts.BaseURL)
		}
		gh.BaseURL = u
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	download := opts.DownloadClient
	if download == nil {
		download = NewDownloadClient(HTTPOptions{}, opts.Logger)
	}

	return &GitHubClient{
		gh:       gh,
		download: download,
		owner:    opts.Owner,
		repo:     opts.Repo,
		workflow: opts.Workflow,
		ref:      opts.Ref,
		clock:    clk,
		logger:   opts.Logger.With().Str("component", "github").Str("repo", opts.Owner+"/"+opts.Repo).Logger(),
	}, nil
}
