package cli

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/ci"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/config"
)

// repoFlags are the per-command repository overrides shared by watch, build and serve.
type repoFlags struct {
	owner    string
	repo     string
	workflow string
	ref      string
}

func (f *repoFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.owner, "owner", "", "repository owner (overrides github.owner)")
	fs.StringVar(&f.repo, "repo", "", "repository name or owner/name (overrides github.repo)")
	fs.StringVar(&f.workflow, "workflow", "", "workflow file (overrides github.workflow)")
	fs.StringVar(&f.ref, "ref", "", "git ref to dispatch on (overrides github.ref)")
}

func (f *repoFlags) overrides() *config.Config {
	owner, repo := f.owner, f.repo
	if o, r, ok := strings.Cut(repo, "/"); ok && owner == "" {
		owner, repo = o, r
	}
	return &config.Config{GitHub: config.GitHubConfig{
		Owner:    owner,
		Repo:     repo,
		Workflow: f.workflow,
		Ref:      f.ref,
	}}
}

// loadRepoConfig loads the layered config with flag overrides and requires
// a repository to be configured.
func loadRepoConfig(ctx context.Context, flags *GlobalFlags, repo *repoFlags) (*config.Config, error) {
	cfg, err := config.LoadWithOverrides(ctx, flags.ConfigFile, repo.overrides())
	if err != nil {
		return nil, err
	}
	if err := config.RequireRepository(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newGitHubClient builds the GitHub client described by cfg. The token is
// read from the environment variable named by github.token_env_var.
func newGitHubClient(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*ci.GitHubClient, error) {
	httpOpts := ci.HTTPOptions{
		Token:        cfg.GitHub.Token(),
		RetryMax:     cfg.HTTP.RetryMax,
		RetryWaitMin: cfg.HTTP.RetryWaitMin,
		RetryWaitMax: cfg.HTTP.RetryWaitMax,
	}

	if cfg.GitHub.Token() == "" {
		logger.Warn().
			Str("env_var", cfg.GitHub.TokenEnvVar).
			Msg("no GitHub token set, requests are unauthenticated and heavily rate limited")
	}

	return ci.NewGitHubClient(ci.Options{
		Owner:          cfg.GitHub.Owner,
		Repo:           cfg.GitHub.Repo,
		Workflow:       cfg.GitHub.Workflow,
		Ref:            cfg.GitHub.Ref,
		BaseURL:        cfg.GitHub.APIBaseURL,
		HTTPClient:     ci.NewHTTPClient(ctx, httpOpts, logger),
		DownloadClient: ci.NewDownloadClient(httpOpts, logger),
		Logger:         logger,
	})
}

func locateOptions(cfg *config.Config) ci.LocateOptions {
	return ci.LocateOptions{
		Attempts: cfg.Locator.Attempts,
		Delay:    cfg.Locator.Delay,
		Window:   cfg.Locator.Window,
	}
}
