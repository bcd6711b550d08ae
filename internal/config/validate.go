package config

import (
	"net/url"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/constants"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

// maxHTTPRetries caps http.retry_max so a flapping API cannot stall a poll.
const maxHTTPRetries = 10

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Owner and repo are not required here; commands that talk to GitHub check
// them with RequireRepository so `config show` works on a fresh install.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	validators := []func(*Config) error{
		validateGitHubConfig,
		validateWatchConfig,
		validateHTTPConfig,
		validateServerConfig,
		validateLocatorConfig,
	}
	for _, validate := range validators {
		if err := validate(cfg); err != nil {
			return err
		}
	}
	return nil
}

// RequireRepository returns an error unless github.owner and github.repo are set.
func RequireRepository(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if !cfg.GitHub.HasRepository() {
		return errors.Wrap(errors.ErrConfigInvalidGitHub,
			"github.owner and github.repo must be set (config file, EEBUILDER_GITHUB_OWNER/EEBUILDER_GITHUB_REPO, or --repo owner/name)")
	}
	return nil
}

func validateGitHubConfig(cfg *Config) error {
	gh := cfg.GitHub
	if gh.Workflow == "" {
		return errors.Wrap(errors.ErrConfigInvalidGitHub, "github.workflow must not be empty")
	}
	if gh.Ref == "" {
		return errors.Wrap(errors.ErrConfigInvalidGitHub, "github.ref must not be empty")
	}
	if gh.TokenEnvVar == "" {
		return errors.Wrap(errors.ErrConfigInvalidGitHub, "github.token_env_var must not be empty")
	}
	if gh.APIBaseURL != "" {
		u, err := url.Parse(gh.APIBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Wrapf(errors.ErrConfigInvalidGitHub,
				"github.api_base_url must be an absolute URL, got %q", gh.APIBaseURL)
		}
	}
	return nil
}

func validateWatchConfig(cfg *Config) error {
	w := cfg.Watch
	if w.PollInterval < constants.MinPollInterval || w.PollInterval > constants.MaxPollInterval {
		return errors.Wrapf(errors.ErrConfigInvalidWatch,
			"watch.poll_interval must be between %s and %s, got %s",
			constants.MinPollInterval, constants.MaxPollInterval, w.PollInterval)
	}
	if w.TickTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWatch,
			"watch.tick_timeout must be positive, got %s", w.TickTimeout)
	}
	return nil
}

func validateHTTPConfig(cfg *Config) error {
	h := cfg.HTTP
	if h.RetryMax < 0 || h.RetryMax > maxHTTPRetries {
		return errors.Wrapf(errors.ErrConfigInvalidHTTP,
			"http.retry_max must be between 0 and %d, got %d", maxHTTPRetries, h.RetryMax)
	}
	if h.RetryWaitMin <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidHTTP,
			"http.retry_wait_min must be positive, got %s", h.RetryWaitMin)
	}
	if h.RetryWaitMax < h.RetryWaitMin {
		return errors.Wrapf(errors.ErrConfigInvalidHTTP,
			"http.retry_wait_max (%s) must not be below http.retry_wait_min (%s)", h.RetryWaitMax, h.RetryWaitMin)
	}
	return nil
}

func validateServerConfig(cfg *Config) error {
	s := cfg.Server
	if s.ListenAddr == "" {
		return errors.Wrap(errors.ErrConfigInvalidServer, "server.listen_addr must not be empty")
	}
	if s.ReadHeaderTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.read_header_timeout must be positive, got %s", s.ReadHeaderTimeout)
	}
	if s.ShutdownTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.shutdown_timeout must be positive, got %s", s.ShutdownTimeout)
	}
	return nil
}

func validateLocatorConfig(cfg *Config) error {
	l := cfg.Locator
	if l.Attempts < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidLocator,
			"locator.attempts must be at least 1, got %d", l.Attempts)
	}
	if l.Delay < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLocator,
			"locator.delay cannot be negative, got %s", l.Delay)
	}
	if l.Window < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLocator,
			"locator.window cannot be negative, got %s", l.Window)
	}
	return nil
}
