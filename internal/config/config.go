// Package config provides configuration management for eebuilder with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (EEBUILDER_* prefix, dots become underscores)
//  3. An explicit config file (--config)
//  4. Project config (.eebuilder/config.yaml)
//  5. Global config (~/.eebuilder/config.yaml)
//  6. Built-in defaults
//
// This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import (
	"os"
	"time"
)

// Config is the root configuration structure for eebuilder.
type Config struct {
	// GitHub identifies the repository and workflow that builds the images.
	GitHub GitHubConfig `yaml:"github" mapstructure:"github"`

	// Watch controls the poll loop.
	Watch WatchConfig `yaml:"watch" mapstructure:"watch"`

	// HTTP controls in-request retries of the GitHub transport.
	HTTP HTTPConfig `yaml:"http" mapstructure:"http"`

	// Server controls the `serve` HTTP surface.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Locator controls how a freshly dispatched run is found.
	Locator LocatorConfig `yaml:"locator" mapstructure:"locator"`
}

// GitHubConfig contains repository and workflow settings.
type GitHubConfig struct {
	// Owner is the repository owner (user or organization).
	Owner string `yaml:"owner" mapstructure:"owner"`

	// Repo is the repository name.
	Repo string `yaml:"repo" mapstructure:"repo"`

	// Workflow is the workflow file name dispatched by `build`.
	// Default: "build-ee.yml"
	Workflow string `yaml:"workflow" mapstructure:"workflow"`

	// Ref is the git ref the workflow is dispatched on.
	// Default: "main"
	Ref string `yaml:"ref" mapstructure:"ref"`

	// TokenEnvVar names the environment variable holding the API token.
	// The token itself never lives in a config file.
	// Default: "GITHUB_TOKEN"
	TokenEnvVar string `yaml:"token_env_var" mapstructure:"token_env_var"`

	// APIBaseURL overrides the REST endpoint, e.g. for GitHub Enterprise.
	// Empty means api.github.com.
	APIBaseURL string `yaml:"api_base_url" mapstructure:"api_base_url"`
}

// Token returns the API token from the configured environment variable.
func (g GitHubConfig) Token() string {
	if g.TokenEnvVar == "" {
		return ""
	}
	return os.Getenv(g.TokenEnvVar)
}

// HasRepository reports whether both owner and repo are set.
func (g GitHubConfig) HasRepository() bool {
	return g.Owner != "" && g.Repo != ""
}

// WatchConfig contains poll loop settings.
type WatchConfig struct {
	// PollInterval is the period between two polls.
	// Default: 1s
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// TickTimeout bounds the network calls of a single poll.
	// Default: 30s
	TickTimeout time.Duration `yaml:"tick_timeout" mapstructure:"tick_timeout"`

	// Dedupe drops log entries already delivered to the consumer.
	// Default: true
	Dedupe bool `yaml:"dedupe" mapstructure:"dedupe"`
}

// HTTPConfig contains GitHub transport retry settings.
type HTTPConfig struct {
	// RetryMax is the number of in-request retries for 5xx and network errors.
	// Default: 2
	RetryMax int `yaml:"retry_max" mapstructure:"retry_max"`

	// RetryWaitMin is the initial backoff.
	RetryWaitMin time.Duration `yaml:"retry_wait_min" mapstructure:"retry_wait_min"`

	// RetryWaitMax caps the backoff.
	RetryWaitMax time.Duration `yaml:"retry_wait_max" mapstructure:"retry_wait_max"`
}

// ServerConfig contains `serve` settings.
type ServerConfig struct {
	// ListenAddr is the address the HTTP server binds to.
	// Default: "127.0.0.1:8080"
	ListenAddr string `yaml:"listen_addr" mapstructure:"listen_addr"`

	// ReadHeaderTimeout bounds how long a client may take to send headers.
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LocatorConfig contains run locator settings.
type LocatorConfig struct {
	// Attempts is how many times recent runs are listed before falling back.
	// Default: 10
	Attempts int `yaml:"attempts" mapstructure:"attempts"`

	// Delay is the pause between attempts.
	// Default: 2s
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`

	// Window tolerates clock skew when matching creation time to trigger time.
	// Default: 30s
	Window time.Duration `yaml:"window" mapstructure:"window"`
}
