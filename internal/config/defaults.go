package config

import (
	"github.com/spf13/viper"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/constants"
)

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			Workflow:    constants.DefaultWorkflow,
			Ref:         constants.DefaultRef,
			TokenEnvVar: constants.DefaultTokenEnvVar,
		},
		Watch: WatchConfig{
			// One second keeps the UI live; the in-flight guard absorbs slow polls.
			PollInterval: constants.DefaultPollInterval,
			TickTimeout:  constants.DefaultTickTimeout,
			Dedupe:       true,
		},
		HTTP: HTTPConfig{
			RetryMax:     constants.DefaultHTTPRetryMax,
			RetryWaitMin: constants.DefaultHTTPRetryWaitMin,
			RetryWaitMax: constants.DefaultHTTPRetryWaitMax,
		},
		Server: ServerConfig{
			ListenAddr:        constants.DefaultListenAddr,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			ShutdownTimeout:   constants.DefaultShutdownTimeout,
		},
		Locator: LocatorConfig{
			Attempts: constants.DefaultLocateAttempts,
			Delay:    constants.DefaultLocateDelay,
			Window:   constants.DefaultLocateWindow,
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly. Every key needs a
// default, otherwise AutomaticEnv cannot see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("github.owner", d.GitHub.Owner)
	v.SetDefault("github.repo", d.GitHub.Repo)
	v.SetDefault("github.workflow", d.GitHub.Workflow)
	v.SetDefault("github.ref", d.GitHub.Ref)
	v.SetDefault("github.token_env_var", d.GitHub.TokenEnvVar)
	v.SetDefault("github.api_base_url", d.GitHub.APIBaseURL)

	v.SetDefault("watch.poll_interval", d.Watch.PollInterval.String())
	v.SetDefault("watch.tick_timeout", d.Watch.TickTimeout.String())
	v.SetDefault("watch.dedupe", d.Watch.Dedupe)

	v.SetDefault("http.retry_max", d.HTTP.RetryMax)
	v.SetDefault("http.retry_wait_min", d.HTTP.RetryWaitMin.String())
	v.SetDefault("http.retry_wait_max", d.HTTP.RetryWaitMax.String())

	v.SetDefault("server.listen_addr", d.Server.ListenAddr)
	v.SetDefault("server.read_header_timeout", d.Server.ReadHeaderTimeout.String())
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout.String())

	v.SetDefault("locator.attempts", d.Locator.Attempts)
	v.SetDefault("locator.delay", d.Locator.Delay.String())
	v.SetDefault("locator.window", d.Locator.Window.String())
}
