package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/constants"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

// newViperInstance creates a Viper instance with defaults and EEBUILDER_*
// environment overrides (github.owner -> EEBUILDER_GITHUB_OWNER).
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config and validates it.
func unmarshalAndValidate(ctx context.Context, v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("github.owner", cfg.GitHub.Owner).
		Str("github.repo", cfg.GitHub.Repo).
		Str("github.workflow", cfg.GitHub.Workflow).
		Dur("watch.poll_interval", cfg.Watch.PollInterval).
		Dur("watch.tick_timeout", cfg.Watch.TickTimeout).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence:
// environment, project config, global config, then defaults.
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, "")
}

// LoadFile behaves like Load and additionally merges an explicit config file
// over the project and global files. Unlike those, an explicit file that
// does not exist is an error.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := mergeIfExists(v, ProjectConfigPath(), "failed to read project config file"); err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "config file %s", path)
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	return unmarshalAndValidate(ctx, v)
}

// loadGlobalConfig loads ~/.eebuilder/config.yaml when it exists.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil {
		// Home directory unavailable, skip silently
		return nil //nolint:nilerr // a missing home directory just means no global config
	}
	return mergeIfExists(v, globalConfigPath, "failed to read global config file")
}

// mergeIfExists merges the config file at path into v, skipping files that
// do not exist.
func mergeIfExists(v *viper.Viper, path, msg string) error {
	if !fileExists(path) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, msg)
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadFromPaths loads configuration from specific file paths.
// Either path can be empty to skip that level; the project file wins.
func LoadFromPaths(ctx context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		if err := mergeIfExists(v, globalConfigPath, "failed to read global config: "+globalConfigPath); err != nil {
			return nil, err
		}
	}
	if projectConfigPath != "" {
		if err := mergeIfExists(v, projectConfigPath, "failed to read project config: "+projectConfigPath); err != nil {
			return nil, err
		}
	}

	return unmarshalAndValidate(ctx, v)
}

// LoadWithOverrides loads configuration and applies CLI flag overrides,
// which have the highest precedence. Only non-zero override values apply.
func LoadWithOverrides(ctx context.Context, configFile string, overrides *Config) (*Config, error) {
	cfg, err := LoadFile(ctx, configFile)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// applyOverrides merges non-zero override values into the config.
//
// Boolean fields (Watch.Dedupe) cannot be overridden to false here because
// false is indistinguishable from unset. The CLI handles them with
// cmd.Flags().Changed.
func applyOverrides(cfg, overrides *Config) {
	applyGitHubOverrides(&cfg.GitHub, &overrides.GitHub)

	if overrides.Watch.PollInterval != 0 {
		cfg.Watch.PollInterval = overrides.Watch.PollInterval
	}
	if overrides.Watch.TickTimeout != 0 {
		cfg.Watch.TickTimeout = overrides.Watch.TickTimeout
	}
	if overrides.Server.ListenAddr != "" {
		cfg.Server.ListenAddr = overrides.Server.ListenAddr
	}
	if overrides.Locator.Attempts != 0 {
		cfg.Locator.Attempts = overrides.Locator.Attempts
	}
}

func applyGitHubOverrides(cfg, overrides *GitHubConfig) {
	if overrides.Owner != "" {
		cfg.Owner = overrides.Owner
	}
	if overrides.Repo != "" {
		cfg.Repo = overrides.Repo
	}
	if overrides.Workflow != "" {
		cfg.Workflow = overrides.Workflow
	}
	if overrides.Ref != "" {
		cfg.Ref = overrides.Ref
	}
	if overrides.TokenEnvVar != "" {
		cfg.TokenEnvVar = overrides.TokenEnvVar
	}
	if overrides.APIBaseURL != "" {
		cfg.APIBaseURL = overrides.APIBaseURL
	}
}

// viperDecoderOption configures mapstructure to decode durations from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
