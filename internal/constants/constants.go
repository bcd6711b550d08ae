// Package constants provides centralized constant values used throughout eebuilder.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory and file names used by eebuilder.
const (
	// AppHome is the hidden directory name where eebuilder stores config and logs.
	// It is created in the user's home directory, and may also exist at the
	// project root for project-level configuration.
	AppHome = ".eebuilder"

	// HomeEnvVar overrides the location of AppHome.
	HomeEnvVar = "EEBUILDER_HOME"

	// EnvPrefix is the prefix for environment variable configuration overrides.
	EnvPrefix = "EEBUILDER"

	// ConfigFileName is the name of the configuration file in AppHome.
	ConfigFileName = "config.yaml"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// CLILogFileName is the name of the rotated CLI log file.
	CLILogFileName = "eebuilder.log"
)

// Log rotation settings for the CLI log file.
const (
	LogMaxSizeMB   = 10
	LogMaxBackups  = 3
	LogMaxAgeDays  = 28
	LogCompress    = true
	LogTimeDisplay = time.Kitchen
)

// Build observation defaults.
const (
	// DefaultPollInterval is the period between two polls of an in-flight run.
	DefaultPollInterval = time.Second

	// DefaultTickTimeout bounds the network calls made by one poll.
	DefaultTickTimeout = 30 * time.Second

	// MinPollInterval and MaxPollInterval bound watch.poll_interval.
	MinPollInterval = 100 * time.Millisecond
	MaxPollInterval = 5 * time.Minute

	// LogFetchConcurrency caps concurrent job-log downloads within one poll.
	LogFetchConcurrency = 4

	// JobsPerPage is the page size used when listing a run's jobs.
	JobsPerPage = 100
)

// Run locator defaults.
const (
	// DefaultLocateAttempts is how many times recent runs are listed before
	// falling back to the most recent run.
	DefaultLocateAttempts = 10

	// DefaultLocateDelay is the pause between two listing attempts.
	DefaultLocateDelay = 2 * time.Second

	// DefaultLocateWindow tolerates clock skew between us and GitHub when
	// matching a run's creation time against the trigger time.
	DefaultLocateWindow = 30 * time.Second

	// RecentRunsPerPage is how many recent runs are inspected per attempt.
	RecentRunsPerPage = 20
)

// HTTP client defaults.
const (
	DefaultHTTPRetryMax     = 2
	DefaultHTTPRetryWaitMin = 500 * time.Millisecond
	DefaultHTTPRetryWaitMax = 5 * time.Second
)

// Server defaults.
const (
	DefaultListenAddr        = "127.0.0.1:8080"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// GitHub defaults.
const (
	DefaultTokenEnvVar = "GITHUB_TOKEN"
	DefaultWorkflow    = "build-ee.yml"
	DefaultRef         = "main"
)
