package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice (not a map) because errors.Is() requires chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	{
		err: ErrRunNotFound,
		info: ErrorInfo{
			Message: "The build run could not be found. It may have been deleted.",
			Action:  "Check the run id and that the token can read the repository's Actions.",
		},
	},
	{
		err: ErrTransientFetch,
		info: ErrorInfo{
			Message: "Could not reach GitHub. Retrying on the next poll.",
			Action:  "Check your network connection and API rate limit.",
		},
	},
	{
		err: ErrGitHubAuth,
		info: ErrorInfo{
			Message: "GitHub rejected the configured credentials.",
			Action:  "Set GITHUB_TOKEN (or github.token_env_var) to a token with actions:read.",
		},
	},
	{
		err: ErrRunNotLocated,
		info: ErrorInfo{
			Message: "The build was triggered but its run could not be located.",
			Action:  "Open the repository's Actions tab and run 'eebuilder watch <run-id>' manually.",
		},
	},
	{
		err: ErrRunFailed,
		info: ErrorInfo{
			Message: "The image build did not succeed. Check the log output above.",
			Action:  "Fix the execution environment definition and trigger a new build.",
		},
	},
	{
		err: ErrInvalidRunID,
		info: ErrorInfo{
			Message: "Run ids are positive integers.",
			Action:  "Copy the numeric id from the run URL (…/actions/runs/<id>).",
		},
	},
	{
		err: ErrConfigInvalidGitHub,
		info: ErrorInfo{
			Message: "The github section of the configuration is invalid.",
			Action:  "Run 'eebuilder config show' and fix github.owner, github.repo or github.workflow.",
		},
	},
	{
		err: ErrConfigInvalidWatch,
		info: ErrorInfo{
			Message: "The watch section of the configuration is invalid.",
			Action:  "Run 'eebuilder config show' and check watch.poll_interval and watch.tick_timeout.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Unknown output format.",
			Action:  "Use --output text or --output json.",
		},
	},
}

//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Direct sentinels hit the map; wrapped errors fall back to errors.Is().
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
