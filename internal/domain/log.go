package domain

import "time"

// Level classifies a LogEntry for display.
type Level string

// Log levels.
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// TimestampLayout is the ISO-8601 form used for synthetic entries:
// UTC with millisecond precision, e.g. 2024-01-01T00:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// LogEntry is one line of the reconstructed build log.
//
// Entries are values: once emitted they are never changed or removed.
// Timestamp is kept as a string so that timestamps read from the runner's
// own log text are reproduced exactly as written.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Step      string `json:"step,omitempty"`
	Level     Level  `json:"level"`
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp with any fractional precision.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
