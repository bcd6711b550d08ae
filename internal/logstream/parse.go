package logstream

import (
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

// leadingTimestamp matches the runner convention of an ISO-8601 timestamp
// followed by one blank and the message.
var leadingTimestamp = regexp.MustCompile( //nolint:gochecknoglobals // compiled once
	`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2}))(?:[ \t](.*))?$`,
)

// levelRule maps message substrings to a level. Rules are checked in order
// and the first hit wins.
type levelRule struct {
	level    domain.Level
	patterns []string
}

//nolint:gochecknoglobals // immutable classification table
var levelRules = []levelRule{
	{domain.LevelError, []string{"error", "failed"}},
	{domain.LevelWarning, []string{"warning", "warn"}},
	{domain.LevelSuccess, []string{"completed", "success", "succeed"}},
}

// ParseRawLog converts the raw log text of one job into entries.
//
// Blank lines are dropped; every other line yields exactly one entry whose
// Step is jobName. Lines without a leading timestamp are stamped with now.
func ParseRawLog(raw, jobName string, now time.Time) []domain.LogEntry {
	entries, _ := ParseRawLogWithAnomalies(raw, jobName, now)
	return entries
}

// ParseRawLogWithAnomalies is ParseRawLog that also returns the anomalies met
// on the way. Each anomaly wraps errors.ErrParseAnomaly; the affected line
// is still present in the entries.
func ParseRawLogWithAnomalies(raw, jobName string, now time.Time) ([]domain.LogEntry, []error) {
	if raw == "" {
		return nil, nil
	}

	fallback := domain.FormatTimestamp(now)
	lines := strings.Split(raw, "\n")

	entries := make([]domain.LogEntry, 0, len(lines))
	var anomalies []error
	for i, line := range lines {
		if i == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimRight(ansi.Strip(line), "\r \t")
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := parseLine(line, fallback)
		if err != nil {
			anomalies = append(anomalies, errors.Wrapf(err, "line %d", i+1))
		}
		entry.Step = jobName
		entries = append(entries, entry)
	}
	return entries, anomalies
}

// parseLine never fails to produce an entry; the error only reports how
// the line was degraded.
func parseLine(line, fallback string) (domain.LogEntry, error) {
	m := leadingTimestamp.FindStringSubmatch(line)
	if m == nil {
		return domain.LogEntry{Timestamp: fallback, Message: line, Level: Classify(line)}, nil
	}

	ts, msg := m[1], m[2]
	if _, err := domain.ParseTimestamp(ts); err != nil {
		return domain.LogEntry{Timestamp: fallback, Message: line, Level: Classify(line)},
			errors.Classify(errors.ErrParseAnomaly, err)
	}
	if strings.TrimSpace(msg) == "" {
		return domain.LogEntry{Timestamp: ts, Message: line, Level: domain.LevelInfo},
			errors.Wrap(errors.ErrParseAnomaly, "timestamp without message")
	}
	return domain.LogEntry{Timestamp: ts, Message: msg, Level: Classify(msg)}, nil
}

// Classify picks a level for a message by case-insensitive substring match:
// error/failed, then warning/warn, then completed/success/succeed, else info.
func Classify(message string) domain.Level {
	lower := strings.ToLower(message)
	for _, rule := range levelRules {
		for _, p := range rule.patterns {
			if strings.Contains(lower, p) {
				return rule.level
			}
		}
	}
	return domain.LevelInfo
}
