package logstream

import (
	"slices"
	"strings"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
)

// Merge concatenates status entries and parsed entries and stable-sorts the
// result by timestamp. Nothing is filtered or de-duplicated, and entries with
// equal timestamps keep their input order, so status entries come first.
func Merge(status, parsed []domain.LogEntry) []domain.LogEntry {
	merged := make([]domain.LogEntry, 0, len(status)+len(parsed))
	merged = append(merged, status...)
	merged = append(merged, parsed...)
	slices.SortStableFunc(merged, CompareTimestamps)
	return merged
}

// CompareTimestamps orders entries chronologically. Timestamps of different
// precision are compared as instants. Timestamps that do not parse sort
// after every parseable one, and among themselves by their literal text.
func CompareTimestamps(a, b domain.LogEntry) int {
	ta, errA := domain.ParseTimestamp(a.Timestamp)
	tb, errB := domain.ParseTimestamp(b.Timestamp)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a.Timestamp, b.Timestamp)
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	default:
		return ta.Compare(tb)
	}
}
