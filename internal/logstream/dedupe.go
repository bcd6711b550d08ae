package logstream

import "github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"

type entryKey struct {
	timestamp string
	message   string
	step      string
}

// Deduper drops entries a consumer has already seen, keyed by
// (timestamp, message, step). The pipeline re-delivers a job's full parsed
// log on every poll; a Deduper lets a display show each line once.
//
// A Deduper is not safe for concurrent use.
type Deduper struct {
	seen map[entryKey]struct{}
}

// NewDeduper returns an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[entryKey]struct{})}
}

// Filter returns the entries not seen before, in input order, and
// remembers them.
func (d *Deduper) Filter(entries []domain.LogEntry) []domain.LogEntry {
	fresh := make([]domain.LogEntry, 0, len(entries))
	for _, e := range entries {
		k := entryKey{timestamp: e.Timestamp, message: e.Message, step: e.Step}
		if _, ok := d.seen[k]; ok {
			continue
		}
		d.seen[k] = struct{}{}
		fresh = append(fresh, e)
	}
	return fresh
}

// Len returns the number of distinct entries seen so far.
func (d *Deduper) Len() int {
	return len(d.seen)
}
