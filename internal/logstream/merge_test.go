package logstream

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
)

func entryAt(offset time.Duration, msg string) domain.LogEntry {
	return domain.LogEntry{Timestamp: domain.FormatTimestamp(testNow.Add(offset)), Message: msg, Level: domain.LevelInfo}
}

func TestMerge_OrdersByTimestamp(t *testing.T) {
	t.Parallel()

	status := []domain.LogEntry{entryAt(2*time.Second, "job started"), entryAt(0, "job queued")}
	parsed := []domain.LogEntry{entryAt(time.Second, "line 1"), entryAt(3*time.Second, "line 2")}

	merged := Merge(status, parsed)

	var got []string
	for _, e := range merged {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"job queued", "line 1", "job started", "line 2"}, got)
}

func TestMerge_TiesKeepStatusFirst(t *testing.T) {
	t.Parallel()

	status := []domain.LogEntry{entryAt(0, "status a"), entryAt(0, "status b")}
	parsed := []domain.LogEntry{entryAt(0, "parsed a"), entryAt(0, "parsed b")}

	merged := Merge(status, parsed)

	var got []string
	for _, e := range merged {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"status a", "status b", "parsed a", "parsed b"}, got)
}

func TestMerge_MixedPrecision(t *testing.T) {
	t.Parallel()

	status := []domain.LogEntry{{Timestamp: "2024-01-01T00:00:00.500Z", Message: "synthetic"}}
	parsed := []domain.LogEntry{
		{Timestamp: "2024-01-01T00:00:00.4999999Z", Message: "before"},
		{Timestamp: "2024-01-01T00:00:00.5000001Z", Message: "after"},
	}

	merged := Merge(status, parsed)

	assert.Equal(t, "before", merged[0].Message)
	assert.Equal(t, "synthetic", merged[1].Message)
	assert.Equal(t, "after", merged[2].Message)
}

func TestMerge_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Merge(nil, nil))
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	t.Parallel()

	status := []domain.LogEntry{entryAt(time.Second, "b"), entryAt(0, "a")}
	_ = Merge(status, nil)

	assert.Equal(t, "b", status[0].Message)
}

func TestMerge_UnparseableTimestampsSortLast(t *testing.T) {
	t.Parallel()

	bad := func(ts, msg string) domain.LogEntry {
		return domain.LogEntry{Timestamp: ts, Message: msg, Level: domain.LevelInfo}
	}
	// "0000" sorts before any RFC 3339 text, so a literal comparison would
	// put it first.
	status := []domain.LogEntry{bad("zzz", "late garbage"), entryAt(2*time.Second, "job started")}
	parsed := []domain.LogEntry{bad("0000", "early garbage"), entryAt(time.Second, "line 1")}

	var got []string
	for _, e := range Merge(status, parsed) {
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{"line 1", "job started", "early garbage", "late garbage"}, got)
}

func TestCompareTimestamps_ConsistentWithMixedInput(t *testing.T) {
	t.Parallel()

	entries := []domain.LogEntry{
		entryAt(0, "a"),
		entryAt(time.Second, "b"),
		{Timestamp: "0000"},
		{Timestamp: "not a time"},
		{Timestamp: ""},
	}

	for _, a := range entries {
		assert.Zero(t, CompareTimestamps(a, a), a.Timestamp)
		for _, b := range entries {
			assert.Equal(t, -CompareTimestamps(a, b), CompareTimestamps(b, a), "%q vs %q", a.Timestamp, b.Timestamp)
			for _, c := range entries {
				if CompareTimestamps(a, b) < 0 && CompareTimestamps(b, c) < 0 {
					assert.Negative(t, CompareTimestamps(a, c), "%q < %q < %q", a.Timestamp, b.Timestamp, c.Timestamp)
				}
			}
		}
	}
}

func TestMerge_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	toEntries := func(offsets []int64, prefix string) []domain.LogEntry {
		out := make([]domain.LogEntry, len(offsets))
		for i, ms := range offsets {
			out[i] = entryAt(time.Duration(ms)*time.Millisecond, prefix)
		}
		return out
	}

	properties.Property("length is the sum of inputs", prop.ForAll(
		func(a, b []int64) bool {
			return len(Merge(toEntries(a, "s"), toEntries(b, "p"))) == len(a)+len(b)
		},
		gen.SliceOf(gen.Int64Range(0, 10_000)),
		gen.SliceOf(gen.Int64Range(0, 10_000)),
	))

	properties.Property("output is non-decreasing", prop.ForAll(
		func(a, b []int64) bool {
			merged := Merge(toEntries(a, "s"), toEntries(b, "p"))
			for i := 1; i < len(merged); i++ {
				if CompareTimestamps(merged[i-1], merged[i]) > 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(0, 10_000)),
		gen.SliceOf(gen.Int64Range(0, 10_000)),
	))

	properties.TestingRun(t)
}
