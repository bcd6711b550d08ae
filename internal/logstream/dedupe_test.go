package logstream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
)

func TestDeduper_Filter(t *testing.T) {
	t.Parallel()

	d := NewDeduper()
	first := ParseRawLog("2024-01-01T00:00:00Z one\n2024-01-01T00:00:01Z two", "build", testNow)
	assert.Len(t, d.Filter(first), 2)

	// The runner appended a line; the full text is re-delivered.
	second := ParseRawLog("2024-01-01T00:00:00Z one\n2024-01-01T00:00:01Z two\n2024-01-01T00:00:02Z three", "build", testNow)
	fresh := d.Filter(second)

	assert.Equal(t, []domain.LogEntry{{
		Timestamp: "2024-01-01T00:00:02Z",
		Message:   "three",
		Step:      "build",
		Level:     domain.LevelInfo,
	}}, fresh)
	assert.Equal(t, 3, d.Len())
}

func TestDeduper_StepIsPartOfKey(t *testing.T) {
	t.Parallel()

	d := NewDeduper()
	line := domain.LogEntry{Timestamp: "2024-01-01T00:00:00Z", Message: "done", Level: domain.LevelSuccess}

	a, b := line, line
	a.Step = "build"
	b.Step = "publish"

	assert.Len(t, d.Filter([]domain.LogEntry{a, b, a}), 2)
}
