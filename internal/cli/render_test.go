package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/watch"
)

func TestTextRenderer_StatusPrintedOnChange(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := newTextRenderer(&out)

	require.NoError(t, r.Render(watch.Update{RunID: 7, Tick: 1, Status: domain.StatusQueued}))
	require.NoError(t, r.Render(watch.Update{RunID: 7, Tick: 2, Status: domain.StatusQueued}))
	require.NoError(t, r.Render(watch.Update{RunID: 7, Tick: 3, Status: domain.StatusInProgress}))

	assert.Equal(t, 1, strings.Count(out.String(), "run 7: queued"))
	assert.Equal(t, 1, strings.Count(out.String(), "run 7: in_progress"))
}

func TestTextRenderer_RetryNoticeOnce(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := newTextRenderer(&out)
	transient := watch.Update{RunID: 7, Err: errors.ErrTransientFetch, Indicator: watch.IndicatorRetrying}

	require.NoError(t, r.Render(transient))
	require.NoError(t, r.Render(transient))
	require.NoError(t, r.Render(watch.Update{RunID: 7, Indicator: watch.IndicatorPolling}))

	assert.Equal(t, 1, strings.Count(out.String(), "connection lost, retrying"))
	assert.Equal(t, 1, strings.Count(out.String(), "connection restored"))
}

func TestTextRenderer_FatalErrorHasNoFinishLine(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := newTextRenderer(&out)

	require.NoError(t, r.Render(watch.Update{
		RunID: 7, Err: errors.ErrRunNotFound, Indicator: watch.IndicatorStopped, Terminal: true,
	}))

	assert.NotContains(t, out.String(), "finished")
	assert.Contains(t, out.String(), errors.UserMessage(errors.ErrRunNotFound))
}

func TestTextRenderer_FormatEntry(t *testing.T) {
	t.Parallel()

	r := newTextRenderer(&bytes.Buffer{})

	tests := []struct {
		name  string
		entry domain.LogEntry
		want  string
	}{
		{
			name:  "timestamp shortened",
			entry: domain.LogEntry{Timestamp: "2024-01-01T10:20:30.123456789Z", Message: "hello", Step: "build"},
			want:  "10:20:30.123 build hello",
		},
		{
			name:  "unparseable timestamp kept",
			entry: domain.LogEntry{Timestamp: "yesterday", Message: "hello"},
			want:  "yesterday hello",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, r.formatEntry(tc.entry))
		})
	}
}

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	assert.IsType(t, &jsonRenderer{}, newRenderer(OutputJSON, &bytes.Buffer{}))
	assert.IsType(t, &textRenderer{}, newRenderer(OutputText, &bytes.Buffer{}))
}
