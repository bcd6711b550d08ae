package logstream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
)

//nolint:gochecknoglobals // fixed test clock
var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func TestSynthesize_FirstPollIsNotSilent(t *testing.T) {
	t.Parallel()

	current := []domain.JobSnapshot{{ID: 1, Name: "build", Status: domain.StatusQueued}}

	entries := Synthesize(current, nil, testNow)

	require.Len(t, entries, 1)
	assert.Equal(t, domain.LogEntry{
		Timestamp: "2024-03-01T12:00:00.000Z",
		Message:   `Job "build" queued`,
		Step:      "build",
		Level:     domain.LevelInfo,
	}, entries[0])
}

func TestSynthesize_Idempotent(t *testing.T) {
	t.Parallel()

	started := ptrTime(testNow.Add(-time.Minute))
	jobs := []domain.JobSnapshot{
		{
			ID: 1, Name: "build", Status: domain.StatusInProgress, StartedAt: started,
			Steps: []domain.StepSnapshot{
				{Number: 1, Name: "Set up job", Status: domain.StatusCompleted, Conclusion: domain.ConclusionSuccess},
				{Number: 2, Name: "Build image", Status: domain.StatusInProgress, StartedAt: started},
			},
		},
		{ID: 2, Name: "publish", Status: domain.StatusQueued},
	}

	assert.Empty(t, Synthesize(jobs, jobs, testNow))
}

func TestSynthesize_JobTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		conclusion domain.Conclusion
		final      string
		level      domain.Level
	}{
		{"success", domain.ConclusionSuccess, `Job "build" completed successfully`, domain.LevelSuccess},
		{"failure", domain.ConclusionFailure, `Job "build" failed with conclusion: failure`, domain.LevelError},
		{"cancelled", domain.ConclusionCancelled, `Job "build" failed with conclusion: cancelled`, domain.LevelError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sequence := []domain.JobSnapshot{
				{ID: 7, Name: "build", Status: domain.StatusQueued},
				{ID: 7, Name: "build", Status: domain.StatusInProgress},
				{ID: 7, Name: "build", Status: domain.StatusCompleted, Conclusion: tc.conclusion},
			}

			var messages []string
			var levels []domain.Level
			var previous []domain.JobSnapshot
			for _, job := range sequence {
				current := []domain.JobSnapshot{job}
				entries := Synthesize(current, previous, testNow)
				require.Len(t, entries, 1, "exactly one entry per transition")
				messages = append(messages, entries[0].Message)
				levels = append(levels, entries[0].Level)
				previous = current
			}

			assert.Equal(t, []string{`Job "build" queued`, `Job "build" started`, tc.final}, messages)
			assert.Equal(t, []domain.Level{domain.LevelInfo, domain.LevelInfo, tc.level}, levels)
		})
	}
}

func TestSynthesize_Steps(t *testing.T) {
	t.Parallel()

	jobStart := testNow.Add(-2 * time.Minute)
	stepStart := testNow.Add(-time.Minute)
	stepDone := testNow.Add(-30 * time.Second)

	previous := []domain.JobSnapshot{{
		ID: 1, Name: "build", Status: domain.StatusInProgress, StartedAt: &jobStart,
		Steps: []domain.StepSnapshot{
			{Number: 1, Name: "Checkout", Status: domain.StatusInProgress, StartedAt: &stepStart},
		},
	}}
	current := []domain.JobSnapshot{{
		ID: 1, Name: "build", Status: domain.StatusInProgress, StartedAt: &jobStart,
		Steps: []domain.StepSnapshot{
			{Number: 1, Name: "Checkout", Status: domain.StatusCompleted, Conclusion: domain.ConclusionSuccess, StartedAt: &stepStart, CompletedAt: &stepDone},
			{Number: 2, Name: "Build image", Status: domain.StatusQueued},
		},
	}}

	entries := Synthesize(current, previous, testNow)

	require.Len(t, entries, 2)
	assert.Equal(t, domain.LogEntry{
		Timestamp: domain.FormatTimestamp(stepDone),
		Message:   `Step 1: Checkout completed successfully`,
		Step:      "build",
		Level:     domain.LevelSuccess,
	}, entries[0])
	assert.Equal(t, domain.LogEntry{
		Timestamp: domain.FormatTimestamp(testNow),
		Message:   `Step 2: Build image queued`,
		Step:      "build",
		Level:     domain.LevelInfo,
	}, entries[1])
}

func TestSynthesize_JobTimestampUsesStartedAt(t *testing.T) {
	t.Parallel()

	started := testNow.Add(-5 * time.Minute)
	current := []domain.JobSnapshot{{ID: 1, Name: "build", Status: domain.StatusInProgress, StartedAt: &started}}

	entries := Synthesize(current, nil, testNow)

	require.Len(t, entries, 1)
	assert.Equal(t, domain.FormatTimestamp(started), entries[0].Timestamp)
}

func TestSynthesize_StepFailure(t *testing.T) {
	t.Parallel()

	previous := []domain.JobSnapshot{{
		ID: 1, Name: "build", Status: domain.StatusInProgress,
		Steps: []domain.StepSnapshot{{Number: 3, Name: "Push", Status: domain.StatusInProgress}},
	}}
	current := []domain.JobSnapshot{{
		ID: 1, Name: "build", Status: domain.StatusCompleted, Conclusion: domain.ConclusionFailure,
		Steps: []domain.StepSnapshot{{Number: 3, Name: "Push", Status: domain.StatusCompleted, Conclusion: domain.ConclusionFailure}},
	}}

	entries := Synthesize(current, previous, testNow)

	require.Len(t, entries, 2)
	assert.Equal(t, `Job "build" failed with conclusion: failure`, entries[0].Message)
	assert.Equal(t, `Step 3: Push failed with conclusion: failure`, entries[1].Message)
	assert.Equal(t, domain.LevelError, entries[1].Level)
}

func TestSynthesize_UnknownStatusIsInfo(t *testing.T) {
	t.Parallel()

	current := []domain.JobSnapshot{{ID: 1, Name: "deploy", Status: "waiting"}}

	entries := Synthesize(current, nil, testNow)

	require.Len(t, entries, 1)
	assert.Equal(t, `Job "deploy" waiting`, entries[0].Message)
	assert.Equal(t, domain.LevelInfo, entries[0].Level)
}

func TestSynthesize_MatchesJobsByID(t *testing.T) {
	t.Parallel()

	previous := []domain.JobSnapshot{
		{ID: 1, Name: "lint", Status: domain.StatusInProgress},
		{ID: 2, Name: "build", Status: domain.StatusQueued},
	}
	// Same jobs, listed in a different order.
	current := []domain.JobSnapshot{
		{ID: 2, Name: "build", Status: domain.StatusQueued},
		{ID: 1, Name: "lint", Status: domain.StatusInProgress},
	}

	assert.Empty(t, Synthesize(current, previous, testNow))
}
