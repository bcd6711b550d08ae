// Package logstream turns CI snapshots and raw runner output into one
// chronologically ordered stream of log entries.
//
// Everything in this package is pure: callers pass the current time in, and
// no function keeps state between calls except the Deduper, which belongs to
// a single consumer.
package logstream

import (
	"fmt"
	"time"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
)

// Synthesize compares the current job snapshots against the previous ones
// and returns one entry for every job or step whose status changed.
//
// A job or step absent from previous counts as a change from nothing, so
// the first poll of a run always describes its current state. Calling
// Synthesize with identical inputs returns no entries.
func Synthesize(current, previous []domain.JobSnapshot, now time.Time) []domain.LogEntry {
	prevJobs := make(map[int64]*domain.JobSnapshot, len(previous))
	for i := range previous {
		prevJobs[previous[i].ID] = &previous[i]
	}

	var entries []domain.LogEntry
	for _, job := range current {
		prev := prevJobs[job.ID]

		if prev == nil || prev.Status != job.Status {
			entries = append(entries, domain.LogEntry{
				Timestamp: stamp(job.StartedAt, now),
				Message:   fmt.Sprintf("Job %q %s", job.Name, transitionText(job.Status, job.Conclusion)),
				Step:      job.Name,
				Level:     transitionLevel(job.Status, job.Conclusion),
			})
		}

		entries = append(entries, synthesizeSteps(job, prev, now)...)
	}
	return entries
}

func synthesizeSteps(job domain.JobSnapshot, prev *domain.JobSnapshot, now time.Time) []domain.LogEntry {
	var prevSteps map[int]domain.Status
	if prev != nil {
		prevSteps = make(map[int]domain.Status, len(prev.Steps))
		for _, s := range prev.Steps {
			prevSteps[s.Number] = s.Status
		}
	}

	var entries []domain.LogEntry
	for _, step := range job.Steps {
		if old, ok := prevSteps[step.Number]; ok && old == step.Status {
			continue
		}

		at := step.StartedAt
		if step.Status == domain.StatusCompleted && step.CompletedAt != nil {
			at = step.CompletedAt
		}

		entries = append(entries, domain.LogEntry{
			Timestamp: stamp(at, now),
			Message:   fmt.Sprintf("Step %d: %s %s", step.Number, step.Name, transitionText(step.Status, step.Conclusion)),
			Step:      job.Name,
			Level:     transitionLevel(step.Status, step.Conclusion),
		})
	}
	return entries
}

func transitionText(status domain.Status, conclusion domain.Conclusion) string {
	switch status {
	case domain.StatusQueued:
		return "queued"
	case domain.StatusInProgress:
		return "started"
	case domain.StatusCompleted:
		if conclusion == domain.ConclusionSuccess {
			return "completed successfully"
		}
		return "failed with conclusion: " + conclusion.String()
	default:
		return string(status)
	}
}

func transitionLevel(status domain.Status, conclusion domain.Conclusion) domain.Level {
	if status != domain.StatusCompleted {
		return domain.LevelInfo
	}
	if conclusion == domain.ConclusionSuccess {
		return domain.LevelSuccess
	}
	return domain.LevelError
}

func stamp(at *time.Time, now time.Time) string {
	if at != nil && !at.IsZero() {
		return domain.FormatTimestamp(*at)
	}
	return domain.FormatTimestamp(now)
}
