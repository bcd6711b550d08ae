// Package domain provides shared domain types for observing CI image builds.
//
// A run is observed through snapshots: a RunSnapshot plus the run's
// JobSnapshots, each with ordered StepSnapshots. Snapshots are rebuilt from
// the CI API on every poll and are never mutated afterwards.
package domain

import "time"

// Status is the lifecycle status of a run, job or step as reported by the CI API.
type Status string

// Known statuses. The CI API may report others (waiting, requested, pending);
// those are carried through verbatim and treated as non-terminal.
const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Conclusion is the outcome of a completed run, job or step.
// The empty Conclusion means the CI API reported null.
type Conclusion string

// Known conclusions.
const (
	ConclusionNone      Conclusion = ""
	ConclusionSuccess   Conclusion = "success"
	ConclusionFailure   Conclusion = "failure"
	ConclusionCancelled Conclusion = "cancelled"
	ConclusionSkipped   Conclusion = "skipped"
	ConclusionTimedOut  Conclusion = "timed_out"
)

// String returns the string representation of the conclusion,
// or "null" for ConclusionNone.
func (c Conclusion) String() string {
	if c == ConclusionNone {
		return "null"
	}
	return string(c)
}

// RunSnapshot is the run-level state returned by one poll.
type RunSnapshot struct {
	ID          int64      `json:"id"`
	Status      Status     `json:"status"`
	Conclusion  Conclusion `json:"conclusion,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ExternalURL string     `json:"external_url,omitempty"`
}

// IsTerminal reports whether the run has completed. A completed run
// never changes again, so no further polls are needed.
func (r RunSnapshot) IsTerminal() bool {
	return r.Status == StatusCompleted
}

// Succeeded reports whether the run completed with a success conclusion.
func (r RunSnapshot) Succeeded() bool {
	return r.IsTerminal() && r.Conclusion == ConclusionSuccess
}

// JobSnapshot is one job of a run. Job ids are unique within a run.
type JobSnapshot struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Conclusion  Conclusion     `json:"conclusion,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Steps       []StepSnapshot `json:"steps"`
}

// HasLogs reports whether a log download may be attempted for the job.
// Queued jobs never have logs, so fetching them only wastes API calls.
func (j JobSnapshot) HasLogs() bool {
	return j.Status != StatusQueued
}

// StepSnapshot is one step of a job. Numbers start at 1 and are unique and
// stable within a job.
type StepSnapshot struct {
	Number      int        `json:"number"`
	Name        string     `json:"name"`
	Status      Status     `json:"status"`
	Conclusion  Conclusion `json:"conclusion,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Snapshot is everything a single poll learns about a run.
type Snapshot struct {
	Run  RunSnapshot   `json:"run"`
	Jobs []JobSnapshot `json:"jobs"`
}
