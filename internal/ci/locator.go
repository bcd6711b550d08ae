package ci

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v56/github"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/constants"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

// dispatchEvent is the event name GitHub records for manually triggered runs.
const dispatchEvent = "workflow_dispatch"

// LocateOptions tunes the search for a freshly triggered run.
type LocateOptions struct {
	// Attempts is how many times recent runs are listed. Default 10.
	Attempts int
	// Delay is the pause between attempts. Zero means no pause.
	Delay time.Duration
	// Window tolerates clock skew: runs created up to Window before the
	// trigger time still match.
	Window time.Duration
}

func (o LocateOptions) withDefaults() LocateOptions {
	if o.Attempts <= 0 {
		o.Attempts = constants.DefaultLocateAttempts
	}
	if o.Window < 0 {
		o.Window = 0
	}
	return o
}

// Dispatch triggers the configured workflow and returns the trigger time to
// pass to Locate. GitHub does not return the id of the run it creates.
func (c *GitHubClient) Dispatch(ctx context.Context, inputs map[string]any) (time.Time, error) {
	if c.workflow == "" {
		return time.Time{}, errors.Wrap(errors.ErrEmptyValue, "github workflow is required to dispatch")
	}

	triggeredAt := c.clock.Now()
	_, err := c.gh.Actions.CreateWorkflowDispatchEventByFileName(ctx, c.owner, c.repo, c.workflow,
		github.CreateWorkflowDispatchEventRequest{Ref: c.ref, Inputs: inputs})
	if err != nil {
		return time.Time{}, mapFetchError(err, fmt.Sprintf("dispatch workflow %s", c.workflow))
	}

	c.logger.Info().
		Str("workflow", c.workflow).
		Str("ref", c.ref).
		Time("triggered_at", triggeredAt).
		Msg("workflow dispatched")

	return triggeredAt, nil
}

// Locate finds the run created by a dispatch at triggeredAt.
//
// Recent dispatch runs are listed up to opts.Attempts times; the earliest run
// created at or after triggeredAt-opts.Window wins. When no run matches in
// time, the most recent run listed is returned instead. errors.ErrRunNotLocated
// is returned only when no run was listed at all.
func (c *GitHubClient) Locate(ctx context.Context, triggeredAt time.Time, opts LocateOptions) (int64, error) {
	opts = opts.withDefaults()
	threshold := triggeredAt.Add(-opts.Window)

	var mostRecent *github.WorkflowRun
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		runs, err := c.listRecentRuns(ctx)
		switch {
		case err == nil:
		case errors.IsFatalFetch(err) || ctx.Err() != nil:
			return 0, err
		default:
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("listing recent runs failed, retrying")
		}

		if match := earliestSince(runs, threshold); match != nil {
			c.logger.Info().
				Int64("run_id", match.GetID()).
				Int("attempt", attempt).
				Msg("located dispatched run")
			return match.GetID(), nil
		}
		if len(runs) > 0 && (mostRecent == nil || runs[0].GetCreatedAt().After(mostRecent.GetCreatedAt().Time)) {
			mostRecent = runs[0]
		}

		if attempt < opts.Attempts && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-c.clock.After(opts.Delay):
			}
		}
	}

	if mostRecent == nil {
		return 0, errors.Wrapf(errors.ErrRunNotLocated, "no %s runs of %s", dispatchEvent, c.workflow)
	}

	c.logger.Warn().
		Int64("run_id", mostRecent.GetID()).
		Int("attempts", opts.Attempts).
		Msg("no run matched the trigger time, falling back to the most recent run")
	return mostRecent.GetID(), nil
}

// listRecentRuns returns the newest dispatch runs of the workflow, newest first.
func (c *GitHubClient) listRecentRuns(ctx context.Context) ([]*github.WorkflowRun, error) {
	opts := &github.ListWorkflowRunsOptions{
		Event:       dispatchEvent,
		Branch:      c.ref,
		ListOptions: github.ListOptions{PerPage: constants.RecentRunsPerPage},
	}
	runs, _, err := c.gh.Actions.ListWorkflowRunsByFileName(ctx, c.owner, c.repo, c.workflow, opts)
	if err != nil {
		return nil, mapFetchError(err, fmt.Sprintf("list runs of %s", c.workflow))
	}
	return runs.WorkflowRuns, nil
}

func earliestSince(runs []*github.WorkflowRun, threshold time.Time) *github.WorkflowRun {
	var best *github.WorkflowRun
	for _, r := range runs {
		created := r.GetCreatedAt().Time
		if created.Before(threshold) {
			continue
		}
		if best == nil || created.Before(best.GetCreatedAt().Time) {
			best = r
		}
	}
	return best
}
