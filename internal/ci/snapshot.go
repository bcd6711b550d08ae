package ci

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v56/github"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/constants"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

// FetchSnapshot reads the run and all of its jobs (with steps).
//
// A run or job that no longer resolves yields errors.ErrRunNotFound; network,
// rate-limit and server failures yield errors.ErrTransientFetch.
func (c *GitHubClient) FetchSnapshot(ctx context.Context, runID int64) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run, _, err := c.gh.Actions.GetWorkflowRunByID(ctx, c.owner, c.repo, runID)
	if err != nil {
		return nil, mapFetchError(err, fmt.Sprintf("get run %d", runID))
	}

	jobs, err := c.listJobs(ctx, runID)
	if err != nil {
		return nil, err
	}

	snap := &domain.Snapshot{
		Run:  toRunSnapshot(run),
		Jobs: make([]domain.JobSnapshot, 0, len(jobs)),
	}
	for _, j := range jobs {
		snap.Jobs = append(snap.Jobs, toJobSnapshot(j))
	}

	c.logger.Debug().
		Int64("run_id", runID).
		Str("status", snap.Run.Status.String()).
		Int("job_count", len(snap.Jobs)).
		Msg("fetched run snapshot")

	return snap, nil
}

// listJobs reads every page of the run's latest job attempts.
func (c *GitHubClient) listJobs(ctx context.Context, runID int64) ([]*github.WorkflowJob, error) {
	opts := &github.ListWorkflowJobsOptions{
		Filter:      "latest",
		ListOptions: github.ListOptions{PerPage: constants.JobsPerPage},
	}

	var all []*github.WorkflowJob
	for {
		page, resp, err := c.gh.Actions.ListWorkflowJobs(ctx, c.owner, c.repo, runID, opts)
		if err != nil {
			return nil, mapFetchError(err, fmt.Sprintf("list jobs of run %d", runID))
		}
		all = append(all, page.Jobs...)
		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// FetchJobLogText downloads the plain-text log of one job.
//
// The API answers with a redirect to a short-lived signed URL, which is
// fetched without the API token. Logs that are not available yet (404 or 410
// while a job is still being set up, or an expired signed URL) are reported
// as empty text, not as an error.
func (c *GitHubClient) FetchJobLogText(ctx context.Context, jobID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	logURL, resp, err := c.gh.Actions.GetWorkflowJobLogs(ctx, c.owner, c.repo, jobID, 0)
	if err != nil {
		if resp != nil && resp.Response != nil {
			// Non-redirect answers come back as a bare error; give the
			// classifier the status code.
			err = &github.ErrorResponse{Response: resp.Response, Message: err.Error()}
		}
		if isNotFound(err) {
			c.logger.Debug().Int64("job_id", jobID).Msg("job logs not ready yet")
			return "", nil
		}
		return "", mapFetchError(err, fmt.Sprintf("get logs of job %d", jobID))
	}

	return c.downloadLog(ctx, jobID, logURL)
}

// downloadLog reads the signed log URL. Failures here are never fatal: the
// storage host's status codes say nothing about the run or the token.
func (c *GitHubClient) downloadLog(ctx context.Context, jobID int64, logURL *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build log download for job %d: %w", jobID, err)
	}

	resp, err := c.download.Do(req)
	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			return "", err
		}
		return "", errors.Wrapf(errors.Classify(errors.ErrTransientFetch, err), "download logs of job %d", jobID)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		c.logger.Debug().Int64("job_id", jobID).Msg("job log url expired")
		return "", nil
	case resp.StatusCode != http.StatusOK:
		return "", errors.Wrapf(errors.ErrTransientFetch, "download logs of job %d: %s", jobID, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(errors.Classify(errors.ErrTransientFetch, err), "read logs of job %d", jobID)
	}
	return string(body), nil
}

func toRunSnapshot(run *github.WorkflowRun) domain.RunSnapshot {
	return domain.RunSnapshot{
		ID:          run.GetID(),
		Status:      domain.Status(run.GetStatus()),
		Conclusion:  domain.Conclusion(run.GetConclusion()),
		CreatedAt:   run.GetCreatedAt().Time,
		UpdatedAt:   run.GetUpdatedAt().Time,
		ExternalURL: run.GetHTMLURL(),
	}
}

func toJobSnapshot(job *github.WorkflowJob) domain.JobSnapshot {
	snap := domain.JobSnapshot{
		ID:          job.GetID(),
		Name:        job.GetName(),
		Status:      domain.Status(job.GetStatus()),
		Conclusion:  domain.Conclusion(job.GetConclusion()),
		StartedAt:   optionalTime(job.StartedAt),
		CompletedAt: optionalTime(job.CompletedAt),
		Steps:       make([]domain.StepSnapshot, 0, len(job.Steps)),
	}
	for _, s := range job.Steps {
		snap.Steps = append(snap.Steps, domain.StepSnapshot{
			Number:      int(s.GetNumber()),
			Name:        s.GetName(),
			Status:      domain.Status(s.GetStatus()),
			Conclusion:  domain.Conclusion(s.GetConclusion()),
			StartedAt:   optionalTime(s.StartedAt),
			CompletedAt: optionalTime(s.CompletedAt),
		})
	}
	return snap
}

func optionalTime(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}
