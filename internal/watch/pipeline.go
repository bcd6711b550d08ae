// Package watch turns a GitHub Actions run into a live stream of log entries.
//
// Pipeline performs a single observation (fetch, synthesize, parse, merge).
// Watcher drives the pipeline on a clock-driven ticker until the run
// completes, the run disappears, or the caller stops it.
package watch

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/constants"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/logstream"
)

// Fetcher reads run state and job logs from the CI provider.
//
// FetchJobLogText returns "" with a nil error when logs are not available yet.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, runID int64) (*domain.Snapshot, error)
	FetchJobLogText(ctx context.Context, jobID int64) (string, error)
}

// Observation is the outcome of one pipeline pass.
type Observation struct {
	Snapshot *domain.Snapshot
	// Entries holds synthesized status entries and parsed log lines,
	// ordered by timestamp.
	Entries []domain.LogEntry
	// Anomalies counts log lines that were kept in degraded form.
	Anomalies int
}

// Pipeline performs single observations of a run.
type Pipeline struct {
	fetcher     Fetcher
	clock       clock.Clock
	logger      zerolog.Logger
	concurrency int
}

// NewPipeline creates a Pipeline. A nil clock means the wall clock.
func NewPipeline(fetcher Fetcher, clk clock.Clock, logger zerolog.Logger) *Pipeline {
	if clk == nil {
		clk = clock.New()
	}
	return &Pipeline{
		fetcher:     fetcher,
		clock:       clk,
		logger:      logger,
		concurrency: constants.LogFetchConcurrency,
	}
}

// Run fetches the run, synthesizes entries for transitions since previous,
// downloads and parses the log text of every job that has started, and
// merges everything chronologically.
//
// Any fetch error fails the whole observation so that the caller can keep
// its previous job list and see the same transitions again next time.
func (p *Pipeline) Run(ctx context.Context, runID int64, previous []domain.JobSnapshot) (*Observation, error) {
	snap, err := p.fetcher.FetchSnapshot(ctx, runID)
	if err != nil {
		return nil, err
	}

	now := p.clock.Now()
	status := logstream.Synthesize(snap.Jobs, previous, now)

	texts, err := p.fetchLogs(ctx, snap.Jobs)
	if err != nil {
		return nil, err
	}

	// Parse in job order so output is deterministic regardless of which
	// download finished first.
	var parsed []domain.LogEntry
	anomalies := 0
	for i, job := range snap.Jobs {
		if texts[i] == "" {
			continue
		}
		entries, problems := logstream.ParseRawLogWithAnomalies(texts[i], job.Name, now)
		parsed = append(parsed, entries...)
		anomalies += len(problems)
		for _, problem := range problems {
			p.logger.Debug().Err(problem).Int64("job_id", job.ID).Msg("degraded log line")
		}
	}

	return &Observation{
		Snapshot:  snap,
		Entries:   logstream.Merge(status, parsed),
		Anomalies: anomalies,
	}, nil
}

// fetchLogs downloads log text for every job with logs, concurrently.
// The result is indexed like jobs.
func (p *Pipeline) fetchLogs(ctx context.Context, jobs []domain.JobSnapshot) ([]string, error) {
	texts := make([]string, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, job := range jobs {
		if !job.HasLogs() {
			continue
		}
		g.Go(func() error {
			text, err := p.fetcher.FetchJobLogText(gctx, job.ID)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}
