package cli

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/ci"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
)

//nolint:gochecknoglobals // fixed test time origin
var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(offset time.Duration) *time.Time {
	t := testEpoch.Add(offset)
	return &t
}

// fakeFetcher returns the scripted snapshots in order; the last one repeats.
type fakeFetcher struct {
	mu    sync.Mutex
	snaps []*domain.Snapshot
	errs  []error
	logs  map[int64]string
	calls int
}

func (f *fakeFetcher) FetchSnapshot(_ context.Context, _ int64) (*domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	idx := f.calls - 1
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	return f.snaps[min(idx, len(f.snaps)-1)], nil
}

func (f *fakeFetcher) FetchJobLogText(_ context.Context, jobID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logs[jobID], nil
}

// fakeBuilder records dispatches and returns a fixed run id.
type fakeBuilder struct {
	mu          sync.Mutex
	inputs      map[string]any
	runID       int64
	dispatchErr error
	locateErr   error
	locateOpts  ci.LocateOptions
}

func (b *fakeBuilder) Dispatch(_ context.Context, inputs map[string]any) (time.Time, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inputs = inputs
	return testEpoch, b.dispatchErr
}

func (b *fakeBuilder) Locate(_ context.Context, triggeredAt time.Time, opts ci.LocateOptions) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locateOpts = opts
	if !triggeredAt.Equal(testEpoch) {
		return 0, context.Canceled
	}
	return b.runID, b.locateErr
}

func runningSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Run: domain.RunSnapshot{ID: 42, Status: domain.StatusInProgress, ExternalURL: "https://github.com/acme/ee/actions/runs/42"},
		Jobs: []domain.JobSnapshot{{
			ID: 1, Name: "build", Status: domain.StatusInProgress, StartedAt: at(5 * time.Second),
		}},
	}
}

func completedSnapshot(conclusion domain.Conclusion) *domain.Snapshot {
	return &domain.Snapshot{
		Run: domain.RunSnapshot{
			ID: 42, Status: domain.StatusCompleted, Conclusion: conclusion,
			ExternalURL: "https://github.com/acme/ee/actions/runs/42",
		},
		Jobs: []domain.JobSnapshot{{
			ID: 1, Name: "build", Status: domain.StatusCompleted, Conclusion: conclusion,
			StartedAt: at(5 * time.Second), CompletedAt: at(20 * time.Second),
			Steps: []domain.StepSnapshot{{
				Number: 1, Name: "Build image", Status: domain.StatusCompleted, Conclusion: conclusion,
				StartedAt: at(6 * time.Second), CompletedAt: at(19 * time.Second),
			}},
		}},
	}
}

const buildLog = "2024-01-01T00:00:07.000Z Pulling base image\n"

func fastWatch(output string, dedupe bool) watchRunOptions {
	return watchRunOptions{
		Output:   output,
		Interval: 5 * time.Millisecond,
		Dedupe:   dedupe,
	}
}

// isolateConfig points config and log files at temp directories.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("EEBUILDER_HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")
	t.Chdir(t.TempDir())
	t.Cleanup(CloseLogFile)
}
