package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
)

//nolint:gochecknoglobals // fixed test clock origin
var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(offset time.Duration) *time.Time {
	t := testEpoch.Add(offset)
	return &t
}

// step is one scripted FetchSnapshot result.
type step struct {
	snap *domain.Snapshot
	err  error
	logs map[int64]string
}

// scriptedFetcher replays steps in order; the last step repeats.
type scriptedFetcher struct {
	mu      sync.Mutex
	steps   []step
	current step
	calls   int
	logCall int

	// blockAt, when non-zero, makes that FetchSnapshot call wait for
	// release after signalling entered.
	blockAt int
	entered chan struct{}
	release chan struct{}
}

func (f *scriptedFetcher) FetchSnapshot(ctx context.Context, _ int64) (*domain.Snapshot, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	idx := min(n-1, len(f.steps)-1)
	f.current = f.steps[idx]
	block := f.blockAt == n
	f.mu.Unlock()

	if block {
		f.entered <- struct{}{}
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.current.snap, f.current.err
}

func (f *scriptedFetcher) FetchJobLogText(_ context.Context, jobID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logCall++
	return f.current.logs[jobID], nil
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// harness wires a Watcher to a mock clock and buffered callback channels.
type harness struct {
	w        *Watcher
	clock    *clock.Mock
	updates  chan Update
	terminal chan bool
}

func newHarness(t *testing.T, f Fetcher) *harness {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(testEpoch)

	h := &harness{
		clock:    clk,
		updates:  make(chan Update, 32),
		terminal: make(chan bool, 4),
	}
	h.w = NewWatcher(f, Options{
		Interval:   time.Second,
		Clock:      clk,
		Logger:     zerolog.Nop(),
		OnUpdate:   func(u Update) { h.updates <- u },
		OnTerminal: func(success bool) { h.terminal <- success },
	})
	t.Cleanup(h.w.Stop)
	return h
}

func (h *harness) next(t *testing.T) Update {
	t.Helper()
	select {
	case u := <-h.updates:
		return u
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for update")
		return Update{}
	}
}

func (h *harness) expectNoUpdate(t *testing.T) {
	t.Helper()
	select {
	case u := <-h.updates:
		require.FailNow(t, "unexpected update", "tick %d", u.Tick)
	case <-time.After(50 * time.Millisecond):
	}
}

func (h *harness) waitDone(t *testing.T) {
	t.Helper()
	select {
	case <-h.w.Done():
	case <-time.After(2 * time.Second):
		require.FailNow(t, "watcher did not stop")
	}
}

func messages(entries []domain.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func queuedSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Run: domain.RunSnapshot{ID: 42, Status: domain.StatusQueued, ExternalURL: "https://github.com/acme/ee/actions/runs/42"},
		Jobs: []domain.JobSnapshot{
			{ID: 1, Name: "build", Status: domain.StatusQueued},
		},
	}
}

func inProgressSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Run: domain.RunSnapshot{ID: 42, Status: domain.StatusInProgress, ExternalURL: "https://github.com/acme/ee/actions/runs/42"},
		Jobs: []domain.JobSnapshot{{
			ID: 1, Name: "build", Status: domain.StatusInProgress, StartedAt: at(5 * time.Second),
			Steps: []domain.StepSnapshot{
				{Number: 1, Name: "Set up job", Status: domain.StatusCompleted, Conclusion: domain.ConclusionSuccess,
					StartedAt: at(5 * time.Second), CompletedAt: at(6 * time.Second)},
			},
		}},
	}
}

func failedSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Run: domain.RunSnapshot{
			ID: 42, Status: domain.StatusCompleted, Conclusion: domain.ConclusionFailure,
			ExternalURL: "https://github.com/acme/ee/actions/runs/42",
		},
		Jobs: []domain.JobSnapshot{{
			ID: 1, Name: "build", Status: domain.StatusCompleted, Conclusion: domain.ConclusionFailure,
			StartedAt: at(5 * time.Second), CompletedAt: at(10 * time.Second),
			Steps: []domain.StepSnapshot{
				{Number: 1, Name: "Set up job", Status: domain.StatusCompleted, Conclusion: domain.ConclusionSuccess,
					StartedAt: at(5 * time.Second), CompletedAt: at(6 * time.Second)},
				{Number: 2, Name: "Build image", Status: domain.StatusCompleted, Conclusion: domain.ConclusionFailure,
					StartedAt: at(6 * time.Second), CompletedAt: at(9 * time.Second)},
			},
		}},
	}
}

const (
	inProgressLog = "2024-01-01T00:00:06.000Z Pulling base image\n"
	failedLog     = inProgressLog + "2024-01-01T00:00:08.500Z ERROR: ansible-builder failed\n"
)
