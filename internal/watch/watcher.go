package watch

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/constants"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
)

// Options configures a Watcher.
type Options struct {
	// Interval is the poll period. Default: 1s.
	Interval time.Duration
	// TickTimeout bounds the network calls of one tick. Default: 30s.
	TickTimeout time.Duration
	// Clock drives the ticker. Default: wall clock.
	Clock clock.Clock
	// Logger receives loop diagnostics.
	Logger zerolog.Logger
	// OnUpdate receives every published Update, in tick order.
	OnUpdate func(Update)
	// OnTerminal is called exactly once when the run completes, with
	// whether it succeeded. It is not called on fatal errors or Stop.
	OnTerminal func(success bool)
}

// Watcher polls one run until it completes.
//
// Callbacks run on a tick goroutine and must not call Stop.
type Watcher struct {
	pipeline    *Pipeline
	clock       clock.Clock
	logger      zerolog.Logger
	interval    time.Duration
	tickTimeout time.Duration
	onUpdate    func(Update)
	onTerminal  func(bool)

	inFlight  atomic.Bool
	publishMu sync.Mutex
	ticks     sync.WaitGroup

	mu        sync.Mutex
	state     State
	runID     int64
	tick      int
	previous  []domain.JobSnapshot
	logs      []domain.LogEntry
	last      Update
	connected bool
	err       error
	cancel    context.CancelFunc

	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher creates an idle Watcher that observes runs through fetcher.
func NewWatcher(fetcher Fetcher, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = constants.DefaultPollInterval
	}
	if opts.TickTimeout <= 0 {
		opts.TickTimeout = constants.DefaultTickTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	return &Watcher{
		pipeline:    NewPipeline(fetcher, opts.Clock, opts.Logger),
		clock:       opts.Clock,
		logger:      opts.Logger,
		interval:    opts.Interval,
		tickTimeout: opts.TickTimeout,
		onUpdate:    opts.OnUpdate,
		onTerminal:  opts.OnTerminal,
		done:        make(chan struct{}),
	}
}

// Start begins polling runID. The first tick happens immediately, the rest
// every Interval. Cancelling ctx has the same effect as Stop.
func (w *Watcher) Start(ctx context.Context, runID int64) error {
	if runID <= 0 {
		return errors.Wrapf(errors.ErrInvalidRunID, "run id %d", runID)
	}

	w.mu.Lock()
	if w.state != StateIdle {
		w.mu.Unlock()
		return errors.ErrWatchAlreadyStarted
	}
	loopCtx, cancel := context.WithCancel(ctx)
	w.state = StatePolling
	w.runID = runID
	w.connected = true
	w.cancel = cancel
	w.mu.Unlock()

	ticker := w.clock.Ticker(w.interval)
	go w.loop(loopCtx, ticker)
	return nil
}

// Stop halts polling and cancels any in-flight fetch. It returns once the
// loop has exited; no Update or callback is delivered afterwards.
// Stop is idempotent and safe to call before Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		started := w.cancel != nil
		w.state = StateStopped
		if started {
			w.cancel()
		}
		w.mu.Unlock()

		if !started {
			close(w.done)
			return
		}
		<-w.done
	})
}

// Done is closed when the watcher has stopped for any reason.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Err returns the fatal error that stopped the watcher, if any.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// State returns the current lifecycle state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Indicator returns the display indicator for the current state.
func (w *Watcher) Indicator() Indicator {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indicatorLocked()
}

// Last returns the most recently published Update.
func (w *Watcher) Last() Update {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *Watcher) indicatorLocked() Indicator {
	switch w.state {
	case StateIdle:
		return IndicatorIdle
	case StateStopped:
		return IndicatorStopped
	case StatePolling:
		if !w.connected {
			return IndicatorRetrying
		}
		return IndicatorPolling
	default:
		return IndicatorIdle
	}
}

func (w *Watcher) loop(ctx context.Context, ticker *clock.Ticker) {
	defer close(w.done)
	defer ticker.Stop()

	w.tryTick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.ticks.Wait()
			w.mu.Lock()
			w.state = StateStopped
			w.mu.Unlock()
			return
		case <-ticker.C:
			if !w.tryTick(ctx) {
				w.logger.Debug().Int64("run_id", w.runID).Msg("previous poll still in flight, skipping tick")
			}
		}
	}
}

// tryTick launches a tick unless one is already in flight.
func (w *Watcher) tryTick(ctx context.Context) bool {
	if !w.inFlight.CompareAndSwap(false, true) {
		return false
	}
	w.ticks.Add(1)
	go func() {
		defer w.ticks.Done()
		w.runTick(ctx)
	}()
	return true
}

// runTick performs one observation and publishes its outcome.
// It owns inFlight and releases it once loop state is updated, so the next
// tick may start while this one is still delivering callbacks; publishMu
// keeps deliveries in tick order.
func (w *Watcher) runTick(ctx context.Context) {
	released := false
	release := func() {
		if !released {
			released = true
			w.inFlight.Store(false)
		}
	}
	defer release()

	w.mu.Lock()
	if w.state != StatePolling {
		w.mu.Unlock()
		return
	}
	runID := w.runID
	previous := w.previous
	w.mu.Unlock()

	tickCtx, cancel := context.WithTimeout(ctx, w.tickTimeout)
	obs, err := w.pipeline.Run(tickCtx, runID, previous)
	cancel()

	w.mu.Lock()
	if w.state != StatePolling || ctx.Err() != nil {
		w.mu.Unlock()
		return
	}
	w.tick++
	update, terminal, success := w.applyLocked(obs, err)
	w.last = update
	w.mu.Unlock()

	w.publishMu.Lock()
	defer w.publishMu.Unlock()
	release()

	if w.onUpdate != nil {
		w.onUpdate(update)
	}
	if terminal {
		if obs != nil && w.onTerminal != nil {
			w.onTerminal(success)
		}
		w.cancel()
	}
}

// applyLocked folds an observation or error into loop state and builds the
// Update to publish. It reports whether the watcher reached a final state
// and, for completed runs, whether the run succeeded.
func (w *Watcher) applyLocked(obs *Observation, err error) (Update, bool, bool) {
	logger := w.logger.With().Int64("run_id", w.runID).Int("tick", w.tick).Logger()

	if err != nil {
		fatal := errors.IsFatalFetch(err)
		w.connected = false
		if fatal {
			w.err = err
			w.state = StateStopped
			logger.Error().Err(err).Msg("run can no longer be observed")
		} else {
			logger.Warn().Err(err).Msg("poll failed, will retry")
		}

		update := w.snapshotLocked(nil)
		update.Err = err
		update.Error = err.Error()
		update.Terminal = fatal
		return update, fatal, false
	}

	w.connected = true
	w.previous = obs.Snapshot.Jobs
	w.logs = append(w.logs, obs.Entries...)

	run := obs.Snapshot.Run
	terminal := run.IsTerminal()
	if terminal {
		w.state = StateStopped
		logger.Info().Str("conclusion", run.Conclusion.String()).Msg("run completed")
	} else {
		logger.Debug().Int("entries", len(obs.Entries)).Str("status", run.Status.String()).Msg("poll succeeded")
	}

	update := w.snapshotLocked(obs)
	update.Terminal = terminal
	return update, terminal, run.Succeeded()
}

// snapshotLocked builds an Update from current state. Without an
// observation, the last known run details are carried forward.
func (w *Watcher) snapshotLocked(obs *Observation) Update {
	update := Update{
		RunID:     w.runID,
		Tick:      w.tick,
		Logs:      slices.Clip(w.logs),
		Connected: w.connected,
		Indicator: w.indicatorLocked(),
	}

	if obs == nil {
		update.Status = w.last.Status
		update.Conclusion = w.last.Conclusion
		update.ExternalURL = w.last.ExternalURL
		update.Jobs = w.previous
		return update
	}

	run := obs.Snapshot.Run
	update.Status = run.Status
	update.Conclusion = run.Conclusion
	update.ExternalURL = run.ExternalURL
	update.Jobs = obs.Snapshot.Jobs
	update.New = obs.Entries
	return update
}
