package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/config"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/logstream"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/signal"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/watch"
)

// watchFlags holds flags shared by watch and build.
type watchFlags struct {
	interval time.Duration
	dedupe   bool
}

func (f *watchFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.interval, "interval", 0, "poll interval (overrides watch.poll_interval)")
	cmd.Flags().BoolVar(&f.dedupe, "dedupe", true, "drop log lines already printed (overrides watch.dedupe)")
}

// apply folds the flags into cfg. Only flags the user set take effect.
func (f *watchFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if f.interval != 0 {
		cfg.Watch.PollInterval = f.interval
	}
	if cmd.Flags().Changed("dedupe") {
		cfg.Watch.Dedupe = f.dedupe
	}
	return config.Validate(cfg)
}

// AddWatchCommand adds the watch subcommand.
func AddWatchCommand(root *cobra.Command, flags *GlobalFlags) {
	var (
		repo repoFlags
		wf   watchFlags
	)

	cmd := &cobra.Command{
		Use:   "watch <run-id>",
		Short: "Follow a workflow run until it finishes",
		Long: `Poll a GitHub Actions run and print its log as it is produced.

Job and step transitions are reported as synthetic log lines, merged with
the raw job logs in timestamp order. The command exits 0 when the run
succeeds and 1 when it fails, is cancelled, or can no longer be observed.

Examples:
  eebuilder watch 8123456789
  eebuilder watch 8123456789 --repo acme/ee-images
  eebuilder watch 8123456789 -o json | jq .logs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := parseRunID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := GetLogger()

			cfg, err := loadRepoConfig(ctx, flags, &repo)
			if err != nil {
				return err
			}
			if err := wf.apply(cmd, cfg); err != nil {
				return err
			}

			client, err := newGitHubClient(ctx, cfg, logger)
			if err != nil {
				return err
			}

			h := signal.NewHandler(ctx)
			defer h.Stop()

			return runWatch(h.Context(), cmd.OutOrStdout(), client, runID, watchRunOptions{
				Output:      flags.Output,
				Interval:    cfg.Watch.PollInterval,
				TickTimeout: cfg.Watch.TickTimeout,
				Dedupe:      cfg.Watch.Dedupe,
				Logger:      logger,
			})
		},
	}

	repo.register(cmd)
	wf.register(cmd)
	root.AddCommand(cmd)
}

// parseRunID parses a positive numeric run id.
func parseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewExitCode2Error(errors.Wrapf(errors.ErrInvalidRunID, "%q", s))
	}
	return id, nil
}

// watchRunOptions configures runWatch.
type watchRunOptions struct {
	Output      string
	Interval    time.Duration
	TickTimeout time.Duration
	Dedupe      bool
	Clock       clock.Clock
	Logger      zerolog.Logger
}

// runWatch follows runID until it reaches a final state or ctx is cancelled,
// rendering every update to w. It returns nil only for a successful run.
func runWatch(ctx context.Context, w io.Writer, fetcher watch.Fetcher, runID int64, opts watchRunOptions) error {
	renderer := newRenderer(opts.Output, w)

	var deduper *logstream.Deduper
	if opts.Dedupe {
		deduper = logstream.NewDeduper()
	}

	var (
		renderErr error
		finished  bool
		succeeded bool
	)

	watcher := watch.NewWatcher(fetcher, watch.Options{
		Interval:    opts.Interval,
		TickTimeout: opts.TickTimeout,
		Clock:       opts.Clock,
		Logger:      opts.Logger,
		OnUpdate: func(u watch.Update) {
			if deduper != nil {
				u.New = deduper.Filter(u.New)
			}
			if renderErr != nil {
				return
			}
			renderErr = renderer.Render(u)
		},
		OnTerminal: func(success bool) {
			finished = true
			succeeded = success
		},
	})

	if err := watcher.Start(ctx, runID); err != nil {
		return err
	}
	<-watcher.Done()

	// Callbacks run on watcher goroutines that have all exited once Done
	// is closed, so the variables above are safe to read.
	if renderErr != nil {
		return errors.Wrap(renderErr, "failed to write output")
	}
	if err := watcher.Err(); err != nil {
		return err
	}

	last := watcher.Last()
	switch {
	case finished && succeeded:
		return nil
	case finished:
		return errors.Wrapf(errors.ErrRunFailed, "run %d concluded %s", runID, last.Conclusion)
	default:
		status := last.Status.String()
		if status == "" {
			status = "not yet observed"
		}
		msg := fmt.Sprintf("run %d is still %s", runID, status)
		if last.ExternalURL != "" {
			msg += " (" + last.ExternalURL + ")"
		}
		return errors.Wrap(errors.ErrWatchStopped, msg)
	}
}
