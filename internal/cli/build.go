package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/ci"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/server"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/signal"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/watch"
)

// buildResult is printed by `build --no-watch -o json`.
type buildResult struct {
	RunID       int64     `json:"run_id"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// AddBuildCommand adds the build subcommand.
func AddBuildCommand(root *cobra.Command, flags *GlobalFlags) {
	var (
		repo    repoFlags
		wf      watchFlags
		inputs  map[string]string
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Dispatch the image build workflow and follow the run",
		Long: `Trigger the configured workflow with workflow_dispatch, find the run it
created, and watch it until it finishes.

Workflow inputs are passed with --input and are forwarded unchanged.

Examples:
  eebuilder build --input base_image=quay.io/ansible/ee-minimal-rhel9:latest
  eebuilder build --repo acme/ee-images --ref release-2.4
  eebuilder build --no-watch -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			return runBuild(h.Context(), cmd.OutOrStdout(), client, client, buildRunOptions{
				Inputs:  inputs,
				Locate:  locateOptions(cfg),
				NoWatch: noWatch,
				Watch: watchRunOptions{
					Output:      flags.Output,
					Interval:    cfg.Watch.PollInterval,
					TickTimeout: cfg.Watch.TickTimeout,
					Dedupe:      cfg.Watch.Dedupe,
					Logger:      logger,
				},
			})
		},
	}

	repo.register(cmd)
	wf.register(cmd)
	cmd.Flags().StringToStringVar(&inputs, "input", nil, "workflow input as key=value (repeatable)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "print the run id and exit without watching")
	root.AddCommand(cmd)
}

// buildRunOptions configures runBuild.
type buildRunOptions struct {
	Inputs  map[string]string
	Locate  ci.LocateOptions
	NoWatch bool
	Watch   watchRunOptions
}

// runBuild dispatches the workflow, locates the run and, unless NoWatch is
// set, follows it with runWatch.
func runBuild(ctx context.Context, w io.Writer, builder server.Builder, fetcher watch.Fetcher, opts buildRunOptions) error {
	inputs := make(map[string]any, len(opts.Inputs))
	for k, v := range opts.Inputs {
		inputs[k] = v
	}

	triggeredAt, err := builder.Dispatch(ctx, inputs)
	if err != nil {
		return err
	}
	opts.Watch.Logger.Info().Time("triggered_at", triggeredAt).Msg("workflow dispatched")

	runID, err := builder.Locate(ctx, triggeredAt, opts.Locate)
	if err != nil {
		return err
	}
	opts.Watch.Logger.Info().Int64("run_id", runID).Msg("run located")

	if opts.Watch.Output == OutputJSON {
		if opts.NoWatch {
			return json.NewEncoder(w).Encode(buildResult{RunID: runID, TriggeredAt: triggeredAt})
		}
	} else if _, err := fmt.Fprintf(w, "dispatched run %d\n", runID); err != nil {
		return err
	}

	if opts.NoWatch {
		return nil
	}
	return runWatch(ctx, w, fetcher, runID, opts.Watch)
}
