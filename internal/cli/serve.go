package cli

import (
	"github.com/spf13/cobra"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/config"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/server"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/signal"
)

// AddServeCommand adds the serve subcommand.
func AddServeCommand(root *cobra.Command, flags *GlobalFlags, info BuildInfo) {
	var (
		repo   repoFlags
		listen string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the build API and live watch stream",
		Long: `Start an HTTP server for the browser UI.

Routes:
  GET  /healthz
  GET  /api/runs/{runID}
  GET  /api/runs/{runID}/watch   (websocket)
  POST /api/builds

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := GetLogger()

			overrides := repo.overrides()
			overrides.Server.ListenAddr = listen
			cfg, err := config.LoadWithOverrides(ctx, flags.ConfigFile, overrides)
			if err != nil {
				return err
			}
			if err := config.RequireRepository(cfg); err != nil {
				return err
			}

			client, err := newGitHubClient(ctx, cfg, logger)
			if err != nil {
				return err
			}

			srv := server.New(server.Options{
				Fetcher:      client,
				Builder:      client,
				Locate:       locateOptions(cfg),
				PollInterval: cfg.Watch.PollInterval,
				TickTimeout:  cfg.Watch.TickTimeout,
				Dedupe:       cfg.Watch.Dedupe,
				Version:      info.Version,
				Logger:       logger,
			})

			h := signal.NewHandler(ctx)
			defer h.Stop()

			return srv.ListenAndServe(h.Context(), cfg.Server.ListenAddr, cfg.Server.ReadHeaderTimeout, cfg.Server.ShutdownTimeout)
		},
	}

	repo.register(cmd)
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides server.listen_addr)")
	root.AddCommand(cmd)
}
