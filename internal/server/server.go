// Package server exposes build observation over HTTP for the browser UI.
//
// Routes:
//
//	GET  /healthz                  liveness
//	GET  /api/runs/{runID}         one snapshot of a run and its jobs
//	GET  /api/runs/{runID}/watch   websocket stream of watch updates
//	POST /api/builds               dispatch the build workflow and locate its run
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/ci"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/constants"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/watch"
)

// requestTimeout bounds plain JSON requests. Websocket sessions are exempt.
const requestTimeout = 60 * time.Second

// Builder dispatches the build workflow and finds the run it created.
type Builder interface {
	Dispatch(ctx context.Context, inputs map[string]any) (time.Time, error)
	Locate(ctx context.Context, triggeredAt time.Time, opts ci.LocateOptions) (int64, error)
}

// Options configures a Server.
type Options struct {
	// Fetcher reads runs and job logs. Required.
	Fetcher watch.Fetcher
	// Builder handles POST /api/builds. Nil disables the route.
	Builder Builder
	// Locate tunes run lookup after a dispatch.
	Locate ci.LocateOptions
	// PollInterval and TickTimeout configure each websocket session's watcher.
	PollInterval time.Duration
	TickTimeout  time.Duration
	// Dedupe drops log entries a session has already sent.
	Dedupe bool
	// Clock drives session watchers. Default: wall clock.
	Clock clock.Clock
	// Version is reported by /healthz.
	Version string
	Logger  zerolog.Logger
}

// Server serves the HTTP surface.
type Server struct {
	opts       Options
	logger     zerolog.Logger
	router     chi.Router
	upgrader   websocket.Upgrader
	httpServer *http.Server
	sessions   atomic.Int64
}

// New creates a Server and its routes.
func New(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	s := &Server{
		opts:   opts,
		logger: opts.Logger.With().Str("component", "server").Logger(),
		upgrader: websocket.Upgrader{
			// The UI is served from a different origin during development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(recovery(s.logger))

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/runs/{runID}/watch", s.watchRun)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(requestTimeout))
			r.Get("/runs/{runID}", s.getRun)
			if s.opts.Builder != nil {
				r.Post("/builds", s.createBuild)
			}
		})
	})

	s.router = r
}

// ActiveSessions returns the number of open watch sessions.
func (s *Server) ActiveSessions() int64 {
	return s.sessions.Load()
}

// Router returns the router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readHeaderTimeout, shutdownTimeout time.Duration) error {
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = constants.DefaultReadHeaderTimeout
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = constants.DefaultShutdownTimeout
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info().Str("addr", addr).Msg("starting server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
