// Package signal turns SIGINT and SIGTERM into context cancellation for
// long-running eebuilder commands (watch, build, serve).
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels its context on the first SIGINT or SIGTERM.
type Handler struct {
	ctx         context.Context //nolint:containedctx // the handler owns this context's lifetime
	cancel      context.CancelFunc
	interrupted chan struct{}
	stopped     chan struct{}
	sigCh       chan os.Signal

	mu       sync.Mutex
	received os.Signal

	interruptOnce sync.Once
	stopOnce      sync.Once
}

// NewHandler derives a cancellable context from parent and starts listening.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	err := follow(h.Context())
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		stopped:     make(chan struct{}),
		sigCh:       make(chan os.Signal, 1),
	}

	signal.Notify(h.sigCh, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context is cancelled on interrupt, on Stop, or when the parent is done.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted is closed once a signal has been received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Received returns the signal that interrupted the handler, or nil.
func (h *Handler) Received() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop stops signal delivery and cancels the context. It is idempotent.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigCh)
		close(h.stopped)
		h.cancel()
	})
}

// interrupt records sig and cancels the context. Only the first call has effect.
func (h *Handler) interrupt(sig os.Signal) {
	h.interruptOnce.Do(func() {
		h.mu.Lock()
		h.received = sig
		h.mu.Unlock()
		h.cancel()
		close(h.interrupted)
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.stopped:
			return
		case sig := <-h.sigCh:
			h.interrupt(sig)
		}
	}
}
