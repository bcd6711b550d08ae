package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/logstream"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/watch"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second
	// maxBuildRequestBytes caps POST /api/builds bodies.
	maxBuildRequestBytes = 64 << 10
	// maxCloseReason is the longest close reason a control frame can carry.
	maxCloseReason = 123
)

type healthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version,omitempty"`
	ActiveSessions int64  `json:"active_sessions"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		Version:        s.opts.Version,
		ActiveSessions: s.ActiveSessions(),
	})
}

// runIDParam parses {runID}, writing a 400 when it is not a positive integer.
func runIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "runID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, errors.UserMessage(errors.ErrInvalidRunID))
		return 0, false
	}
	return id, true
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}

	snap, err := s.opts.Fetcher.FetchSnapshot(r.Context(), runID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("run_id", runID).Msg("snapshot fetch failed")
		writeFetchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// buildRequest is the body of POST /api/builds. Inputs are passed to the
// workflow_dispatch event unchanged.
type buildRequest struct {
	Inputs map[string]any `json:"inputs"`
}

type buildResponse struct {
	RunID       int64     `json:"run_id"`
	TriggeredAt time.Time `json:"triggered_at"`
}

func (s *Server) createBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBuildRequestBytes))
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "request body must be a JSON object")
			return
		}
	}

	triggeredAt, err := s.opts.Builder.Dispatch(r.Context(), req.Inputs)
	if err != nil {
		s.logger.Error().Err(err).Msg("workflow dispatch failed")
		writeFetchError(w, err)
		return
	}

	runID, err := s.opts.Builder.Locate(r.Context(), triggeredAt, s.opts.Locate)
	if err != nil {
		s.logger.Error().Err(err).Msg("dispatched run not located")
		writeFetchError(w, err)
		return
	}

	s.logger.Info().Int64("run_id", runID).Msg("build dispatched")
	writeJSON(w, http.StatusAccepted, buildResponse{RunID: runID, TriggeredAt: triggeredAt})
}

// sessionMessage is one websocket frame: a watch update tagged with the
// session it belongs to.
type sessionMessage struct {
	SessionID string `json:"session_id"`
	watch.Update
}

// watchRun streams watch updates for a run until it completes, the run is
// lost, or the client goes away. Each session owns its own watcher.
func (s *Server) watchRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDParam(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	sessionID := uuid.NewString()
	logger := s.logger.With().Str("session_id", sessionID).Int64("run_id", runID).Logger()
	logger.Info().Msg("watch session opened")
	s.sessions.Add(1)
	defer s.sessions.Add(-1)

	sessionDone := make(chan struct{})
	updates := make(chan watch.Update, 16)
	watcher := watch.NewWatcher(s.opts.Fetcher, watch.Options{
		Interval:    s.opts.PollInterval,
		TickTimeout: s.opts.TickTimeout,
		Clock:       s.opts.Clock,
		Logger:      logger,
		OnUpdate: func(u watch.Update) {
			select {
			case updates <- u:
			case <-sessionDone:
			}
		},
	})
	defer func() {
		close(sessionDone)
		watcher.Stop()
		logger.Info().Msg("watch session closed")
	}()

	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := watcher.Start(r.Context(), runID); err != nil {
		logger.Error().Err(err).Msg("watcher did not start")
		return
	}

	var dedupe *logstream.Deduper
	if s.opts.Dedupe {
		dedupe = logstream.NewDeduper()
	}

	send := func(u watch.Update) bool {
		if dedupe != nil {
			u.New = dedupe.Filter(u.New)
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(sessionMessage{SessionID: sessionID, Update: u}); err != nil {
			logger.Debug().Err(err).Msg("websocket write failed")
			return false
		}
		if u.Terminal {
			closeSession(conn, u)
			return false
		}
		return true
	}

	for {
		select {
		case <-clientGone:
			logger.Debug().Msg("client disconnected")
			return
		case u := <-updates:
			if !send(u) {
				return
			}
		case <-watcher.Done():
			// The final update is queued before the watcher reports done.
			for {
				select {
				case u := <-updates:
					if !send(u) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// closeSession sends a close frame describing how the watch ended.
func closeSession(conn *websocket.Conn, u watch.Update) {
	code, reason := websocket.CloseNormalClosure, "run "+u.Conclusion.String()
	if u.Err != nil {
		code, reason = websocket.CloseInternalServerErr, errors.UserMessage(u.Err)
	}
	msg := websocket.FormatCloseMessage(code, truncateCloseReason(reason))
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// truncateCloseReason fits reason into a control frame (125 bytes including
// the code) without splitting a UTF-8 sequence.
func truncateCloseReason(reason string) string {
	if len(reason) <= maxCloseReason {
		return reason
	}
	cut := maxCloseReason
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}
