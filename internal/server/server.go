// Package server exposes a match over HTTP: a scorer command endpoint fed
// through the engine's command loop, read-only scorecard views, and the
// spectator websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/mirror"
	"github.com/roach88/crease/internal/scorecard"
	"github.com/roach88/crease/internal/store"
)

// DefaultCommandTimeout bounds how long a request waits for the loop.
const DefaultCommandTimeout = 10 * time.Second

// Server serves one scored match and any number of mirrored ones.
type Server struct {
	store   *store.Store
	hub     *mirror.Hub
	loop    *engine.Loop // nil when the server only mirrors
	matchID string       // match accepted by the command endpoint
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLoop accepts scoring commands for matchID through loop.
func WithLoop(matchID string, loop *engine.Loop) Option {
	return func(s *Server) {
		s.matchID = matchID
		s.loop = loop
	}
}

// WithCommandTimeout overrides DefaultCommandTimeout. Non-positive
// durations keep the default.
func WithCommandTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a server reading from st and fanning out through hub.
func New(st *store.Store, hub *mirror.Hub, opts ...Option) *Server {
	s := &Server{store: st, hub: hub, timeout: DefaultCommandTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "spectators": s.hub.Spectators()})
	})
	r.Get("/ws", s.hub.HandleWS)

	r.Route("/matches", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{matchID}", func(r chi.Router) {
			r.Get("/", s.handleState)
			r.Get("/card", s.handleCard)
			r.Get("/mvp", s.handleMVP)
			r.Get("/timeline", s.handleTimeline)
			r.Post("/commands", s.handleCommand)
		})
	})
	return r
}

// apiError is the body of every error response.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Code: code, Message: message})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	matches, err := s.store.ListMatches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// live reads the newest stored state of the requested match and writes the
// error response itself when that fails.
func (s *Server) live(w http.ResponseWriter, r *http.Request) (ir.MatchState, bool) {
	matchID := chi.URLParam(r, "matchID")
	snap, err := s.store.Latest(r.Context(), matchID)
	switch {
	case errors.Is(err, store.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown match "+matchID)
		return ir.MatchState{}, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "STORE", err.Error())
		return ir.MatchState{}, false
	}
	return snap.State, true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if state, ok := s.live(w, r); ok {
		writeJSON(w, http.StatusOK, state)
	}
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	if state, ok := s.live(w, r); ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"card":  scorecard.Build(state),
			"rates": scorecard.Rates(state),
		})
	}
}

func (s *Server) handleMVP(w http.ResponseWriter, r *http.Request) {
	if state, ok := s.live(w, r); ok {
		writeJSON(w, http.StatusOK, scorecard.MVP(state, state.Config.Teams))
	}
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	state, ok := s.live(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	innings := state.Innings
	if raw := q.Get("innings"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "innings must be a positive integer, got "+strconv.Quote(raw))
			return
		}
		innings = n
	}
	order := scorecard.Chronological
	if q.Get("order") == string(scorecard.Latest) {
		order = scorecard.Latest
	}
	writeJSON(w, http.StatusOK, scorecard.Timeline(state, innings, order))
}

// handleCommand submits one ir.Command to the loop. Malformed commands are
// answered 422 with the engine's error code.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if s.loop == nil || matchID != s.matchID {
		writeError(w, http.StatusNotFound, "NOT_SCORED_HERE", "this server does not score match "+matchID)
		return
	}

	var cmd ir.Command
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	state, err := s.loop.Submit(ctx, cmd)
	if err != nil {
		var ce *engine.CommandError
		switch {
		case errors.As(err, &ce) && ce.Code == engine.ErrCodeLoopClosed:
			writeError(w, http.StatusServiceUnavailable, string(ce.Code), ce.Message)
		case errors.As(err, &ce):
			writeJSON(w, http.StatusUnprocessableEntity, apiError{Code: string(ce.Code), Message: ce.Message, Field: ce.Field})
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "TIMEOUT", "command loop did not answer in time")
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		}
		return
	}

	slog.Debug("command applied", "match_id", matchID, "type", cmd.Type, "ts", state.LastTimestamp())
	writeJSON(w, http.StatusOK, mirror.NewFrame(0, cmd.Type, state))
}
