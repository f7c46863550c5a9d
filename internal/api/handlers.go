package api

import (
	"net/http"
	"strconv"

	"github.com/1Levick3/Analyser-chess/internal/errors"
	"github.com/1Levick3/Analyser-chess/internal/logger"
	"github.com/1Levick3/Analyser-chess/internal/store"
	"github.com/1Levick3/Analyser-chess/internal/worker"
)

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleReady checks whether the service can serve stored data.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Store.LatestReport(r.Context()); err != nil {
		logger.FromContext(r.Context()).Warn("readiness check failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

// handleLatestReport returns the most recent rendered report.
func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Store.LatestReport(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if rep == nil {
		handleError(w, r, errors.NewNotFoundError("report", "latest"))
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// handleGames lists stored per-game summaries, newest first.
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	games, err := s.Store.ListGames(r.Context(), store.GameFilter{
		TimeClass:   q.Get("time_class"),
		OpeningName: q.Get("opening"),
		Opponent:    q.Get("opponent"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"games": games, "count": len(games)})
}

// handleTriggerRun queues a batch run on the worker pool.
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if !s.Pool.Submit(&worker.RunBatchJob{Runner: s.Runner}) {
		handleError(w, r, errors.NewValidationError("queue", "worker queue is full, try again later"))
		return
	}
	log.Info("batch run queued")
	respondJSON(w, http.StatusAccepted, map[string]any{"status": "queued"})
}
