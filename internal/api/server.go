package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/1Levick3/Analyser-chess/internal/store"
	"github.com/1Levick3/Analyser-chess/internal/worker"
)

// Server exposes the analyser's stored state over HTTP and lets callers
// trigger a batch run. It never runs analysis inline; runs go through the
// worker pool.
type Server struct {
	Store  *store.Store
	Pool   *worker.Pool
	Runner worker.BatchRunner
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/reports/latest", s.handleLatestReport)
		r.Get("/games", s.handleGames)
		r.Post("/runs", s.handleTriggerRun)
	})

	return r
}
