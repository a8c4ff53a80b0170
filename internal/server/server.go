// Package server exposes a small read-only status HTTP surface for a
// scheduling run: health, Prometheus metrics and a JSON snapshot of solve
// progress. There is no job control; a run is single-shot and the optimizer
// has no cancellation path.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridalign/gridalign/internal/logging"
	"github.com/gridalign/gridalign/internal/sim"
)

// StatusSource provides point-in-time run snapshots.
type StatusSource interface {
	Snapshot() sim.Snapshot
}

// Server serves the status endpoints for one scheduling run.
type Server struct {
	source StatusSource
	logger *logging.Logger
}

// NewServer creates a status server over the given snapshot source.
func NewServer(source StatusSource, logger *logging.Logger) *Server {
	return &Server{source: source, logger: logger}
}

// Router builds the chi router with logging and recovery middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.logger))
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/v1/status", s.handleStatus)
	return r
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("Recovered from panic", map[string]interface{}{
					"error": rec,
					"path":  r.URL.Path,
				})
				http.Error(w, http.StatusText(http.StatusInternalServerError),
					http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		logging.FromContext(r.Context()).Error("Failed to encode status", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
