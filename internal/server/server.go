// Package server exposes the introspected schema to the query-serving
// layer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jkarni/ndc-postgres/internal/errs"
	"github.com/jkarni/ndc-postgres/internal/logger"
	"github.com/jkarni/ndc-postgres/internal/metadata"
)

// Refresher re-runs introspection against the live database and returns
// the fresh schema.
type Refresher func(ctx context.Context) (metadata.Metadata, error)

// Server serves the connector schema. The schema value itself is
// immutable; reloads swap the whole value under the mutex.
type Server struct {
	log     *logger.Logger
	refresh Refresher

	mu   sync.RWMutex
	meta metadata.Metadata
}

// New builds a Server around an initial schema and a refresher.
func New(log *logger.Logger, meta metadata.Metadata, refresh Refresher) *Server {
	return &Server{log: log, refresh: refresh, meta: meta}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/schema", s.handleSchema)
	r.Post("/schema/reload", s.handleReload)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	meta := s.meta
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.refresh == nil {
		writeError(w, http.StatusServiceUnavailable, "reload not available")
		return
	}

	meta, err := s.refresh(r.Context())
	if err != nil {
		s.log.ErrorWith("schema reload failed", err, nil)
		writeError(w, statusFor(err), "schema reload failed")
		return
	}

	s.mu.Lock()
	s.meta = meta
	s.mu.Unlock()

	s.log.InfoWith("schema reloaded", map[string]interface{}{
		"tables": len(meta.Tables),
	})
	writeJSON(w, http.StatusOK, meta)
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.HTTPEvent().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func statusFor(err error) int {
	switch {
	case errs.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errs.IsConnectionFailed(err):
		return http.StatusBadGateway
	case errs.IsPermissionDenied(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
