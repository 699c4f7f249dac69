package api

import (
	"net/http"

	"github.com/Sternrassler/neo-orbit-api/pkg/metrics"
)

// RegisterRoutes registers all endpoints on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	s.handle(mux, http.MethodGet, "/api/asteroides", s.handleAsteroides)
	s.handle(mux, http.MethodGet, "/api/neos", s.handleNeos)
	s.handle(mux, http.MethodGet, "/api/earth", s.handleEarth)
	s.handle(mux, http.MethodGet, "/api/seed", s.handleSeed)

	s.handle(mux, http.MethodPost, "/api/send-general", s.handleSendGeneral)
	s.handle(mux, http.MethodPost, "/api/send-asteroides", s.handleSendAsteroides)

	// Operational endpoints
	s.handle(mux, http.MethodGet, "/health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
}

// handle registers fn for method+path, instrumented under the path label.
func (s *Server) handle(mux *http.ServeMux, method, path string, fn http.HandlerFunc) {
	mux.Handle(method+" "+path, metrics.InstrumentRoute(path, fn))
}
