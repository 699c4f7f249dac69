// Package api serves the orbital-element HTTP API consumed by the front-end.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/neo-orbit-api/internal/config"
	"github.com/Sternrassler/neo-orbit-api/pkg/logging"
	"github.com/Sternrassler/neo-orbit-api/pkg/orbit"
	"github.com/Sternrassler/neo-orbit-api/pkg/pagination"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps ingestion request bodies.
const maxBodyBytes = 1 << 20

// Aggregator is the subset of *pagination.Aggregator the handlers use.
type Aggregator interface {
	Collect(ctx context.Context, req pagination.Request) (orbit.Page, error)
}

// Server represents the HTTP API server.
type Server struct {
	httpServer   *http.Server
	aggregator   Aggregator
	catalogPath  string
	writeTimeout time.Duration
	logger       zerolog.Logger
}

// NewServer creates a new API server. The configuration is read once here
// and never consulted again.
func NewServer(cfg *config.Config, aggregator Aggregator) *Server {
	s := &Server{
		aggregator:   aggregator,
		catalogPath:  cfg.Catalog.CSVPath,
		writeTimeout: cfg.Server.WriteTimeout,
		logger:       logging.NewLogger("api"),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.withRequestID(withCORS(s.withAccessLog(mux)))
}

// Start starts the HTTP server on addr (the configured address when empty)
// and blocks until it stops. Start must be called at most once.
func (s *Server) Start(addr string) error {
	if addr != "" {
		s.httpServer.Addr = addr
	}

	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
