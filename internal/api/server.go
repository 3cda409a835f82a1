// Package api exposes the HTTP surface: document intake, send job
// management, the provider webhook, and health.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/printmechecks/server/internal/auth"
	"github.com/printmechecks/server/internal/config"
)

// Server wraps the HTTP server and its assembled router.
type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer assembles the router from handlers, auth, and the optional
// webhook rate limiter.
func NewServer(cfg config.ServerConfig, h *Handlers, verifier *auth.Verifier, limiter *RateLimiter) *Server {
	return &Server{
		cfg:     cfg,
		handler: setupRoutes(cfg, h, verifier, limiter),
	}
}

// ListenAndServe starts the HTTP server on the configured address.
func (s *Server) ListenAndServe() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler: s.handler,
		// Read/write stay generous for document uploads; header reads
		// get a tight deadline.
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
