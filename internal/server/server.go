// Package server wires the HTTP routes and manages the server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zalbiraw/ocichat/internal/compat"
	"github.com/zalbiraw/ocichat/internal/config"
	"github.com/zalbiraw/ocichat/internal/web"
)

// writeSlack is added on top of the upstream read timeout so a slow model
// answer can still be written back before the server gives up on the response.
const writeSlack = 30 * time.Second

// Server wraps the HTTP server.
type Server struct {
	http *http.Server
	log  *zap.SugaredLogger
}

// NewRouter creates the chi router with the chat form, the OpenAI-compatible
// endpoint and a health probe.
func NewRouter(shell *web.Shell, api *compat.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	shell.Routes(r)
	api.Routes(r)

	return r
}

// New creates a server listening on cfg.ListenAddr.
func New(cfg config.Config, handler http.Handler, log *zap.SugaredLogger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 15 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      cfg.ConnectTimeout + cfg.ReadTimeout + writeSlack,
			IdleTimeout:       60 * time.Second,
		},
		log: log.Named("server"),
	}
}

// Start runs the server until it fails or is shut down. A clean shutdown
// returns nil.
func (s *Server) Start() error {
	s.log.Infow("starting HTTP server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Infow("shutting down server")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Infow("server shutdown complete")
	return nil
}
