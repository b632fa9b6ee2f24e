// Package core is the HTTP chassis: a chi router with request-ID propagation,
// structured request logging, panic recovery, the JSON response envelope, and
// request validation. Domain handlers mount themselves through RouteRegistrars
// so core never imports handler packages.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"droughtwatch/internal/config"
)

// RouteRegistrar mounts a group of domain routes on the /v1 router.
type RouteRegistrar func(chi.Router)

// Server bundles the router with the cross-cutting dependencies handlers need.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator

	// V1RouteRegistrars are applied under /v1 when MountRoutes runs.
	// Populated by main before MountRoutes; the indirection avoids an
	// import cycle between core and the handler packages.
	V1RouteRegistrars []RouteRegistrar

	// HealthProbes are checked by GET /health.
	HealthProbes []HealthProbe

	router *chi.Mux
}

// NewServer validates the required dependencies and prepares the router.
// Routes are mounted separately so tests can register their own.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi mux for tests and route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// MountRoutes registers the global middleware chain, the /v1 route groups,
// and the public health endpoint. Recoverer stays outermost so every panic
// is caught; RequestID runs before the logger so log lines carry the ID.
func (s *Server) MountRoutes() {
	s.router.Use(Recoverer(s.Logger))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(SecurityHeaders)
	s.router.Use(RequestLogger(s.Logger))

	s.router.Route("/v1", func(r chi.Router) {
		for _, registrar := range s.V1RouteRegistrars {
			registrar(r)
		}
	})

	s.router.Get("/health", s.HandleHealth)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.Config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: s.Config.Server.ReadTimeout,
		ReadTimeout:       s.Config.Server.ReadTimeout,
		WriteTimeout:      s.Config.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.Logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	s.Logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
