// Package server provides HTTP server initialization and management.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/turbokuzmich/yourcosmetics/internal/application/container"
	"github.com/turbokuzmich/yourcosmetics/internal/presentation/http/routes"
	"github.com/turbokuzmich/yourcosmetics/pkg/config"
)

// Server wraps the HTTP server with configuration and dependency injection
type Server struct {
	httpServer *http.Server
	container  *container.Container
}

// New creates a new HTTP server instance with dependency injection
func New(port string, container *container.Container) *Server {
	router := routes.SetupRoutes(container)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
		ErrorLog:     slog.NewLogLogger(container.Logger.HTTP().Handler(), slog.LevelWarn),
	}

	return &Server{
		httpServer: httpServer,
		container:  container,
	}
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
