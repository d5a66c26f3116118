// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

// Package web exposes the Arcade HTTP API on top of the domain services.
package web

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/internal/auth"
	"github.com/arcadelabs/arcade/internal/catalog"
	"github.com/arcadelabs/arcade/internal/observability"
	"github.com/arcadelabs/arcade/internal/space"
)

// Config holds the dependencies for the HTTP server.
type Config struct {
	Auth    *auth.Service
	Catalog *catalog.Service
	Spaces  *space.Service
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Server is the public HTTP boundary. It owns routing, authentication
// middleware, and the mapping from domain errors to status codes.
type Server struct {
	app     *fiber.App
	auth    *auth.Service
	catalog *catalog.Service
	spaces  *space.Service
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewServer creates a Server and registers all routes.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Auth == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if cfg.Catalog == nil {
		return nil, oops.Errorf("catalog service is required")
	}
	if cfg.Spaces == nil {
		return nil, oops.Errorf("space service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		auth:    cfg.Auth,
		catalog: cfg.Catalog,
		spaces:  cfg.Spaces,
		metrics: cfg.Metrics,
		logger:  logger,
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	s.app.Use(s.recordRequest)
	s.routes()

	return s, nil
}

func (s *Server) routes() {
	v1 := s.app.Group("/api/v1")

	v1.Post("/signup", s.handleSignUp)
	v1.Post("/signin", s.handleSignIn)
	v1.Post("/signout", s.requireAuth, s.handleSignOut)
	v1.Post("/change-password", s.handleChangePassword)
	v1.Post("/user/metadata", s.requireAuth, s.handleUpdateMetadata)
	v1.Get("/user/metadata/bulk", s.requireAuth, s.handleMetadataBulk)
	v1.Get("/avatars", s.handleListAvatars)

	// Literal space paths must register before the :spaceId wildcards.
	v1.Post("/space", s.requireAuth, s.handleCreateSpace)
	v1.Get("/space/all", s.requireAuth, s.handleListSpaces)
	v1.Post("/space/element", s.requireAuth, s.handlePlaceElement)
	v1.Delete("/space/element", s.requireAuth, s.handleRemoveElement)
	v1.Get("/space/:spaceId", s.requireAuth, s.handleGetSpace)
	v1.Delete("/space/:spaceId", s.requireAuth, s.handleDeleteSpace)

	admin := v1.Group("/admin", s.requireAuth, s.requireAdmin)
	admin.Post("/element", s.handleCreateElement)
	admin.Put("/element/:elementId", s.handleUpdateElement)
	admin.Post("/avatar", s.handleCreateAvatar)
	admin.Post("/map", s.handleCreateMap)
	admin.Post("/unlock", s.handleUnlock)
}

// App returns the underlying fiber app, used by tests to drive requests
// without a listener.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server starting", "addr", addr)
	if err := s.app.Listen(addr); err != nil {
		return oops.With("addr", addr).Wrap(err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return oops.With("operation", "shutdown_http_server").Wrap(err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// recordRequest counts completed requests by route pattern and status.
func (s *Server) recordRequest(c *fiber.Ctx) error {
	err := c.Next()
	if s.metrics != nil {
		route := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		s.metrics.RequestsTotal.WithLabelValues(route, status).Inc()
	}
	return err
}
