// Package api provides the HTTP API server and handlers for the BookTracker application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/booktrackerapp/booktracker-server/internal/service"
	"github.com/booktrackerapp/booktracker-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	checkService    *service.CheckService
	trackingService *service.TrackingService
	validator       *validation.Validator
	router          *chi.Mux
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(checkService *service.CheckService, trackingService *service.TrackingService, logger *slog.Logger) *Server {
	s := &Server{
		checkService:    checkService,
		trackingService: trackingService,
		validator:       validation.New(),
		router:          chi.NewRouter(),
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Interactive checks and tracked searches (owner-scoped).
		r.Group(func(r chi.Router) {
			r.Use(s.requireOwner)
			r.Post("/checks", s.handleCheck)
			r.Route("/searches", func(r chi.Router) {
				r.Get("/", s.handleListSearches)
				r.Delete("/{id}", s.handleDeleteSearch)
			})
		})

		// Administration.
		r.Group(func(r chi.Router) {
			r.Use(s.requireOwner)
			r.Use(s.requireAdmin)
			r.Post("/users", s.handleCreateUser)
			r.Patch("/searches/{id}/override", s.handleSetOverride)
		})
	})
}
