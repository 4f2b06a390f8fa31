package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/contactbook/internal/api/handlers"
	"github.com/eshaffer321/contactbook/internal/api/middleware"
	"github.com/eshaffer321/contactbook/internal/application/service"
	"github.com/eshaffer321/contactbook/internal/infrastructure/config"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	// BirthdayDays is the window used by /api/birthdays when ?days= is absent.
	BirthdayDays int
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		BirthdayDays:   config.DefaultBirthdayDays,
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	contacts   *service.ContactService
}

// NewServer creates a new API server.
func NewServer(cfg Config, contacts *service.ContactService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		contacts: contacts,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// CORS
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
	}
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler(s.contacts, s.logger)
	s.router.Get("/health", healthHandler.ServeHTTP)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Contacts
		contactsHandler := handlers.NewContactsHandler(s.contacts, s.logger)
		r.Get("/contacts", contactsHandler.List)
		r.Post("/contacts", contactsHandler.Create)
		r.Post("/contacts/import", contactsHandler.Import)
		r.Get("/contacts/export.vcf", contactsHandler.Export)
		r.Get("/contacts/{id}", contactsHandler.Get)
		r.Patch("/contacts/{id}", contactsHandler.Update)
		r.Put("/contacts/{id}", contactsHandler.Update)
		r.Delete("/contacts/{id}", contactsHandler.Delete)

		// Birthdays
		birthdaysHandler := handlers.NewBirthdaysHandler(s.contacts, s.config.BirthdayDays, s.logger)
		r.Get("/birthdays", birthdaysHandler.List)
		r.Get("/birthdays/calendar.ics", birthdaysHandler.Calendar)
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
