// Package server provides the HTTP server for the assistant API
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mealsmith/api/internal/infrastructure/config"
	"github.com/mealsmith/api/internal/infrastructure/http/handlers"
	"github.com/mealsmith/api/internal/infrastructure/http/middleware"
	"github.com/mealsmith/api/internal/infrastructure/monitoring"
	"github.com/mealsmith/api/internal/infrastructure/security"
	"github.com/mealsmith/api/internal/ports/inbound"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	logger      *zap.Logger
	router      *chi.Mux
	server      *http.Server
	authService *security.AuthService
	metrics     *monitoring.MetricsCollector

	chatHandlers           *handlers.ChatAPIHandlers
	recommendationHandlers *handlers.RecommendationAPIHandlers
	authHandlers           *handlers.AuthAPIHandlers
}

// NewServer creates a new HTTP server instance
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	chatService inbound.ChatService,
	recommendationService inbound.RecommendationService,
	authService *security.AuthService,
	metrics *monitoring.MetricsCollector,
) *Server {
	s := &Server{
		config:                 cfg,
		logger:                 logger,
		authService:            authService,
		metrics:                metrics,
		chatHandlers:           handlers.NewChatAPIHandlers(chatService, logger),
		recommendationHandlers: handlers.NewRecommendationAPIHandlers(recommendationService, logger),
		authHandlers:           handlers.NewAuthAPIHandlers(authService, logger),
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// setupRouter configures the route tree
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Metrics(s.metrics))
	r.Use(middleware.Security())
	r.Use(middleware.CORS())

	r.NotFound(handlers.NotFound)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.config.RateLimit))
		r.Use(middleware.JSONOnly())

		r.Post("/auth/login", s.authHandlers.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthenticateAPI(s.authService))

			r.Post("/chat/message", s.chatHandlers.SendMessage)
			r.Get("/chat/history", s.chatHandlers.History)
			r.Get("/recommendations", s.recommendationHandlers.Recommend)
			r.Post("/admin/recommendations/invalidate", s.recommendationHandlers.InvalidateCache)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","name":%q,"version":%q}`, s.config.App.Name, s.config.App.Version)
}

// Start begins serving; blocks until the listener closes
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the route tree for tests
func (s *Server) Router() http.Handler {
	return s.router
}
