package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tranphatthinh/gramctl/internal/apierrors"
	"github.com/tranphatthinh/gramctl/internal/auth"
	"github.com/tranphatthinh/gramctl/internal/config"
	"github.com/tranphatthinh/gramctl/internal/server/handlers"
	"github.com/tranphatthinh/gramctl/internal/server/middleware"
	"github.com/tranphatthinh/gramctl/internal/storage"
)

// Server represents the stand-in HTTP server
type Server struct {
	config        *config.Config
	logger        *slog.Logger
	store         storage.Store
	authenticator auth.Authenticator
	limiter       *middleware.RateLimiter
	httpServer    *http.Server

	auth    *handlers.AuthHandler
	review  *handlers.ReviewHandler
	health  *handlers.HealthHandler
	whoami  *handlers.WhoamiHandler
	metrics *handlers.MetricsHandler
}

// NewServer creates a new server instance with the echo reviewer
func NewServer(cfg *config.Config, logger *slog.Logger, store storage.Store) *Server {
	return NewServerWithReviewer(cfg, logger, store, handlers.EchoReviewer{})
}

// NewServerWithReviewer creates a new server instance using reviewer for the text endpoints
func NewServerWithReviewer(cfg *config.Config, logger *slog.Logger, store storage.Store, reviewer handlers.Reviewer) *Server {
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	metrics := handlers.NewMetricsHandler(logger)

	s := &Server{
		config:        cfg,
		logger:        logger,
		store:         store,
		authenticator: auth.NewBearerAuth(issuer, store, logger),
		auth:          handlers.NewAuthHandler(store, issuer, metrics, logger),
		review:        handlers.NewReviewHandler(reviewer, metrics, logger),
		health:        handlers.NewHealthHandler(store, logger),
		whoami:        handlers.NewWhoamiHandler(logger),
		metrics:       metrics,
	}

	if cfg.RateLimit.RequestsPerMinute > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		s.limiter.OnLimited(metrics.IncrementRateLimitExceeded)
		s.limiter.TrustProxy(cfg.RateLimit.TrustProxy)
	}

	return s
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Host, fmt.Sprint(s.config.Server.Port))
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.httpServer = &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}

	s.logger.Info("Starting server",
		"address", listener.Addr().String(),
		"storage_uri", s.storageURI(),
		"access_token_ttl", s.config.Auth.AccessTokenTTL.String(),
		"rate_limit_per_minute", s.config.RateLimit.RequestsPerMinute)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received")
		return s.Shutdown()
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("Initiating graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Server shutdown failed", "error", err)
			return err
		}
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("Storage close failed", "error", err)
		return err
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}

// Router configures the HTTP router with middleware and routes
func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware (applied to all routes)
	router.Use(middleware.Logging(s.logger, s.metrics))
	router.Use(middleware.CORS())
	if s.limiter != nil {
		router.Use(s.limiter.Middleware())
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, "Not found", http.StatusNotFound)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// Health and metrics endpoints (no auth required)
	router.Get("/health", s.health.GetHealth)
	router.Get("/metrics", s.metrics.GetMetrics)

	// Account endpoints
	router.Post("/register", s.auth.Register)
	router.Post("/login", s.auth.Login)
	router.Post("/refresh-token", s.auth.RefreshToken)
	router.Post("/logout", s.auth.Logout)

	// Text endpoints
	router.Post("/check-grammar", s.review.CheckGrammar)
	router.Post("/suggest-improvement", s.review.SuggestImprovement)

	// Whoami endpoint (auth required)
	router.With(s.authenticator.Middleware()).Get("/whoami", s.whoami.GetWhoami)

	return router
}

func (s *Server) storageURI() string {
	uri, err := s.config.GetParsedStorageURI()
	if err != nil {
		return s.config.Storage.URI
	}
	return uri.String()
}
