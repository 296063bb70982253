package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/chis/tagwatch/internal/logging"
	"github.com/chis/tagwatch/internal/storage"
	"github.com/chis/tagwatch/internal/watch"
)

// Server represents the HTTP API server
type Server struct {
	aggregator  *watch.Aggregator
	store       storage.Storage
	poller      *watch.Poller
	httpServer  *http.Server
	rateLimiter *PathRateLimiter
}

// Config holds configuration for the API server
type Config struct {
	Port       int
	Aggregator *watch.Aggregator
	Store      storage.Storage // optional
	Poller     *watch.Poller   // optional
}

// NewServer creates a new API server with the given configuration
func NewServer(cfg Config) *Server {
	// Rate limiting can be disabled for testing
	var rateLimiter *PathRateLimiter
	if os.Getenv("TAGWATCH_DISABLE_RATE_LIMIT") != "true" {
		rateLimiter = NewPathRateLimiter(DefaultRateLimitConfig())
		// Health checks come from orchestrators at a high rate
		rateLimiter.SetPathLimit("/api/health", RateLimitConfig{
			RequestsPerMinute: 120,
			BurstSize:         20,
		})
		// Each releases request fans out to upstream registries
		rateLimiter.SetPathLimit("/api/releases", RateLimitConfig{
			RequestsPerMinute: 10,
			BurstSize:         3,
		})
	} else {
		logging.Logger.Info("rate limiting disabled via TAGWATCH_DISABLE_RATE_LIMIT")
	}

	s := &Server{
		aggregator:  cfg.Aggregator,
		store:       cfg.Store,
		poller:      cfg.Poller,
		rateLimiter: rateLimiter,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	// Apply middleware: CORS -> Correlation ID -> Rate Limit (optional) -> Handler
	middlewares := []func(http.Handler) http.Handler{
		corsMiddleware,
		CorrelationIDMiddleware,
	}
	if rateLimiter != nil {
		middlewares = append(middlewares, PathRateLimitMiddleware(rateLimiter))
	}
	handler := ChainMiddleware(mux, middlewares...)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // a releases call waits on upstream registries
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/releases", s.handleReleases)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/history", s.handleHistory)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins the background poller (if configured) and serves HTTP.
func (s *Server) Start() error {
	if s.poller != nil {
		s.poller.Start()
	}

	logging.Logger.Info("starting API server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger.Info("shutting down API server")

	if s.poller != nil {
		s.poller.Stop()
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
