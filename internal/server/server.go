// Package server provides the HTTP API for cdpdocs.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ronak0808/CDP-chatbot/internal/collection"
	"github.com/ronak0808/CDP-chatbot/internal/config"
	"github.com/ronak0808/CDP-chatbot/internal/models"
	"github.com/ronak0808/CDP-chatbot/internal/search"
)

// CollectionStore is the part of collection.Store the API reads and writes.
type CollectionStore interface {
	Snapshot() *collection.Snapshot
	Sections(key string) ([]models.Section, bool)
	Update(ctx context.Context, key string, sections []models.Section) error
	RebuildAll(ctx context.Context) error
	Reload(ctx context.Context, keys ...string) (bool, error)
}

// Server is the HTTP server for the cdpdocs API.
type Server struct {
	engine    *search.Engine
	store     CollectionStore
	config    *config.Config
	logger    *zap.Logger
	limiter   *rate.Limiter
	startedAt time.Time
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(engine *search.Engine, store CollectionStore, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:    engine,
		store:     store,
		config:    cfg,
		logger:    logger,
		startedAt: time.Now(),
	}
	if cfg.Server.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	}
	return s
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(securityHeaders)
	if s.limiter != nil {
		r.Use(s.rateLimit)
	}
	r.Use(middleware.RequestSize(s.config.Server.MaxBodyBytes))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/collections", s.handleListCollections)
		r.Get("/collections/{key}", s.handleGetCollection)
		r.Put("/collections/{key}", s.handleUpdateCollection)
		r.Post("/rebuild", s.handleRebuild)
		r.Get("/status", s.handleStatus)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
