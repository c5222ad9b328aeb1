// Package server exposes scoring and ranking over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/cache"
	"github.com/spigell/fit-scorer/internal/logger"
	"github.com/spigell/fit-scorer/internal/profile"
	"github.com/spigell/fit-scorer/internal/ranking"
	"github.com/spigell/fit-scorer/internal/scoring"
)

const (
	appName         = "fit-scorer"
	shutdownTimeout = 10 * time.Second

	defaultListen         = ":8080"
	defaultRequestTimeout = 30 * time.Second
	defaultBodyLimit      = 1 << 20
)

// Config contains the HTTP settings.
type Config struct {
	Listen         string        `mapstructure:"listen" json:"listen"`
	RequestTimeout time.Duration `mapstructure:"request-timeout" json:"requestTimeout"`
	BodyLimit      int           `mapstructure:"body-limit" json:"bodyLimit"`
}

// Scorer computes one match.
type Scorer interface {
	ComputeScore(ctx context.Context, p *profile.Profile, j *profile.JobRequirement) (*scoring.MatchResult, error)
}

// Ranker ranks many jobs for one profile.
type Ranker interface {
	Rank(ctx context.Context, p *profile.Profile, jobs []*profile.JobRequirement) (*ranking.Ranking, error)
}

// StatsReporter reports embedding cache counters.
type StatsReporter interface {
	Stats(ctx context.Context) cache.Stats
}

// Deps aggregates what the handlers need.
type Deps struct {
	Scorer Scorer
	Ranker Ranker
	// Cache is optional; /healthz omits cache stats without it.
	Cache StatsReporter
}

// Server is the HTTP API.
type Server struct {
	app    *fiber.App
	cfg    Config
	deps   Deps
	logger *zap.Logger
}

// New creates a Server with routes registered.
func New(cfg Config, deps Deps, log *zap.Logger) (*Server, error) {
	if deps.Scorer == nil || deps.Ranker == nil {
		return nil, errors.New("scorer and ranker are required")
	}
	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = defaultBodyLimit
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger.WithFields(log, zap.String("component", "http")),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               appName,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(healthcheck.New())
	s.app.Use(s.requestID)

	s.registerRoutes()
	return s, nil
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("address", s.cfg.Listen))
		errCh <- s.app.Listen(s.cfg.Listen)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.health)

	v1 := s.app.Group("/v1")
	v1.Post("/match", s.match)
	v1.Post("/rank", s.rank)
}
