// Package server exposes the analytics reports over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"velohub/internal/config"
	"velohub/internal/service"
)

// ReportBuilder is the slice of the analytics facade the server serves.
// *service.Facade satisfies it.
type ReportBuilder interface {
	BuildMaintenanceSummaries(ctx context.Context, athleteIDs []int64) ([]service.AthleteMaintenanceSummary, []service.Warning, error)
	BuildActivitySummaries(ctx context.Context, athleteIDs []int64) ([]service.ActivitySummary, []service.Warning, error)
	BuildMaintenanceStatistics(ctx context.Context, athleteIDs []int64) ([]service.MaintenanceStatistic, []service.Warning, error)
}

// Server is the HTTP front for the analytics engine
type Server struct {
	cfg     *config.Config
	builder ReportBuilder
	cache   Cache
	metrics Metrics
	log     zerolog.Logger
	router  *chi.Mux
	http    *http.Server
}

// New creates a server wired to the given report builder
func New(cfg *config.Config, builder ReportBuilder, log zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		builder: builder,
		cache:   NewCache(cfg.Cache, log),
		metrics: NewMetrics(cfg.Metrics.Enabled),
		log:     log.With().Str("component", "server").Logger(),
		router:  chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Run starts the server and blocks until a shutdown signal or a listener
// error. Outstanding requests get the configured shutdown grace period.
func (s *Server) Run() error {
	serverErrors := make(chan error, 1)

	go func() {
		s.log.Info().Str("addr", s.cfg.Server.Addr()).Msg("server starting")
		serverErrors <- s.http.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.log.Info().Str("signal", sig.String()).Msg("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			s.log.Error().Err(err).Msg("graceful shutdown failed")
			if err := s.http.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}

		s.log.Info().Msg("server stopped")
	}

	return nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/health", s.handleHealth)

	if s.cfg.Metrics.Enabled {
		r.Handle(s.cfg.Metrics.Path, promhttp.Handler())
	}

	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/maintenance", s.handleMaintenanceReport)
		r.Get("/activity", s.handleActivityReport)
		r.Get("/statistics", s.handleStatisticsReport)
	})
}

// Router returns the chi router, for tests
func (s *Server) Router() *chi.Mux {
	return s.router
}
