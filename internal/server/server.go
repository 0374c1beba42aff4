// Package server exposes the questionnaire over HTTP: submission intake,
// health, and Prometheus metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bmadison30/XplainIQ-Lite/internal/common/config"
	"github.com/bmadison30/XplainIQ-Lite/internal/common/logger"
	"github.com/bmadison30/XplainIQ-Lite/internal/leads"
	"github.com/bmadison30/XplainIQ-Lite/internal/models"
	"github.com/bmadison30/XplainIQ-Lite/internal/report"
	"github.com/bmadison30/XplainIQ-Lite/internal/scoring"
)

// ReportEmailer delivers a finished report to the contact.
type ReportEmailer interface {
	SendReport(ctx context.Context, to, company string, doc *models.ReportDocument) error
}

// Server wires the scoring core to the delivery plumbing.
type Server struct {
	cfg       *config.Config
	engine    *scoring.Engine
	composer  *report.Composer
	store     leads.Store
	limiter   *leads.RateLimiter
	forwarder *leads.Forwarder
	emailer   ReportEmailer
	logger    logger.Logger
	now       func() time.Time

	httpServer *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithStore sets the lead persistence sink.
func WithStore(s leads.Store) Option {
	return func(srv *Server) { srv.store = s }
}

// WithRateLimiter sets the per-email submission limiter.
func WithRateLimiter(l *leads.RateLimiter) Option {
	return func(srv *Server) { srv.limiter = l }
}

// WithForwarder sets the lead webhook forwarder.
func WithForwarder(f *leads.Forwarder) Option {
	return func(srv *Server) { srv.forwarder = f }
}

// WithEmailer sets the report email sender.
func WithEmailer(e ReportEmailer) Option {
	return func(srv *Server) { srv.emailer = e }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(srv *Server) { srv.now = now }
}

// New builds a Server around the scoring engine and report composer.
func New(cfg *config.Config, log logger.Logger, opts ...Option) *Server {
	srv := &Server{
		cfg:      cfg,
		engine:   scoring.Default(),
		composer: report.NewComposer(newRadarChart(cfg), log),
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// newRadarChart builds the renderer at the configured canvas size, keeping
// the renderer's own default when the config leaves it unset.
func newRadarChart(cfg *config.Config) *report.RadarChart {
	radar := report.NewRadarChart()
	if cfg.Report.RadarSize > 0 {
		radar.Size = cfg.Report.RadarSize
	}
	return radar
}

// Routes returns the HTTP handler for the service.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/assessments", s.handleSubmission)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start begins serving and blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.Routes(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Millisecond,
	}
	s.logger.Info("http server starting", map[string]interface{}{
		"address": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}
