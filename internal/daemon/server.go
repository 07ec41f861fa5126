package daemon

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/debugmate-ai/debugmate/internal/analysis"
	"github.com/debugmate-ai/debugmate/internal/assistant"
	"github.com/debugmate-ai/debugmate/internal/config"
	"github.com/debugmate-ai/debugmate/internal/llm/configbuilder"
	"github.com/debugmate-ai/debugmate/internal/observability"
	"github.com/debugmate-ai/debugmate/internal/rpc/debug"
	"github.com/debugmate-ai/debugmate/internal/session"
)

// Server hosts the debugging assistant over REST and, depending on
// configuration, the Connect RPC surface.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
	handler *debug.Handler
}

// NewServer constructs a daemon instance.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	registry, err := configbuilder.BuildRegistryFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	metrics := observability.NewMetrics()
	core := assistant.New(registry, analysis.NewChecker(), cfg.Assistant, logger, metrics)
	sessions := session.NewManager(cfg.Auth.Password, cfg.Assistant.HistoryLimit, cfg.Assistant.SummaryLength)
	handler := debug.NewHandler(core, sessions, metrics, logger)

	return &Server{cfg: cfg, logger: logger, metrics: metrics, handler: handler}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (s *Server) Run(ctx context.Context) error {
	handler := s.buildHandler()

	server := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting debugmate daemon",
			zap.String("addr", s.cfg.Server.Addr),
			zap.String("transport", s.transport()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down debugmate daemon")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) buildHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	r.Get("/metrics", s.metricsHandler)
	r.Mount("/api/v1", s.handler.Routes())

	if s.transport() == "rest" {
		return r
	}

	path, connectHandler := debug.NewConnectHandler(s.handler)
	r.Handle(path, connectHandler)
	return h2c.NewHandler(r, &http2.Server{})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(started)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) transport() string {
	return strings.ToLower(strings.TrimSpace(s.cfg.Server.Transport))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Server.MetricsEnabled {
		http.NotFound(w, r)
		return
	}

	promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
