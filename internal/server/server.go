package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/pipeline"
	"github.com/nao1215/a11yscan/internal/render"
)

const (
	// Version is reported by GET /.
	Version = "2.0.0"

	// maxRequestBodySize limits POST body sizes.
	maxRequestBodySize = 1 << 20 // 1 MB

	// defaultHistoryLimit caps the records returned by /api/history.
	defaultHistoryLimit = 50

	shutdownTimeout = 10 * time.Second
)

// HistoryStore persists finished results. *database.HistoryDB implements it.
type HistoryStore interface {
	SaveResult(ctx context.Context, result *model.Result, snapshot *model.PageSnapshot) (string, error)
	GetHistory(ctx context.Context, pageURL string, limit int) ([]database.Record, error)
}

// Server is the HTTP API. It owns the renderer passed in through its
// dependencies and closes it on shutdown.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	checks   *pipeline.Pipeline
	advice   *pipeline.RecommendStep
	renderer render.Renderer
	history  HistoryStore
	limiter  *ipRateLimiter
	metrics  *metrics
	now      func() time.Time
	handler  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHistory enables result history. A nil store disables it.
func WithHistory(store HistoryStore) Option {
	return func(s *Server) {
		s.history = store
	}
}

// WithClock replaces the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Server from cfg and the shared analysis components.
func New(cfg *config.Config, deps pipeline.Dependencies, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if deps.Renderer == nil {
		return nil, ErrNoRenderer
	}

	s := &Server{
		cfg:      cfg,
		renderer: deps.Renderer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if deps.Logger == nil {
		deps.Logger = s.logger
	}

	s.checks = pipeline.NewCheckPipeline(deps)
	s.advice = pipeline.NewRecommendStepFor(deps)
	s.limiter = newIPRateLimiter(cfg.CheckRateLimit, cfg.CheckRateWindow)
	s.metrics = newMetrics()
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("POST /api/check", s.rateLimit(http.HandlerFunc(s.handleCheck)))
	mux.HandleFunc("POST /api/cleanup", s.handleCleanup)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.Handle("GET /metrics", s.metrics.handler())

	var h http.Handler = mux
	h = s.cors(h)
	h = securityHeaders(h)
	h = s.accessLog(h)
	h = s.recoverPanic(h)
	h = requestID(h)
	return h
}

// ListenAndServe serves on the configured port until ctx is cancelled, then
// shuts down gracefully and closes the renderer.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Analysis and recommendation budgets plus slack for writing.
		WriteTimeout: s.cfg.AnalysisTimeout + s.cfg.RecommendationTimeout + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			"address", ln.Addr().String(),
			"environment", s.cfg.Environment,
		)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		_ = s.renderer.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if cerr := s.renderer.Close(); cerr != nil {
		s.logger.Warn("failed to close renderer", "error", cerr)
	}
	if err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
