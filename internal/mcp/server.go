// Package mcp exposes the compliance checker as Model Context Protocol tools
// so AI assistants can check pages and read the rule set over stdio.
package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
)

// Analyzer runs one analysis. *pipeline.Pipeline implements it.
type Analyzer interface {
	Analyze(ctx context.Context, input string) (*model.Analysis, error)
}

// HistoryStore reads and writes stored results. *database.HistoryDB
// implements it.
type HistoryStore interface {
	SaveResult(ctx context.Context, result *model.Result, snapshot *model.PageSnapshot) (string, error)
	GetHistory(ctx context.Context, pageURL string, limit int) ([]database.Record, error)
}

// config is shared by the tool handlers.
type config struct {
	analyzer Analyzer
	history  HistoryStore
	logger   *slog.Logger
	version  string
	timeout  time.Duration
	now      func() time.Time
}

// Option configures the MCP server.
type Option func(*config)

// WithHistory saves every successful check and registers the history tool.
func WithHistory(store HistoryStore) Option {
	return func(c *config) {
		c.history = store
	}
}

// WithLogger sets the logger. It must not write to stdout, which carries the
// protocol.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithVersion sets the version reported to clients.
func WithVersion(version string) Option {
	return func(c *config) {
		c.version = version
	}
}

// WithTimeout bounds one check. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock replaces the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// NewA11yscanMCPServer creates an MCP server with the a11yscan tools and
// resources registered.
func NewA11yscanMCPServer(analyzer Analyzer, opts ...Option) *server.MCPServer {
	cfg := &config{
		analyzer: analyzer,
		version:  "dev",
		timeout:  2 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	s := server.NewMCPServer(
		"a11yscan",
		cfg.version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, cfg)
	registerResources(s)

	return s
}
