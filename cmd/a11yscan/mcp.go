package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/log"
	mcpadapter "github.com/nao1215/a11yscan/internal/mcp"
	"github.com/nao1215/a11yscan/internal/pipeline"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP server over stdio",
		Long: `Start a Model Context Protocol server on stdin and stdout so AI
assistants can check pages.

Tools:
  a11yscan_check    check a page and return the JSON report
  a11yscan_rules    list the checks and their limitations
  a11yscan_history  stored results for a URL (when history is enabled)

Logs go to stderr; stdout carries only the protocol.

Example client configuration:
  {"command": "a11yscan", "args": ["mcp"]}`,
		Args: cobra.NoArgs,
		RunE: runMCPCmd,
	}
}

// runMCPCmd executes the mcp command.
func runMCPCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)

	deps, err := pipeline.NewDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Renderer.Close(); err != nil {
			logger.Warn("failed to close renderer", "error", err)
		}
	}()

	opts := []mcpadapter.Option{
		mcpadapter.WithLogger(logger),
		mcpadapter.WithVersion(getVersion()),
		mcpadapter.WithTimeout(cfg.AnalysisTimeout + cfg.RecommendationTimeout),
	}
	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		opts = append(opts, mcpadapter.WithHistory(db))
	}

	analyzer := pipeline.NewAnalysisPipeline(deps, pipeline.WithLogger(logger))
	return mcpserver.ServeStdio(mcpadapter.NewA11yscanMCPServer(analyzer, opts...))
}
