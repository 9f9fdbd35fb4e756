package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/pipeline"
	"github.com/nao1215/a11yscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the accessibility check HTTP API",
		Long: `Serve starts the HTTP API used by the web frontend.

Routes:
  GET  /              service information
  GET  /health        health check
  POST /api/check     check a page: {"url": "https://example.com"}
  POST /api/cleanup   release renderer resources
  GET  /api/history   stored results: ?url=...&limit=...
  GET  /metrics       Prometheus metrics

The port, environment and allowed origins come from the configuration file
and the PORT, NODE_ENV and ALLOWED_ORIGINS environment variables. Flags
override both.

Examples:
  # Start on the default port 3001
  a11yscan serve

  # Start in production mode on port 8080
  a11yscan serve --port 8080 --env production`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().IntP("port", "p", config.DefaultPort,
		"Port to listen on")
	cmd.Flags().StringP("env", "e", config.DefaultEnvironment,
		"Environment: development or production")
	cmd.Flags().Bool("no-history", false,
		"Do not save results or serve /api/history")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	level := cfg.LogLevel
	if cfg.Verbose {
		level = "debug"
	}
	logger := log.NewLogger(os.Stderr, cfg.Environment, level)

	ctx, cancel := signalContext(logger)
	defer cancel()

	deps, err := pipeline.NewDependencies(cfg, logger)
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithLogger(logger)}
	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		opts = append(opts, server.WithHistory(db))
	}

	srv, err := server.New(cfg, deps, opts...)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// applyServeFlags copies the serve flags onto cfg when they were set.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	flags := cmd.Flags()

	if flags.Changed("port") {
		if cfg.Port, err = flags.GetInt("port"); err != nil {
			return err
		}
	}
	if flags.Changed("env") {
		if cfg.Environment, err = flags.GetString("env"); err != nil {
			return err
		}
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return err
	}
	if noHistory {
		cfg.SaveToDB = false
	}
	return nil
}
