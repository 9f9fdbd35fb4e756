package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/guard"
	"github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/pipeline"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/nao1215/a11yscan/internal/sanitize"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [url...]",
		Short: "Check web pages for accessibility issues",
		Long: `Check fetches each page and evaluates it against ten accessibility rules.

Each failed check gets a recommendation. When REPLICATE_API_TOKEN or
OPENAI_API_KEY is set, recommendations come from a language model;
otherwise built-in templates are used.

Results are saved to the history database unless --no-save is given.
Use 'a11yscan history' to compare runs.

Examples:
  # Check a single page
  a11yscan check https://example.com

  # Check several pages, two at a time
  a11yscan check -b 2 https://example.com https://example.org

  # Output a JSON report
  a11yscan check --json https://example.com

  # Write a Markdown report to a file
  a11yscan check --markdown -o reports/example.md https://example.com

  # Skip recommendations from a language model
  a11yscan check --provider none https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent checks")
	cmd.Flags().DurationP("timeout", "t", config.DefaultNavigationTimeout,
		"Timeout for fetching each page")
	cmd.Flags().StringP("provider", "p", "",
		"Recommendation provider: auto, replicate, openai or none (default from configuration)")
	cmd.Flags().Bool("no-save", false,
		"Do not save results to the history database")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCheckFlags(cmd, cfg, args); err != nil {
		return err
	}
	if err := cfg.ValidateTargets(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	deps, err := pipeline.NewDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Renderer.Close(); err != nil {
			logger.Warn("failed to close renderer", "error", err)
		}
	}()

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	output, closeOutput, err := openReportOutput(cfg.ReportFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Write errors are reported per result

	runner := &checkRunner{
		cfg:      cfg,
		deps:     deps,
		progress: cmd.ErrOrStderr(),
		writer:   newReportWriter(cfg, output),
		logger:   logger,
		now:      time.Now,
	}
	if db != nil {
		runner.history = db
	}
	return runner.run(ctx)
}

// applyCheckFlags copies the check flags onto cfg. Flags override the
// configuration file only when they were set.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config, args []string) error {
	var err error
	flags := cmd.Flags()

	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.NavigationTimeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("provider") {
		if cfg.Provider, err = flags.GetString("provider"); err != nil {
			return err
		}
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return err
	}
	if noSave {
		cfg.SaveToDB = false
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}

	cfg.Targets = make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			cfg.Targets = append(cfg.Targets, arg)
		}
	}
	return nil
}

// historySaver is the part of the history database the check command uses.
type historySaver interface {
	SaveResult(ctx context.Context, result *model.Result, snapshot *model.PageSnapshot) (string, error)
}

// checkRunner analyzes cfg.Targets and writes one report per page.
type checkRunner struct {
	cfg      *config.Config
	deps     pipeline.Dependencies
	history  historySaver
	writer   report.Writer
	progress io.Writer
	logger   *slog.Logger
	now      func() time.Time
}

// run checks every target. Reports are written in completion order. The
// returned error counts the pages that could not be checked.
func (r *checkRunner) run(ctx context.Context) error {
	total := len(r.cfg.Targets)
	if total > 1 {
		fmt.Fprintf(r.progress, "Checking %d pages (concurrency: %d)...\n\n", total, r.cfg.BatchSize)
	}
	start := r.now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.NewAnalysisPipeline(r.deps, pipeline.WithLogger(r.logger))
		},
		pipeline.WithConcurrency(r.cfg.BatchSize),
		pipeline.WithBatchLogger(r.logger),
	)

	var (
		mu     sync.Mutex
		failed int
	)
	err := bp.ProcessBatchWithCallback(ctx, r.cfg.Targets, func(res pipeline.BatchResult) {
		mu.Lock()
		defer mu.Unlock()

		if res.Err != nil {
			failed++
			fmt.Fprintf(r.progress, "[%d/%d] Check failed for %s: %s\n",
				res.Index+1, total, log.MaskURL(sanitize.URL(res.Input)), failureMessage(res.Err))
			return
		}

		result := res.Analysis.Result(r.now())
		if result == nil {
			failed++
			fmt.Fprintf(r.progress, "[%d/%d] Check failed for %s: incomplete analysis\n",
				res.Index+1, total, log.MaskURL(sanitize.URL(res.Input)))
			return
		}
		if total > 1 {
			fmt.Fprintf(r.progress, "[%d/%d] Check completed: %s\n", res.Index+1, total, log.MaskURL(result.URL))
		}

		if _, err := r.writer.Write(result); err != nil {
			r.logger.Error("report failed", "url", result.URL, "error", err)
		}

		if r.history != nil {
			if _, err := r.history.SaveResult(context.WithoutCancel(ctx), result, res.Analysis.Snapshot); err != nil {
				r.logger.Error("failed to save result", "url", result.URL, "error", err)
			}
		}
	})

	if total > 1 {
		fmt.Fprintf(r.progress, "\nChecked %d pages in %s\n", total, r.now().Sub(start).Round(time.Millisecond))
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pages could not be checked", failed, total)
	}
	return nil
}

// failureMessage returns the message shown for a failed check. Rejections
// use their fixed message; other errors have credentials removed.
func failureMessage(err error) string {
	var reason guard.Reason
	if errors.As(err, &reason) {
		return reason.Message()
	}
	return sanitize.Text(err.Error())
}

var _ historySaver = (*database.HistoryDB)(nil)
