package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/nao1215/a11yscan/internal/sanitize"
)

// NewHistoryCmd creates the history command.
// It compares stored results for a URL and lists what the database holds.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Compare stored results with earlier runs",
		Long: `History reads results saved by 'a11yscan check' and shows how a page changed.

By default the latest two results for the URL are compared. With a single
stored result, that result is shown instead. A comparison lists:
- Checks that newly fail
- Checks that were fixed
- Checks that still fail
- Whether the page content changed between the runs

Examples:
  # Compare the latest two results for a page
  a11yscan history https://example.com

  # List stored results for a page
  a11yscan history --list https://example.com

  # Compare the latest result with a specific stored result
  a11yscan history --with-id 0b9c... https://example.com

  # Compare with the first result since a date
  a11yscan history --since 2026-01-01 https://example.com

  # Show how often each check failed
  a11yscan history --failures https://example.com

  # List every URL in the database
  a11yscan history --list-urls`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List stored results for the specified URL")
	cmd.Flags().BoolP("list-urls", "L", false,
		"List every URL in the database")
	cmd.Flags().BoolP("failures", "F", false,
		"Show how many stored results failed each check")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of results listed with --list (0 for all)")

	cmd.Flags().StringP("with-id", "i", "",
		"Compare with a specific stored result (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first result after this date (format: YYYY-MM-DD)")

	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison in Markdown format")

	return cmd
}

// historyOptions are the parsed history flags.
type historyOptions struct {
	url      string
	list     bool
	listURLs bool
	failures bool
	limit    int
	withID   string
	since    string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryFlags(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}

	// Reading history never creates the database.
	db, err := database.Open(cfg.DBDir, database.Options{EnableWAL: true})
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return fmt.Errorf("%w (use 'a11yscan check' to store results first)", err)
		}
		return err
	}
	defer db.Close()

	view := &historyView{
		store: db,
		out:   cmd.OutOrStdout(),
		cfg:   cfg,
	}
	return view.run(cmd.Context(), opts)
}

// parseHistoryFlags validates the flag combination before the database is
// opened.
func parseHistoryFlags(cmd *cobra.Command, args []string) (historyOptions, error) {
	var opts historyOptions
	var err error
	flags := cmd.Flags()

	if opts.listURLs, err = flags.GetBool("list-urls"); err != nil {
		return opts, err
	}
	if opts.list, err = flags.GetBool("list"); err != nil {
		return opts, err
	}
	if opts.failures, err = flags.GetBool("failures"); err != nil {
		return opts, err
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.withID, err = flags.GetString("with-id"); err != nil {
		return opts, err
	}
	if opts.since, err = flags.GetString("since"); err != nil {
		return opts, err
	}

	if opts.listURLs {
		return opts, nil
	}
	if len(args) == 0 {
		return opts, errors.New("URL is required (use --list-urls to see stored URLs)")
	}
	opts.url = sanitize.URL(strings.TrimSpace(args[0]))
	if opts.withID != "" && opts.since != "" {
		return opts, errors.New("--with-id and --since cannot be used together")
	}
	return opts, nil
}

// historyStore is the part of the history database the history command
// reads.
type historyStore interface {
	GetHistory(ctx context.Context, pageURL string, limit int) ([]database.Record, error)
	GetLatest(ctx context.Context, pageURL string) (*model.Result, error)
	GetByID(ctx context.Context, id string) (*model.Result, error)
	ListURLs(ctx context.Context) ([]string, error)
	FailureCounts(ctx context.Context, pageURL string) (map[model.CheckName]int, error)
}

// historyView renders stored results.
type historyView struct {
	store historyStore
	out   io.Writer
	cfg   *config.Config
}

func (v *historyView) run(ctx context.Context, opts historyOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch {
	case opts.listURLs:
		return v.listURLs(ctx)
	case opts.list:
		return v.listRecords(ctx, opts.url, opts.limit)
	case opts.failures:
		return v.failureCounts(ctx, opts.url)
	default:
		return v.compare(ctx, opts)
	}
}

func (v *historyView) listURLs(ctx context.Context) error {
	urls, err := v.store.ListURLs(ctx)
	if err != nil {
		return err
	}
	if v.cfg.JSONReport {
		return v.writeJSON(urls)
	}

	if len(urls) == 0 {
		fmt.Fprintln(v.out, "No stored results found in the database.")
		fmt.Fprintln(v.out, "\nUse 'a11yscan check <url>' to check a page.")
		return nil
	}

	fmt.Fprintf(v.out, "Checked URLs (%d):\n\n", len(urls))
	for _, u := range urls {
		fmt.Fprintf(v.out, "  • %s\n", u)
	}
	fmt.Fprintln(v.out, "\nUse 'a11yscan history --list <url>' to see stored results for a URL.")
	return nil
}

func (v *historyView) listRecords(ctx context.Context, pageURL string, limit int) error {
	records, err := v.store.GetHistory(ctx, pageURL, limit)
	if err != nil {
		return err
	}
	if v.cfg.JSONReport {
		return v.writeJSON(records)
	}

	if len(records) == 0 {
		fmt.Fprintf(v.out, "No stored results found for %s\n", pageURL)
		return nil
	}

	fmt.Fprintf(v.out, "Stored results for %s (%d):\n\n", pageURL, len(records))
	fmt.Fprintf(v.out, "  %-36s  %-20s  %s\n", "ID", "Date", "Score")
	fmt.Fprintln(v.out, "  "+strings.Repeat("-", 66))
	for _, r := range records {
		fmt.Fprintf(v.out, "  %-36s  %-20s  %s\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Score,
		)
	}
	fmt.Fprintln(v.out, "\nUse 'a11yscan history <url>' to compare the latest two results.")
	return nil
}

// failureEntry is one line of the failures view.
type failureEntry struct {
	Check    model.CheckName `json:"check"`
	Failures int             `json:"failures"`
}

func (v *historyView) failureCounts(ctx context.Context, pageURL string) error {
	counts, err := v.store.FailureCounts(ctx, pageURL)
	if err != nil {
		return err
	}

	entries := make([]failureEntry, 0, len(counts))
	for _, name := range model.CheckNames() {
		if n, ok := counts[name]; ok {
			entries = append(entries, failureEntry{Check: name, Failures: n})
		}
	}
	if v.cfg.JSONReport {
		return v.writeJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(v.out, "No failed checks stored for %s\n", pageURL)
		return nil
	}
	fmt.Fprintf(v.out, "Failed checks for %s:\n\n", pageURL)
	for _, e := range entries {
		fmt.Fprintf(v.out, "  %-20s  %d\n", e.Check, e.Failures)
	}
	return nil
}

// compare diffs the latest stored result with the one before it, the one
// named by opts.withID, or the oldest one since opts.since.
func (v *historyView) compare(ctx context.Context, opts historyOptions) error {
	records, err := v.store.GetHistory(ctx, opts.url, 0)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no stored results found for %s", opts.url)
	}

	// A single run has nothing to compare with; show it instead.
	if len(records) == 1 && opts.withID == "" && opts.since == "" {
		result, err := v.store.GetLatest(ctx, opts.url)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("no stored results found for %s", opts.url)
		}
		_, err = newReportWriter(v.cfg, v.out).Write(result)
		return err
	}

	latest := records[0]
	previous, err := pickPrevious(records, opts)
	if err != nil {
		return err
	}

	current, err := v.load(ctx, latest.ID)
	if err != nil {
		return err
	}
	before, err := v.load(ctx, previous.ID)
	if err != nil {
		return err
	}
	if before.URL != current.URL {
		return fmt.Errorf("result %s belongs to %s, not %s", previous.ID, before.URL, current.URL)
	}

	cmp := report.Compare(before, current, previous.SnapshotDigest, latest.SnapshotDigest)
	_, err = newReportWriter(v.cfg, v.out).WriteComparison(cmp)
	return err
}

// pickPrevious chooses the older side of a comparison from records, which
// are newest first.
func pickPrevious(records []database.Record, opts historyOptions) (database.Record, error) {
	switch {
	case opts.withID != "":
		for _, r := range records {
			if r.ID == opts.withID {
				return r, nil
			}
		}
		return database.Record{}, fmt.Errorf("result %s not found for %s", opts.withID, opts.url)

	case opts.since != "":
		since, err := time.Parse("2006-01-02", opts.since)
		if err != nil {
			return database.Record{}, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
		for i := len(records) - 1; i >= 0; i-- {
			if !records[i].Timestamp.Before(since) {
				if i == 0 {
					return database.Record{}, fmt.Errorf("only one result found since %s; at least 2 are required for comparison", opts.since)
				}
				return records[i], nil
			}
		}
		return database.Record{}, fmt.Errorf("no results found since %s", opts.since)

	default:
		if len(records) < 2 {
			return database.Record{}, fmt.Errorf("at least 2 results are required for comparison (found %d)", len(records))
		}
		return records[1], nil
	}
}

func (v *historyView) load(ctx context.Context, id string) (*model.Result, error) {
	result, err := v.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load result %s: %w", id, err)
	}
	if result == nil {
		return nil, fmt.Errorf("result %s not found", id)
	}
	return result, nil
}

func (v *historyView) writeJSON(data any) error {
	encoder := json.NewEncoder(v.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

var _ historyStore = (*database.HistoryDB)(nil)
