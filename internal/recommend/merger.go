package recommend

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/a11yscan/internal/model"
)

const (
	// DefaultCallTimeout bounds a single generator call.
	DefaultCallTimeout = 30 * time.Second

	// DefaultMaxChecks caps the failed checks processed per merge. Extra
	// checks are dropped.
	DefaultMaxChecks = 10

	// DefaultConcurrency bounds simultaneous generator calls.
	DefaultConcurrency = 4
)

// Generator produces text for a prompt. The returned fragments are
// concatenated in order.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]string, error)
}

// Merger attaches a recommendation to each failed check.
type Merger struct {
	generator   Generator
	callTimeout time.Duration
	maxChecks   int
	concurrency int
	logger      *slog.Logger
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithGenerator sets the generator. A nil generator means template-only mode.
func WithGenerator(g Generator) MergerOption {
	return func(m *Merger) {
		m.generator = g
	}
}

// WithCallTimeout sets the per-call timeout.
func WithCallTimeout(d time.Duration) MergerOption {
	return func(m *Merger) {
		if d > 0 {
			m.callTimeout = d
		}
	}
}

// WithMaxChecks sets how many failed checks are processed.
func WithMaxChecks(n int) MergerOption {
	return func(m *Merger) {
		if n > 0 {
			m.maxChecks = n
		}
	}
}

// WithConcurrency sets how many generator calls may run at once.
func WithConcurrency(n int) MergerOption {
	return func(m *Merger) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// WithLogger sets the logger used to record fallbacks.
func WithLogger(logger *slog.Logger) MergerOption {
	return func(m *Merger) {
		m.logger = logger
	}
}

// NewMerger creates a Merger. Without WithGenerator it only uses templates.
func NewMerger(opts ...MergerOption) *Merger {
	m := &Merger{
		callTimeout: DefaultCallTimeout,
		maxChecks:   DefaultMaxChecks,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// HasGenerator reports whether the merger calls an external generator.
func (m *Merger) HasGenerator() bool {
	return m.generator != nil
}

// Merge returns one recommendation per failed check, in the order of
// failed, for at most the configured number of checks. Generation runs
// concurrently and never fails the merge: every failure becomes the
// check's template. When ctx ends, pending checks get their templates.
func (m *Merger) Merge(ctx context.Context, failed []model.CheckResult, pageURL string) []model.Recommendation {
	if len(failed) == 0 {
		return []model.Recommendation{}
	}
	if len(failed) > m.maxChecks {
		m.logger.Debug("dropping failed checks over the recommendation cap",
			"failed", len(failed),
			"cap", m.maxChecks,
		)
		failed = failed[:m.maxChecks]
	}

	outcomes := make([]Outcome, len(failed))
	if m.generator == nil {
		for i := range outcomes {
			outcomes[i] = Failed(nil)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(m.concurrency)
		for i, check := range failed {
			g.Go(func() error {
				outcomes[i] = m.generate(ctx, check, pageURL)
				return nil
			})
		}
		_ = g.Wait()
	}

	recs := make([]model.Recommendation, len(failed))
	for i, check := range failed {
		o := outcomes[i]
		if m.generator != nil && o.UsedTemplate() {
			m.logger.Warn("using template recommendation",
				"check", check.Name.String(),
				"outcome", o.Kind.String(),
				"error", o.Err,
			)
		}
		recs[i] = model.Recommendation{
			CheckName: check.Name,
			Text:      o.Resolve(check.Name),
		}
	}
	return recs
}

// generate runs one bounded generator call.
func (m *Merger) generate(ctx context.Context, check model.CheckResult, pageURL string) Outcome {
	if ctx.Err() != nil {
		return TimedOut()
	}

	callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()

	fragments, err := m.generator.Generate(callCtx, BuildPrompt(check, pageURL))
	switch {
	case err == nil:
		return Generated(fragments)
	case errors.Is(err, context.DeadlineExceeded), callCtx.Err() != nil:
		return TimedOut()
	default:
		return Failed(err)
	}
}
