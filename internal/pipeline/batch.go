package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/a11yscan/internal/model"
)

// DefaultBatchConcurrency is the number of analyses a batch runs at once.
const DefaultBatchConcurrency = 4

// BatchResult is the outcome of one input of a batch.
type BatchResult struct {
	// Index is the position of the input in the batch.
	Index int

	// Input is the raw URL string.
	Input string

	// Analysis is the analysis state. It is never nil, but is only complete
	// when Err is nil.
	Analysis *model.Analysis

	// Err is the error that stopped this analysis.
	Err error
}

// BatchProcessor analyzes many URLs concurrently. Each input gets a fresh
// pipeline from the factory.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the batch logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the number of concurrent analyses. Non-positive
// values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch analyzes every input and returns the results in input order.
// A failed analysis does not stop the others; its error is in its
// BatchResult. The returned error is non-nil only when ctx ended the batch.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, inputs []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(inputs))
	err := bp.ProcessBatchWithCallback(ctx, inputs, func(r BatchResult) {
		results[r.Index] = r
	})
	for i := range results {
		if results[i].Analysis == nil {
			results[i] = BatchResult{
				Index:    i,
				Input:    inputs[i],
				Analysis: model.NewAnalysis(inputs[i]),
				Err:      context.Cause(ctx),
			}
		}
	}
	return results, err
}

// ProcessBatchWithCallback analyzes every input and calls callback as each
// one finishes. Callbacks run on worker goroutines, but each index is
// reported at most once, so writing to a distinct slot per index is safe.
func (bp *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, inputs []string, callback func(BatchResult)) error {
	bp.logger.Info("starting batch",
		"total", len(inputs),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			analysis, err := bp.pipelineFactory().Analyze(ctx, input)
			if err != nil {
				bp.logger.Warn("analysis failed",
					"index", i+1,
					"hostname", analysis.Hostname,
					"error", err,
				)
			}
			callback(BatchResult{Index: i, Input: input, Analysis: analysis, Err: err})
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete",
		"total", len(inputs),
		"elapsed", time.Since(start),
	)
	return err
}
