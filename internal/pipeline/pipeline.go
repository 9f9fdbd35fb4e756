package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/a11yscan/internal/model"
)

// Step is one stage of an analysis. Steps run in sequence and each one
// reads what earlier steps wrote into the analysis.
type Step interface {
	// Do executes the step. A returned error stops the pipeline.
	Do(ctx context.Context, analysis *model.Analysis) error

	// Name identifies the step in logs and in Analysis.PerformedSteps.
	Name() string
}

// Pipeline executes its steps in the order they were added.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0, 4),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Analyze creates an analysis for the raw input and executes the pipeline
// on it. On error the returned analysis holds whatever the steps filled in
// and must not be shown to a client.
func (p *Pipeline) Analyze(ctx context.Context, input string) (*model.Analysis, error) {
	analysis := model.NewAnalysis(input)
	err := p.Execute(ctx, analysis)
	return analysis, err
}

// Execute runs every step on analysis.
//
// Cancellation is checked before each step and after the last one. A
// cancelled run returns ctx.Err() even when every step already finished.
func (p *Pipeline) Execute(ctx context.Context, analysis *model.Analysis) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("analysis cancelled",
				"step", step.Name(),
				"hostname", analysis.Hostname,
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"hostname", analysis.Hostname,
		)

		if err := step.Do(ctx, analysis); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"hostname", analysis.Hostname,
				"error", err,
			)
			return err
		}

		analysis.PerformedSteps = append(analysis.PerformedSteps, step.Name())
	}

	if err := ctx.Err(); err != nil {
		p.logger.Warn("analysis finished after its deadline",
			"hostname", analysis.Hostname,
			"reason", err,
		)
		return err
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
