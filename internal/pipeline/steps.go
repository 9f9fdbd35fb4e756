package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/a11yscan/internal/guard"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/recommend"
	"github.com/nao1215/a11yscan/internal/render"
	"github.com/nao1215/a11yscan/internal/rules"
)

// Step names recorded in Analysis.PerformedSteps.
const (
	StepValidate  = "validate"
	StepRender    = "render"
	StepEvaluate  = "evaluate"
	StepRecommend = "recommend"
)

// DefaultRecommendTimeout is the overall budget for the recommendation step.
const DefaultRecommendTimeout = 45 * time.Second

// ValidateStep admits the raw input through the URL validator. A rejection
// is returned as a guard.Reason.
type ValidateStep struct {
	validator *guard.Validator
}

// NewValidateStep creates a ValidateStep.
func NewValidateStep(validator *guard.Validator) *ValidateStep {
	return &ValidateStep{validator: validator}
}

// Name returns the step name.
func (s *ValidateStep) Name() string { return StepValidate }

// Do validates analysis.Input and records the accepted URL.
func (s *ValidateStep) Do(ctx context.Context, analysis *model.Analysis) error {
	verdict := s.validator.Validate(ctx, analysis.Input)
	if !verdict.Accepted() {
		return verdict.Err()
	}
	u, _ := verdict.URL()
	analysis.URL = u.String()
	analysis.Hostname = u.Hostname()
	return nil
}

// RenderStep loads the validated URL into a page snapshot.
type RenderStep struct {
	renderer render.Renderer
}

// NewRenderStep creates a RenderStep around a shared renderer.
func NewRenderStep(renderer render.Renderer) *RenderStep {
	return &RenderStep{renderer: renderer}
}

// Name returns the step name.
func (s *RenderStep) Name() string { return StepRender }

// Do renders analysis.URL.
func (s *RenderStep) Do(ctx context.Context, analysis *model.Analysis) error {
	snapshot, err := s.renderer.Render(ctx, analysis.URL)
	if err != nil {
		return fmt.Errorf("render %s: %w", analysis.Hostname, err)
	}
	analysis.Snapshot = snapshot
	return nil
}

// EvaluateStep runs the rule engine over the snapshot.
type EvaluateStep struct {
	engine *rules.Engine
}

// NewEvaluateStep creates an EvaluateStep.
func NewEvaluateStep(engine *rules.Engine) *EvaluateStep {
	return &EvaluateStep{engine: engine}
}

// Name returns the step name.
func (s *EvaluateStep) Name() string { return StepEvaluate }

// Do evaluates analysis.Snapshot.
func (s *EvaluateStep) Do(_ context.Context, analysis *model.Analysis) error {
	if analysis.Snapshot == nil {
		return ErrNoSnapshot
	}
	analysis.Report = s.engine.Evaluate(analysis.Snapshot)
	return nil
}

// RecommendStep attaches advice to the failed checks. It never fails: the
// merger falls back to templates for anything it could not generate.
type RecommendStep struct {
	merger  *recommend.Merger
	timeout time.Duration
	logger  *slog.Logger
}

// NewRecommendStep creates a RecommendStep with the given overall budget.
// A non-positive timeout selects DefaultRecommendTimeout.
func NewRecommendStep(merger *recommend.Merger, timeout time.Duration, logger *slog.Logger) *RecommendStep {
	if timeout <= 0 {
		timeout = DefaultRecommendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendStep{merger: merger, timeout: timeout, logger: logger}
}

// Name returns the step name.
func (s *RecommendStep) Name() string { return StepRecommend }

// Do merges recommendations for the failed checks of analysis.Report.
func (s *RecommendStep) Do(ctx context.Context, analysis *model.Analysis) error {
	if analysis.Report == nil {
		return ErrNoReport
	}

	failed := analysis.Report.Failed()
	if len(failed) == 0 {
		analysis.Recommendations = []model.Recommendation{}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	analysis.Recommendations = s.merger.Merge(ctx, failed, analysis.URL)
	s.logger.Debug("recommendations merged",
		"hostname", analysis.Hostname,
		"failed", len(failed),
		"elapsed", time.Since(start),
	)
	return nil
}

// Dependencies are the shared components an analysis pipeline needs.
type Dependencies struct {
	Validator        *guard.Validator
	Renderer         render.Renderer
	Engine           *rules.Engine
	Merger           *recommend.Merger
	RecommendTimeout time.Duration
	Logger           *slog.Logger
}

// NewAnalysisPipeline wires validate, render, evaluate and recommend in
// that order. Nil validator, engine and merger are replaced by defaults; a
// nil merger means template-only recommendations.
func NewAnalysisPipeline(deps Dependencies, opts ...Option) *Pipeline {
	p := NewCheckPipeline(deps, opts...)
	p.AddStep(NewRecommendStepFor(deps))
	return p
}
