package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/guard"
	"github.com/nao1215/a11yscan/internal/recommend"
	"github.com/nao1215/a11yscan/internal/render"
	"github.com/nao1215/a11yscan/internal/rules"
)

// NewDependencies builds the shared analysis components from cfg.
// The returned renderer is owned by the caller, which must Close it.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (Dependencies, error) {
	if logger == nil {
		logger = slog.Default()
	}

	generator, err := recommend.NewGenerator(recommend.Settings{
		Provider:       cfg.Provider,
		ReplicateToken: cfg.ReplicateToken,
		ReplicateModel: cfg.ReplicateModel,
		OpenAIKey:      cfg.OpenAIKey,
		OpenAIBaseURL:  cfg.OpenAIBaseURL,
		OpenAIModel:    cfg.OpenAIModel,
	})
	if err != nil {
		return Dependencies{}, fmt.Errorf("failed to create recommendation generator: %w", err)
	}
	if generator == nil {
		logger.Info("no recommendation generator configured, using templates")
	}

	return Dependencies{
		Validator: guard.NewValidator(
			guard.WithLogger(logger),
			guard.WithResolveTimeout(cfg.ResolveTimeout),
		),
		Renderer: render.NewHTTPRenderer(
			render.WithTimeout(cfg.NavigationTimeout),
			render.WithStrictDial(cfg.StrictDial),
			render.WithUserAgent(cfg.UserAgent),
			render.WithMaxBodySize(cfg.MaxBodySize),
			render.WithLogger(logger),
		),
		Engine: rules.NewEngine(),
		Merger: recommend.NewMerger(
			recommend.WithGenerator(generator),
			recommend.WithCallTimeout(cfg.GeneratorCallTimeout),
			recommend.WithMaxChecks(cfg.MaxRecommendations),
			recommend.WithLogger(logger),
		),
		RecommendTimeout: cfg.RecommendationTimeout,
		Logger:           logger,
	}, nil
}

// withDefaults fills in a nil logger, validator, engine and merger.
// A nil merger means template-only recommendations.
func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Validator == nil {
		d.Validator = guard.NewValidator(guard.WithLogger(d.Logger))
	}
	if d.Engine == nil {
		d.Engine = rules.NewEngine()
	}
	if d.Merger == nil {
		d.Merger = recommend.NewMerger(recommend.WithLogger(d.Logger))
	}
	return d
}

// NewCheckPipeline wires validate, render and evaluate without the
// recommendation step, for callers that budget recommendations separately.
func NewCheckPipeline(deps Dependencies, opts ...Option) *Pipeline {
	deps = deps.withDefaults()

	p := New(append([]Option{WithLogger(deps.Logger)}, opts...)...)
	p.AddSteps(
		NewValidateStep(deps.Validator),
		NewRenderStep(deps.Renderer),
		NewEvaluateStep(deps.Engine),
	)
	return p
}

// NewRecommendStepFor returns the recommendation step for deps.
func NewRecommendStepFor(deps Dependencies) *RecommendStep {
	deps = deps.withDefaults()
	return NewRecommendStep(deps.Merger, deps.RecommendTimeout, deps.Logger)
}
