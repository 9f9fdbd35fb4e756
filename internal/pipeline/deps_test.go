package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/recommend"
)

func TestNewDependencies(t *testing.T) {
	t.Parallel()

	t.Run("default config builds every component", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Provider = recommend.ProviderNone

		deps, err := NewDependencies(cfg, quietLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer deps.Renderer.Close()

		if deps.Validator == nil || deps.Renderer == nil || deps.Engine == nil || deps.Merger == nil {
			t.Errorf("expected every component, got %+v", deps)
		}
		if deps.RecommendTimeout != cfg.RecommendationTimeout {
			t.Errorf("expected recommend timeout %s, got %s", cfg.RecommendationTimeout, deps.RecommendTimeout)
		}
	})

	errorTests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{
			name:    "unknown provider",
			mutate:  func(c *config.Config) { c.Provider = "llama" },
			wantErr: recommend.ErrUnknownProvider,
		},
		{
			name: "replicate without a token",
			mutate: func(c *config.Config) {
				c.Provider = recommend.ProviderReplicate
				c.ReplicateToken = ""
			},
			wantErr: recommend.ErrNoToken,
		},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			tt.mutate(cfg)
			if _, err := NewDependencies(cfg, quietLogger()); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewCheckPipeline(t *testing.T) {
	t.Parallel()

	deps := Dependencies{
		Validator: testValidator(),
		Renderer:  &fakeRenderer{snapshot: compliantSnapshot()},
		Logger:    quietLogger(),
	}

	t.Run("check pipeline stops before recommendations", func(t *testing.T) {
		t.Parallel()

		p := NewCheckPipeline(deps)
		want := []string{StepValidate, StepRender, StepEvaluate}
		if got := p.StepNames(); !slices.Equal(got, want) {
			t.Errorf("expected steps %v, got %v", want, got)
		}

		analysis, err := p.Analyze(context.Background(), "https://example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if analysis.Report == nil {
			t.Fatal("expected a report")
		}
		if analysis.Recommendations != nil {
			t.Errorf("expected no recommendations yet, got %v", analysis.Recommendations)
		}
	})

	t.Run("recommend step completes the analysis", func(t *testing.T) {
		t.Parallel()

		p := NewCheckPipeline(deps)
		analysis, err := p.Analyze(context.Background(), "https://example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := NewRecommendStepFor(deps).Do(context.Background(), analysis); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if analysis.Recommendations == nil {
			t.Error("expected recommendations to be set")
		}
		if len(analysis.Recommendations) != len(analysis.Report.Failed()) {
			t.Errorf("expected one recommendation per failed check, got %d for %d",
				len(analysis.Recommendations), len(analysis.Report.Failed()))
		}
	})
}
