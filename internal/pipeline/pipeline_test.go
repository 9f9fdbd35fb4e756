package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/a11yscan/internal/guard"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/render"
)

func TestPipelineStepManagement(t *testing.T) {
	t.Parallel()

	t.Run("new pipeline is empty", func(t *testing.T) {
		t.Parallel()
		if got := New().StepCount(); got != 0 {
			t.Errorf("expected 0 steps, got %d", got)
		}
	})

	t.Run("steps keep their order", func(t *testing.T) {
		t.Parallel()
		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddSteps(&mockStep{name: "second"}, &mockStep{name: "third"})

		want := []string{"first", "second", "third"}
		if got := p.StepNames(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order and records them", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *model.Analysis) error {
				order = append(order, name)
				return nil
			}}
		}
		p := New(WithLogger(quietLogger()))
		p.AddSteps(record("a"), record("b"))

		a := model.NewAnalysis("https://example.com")
		if err := p.Execute(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(order, []string{"a", "b"}) {
			t.Errorf("unexpected order %v", order)
		}
		if !slices.Equal(a.PerformedSteps, []string{"a", "b"}) {
			t.Errorf("unexpected performed steps %v", a.PerformedSteps)
		}
	})

	t.Run("stops on the first error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		second := &mockStep{name: "second"}
		p := New(WithLogger(quietLogger()))
		p.AddSteps(&mockStep{name: "first", doFunc: func(context.Context, *model.Analysis) error { return boom }}, second)

		a := model.NewAnalysis("x")
		err := p.Execute(context.Background(), a)
		if !errors.Is(err, boom) {
			t.Errorf("expected %v, got %v", boom, err)
		}
		if second.calls.Load() != 0 {
			t.Error("second step should not run")
		}
		if len(a.PerformedSteps) != 0 {
			t.Errorf("failed steps must not be recorded, got %v", a.PerformedSteps)
		}
	})

	t.Run("cancelled context stops before the first step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		step := &mockStep{name: "never"}
		p := New(WithLogger(quietLogger()))
		p.AddStep(step)

		if err := p.Execute(ctx, model.NewAnalysis("x")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.calls.Load() != 0 {
			t.Error("step should not run on a cancelled context")
		}
	})

	t.Run("deadline that expires during the last step is reported", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p := New(WithLogger(quietLogger()))
		p.AddStep(&mockStep{name: "slow", doFunc: func(context.Context, *model.Analysis) error {
			cancel()
			return nil
		}})

		if err := p.Execute(ctx, model.NewAnalysis("x")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestAnalysisPipeline(t *testing.T) {
	t.Parallel()

	t.Run("compliant page produces a complete result", func(t *testing.T) {
		t.Parallel()

		p := NewAnalysisPipeline(Dependencies{
			Validator: testValidator(),
			Renderer:  &fakeRenderer{snapshot: compliantSnapshot()},
			Logger:    quietLogger(),
		})
		if !slices.Equal(p.StepNames(), []string{StepValidate, StepRender, StepEvaluate, StepRecommend}) {
			t.Fatalf("unexpected steps %v", p.StepNames())
		}

		a, err := p.Analyze(context.Background(), "https://example.com/page")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Hostname != "example.com" {
			t.Errorf("expected hostname example.com, got %q", a.Hostname)
		}
		res := a.Result(time.Now())
		if res == nil {
			t.Fatal("expected a result")
		}
		if res.Score != "10/10" {
			t.Errorf("expected 10/10, got %s", res.Score)
		}
		if len(a.Recommendations) != 0 {
			t.Errorf("expected no recommendations, got %d", len(a.Recommendations))
		}
	})

	t.Run("empty page gets template recommendations for its failures", func(t *testing.T) {
		t.Parallel()

		p := NewAnalysisPipeline(Dependencies{
			Validator: testValidator(),
			Renderer:  &fakeRenderer{snapshot: &model.PageSnapshot{}},
			Logger:    quietLogger(),
		})
		a, err := p.Analyze(context.Background(), "https://example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Report.Score != "8/10" {
			t.Errorf("expected 8/10, got %s", a.Report.Score)
		}
		if len(a.Recommendations) != 2 {
			t.Fatalf("expected 2 recommendations, got %d", len(a.Recommendations))
		}
		if a.Recommendations[0].CheckName != model.CheckReadingSequence {
			t.Errorf("expected first recommendation for %q, got %q", model.CheckReadingSequence, a.Recommendations[0].CheckName)
		}
	})

	t.Run("rejected URL never reaches the renderer", func(t *testing.T) {
		t.Parallel()

		r := &fakeRenderer{snapshot: compliantSnapshot()}
		p := NewAnalysisPipeline(Dependencies{Validator: testValidator(), Renderer: r, Logger: quietLogger()})

		for input, want := range map[string]guard.Reason{
			"http://intranet.corp": guard.ReasonResolvedToPrivateIP,
			"http://10.0.0.1":      guard.ReasonPrivateIPBlocked,
			"file:///etc/passwd":   guard.ReasonSchemeNotAllowed,
		} {
			a, err := p.Analyze(context.Background(), input)
			var reason guard.Reason
			if !errors.As(err, &reason) || reason != want {
				t.Errorf("%s: expected reason %s, got %v", input, want, err)
			}
			if a.Result(time.Now()) != nil {
				t.Errorf("%s: rejected analysis must not produce a result", input)
			}
		}
		if r.rendered.Load() != 0 {
			t.Errorf("expected no renders, got %d", r.rendered.Load())
		}
	})

	t.Run("renderer failure aborts before a report exists", func(t *testing.T) {
		t.Parallel()

		p := NewAnalysisPipeline(Dependencies{
			Validator: testValidator(),
			Renderer:  &fakeRenderer{err: render.ErrNavigation},
			Logger:    quietLogger(),
		})
		a, err := p.Analyze(context.Background(), "https://example.com")
		if !errors.Is(err, render.ErrNavigation) {
			t.Errorf("expected ErrNavigation, got %v", err)
		}
		if a.Report != nil {
			t.Error("expected no report")
		}
	})

	t.Run("overall deadline surfaces as DeadlineExceeded", func(t *testing.T) {
		t.Parallel()

		p := NewAnalysisPipeline(Dependencies{
			Validator: testValidator(),
			Renderer:  &fakeRenderer{snapshot: compliantSnapshot(), delay: time.Second},
			Logger:    quietLogger(),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		a, err := p.Analyze(ctx, "https://example.com")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, got %v", err)
		}
		if a.Result(time.Now()) != nil {
			t.Error("timed out analysis must not produce a result")
		}
	})
}

func TestEvaluateAndRecommendGuards(t *testing.T) {
	t.Parallel()

	if err := NewEvaluateStep(nil).Do(context.Background(), model.NewAnalysis("x")); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
	if err := NewRecommendStep(nil, 0, nil).Do(context.Background(), model.NewAnalysis("x")); !errors.Is(err, ErrNoReport) {
		t.Errorf("expected ErrNoReport, got %v", err)
	}
}
