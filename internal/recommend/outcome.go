package recommend

import (
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/sanitize"
)

// OutcomeKind tells how a generation attempt ended.
type OutcomeKind int

const (
	// OutcomeGenerated means the generator returned text.
	OutcomeGenerated OutcomeKind = iota
	// OutcomeTimedOut means the call exceeded its time budget.
	OutcomeTimedOut
	// OutcomeFailed means the generator returned an error.
	OutcomeFailed
)

// String returns the kind name for logs.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeGenerated:
		return "generated"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one generation attempt.
type Outcome struct {
	Kind OutcomeKind

	// Text is the cleaned generated text. Only set for OutcomeGenerated.
	Text string

	// Err is the generator error. Only set for OutcomeFailed.
	Err error
}

// Generated returns a successful outcome carrying the cleaned fragments.
func Generated(fragments []string) Outcome {
	return Outcome{Kind: OutcomeGenerated, Text: cleanGenerated(fragments)}
}

// TimedOut returns a timeout outcome.
func TimedOut() Outcome {
	return Outcome{Kind: OutcomeTimedOut}
}

// Failed returns a failure outcome.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// Resolve folds the outcome into recommendation text for the named check.
// Generated text longer than MinGeneratedLength is used as is; every other
// outcome yields the check's template.
func (o Outcome) Resolve(name model.CheckName) string {
	if o.Kind == OutcomeGenerated && usable(o.Text) {
		return o.Text
	}
	return sanitize.Clip(Template(name), model.MaxRecommendationLength)
}

// UsedTemplate reports whether Resolve falls back to the template.
func (o Outcome) UsedTemplate() bool {
	return o.Kind != OutcomeGenerated || !usable(o.Text)
}
