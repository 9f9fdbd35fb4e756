package rules

import (
	"github.com/nao1215/a11yscan/internal/model"
)

// Engine runs a fixed list of checks against a snapshot.
type Engine struct {
	checks []Check
}

// NewEngine creates an Engine with the ten built-in checks registered in
// declaration order.
func NewEngine() *Engine {
	e := &Engine{checks: make([]Check, 0, model.TotalChecks)}

	e.Register(NewReadingSequenceCheck())
	e.Register(NewSensoryCuesCheck())
	e.Register(NewColorUsageCheck())
	e.Register(NewKeyboardAccessCheck())
	e.Register(NewKeyboardTrapCheck())
	e.Register(NewPointerCancellationCheck())
	e.Register(NewLabelNameCheck())
	e.Register(NewTimeLimitsCheck())
	e.Register(NewSeizureContentCheck())
	e.Register(NewBypassBlocksCheck())

	return e
}

// Register appends a check. Checks run in registration order.
func (e *Engine) Register(check Check) {
	e.checks = append(e.checks, check)
}

// Checks returns the registered checks in order.
func (e *Engine) Checks() []Check {
	out := make([]Check, len(e.checks))
	copy(out, e.checks)
	return out
}

// Evaluate runs every registered check and aggregates the results. A nil
// snapshot is evaluated as an empty page.
func (e *Engine) Evaluate(snapshot *model.PageSnapshot) *model.ComplianceReport {
	if snapshot == nil {
		snapshot = &model.PageSnapshot{}
	}

	results := make([]model.CheckResult, 0, len(e.checks))
	for _, check := range e.checks {
		results = append(results, check.Evaluate(snapshot))
	}
	return model.NewComplianceReport(results)
}
