package model

import (
	"fmt"
	"time"

	"github.com/nao1215/a11yscan/internal/sanitize"
)

// Client-facing length caps.
const (
	// MaxDetailsLength caps check details in a Result.
	MaxDetailsLength = 1000

	// MaxRecommendationLength caps recommendation text in a Result.
	MaxRecommendationLength = 500
)

// ComplianceReport aggregates the ten check results.
type ComplianceReport struct {
	// Checks is always in declaration order and always has TotalChecks entries
	// when produced by the rule engine.
	Checks      []CheckResult `json:"checks"`
	Score       string        `json:"score"`
	PassedCount int           `json:"passedCount"`
	TotalCount  int           `json:"totalCount"`
}

// NewComplianceReport derives the score and counts from the given results.
// The slice is copied so later changes by the caller do not leak in.
func NewComplianceReport(results []CheckResult) *ComplianceReport {
	checks := make([]CheckResult, len(results))
	copy(checks, results)

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	return &ComplianceReport{
		Checks:      checks,
		Score:       fmt.Sprintf("%d/%d", passed, TotalChecks),
		PassedCount: passed,
		TotalCount:  TotalChecks,
	}
}

// Failed returns the failed checks in report order.
func (r *ComplianceReport) Failed() []CheckResult {
	failed := make([]CheckResult, 0, len(r.Checks))
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// FailedCount returns the number of failed checks.
func (r *ComplianceReport) FailedCount() int {
	return len(r.Checks) - r.PassedCount
}

// Result is the client-facing shape of a finished analysis.
type Result struct {
	URL         string        `json:"url"`
	Checks      []ResultCheck `json:"checks"`
	Score       string        `json:"score"`
	PassedCount int           `json:"passedCount"`
	TotalCount  int           `json:"totalCount"`
	Timestamp   string        `json:"timestamp"`
}

// ResultCheck is one check inside a Result. Recommendation is nil for
// passed checks and for failed checks without advice.
type ResultCheck struct {
	Name           CheckName `json:"name"`
	Passed         bool      `json:"passed"`
	Details        string    `json:"details"`
	Recommendation *string   `json:"recommendation"`
}

// TimestampLayout is the UTC ISO-8601 layout used for Result timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// NewResult builds the client-facing result. The URL goes through
// sanitize.URL, details are capped at MaxDetailsLength and recommendations at
// MaxRecommendationLength.
func NewResult(pageURL string, report *ComplianceReport, recs []Recommendation, at time.Time) *Result {
	byName := make(map[CheckName]string, len(recs))
	for _, r := range recs {
		if _, seen := byName[r.CheckName]; !seen {
			byName[r.CheckName] = r.Text
		}
	}

	checks := make([]ResultCheck, len(report.Checks))
	for i, c := range report.Checks {
		rc := ResultCheck{
			Name:    c.Name,
			Passed:  c.Passed,
			Details: sanitize.Clip(c.Details, MaxDetailsLength),
		}
		if text, ok := byName[c.Name]; ok && text != "" && !c.Passed {
			capped := sanitize.Clip(text, MaxRecommendationLength)
			rc.Recommendation = &capped
		}
		checks[i] = rc
	}

	return &Result{
		URL:         sanitize.URL(pageURL),
		Checks:      checks,
		Score:       report.Score,
		PassedCount: report.PassedCount,
		TotalCount:  report.TotalCount,
		Timestamp:   at.UTC().Format(TimestampLayout),
	}
}

// ParseTimestamp parses a Result timestamp. It returns the zero time when the
// value is malformed.
func (r *Result) ParseTimestamp() time.Time {
	t, err := time.Parse(TimestampLayout, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FailedChecks returns the failed checks of the result in order.
func (r *Result) FailedChecks() []ResultCheck {
	failed := make([]ResultCheck, 0, len(r.Checks))
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}
