package model

import "time"

// Analysis is the working state of one analysis run. Pipeline steps fill it
// in order: the validated URL, the snapshot, the report and the
// recommendations.
type Analysis struct {
	// Input is the raw, untrusted URL string as received.
	Input string

	// URL is the validated absolute URL. Empty until validation succeeds.
	URL string

	// Hostname is the validated hostname, used for logging instead of the
	// full URL.
	Hostname string

	Snapshot        *PageSnapshot
	Report          *ComplianceReport
	Recommendations []Recommendation

	// StartedAt is when the analysis began.
	StartedAt time.Time

	// PerformedSteps lists the names of the steps that completed.
	PerformedSteps []string
}

// NewAnalysis creates an Analysis for the given raw input.
func NewAnalysis(input string) *Analysis {
	return &Analysis{
		Input:          input,
		StartedAt:      time.Now(),
		PerformedSteps: make([]string, 0, 4),
	}
}

// Complete reports whether the analysis produced a report.
func (a *Analysis) Complete() bool {
	return a.Report != nil && len(a.Report.Checks) == TotalChecks
}

// Result builds the client-facing result. It returns nil when the analysis
// did not complete, so a partial analysis is never surfaced.
func (a *Analysis) Result(at time.Time) *Result {
	if !a.Complete() {
		return nil
	}
	return NewResult(a.URL, a.Report, a.Recommendations, at)
}
