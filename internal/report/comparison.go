package report

import (
	"time"

	"github.com/nao1215/a11yscan/internal/model"
)

// Direction is the overall movement of a score between two runs.
type Direction string

const (
	// DirectionImproved means more checks pass now.
	DirectionImproved Direction = "improved"
	// DirectionRegressed means fewer checks pass now.
	DirectionRegressed Direction = "regressed"
	// DirectionUnchanged means the same number of checks pass.
	DirectionUnchanged Direction = "unchanged"
)

// RunSummary describes one side of a comparison.
type RunSummary struct {
	Timestamp      time.Time `json:"timestamp"`
	Score          string    `json:"score"`
	PassedCount    int       `json:"passedCount"`
	SnapshotDigest string    `json:"snapshotDigest,omitempty"`
}

// Comparison is the difference between two results for the same URL.
type Comparison struct {
	URL      string     `json:"url"`
	Previous RunSummary `json:"previous"`
	Current  RunSummary `json:"current"`

	// NewlyFailing checks passed previously and fail now.
	NewlyFailing []model.CheckName `json:"newlyFailing"`

	// Fixed checks failed previously and pass now.
	Fixed []model.CheckName `json:"fixed"`

	// StillFailing checks failed in both runs.
	StillFailing []model.CheckName `json:"stillFailing"`

	Direction  Direction `json:"direction"`
	ScoreDelta int       `json:"scoreDelta"`

	// PageChanged is true when both digests are known and differ.
	PageChanged bool `json:"pageChanged"`
}

// Compare diffs previous and current check by check, in declaration order.
// Digests are optional; pass "" when unknown.
func Compare(previous, current *model.Result, previousDigest, currentDigest string) *Comparison {
	cmp := &Comparison{
		URL: current.URL,
		Previous: RunSummary{
			Timestamp:      previous.ParseTimestamp(),
			Score:          previous.Score,
			PassedCount:    previous.PassedCount,
			SnapshotDigest: previousDigest,
		},
		Current: RunSummary{
			Timestamp:      current.ParseTimestamp(),
			Score:          current.Score,
			PassedCount:    current.PassedCount,
			SnapshotDigest: currentDigest,
		},
		NewlyFailing: make([]model.CheckName, 0),
		Fixed:        make([]model.CheckName, 0),
		StillFailing: make([]model.CheckName, 0),
		ScoreDelta:   current.PassedCount - previous.PassedCount,
		PageChanged:  previousDigest != "" && currentDigest != "" && previousDigest != currentDigest,
	}

	before := passedByName(previous)
	after := passedByName(current)
	for _, name := range model.CheckNames() {
		wasPassing, hadBefore := before[name]
		isPassing, hasNow := after[name]
		if !hadBefore || !hasNow {
			continue
		}
		switch {
		case wasPassing && !isPassing:
			cmp.NewlyFailing = append(cmp.NewlyFailing, name)
		case !wasPassing && isPassing:
			cmp.Fixed = append(cmp.Fixed, name)
		case !wasPassing && !isPassing:
			cmp.StillFailing = append(cmp.StillFailing, name)
		}
	}

	switch {
	case cmp.ScoreDelta > 0:
		cmp.Direction = DirectionImproved
	case cmp.ScoreDelta < 0:
		cmp.Direction = DirectionRegressed
	default:
		cmp.Direction = DirectionUnchanged
	}
	return cmp
}

func passedByName(r *model.Result) map[model.CheckName]bool {
	m := make(map[model.CheckName]bool, len(r.Checks))
	for _, c := range r.Checks {
		m[c.Name] = c.Passed
	}
	return m
}
