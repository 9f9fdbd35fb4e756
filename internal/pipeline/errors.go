package pipeline

import "errors"

var (
	// ErrNoSnapshot is returned when evaluation runs before rendering.
	ErrNoSnapshot = errors.New("no page snapshot to evaluate")

	// ErrNoReport is returned when recommendations run before evaluation.
	ErrNoReport = errors.New("no compliance report to recommend on")
)
