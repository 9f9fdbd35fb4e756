// Package pipeline runs one accessibility analysis as an ordered list of
// steps over a model.Analysis: validate the URL, render the page, evaluate
// the ten checks and attach recommendations.
//
// The same pipeline serves the HTTP API, the CLI and the MCP tool. The
// pipeline checks for cancellation before every step and once more after
// the last one, so a caller whose deadline expired never receives a
// partially filled analysis.
//
// BatchProcessor runs many URLs through fresh pipelines with bounded
// concurrency (errgroup.SetLimit) and returns results in input order.
package pipeline
