package server

import "errors"

var (
	// ErrNoRenderer is returned by New when the dependencies carry no renderer.
	ErrNoRenderer = errors.New("server requires a renderer")

	// ErrNilConfig is returned by New when no configuration is given.
	ErrNilConfig = errors.New("server requires a configuration")

	// ErrIncompleteAnalysis is returned when the pipeline finished without a
	// full report.
	ErrIncompleteAnalysis = errors.New("analysis did not produce a complete report")
)

// Client-facing messages.
const (
	msgAnalysisFailed   = "Failed to analyze webpage"
	msgAnalysisTimeout  = "Request timeout - analysis took too long"
	msgUnauthorized     = "Unauthorized"
	msgCleanupFailed    = "Failed to close browser"
	msgCleanupSucceeded = "Browser closed successfully"
	msgInvalidBody      = "Invalid request body"
	msgHistoryDisabled  = "History is not enabled"
	msgURLRequired      = "Query parameter url is required"
	msgInternalError    = "Internal server error"
	msgGenericError     = "An error occurred"
)

// detailResponse is the body of every handled error.
type detailResponse struct {
	Detail string `json:"detail"`
}

// internalErrorResponse is the body written after a recovered panic.
type internalErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
