package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when the check command has no URL to check.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --list")

	// ErrInvalidPort is returned for ports outside 1-65535.
	ErrInvalidPort = errors.New("invalid port: must be between 1 and 65535")

	// ErrInvalidEnvironment is returned for environments other than
	// development and production.
	ErrInvalidEnvironment = errors.New("invalid environment: must be development or production")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRateLimit is returned for a negative limit or an empty window.
	ErrInvalidRateLimit = errors.New("invalid rate limit: limit must be non-negative and window positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidProvider is returned for an unknown recommendation provider.
	ErrInvalidProvider = errors.New("invalid provider: must be auto, replicate, openai or none")

	// ErrInvalidEnv is returned when an environment variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
