package recommend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoToken is returned when a generator is created without credentials.
	ErrNoToken = errors.New("generator API token is not set")

	// ErrUnknownProvider is returned for a provider name NewGenerator does not know.
	ErrUnknownProvider = errors.New("unknown recommendation provider")

	// ErrEmptyOutput is returned when a generator produced no text.
	ErrEmptyOutput = errors.New("generator returned no output")
)

// TransientError is a generation failure that may succeed on a later call.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps err as transient.
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError is a generation failure that will not succeed on retry.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps err as fatal.
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient reports whether err is transient.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal reports whether err is fatal.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// classifyHTTPError maps an unexpected status code to a transient or fatal
// error. The body excerpt is clipped so provider responses do not flood logs.
func classifyHTTPError(statusCode int, body []byte) error {
	excerpt := string(body)
	if len(excerpt) > 200 {
		excerpt = excerpt[:200] + "..."
	}
	err := fmt.Errorf("generator API error (status %d): %s", statusCode, excerpt)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewTransientError(err)
	case statusCode >= 500:
		return NewTransientError(err)
	default:
		return NewFatalError(err)
	}
}
