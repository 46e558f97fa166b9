package source

import (
	"errors"
	"fmt"
)

// TransientError marks a fetch failure worth retrying: network timeouts,
// rate limiting, upstream 5xx.
type TransientError struct {
	Source string
	Err    error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("source %s: transient: %v", e.Source, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Retryable reports that the orchestrator may retry this failure.
func (e *TransientError) Retryable() bool { return true }

// FatalError marks a fetch failure that retrying cannot fix: auth
// rejection, a payload that does not match the expected schema.
type FatalError struct {
	Source string
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("source %s: fatal: %v", e.Source, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

func (e *FatalError) Retryable() bool { return false }

// NewTransient wraps err as a retryable adapter error.
func NewTransient(source string, err error) error {
	return &TransientError{Source: source, Err: err}
}

// NewFatal wraps err as a non-retryable adapter error.
func NewFatal(source string, err error) error {
	return &FatalError{Source: source, Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
