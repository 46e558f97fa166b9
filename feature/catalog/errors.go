package catalog

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// IntegrityError reports a constraint violation (SQLSTATE class 23).
// Retrying the same changeset cannot succeed.
type IntegrityError struct {
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation: %v", e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// Retryable reports false.
func (e *IntegrityError) Retryable() bool { return false }

// ConnectionError reports lost or refused database connectivity
// (SQLSTATE class 08 and resource classes). Safe to retry.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database unavailable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Retryable reports true.
func (e *ConnectionError) Retryable() bool { return true }

// classify maps a database error to the writer's error taxonomy.
// Unclassified errors pass through unchanged and are treated as
// non-retryable upstream.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "23":
			return &IntegrityError{Err: err}
		case "08", "53", "57":
			return &ConnectionError{Err: err}
		}
	}
	return err
}
