package source

import (
	"context"
	"time"
)

// Record is the normalized shape every adapter produces.
// Key is the stable business identifier (the product article); Fields maps
// field names to their raw string values as supplied by the source.
type Record struct {
	// Key is the external key identifying the entity across sources.
	Key string

	// Source is the name of the adapter that produced this record.
	Source string

	// ObservedAt is when the source supplied this value. Used as the
	// conflict tiebreaker when two sources share the same priority.
	ObservedAt time.Time

	// Fields maps field name to value.
	Fields map[string]string
}

// Source is the capability interface every upstream adapter implements.
// Implementations translate one external system (1C API, Google Sheets)
// into a stream of normalized Records.
type Source interface {
	// Name returns the unique adapter name (e.g. "onec", "sheets").
	Name() string

	// Mandatory reports whether a failed fetch from this source must fail
	// the whole run. Non-mandatory sources degrade to "missing for this run".
	Mandatory() bool

	// Fetch retrieves all records from the upstream system.
	// Errors are classified: TransientError for retryable failures,
	// FatalError for auth rejection or malformed payloads.
	Fetch(ctx context.Context) ([]Record, error)
}
