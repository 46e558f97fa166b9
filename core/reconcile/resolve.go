package reconcile

import "time"

// Candidate is one timestamped value competing for a field.
type Candidate struct {
	Value      string
	Source     string
	ObservedAt time.Time
}

// Outcome describes how a pairwise resolution was decided.
type Outcome int

const (
	// OutcomeEqual means both candidates carried the same value.
	OutcomeEqual Outcome = iota
	// OutcomePriority means the higher-priority source won.
	OutcomePriority
	// OutcomeTimestamp means equal priority, newer timestamp won.
	OutcomeTimestamp
)

// Resolve decides between two candidates for one field of one entity.
// It is pure: no I/O, no state. Resolution order is source priority, then
// most-recent timestamp; a tie on both with differing values returns a
// ConflictError.
func Resolve(key, field string, a, b Candidate, order []string) (Candidate, Outcome, error) {
	if a.Value == b.Value {
		// Identical values never conflict; keep the higher-priority
		// provenance so attribution stays deterministic.
		if rank(b.Source, order) < rank(a.Source, order) {
			return b, OutcomeEqual, nil
		}
		return a, OutcomeEqual, nil
	}

	ra, rb := rank(a.Source, order), rank(b.Source, order)
	if ra != rb {
		if ra < rb {
			return a, OutcomePriority, nil
		}
		return b, OutcomePriority, nil
	}

	if !a.ObservedAt.Equal(b.ObservedAt) {
		if a.ObservedAt.After(b.ObservedAt) {
			return a, OutcomeTimestamp, nil
		}
		return b, OutcomeTimestamp, nil
	}

	return Candidate{}, 0, &ConflictError{
		Key:     key,
		Field:   field,
		SourceA: a.Source,
		SourceB: b.Source,
		ValueA:  a.Value,
		ValueB:  b.Value,
	}
}
