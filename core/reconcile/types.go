package reconcile

import (
	"fmt"
	"strings"
	"time"
)

// FieldValue is the winning value for one field of a merged entity,
// together with its provenance.
type FieldValue struct {
	// Value is the resolved field value.
	Value string `json:"value"`

	// Source is the adapter that supplied the winning value.
	// Invariant: every field has exactly one provenance source.
	Source string `json:"source"`

	// ObservedAt is when the winning source supplied the value.
	ObservedAt time.Time `json:"observed_at"`
}

// MergedEntity is the reconciled view of one business object across all
// sources that mentioned its key.
type MergedEntity struct {
	// Key is the external key of the entity.
	Key string `json:"key"`

	// Fields maps field name to the winning value and its provenance.
	Fields map[string]FieldValue `json:"fields"`
}

// Policy declares how field conflicts between sources are resolved.
// Priority lists source names from highest to lowest precedence;
// FieldPriority overrides the order for individual fields.
type Policy struct {
	Priority      []string
	FieldPriority map[string][]string
}

// orderFor returns the priority order applicable to a field.
func (p Policy) orderFor(field string) []string {
	if order, ok := p.FieldPriority[field]; ok {
		return order
	}
	return p.Priority
}

// rank returns the position of a source in the order; unknown sources
// rank below every listed one.
func rank(source string, order []string) int {
	for i, s := range order {
		if s == source {
			return i
		}
	}
	return len(order)
}

// ParsePolicy builds a Policy from its configuration encoding.
// priority is a comma-separated source list ("sheets,onec"); fieldPriority
// is a semicolon-separated list of per-field overrides
// ("name=onec,sheets;brand=sheets,onec").
func ParsePolicy(priority, fieldPriority string) (Policy, error) {
	p := Policy{
		Priority:      splitList(priority),
		FieldPriority: map[string][]string{},
	}

	if strings.TrimSpace(fieldPriority) == "" {
		return p, nil
	}

	for _, entry := range strings.Split(fieldPriority, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		field, order, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return Policy{}, fmt.Errorf("invalid field priority entry %q", entry)
		}
		sources := splitList(order)
		if len(sources) == 0 {
			return Policy{}, fmt.Errorf("field priority entry %q lists no sources", entry)
		}
		p.FieldPriority[strings.TrimSpace(field)] = sources
	}

	return p, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Stats carries the counters a merge attaches to the current sync run.
// The pipeline never silently drops data: every rejected or conflicting
// record shows up here.
type Stats struct {
	// Records is the total number of input records across all streams.
	Records int `json:"records"`

	// Merged is the number of distinct external keys in the output.
	Merged int `json:"merged"`

	// Rejected counts records dropped for a missing key or for being a
	// duplicate of an earlier record from the same source.
	Rejected int `json:"rejected"`

	// RejectedBySource attributes rejections to the producing adapter.
	RejectedBySource map[string]int `json:"rejected_by_source,omitempty"`

	// Conflicts counts fields where two sources disagreed and the
	// disagreement was resolved by priority or timestamp.
	Conflicts int `json:"conflicts"`

	// PriorityWins and TimestampWins split Conflicts by how they resolved.
	PriorityWins  int `json:"priority_wins"`
	TimestampWins int `json:"timestamp_wins"`
}

// ConflictError reports an irreconcilable field conflict: equal priority,
// equal timestamp, different values. Explicit non-determinism is an error
// condition, never a silent pick.
type ConflictError struct {
	Key     string
	Field   string
	SourceA string
	SourceB string
	ValueA  string
	ValueB  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("irreconcilable conflict on %s.%s: %s=%q vs %s=%q",
		e.Key, e.Field, e.SourceA, e.ValueA, e.SourceB, e.ValueB)
}

// Retryable reports false: rerunning the pipeline cannot resolve a tie.
func (e *ConflictError) Retryable() bool { return false }
