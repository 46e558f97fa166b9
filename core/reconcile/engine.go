package reconcile

import (
	"catalog-sync/core/source"
)

// Engine merges record streams from multiple sources into one reconciled
// view per external key.
type Engine struct {
	policy Policy
}

// NewEngine creates an engine with the given conflict policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Merge reconciles the given streams. Every key present in any stream
// appears exactly once in the output. Records without a key, and records
// duplicating an earlier (key, source) pair, are rejected and counted.
// The first irreconcilable conflict aborts the merge.
func (e *Engine) Merge(streams [][]source.Record) (map[string]*MergedEntity, *Stats, error) {
	stats := &Stats{RejectedBySource: map[string]int{}}
	merged := make(map[string]*MergedEntity)

	// Tracks (key, source) pairs already consumed this run.
	seen := make(map[string]map[string]struct{})

	for _, stream := range streams {
		for _, rec := range stream {
			stats.Records++

			if rec.Key == "" {
				stats.Rejected++
				stats.RejectedBySource[rec.Source]++
				continue
			}
			if bySource, ok := seen[rec.Key]; ok {
				if _, dup := bySource[rec.Source]; dup {
					stats.Rejected++
					stats.RejectedBySource[rec.Source]++
					continue
				}
				bySource[rec.Source] = struct{}{}
			} else {
				seen[rec.Key] = map[string]struct{}{rec.Source: {}}
			}

			entity, ok := merged[rec.Key]
			if !ok {
				entity = &MergedEntity{Key: rec.Key, Fields: make(map[string]FieldValue, len(rec.Fields))}
				merged[rec.Key] = entity
			}

			for field, value := range rec.Fields {
				candidate := Candidate{Value: value, Source: rec.Source, ObservedAt: rec.ObservedAt}

				current, exists := entity.Fields[field]
				if !exists {
					entity.Fields[field] = FieldValue(candidate)
					continue
				}

				winner, outcome, err := Resolve(rec.Key, field, Candidate(current), candidate, e.policy.orderFor(field))
				if err != nil {
					return nil, stats, err
				}
				switch outcome {
				case OutcomePriority:
					stats.Conflicts++
					stats.PriorityWins++
				case OutcomeTimestamp:
					stats.Conflicts++
					stats.TimestampWins++
				}
				entity.Fields[field] = FieldValue(winner)
			}
		}
	}

	stats.Merged = len(merged)
	return merged, stats, nil
}
