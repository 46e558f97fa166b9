// Package reconcile merges same-entity records from multiple sources into
// one authoritative view per external key.
//
// The engine consumes the normalized streams produced by source adapters
// and resolves field-level disagreements without ever branching on the
// source type. Resolution is driven entirely by a Policy:
//
//  1. Source priority (global order, with optional per-field overrides).
//  2. Most-recent timestamp when priorities tie.
//  3. A ConflictError when both tie and the values still differ —
//     explicit non-determinism is treated as an error, not swallowed.
//
// The pairwise tiebreak lives in Resolve, a pure function with no I/O,
// so the policy semantics are testable in isolation.
//
// # Guarantees
//
//   - Every external key present in any input stream appears exactly once
//     in the merged output.
//   - Each merged field carries exactly one provenance source.
//   - Keys present in only one source merge unchanged.
//   - Rejected records (missing key, duplicate per source) are counted
//     and attributed, never silently dropped.
//
// Merging is pure in-memory computation; it never blocks.
package reconcile
