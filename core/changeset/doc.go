// Package changeset computes the minimal set of write operations needed
// to bring persisted state in line with a reconciled view.
//
// A Changeset is an ordered (key-sorted) sequence of insert/update/no-op
// operations, each carrying a content hash of the entity's merged fields.
// Diffing is pure in-memory computation against a Snapshot of stored
// hashes; applying the result is the persistence writer's job.
//
// Computing a changeset from a view that storage already reflects yields
// only no-ops, which is what makes changeset application idempotent
// end to end.
package changeset
