// Package catalog persists the reconciled product catalog and exposes
// the sync HTTP surface.
//
// The Writer applies changesets transactionally: inserts and updates
// are upserts on the external key, deletes remove pruned rows, and any
// failure rolls the whole changeset back. Database errors are
// classified by SQLSTATE class into integrity violations
// (non-retryable) and connectivity loss (retryable).
//
// The RunStore keeps an append-only audit of finalized sync runs.
//
// The HTTP handlers cover triggering a run, inspecting pipeline status
// and history, and looking up single reconciled entries with their
// per-field provenance.
package catalog
