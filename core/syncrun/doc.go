// Package syncrun orchestrates the fetch-reconcile-write pipeline.
//
// One Run walks the state machine
//
//	Idle -> Fetching -> Reconciling -> Writing -> Completed
//
// with Failed reachable from any non-terminal state. Source fetches run
// concurrently and are retried with exponential backoff; a mandatory
// source exhausting its retries fails the run, an optional one is marked
// missing and the run completes as partial.
//
// The orchestrator admits at most one active run; one pending trigger
// may be queued and anything beyond that is rejected. A run can be
// cancelled cooperatively until the write phase begins; the write itself
// runs on a detached context to commit or rollback.
//
// Finalized runs are immutable and persisted through RunStore for audit.
package syncrun
