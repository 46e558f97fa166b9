package syncrun

import "time"

// State is the orchestrator's position in the pipeline state machine.
// Transitions are one-directional: Idle -> Fetching -> Reconciling ->
// Writing -> Completed, with Failed reachable from any non-terminal state.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateReconciling State = "reconciling"
	StateWriting     State = "writing"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// Outcome is the final disposition of a run.
type Outcome string

const (
	// OutcomeCompleted means every source contributed and the changeset
	// committed.
	OutcomeCompleted Outcome = "completed"
	// OutcomePartial means the changeset committed but at least one
	// optional source was missing after exhausting retries.
	OutcomePartial Outcome = "partial"
	// OutcomeFailed means the run aborted; prior persisted state is
	// untouched.
	OutcomeFailed Outcome = "failed"
)

// SourceReport records one source's contribution to a run.
type SourceReport struct {
	// Records is the number of records the source delivered.
	Records int `json:"records"`

	// Rejected counts the source's records dropped during reconciliation.
	Rejected int `json:"rejected"`

	// Attempts is how many fetches were made, retries included.
	Attempts int `json:"attempts"`

	// Missing is set when retries were exhausted and the source's
	// contribution was skipped for this run.
	Missing bool `json:"missing"`

	// Error holds the final fetch error, if any.
	Error string `json:"error,omitempty"`
}

// Run is one execution of the fetch-reconcile-write pipeline.
// It is mutated only by the orchestrator while active and is immutable
// once finalized.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    Outcome   `json:"outcome"`

	// Sources maps adapter name to its per-run report.
	Sources map[string]*SourceReport `json:"sources"`

	// Rejected and Conflicts aggregate the reconciliation counters.
	Rejected  int `json:"rejected"`
	Conflicts int `json:"conflicts"`

	// Operation counts from the applied (or, on dry runs, computed) changeset.
	Inserts int `json:"inserts"`
	Updates int `json:"updates"`
	NoOps   int `json:"noops"`
	Deletes int `json:"deletes"`

	// Error is the failure that aborted the run, empty on success.
	Error string `json:"error,omitempty"`
}
