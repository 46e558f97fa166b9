package syncrun

import (
	"context"
	"errors"
	"sync"
	"time"

	"catalog-sync/core/changeset"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/source"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Writer is the persistence boundary the orchestrator drives.
type Writer interface {
	// Snapshot returns the content hashes currently persisted.
	Snapshot(ctx context.Context) (changeset.Snapshot, error)
	// Apply commits a changeset atomically. Partial application is never
	// observable.
	Apply(ctx context.Context, cs *changeset.Changeset) error
}

// RunStore persists finalized runs for audit.
type RunStore interface {
	Save(ctx context.Context, run *Run) error
}

// ErrBusy is returned by Trigger when a run is active and another is
// already queued.
var ErrBusy = errors.New("sync run active and queue full")

// ErrActive is returned by RunOnce when a run is already in flight.
var ErrActive = errors.New("sync run already active")

// Orchestrator sequences source fetches, reconciliation, and changeset
// application, producing one Run per trigger. Its concurrency guard is
// the sole mutual-exclusion mechanism over the target keys: at most one
// run is ever past Idle.
type Orchestrator struct {
	cfg     Config
	sources []source.Source
	engine  *reconcile.Engine
	writer  Writer
	store   RunStore
	logger  *zap.Logger

	mu      sync.Mutex
	state   State
	current *Run
	last    *Run

	// pending queues at most one externally triggered run id.
	pending chan string
}

// New creates an orchestrator. store may be nil (runs are then only held
// in memory).
func New(cfg Config, sources []source.Source, engine *reconcile.Engine, writer Writer, store RunStore, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		sources: sources,
		engine:  engine,
		writer:  writer,
		store:   store,
		logger:  logger,
		state:   StateIdle,
		pending: make(chan string, 1),
	}
}

// Trigger requests a sync run and returns its pre-assigned id. While a
// run is active one trigger is queued; further triggers are rejected
// with ErrBusy rather than ever running concurrently.
func (o *Orchestrator) Trigger() (string, error) {
	id := uuid.NewString()
	select {
	case o.pending <- id:
		return id, nil
	default:
		return "", ErrBusy
	}
}

// Status is a point-in-time view of the orchestrator.
type Status struct {
	State        State      `json:"state"`
	CurrentRunID string     `json:"current_run_id,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	Pending      int        `json:"pending"`

	// LastRun is the most recently finalized run; immutable.
	LastRun *Run `json:"last_run,omitempty"`
}

// Status reports the current state, the active run (if any) and the last
// finalized run.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := Status{State: o.state, Pending: len(o.pending), LastRun: o.last}
	if o.current != nil {
		s.CurrentRunID = o.current.ID
		started := o.current.StartedAt
		s.StartedAt = &started
	}
	return s
}

// Run processes triggers and the configured schedule until ctx is
// cancelled. Intended to be started once, in its own goroutine.
func (o *Orchestrator) Run(ctx context.Context) {
	var tick <-chan time.Time
	if o.cfg.IntervalMinutes > 0 {
		ticker := time.NewTicker(time.Duration(o.cfg.IntervalMinutes) * time.Minute)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-o.pending:
			o.execute(ctx, id, false)
		case <-tick:
			o.execute(ctx, uuid.NewString(), false)
		}
	}
}

// RunOnce executes a single run synchronously. With dryRun set, the
// changeset is computed but not applied and the run is not persisted.
func (o *Orchestrator) RunOnce(ctx context.Context, dryRun bool) (*Run, error) {
	run := o.execute(ctx, uuid.NewString(), dryRun)
	if run == nil {
		return nil, ErrActive
	}
	return run, nil
}

// execute drives one run through the state machine. Returns nil if a run
// was already active.
func (o *Orchestrator) execute(ctx context.Context, id string, dryRun bool) *Run {
	run := &Run{ID: id, StartedAt: time.Now(), Sources: map[string]*SourceReport{}}

	o.mu.Lock()
	if o.current != nil {
		o.mu.Unlock()
		return nil
	}
	o.current = run
	o.state = StateFetching
	o.mu.Unlock()

	o.logger.Info("Sync run started", zap.String("run_id", id), zap.Bool("dry_run", dryRun))

	defer func() {
		o.mu.Lock()
		o.last = run
		o.current = nil
		o.state = StateIdle
		o.mu.Unlock()
	}()

	// Fetch all sources concurrently; reconciliation starts only after
	// every stream has completed or definitively failed.
	streams := make([][]source.Record, len(o.sources))
	fetchErrs := make([]error, len(o.sources))
	var wg sync.WaitGroup
	for i, src := range o.sources {
		report := &SourceReport{}
		run.Sources[src.Name()] = report

		wg.Add(1)
		go func(i int, src source.Source, report *SourceReport) {
			defer wg.Done()

			records, attempts, err := o.fetchWithRetry(ctx, src)
			report.Attempts = attempts
			if err != nil {
				report.Missing = true
				report.Error = err.Error()
				o.logger.Warn("Source fetch failed",
					zap.String("run_id", id),
					zap.String("source", src.Name()),
					zap.Int("attempts", attempts),
					zap.Bool("mandatory", src.Mandatory()),
					zap.Error(err))
				if src.Mandatory() {
					fetchErrs[i] = err
				}
				return
			}
			report.Records = len(records)
			streams[i] = records
		}(i, src, report)
	}
	wg.Wait()

	for _, err := range fetchErrs {
		if err != nil {
			return o.fail(run, dryRun, err)
		}
	}
	// Cooperative cancellation point: nothing has been written yet.
	if err := ctx.Err(); err != nil {
		return o.fail(run, dryRun, err)
	}

	o.setState(StateReconciling)
	merged, stats, mergeErr := o.engine.Merge(streams)
	run.Rejected = stats.Rejected
	run.Conflicts = stats.Conflicts
	for name, n := range stats.RejectedBySource {
		if report, ok := run.Sources[name]; ok {
			report.Rejected = n
		}
	}
	if mergeErr != nil {
		return o.fail(run, dryRun, mergeErr)
	}

	if err := ctx.Err(); err != nil {
		return o.fail(run, dryRun, err)
	}

	snap, err := o.writer.Snapshot(ctx)
	if err != nil {
		return o.fail(run, dryRun, err)
	}
	cs := changeset.Compute(merged, snap, o.cfg.Prune)
	run.Inserts, run.Updates, run.NoOps, run.Deletes = cs.Counts()

	if !dryRun {
		o.setState(StateWriting)
		// Once writing begins the run is no longer cancellable: it runs
		// to commit or rollback on a detached context.
		if err := o.applyWithRetry(context.WithoutCancel(ctx), cs); err != nil {
			return o.fail(run, dryRun, err)
		}
	}

	run.Outcome = OutcomeCompleted
	for _, report := range run.Sources {
		if report.Missing {
			run.Outcome = OutcomePartial
		}
	}
	run.FinishedAt = time.Now()

	o.setState(StateCompleted)
	o.persist(run, dryRun)
	o.logger.Info("Sync run finished",
		zap.String("run_id", id),
		zap.String("outcome", string(run.Outcome)),
		zap.Int("inserts", run.Inserts),
		zap.Int("updates", run.Updates),
		zap.Int("noops", run.NoOps),
		zap.Int("deletes", run.Deletes),
		zap.Int("rejected", run.Rejected),
		zap.Int("conflicts", run.Conflicts),
		zap.Duration("duration", run.FinishedAt.Sub(run.StartedAt)))
	return run
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) fail(run *Run, dryRun bool, err error) *Run {
	run.Outcome = OutcomeFailed
	run.Error = err.Error()
	run.FinishedAt = time.Now()
	o.setState(StateFailed)
	o.persist(run, dryRun)
	o.logger.Error("Sync run failed", zap.String("run_id", run.ID), zap.Error(err))
	return run
}

func (o *Orchestrator) persist(run *Run, dryRun bool) {
	if o.store == nil || dryRun {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.store.Save(ctx, run); err != nil {
		o.logger.Error("Failed to persist sync run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// fetchWithRetry retries transient fetch failures with exponential
// backoff up to the configured bound. Fatal errors abort immediately.
func (o *Orchestrator) fetchWithRetry(ctx context.Context, src source.Source) ([]source.Record, int, error) {
	attempts := 0
	operation := func() ([]source.Record, error) {
		attempts++
		records, err := src.Fetch(ctx)
		if err != nil && !isRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return records, err
	}

	records, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(o.newBackOff()),
		backoff.WithMaxTries(o.maxTries()))
	return records, attempts, err
}

// applyWithRetry retries transient persistence failures (connection
// loss); integrity violations are surfaced immediately.
func (o *Orchestrator) applyWithRetry(ctx context.Context, cs *changeset.Changeset) error {
	operation := func() (struct{}, error) {
		err := o.writer.Apply(ctx, cs)
		if err != nil && !isRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(o.newBackOff()),
		backoff.WithMaxTries(o.maxTries()))
	return err
}

// maxTries bounds retry attempts. A non-positive limit means a single
// attempt; zero would mean unbounded to the backoff library.
func (o *Orchestrator) maxTries() uint {
	if o.cfg.RetryLimit < 1 {
		return 1
	}
	return uint(o.cfg.RetryLimit)
}

func (o *Orchestrator) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if o.cfg.RetryBackoffMS > 0 {
		b.InitialInterval = time.Duration(o.cfg.RetryBackoffMS) * time.Millisecond
	}
	return b
}

// retryable is implemented by the typed errors of the source and
// persistence layers.
type retryable interface {
	Retryable() bool
}

func isRetryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
