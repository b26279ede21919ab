package glossai

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler drives sequential batch translation runs. One Scheduler may
// serve many projects, but it enforces at most one live Run per project:
// concurrent runs would race on the untranslated-documents filter and
// double-translate items.
type Scheduler struct {
	translator *Translator
	glossaries GlossaryStore
	documents  DocumentStore

	cooldown     time.Duration
	pollInterval time.Duration
	itemTimeout  time.Duration
	includeStale bool
	onProgress   func(Progress)

	mu     sync.Mutex
	active map[string]*Run
}

// SchedulerOption is a functional option for configuring the Scheduler.
type SchedulerOption func(*Scheduler)

// WithCooldown sets the pause between provider dispatches. The cooldown
// is skipped after the final item and after cache-served items.
func WithCooldown(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.cooldown = d
	}
}

// WithPollInterval sets how often a paused run re-checks its state.
// Stop requests issued during a pause are honored within one interval.
func WithPollInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.pollInterval = d
	}
}

// WithItemTimeout bounds each document's provider call so an
// unresponsive provider cannot stall the batch. A timeout counts as an
// ordinary per-item failure.
func WithItemTimeout(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.itemTimeout = d
	}
}

// WithStaleRequeue additionally queues documents whose source text
// changed since they were last translated.
func WithStaleRequeue() SchedulerOption {
	return func(s *Scheduler) {
		s.includeStale = true
	}
}

// WithBatchProgress registers a progress observer, invoked before each
// item's translation begins.
func WithBatchProgress(fn func(Progress)) SchedulerOption {
	return func(s *Scheduler) {
		s.onProgress = fn
	}
}

// NewScheduler creates a Scheduler over the given translator and stores.
func NewScheduler(translator *Translator, glossaries GlossaryStore, documents DocumentStore, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		translator:   translator,
		glossaries:   glossaries,
		documents:    documents,
		cooldown:     2 * time.Second,
		pollInterval: 200 * time.Millisecond,
		itemTimeout:  60 * time.Second,
		active:       make(map[string]*Run),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run is one live batch execution over a snapshot of untranslated
// documents. A finished Run must be discarded; start a new one for a
// subsequent pass.
type Run struct {
	projectID string
	queue     []Document
	glossary  []Term

	// state is the single source of truth for pause/resume; the worker
	// loop reads it afresh on every poll rather than a captured copy.
	state atomic.Int32
	stop  atomic.Bool

	done   chan struct{}
	report BatchReport // written only by the worker, read after done closes
}

// State returns the run's current lifecycle state.
func (r *Run) State() RunState {
	return RunState(r.state.Load())
}

// Pause suspends the run before its next item. It reports whether the
// run was running; pausing a terminal or already-paused run is a no-op.
func (r *Run) Pause() bool {
	return r.state.CompareAndSwap(int32(StateRunning), int32(StatePaused))
}

// Resume continues a paused run. It reports whether the run was paused.
func (r *Run) Resume() bool {
	return r.state.CompareAndSwap(int32(StatePaused), int32(StateRunning))
}

// Stop requests cancellation. The in-flight item, if any, is allowed to
// finish; remaining items are left untouched and the run transitions to
// StateStopped. Stopping a terminal run is a no-op.
func (r *Run) Stop() {
	r.stop.Store(true)
}

// Queued returns the number of items snapshotted into this run.
func (r *Run) Queued() int {
	return len(r.queue)
}

// Done returns a channel closed when the run reaches a terminal state.
// Its closing is the run's final notification.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run reaches a terminal state and returns the
// final report.
func (r *Run) Wait() BatchReport {
	<-r.done
	return r.report
}

// Start begins a batch run over the project's documents. The queue is
// snapshotted now: only documents lacking a translation (plus stale ones
// when requeueing is enabled) are included, in their given order, and
// documents added later are not picked up. The glossary is loaded once,
// so a run's output is internally consistent even if terms are edited
// while it executes. Re-running Start over an already-translated corpus
// is a no-op that completes immediately.
//
// Start returns *RunActiveError while another run is live for the same
// project.
func (s *Scheduler) Start(ctx context.Context, projectID string, docs []Document) (*Run, error) {
	queue := PlanQueue(docs).NeedsTranslation(s.includeStale)

	glossary, err := s.glossaries.ListByProject(ctx, projectID)
	if err != nil {
		return nil, &StoreError{Op: "list terms", Message: "cannot load glossary for run", Cause: err}
	}

	run := &Run{
		projectID: projectID,
		queue:     queue,
		glossary:  glossary,
		done:      make(chan struct{}),
	}
	run.state.Store(int32(StateRunning))

	s.mu.Lock()
	if live, ok := s.active[projectID]; ok && !live.State().Terminal() {
		s.mu.Unlock()
		return nil, &RunActiveError{ProjectID: projectID}
	}
	s.active[projectID] = run
	s.mu.Unlock()

	go s.work(ctx, run)

	return run, nil
}

// ActiveRun returns the live run for a project, if any.
func (s *Scheduler) ActiveRun(projectID string) (*Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.active[projectID]
	return run, ok
}

func (s *Scheduler) work(ctx context.Context, run *Run) {
	defer close(run.done)
	defer s.release(run.projectID, run)

	total := len(run.queue)

	for i, doc := range run.queue {
		if s.awaitResume(ctx, run) {
			run.report.State = StateStopped
			run.report.Skipped = total - i
			run.state.Store(int32(StateStopped))
			return
		}

		s.emit(Progress{Current: i + 1, Total: total, Label: doc.Label()})

		providerCalled := s.translateOne(ctx, run, doc)

		if providerCalled && i < total-1 {
			s.cooldownWait(ctx, run)
		}
	}

	run.report.State = StateCompleted
	run.state.Store(int32(StateCompleted))
}

// translateOne translates and persists a single document. Failures are
// absorbed into the report; one item can never halt the batch. It
// reports whether a provider call was actually dispatched.
func (s *Scheduler) translateOne(ctx context.Context, run *Run, doc Document) bool {
	ictx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	res, err := s.translator.TranslateDocument(ictx, doc, run.glossary)
	if err != nil {
		run.report.Failed++
		return true
	}

	if res.Cached {
		run.report.Cached++
	}

	if err := s.documents.SaveTranslation(ctx, doc.ID, res.Text, HashText(doc.SourceText), time.Now().UTC()); err != nil {
		run.report.Failed++
		return !res.Cached
	}

	run.report.Succeeded++
	return !res.Cached
}

// awaitResume blocks while the run is paused, re-reading the live state
// on every poll. It reports whether the run should stop instead of
// proceeding to the next item.
func (s *Scheduler) awaitResume(ctx context.Context, run *Run) bool {
	for {
		if run.stop.Load() || ctx.Err() != nil {
			return true
		}
		if run.State() != StatePaused {
			return false
		}
		select {
		case <-ctx.Done():
			return true
		case <-time.After(s.pollInterval):
		}
	}
}

// cooldownWait sleeps for the configured cooldown in poll-sized slices
// so a stop request cuts the wait short.
func (s *Scheduler) cooldownWait(ctx context.Context, run *Run) {
	remaining := s.cooldown
	for remaining > 0 {
		if run.stop.Load() || ctx.Err() != nil {
			return
		}
		step := s.pollInterval
		if step <= 0 || step > remaining {
			step = remaining
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(step):
		}
		remaining -= step
	}
}

func (s *Scheduler) release(projectID string, run *Run) {
	s.mu.Lock()
	if s.active[projectID] == run {
		delete(s.active, projectID)
	}
	s.mu.Unlock()
}

func (s *Scheduler) emit(p Progress) {
	if s.onProgress != nil {
		s.onProgress(p)
	}
}
