package jobs

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/portraitforge/genjobs/internal/docmerge"
	"github.com/portraitforge/genjobs/internal/telemetry"
)

// Outcome is the result of one job after a pool run.
type Outcome struct {
	JobID string

	// Err is non-nil if the job failed.
	Err error
}

// Pool runs generation jobs concurrently with a bounded worker count.
// Jobs are independent: one job's failure is recorded in its Outcome and
// its stored state, never propagated to siblings.
type Pool struct {
	runner     *Runner
	store      *Store
	workers    int
	onProgress func(jobID string, ev telemetry.ProgressEvent)
}

// NewPool creates a Pool. workers <= 0 means no concurrency limit.
// onProgress is called synchronously from each worker goroutine as jobs
// report progress; it may be nil.
func NewPool(runner *Runner, store *Store, workers int, onProgress func(jobID string, ev telemetry.ProgressEvent)) *Pool {
	return &Pool{
		runner:     runner,
		store:      store,
		workers:    workers,
		onProgress: onProgress,
	}
}

// Submit creates and stores a submitted job, returning its ID.
func (p *Pool) Submit(tenantID, prompt string, overlay docmerge.Document) (string, error) {
	job := NewJob(tenantID, prompt, overlay)
	if err := p.store.Create(job); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Run executes the identified jobs against base in parallel and waits for
// all of them. Each job's terminal state (completed or failed) is written
// to the store; the returned outcomes are index-aligned with ids.
func (p *Pool) Run(ctx context.Context, base docmerge.Document, ids []string) []Outcome {
	outcomes := make([]Outcome, len(ids))

	var g errgroup.Group
	if p.workers > 0 {
		g.SetLimit(p.workers)
	}

	for i, id := range ids {
		g.Go(func() error {
			outcomes[i] = Outcome{JobID: id, Err: p.runOne(ctx, base, id)}
			return nil
		})
	}

	_ = g.Wait() // worker funcs never return an error; failures live in outcomes
	return outcomes
}

func (p *Pool) runOne(ctx context.Context, base docmerge.Document, id string) error {
	job, err := p.store.Get(id)
	if err != nil {
		return err
	}

	if err := p.store.Update(id, func(j *Job) {
		j.State = StateRunning
	}); err != nil {
		return err
	}

	img, err := p.runner.Run(ctx, job, base, p.sink(id))
	if err != nil {
		_ = p.store.Update(id, func(j *Job) {
			j.State = StateFailed
			j.Error = err.Error()
		})
		return err
	}

	return p.store.Update(id, func(j *Job) {
		j.State = StateCompleted
		j.Progress = 100
		j.Image = img
	})
}

// sink combines the job's store handle with the pool's progress callback.
func (p *Pool) sink(id string) telemetry.ProgressSink {
	return poolSink{pool: p, jobID: id, handle: p.store.Handle(id)}
}

type poolSink struct {
	pool   *Pool
	jobID  string
	handle *Handle
}

func (s poolSink) UpdateProgress(ctx context.Context, percent int, message string) error {
	if s.pool.onProgress != nil {
		s.pool.onProgress(s.jobID, telemetry.ProgressEvent{Percent: percent, Message: message})
	}
	return s.handle.UpdateProgress(ctx, percent, message)
}
