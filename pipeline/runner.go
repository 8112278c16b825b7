package pipeline

import (
	"context"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/importit/core"
)

// Outcome pairs a finished run's result with its error.
type Outcome struct {
	Result *Result
	Err    error
}

// Runner executes scheduler runs on a single-worker pool. One worker by
// construction keeps the run cooperative: batches, backoff sleeps, and
// pacing delays all happen on the same task, so the control surface only
// ever observes snapshots.
type Runner struct {
	pool *ants.Pool
}

// NewRunner creates a new Runner.
func NewRunner() (*Runner, error) {
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}
	return &Runner{pool: pool}, nil
}

// Start submits a scheduler run and returns a channel that delivers the
// terminal outcome. The channel is buffered; the caller may consume it
// whenever convenient.
func (r *Runner) Start(ctx context.Context, scheduler *Scheduler, records []core.RawRecord, parseSkipped int) (<-chan Outcome, error) {
	out := make(chan Outcome, 1)
	err := r.pool.Submit(func() {
		result, runErr := scheduler.Run(ctx, records, parseSkipped)
		out <- Outcome{Result: result, Err: runErr}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Release releases the worker pool.
// The runner should not be used after calling Release.
func (r *Runner) Release() {
	r.pool.Release()
}
