package crawler

import (
	"context"
	"log/slog"
	"time"
)

// Executor runs one job to completion and hands back its outcome.
type Executor interface {
	Execute(ctx context.Context, job *Job, identity string) (Outcome, error)
	Close()
}

// sequentialExecutor runs each job on the calling goroutine.
type sequentialExecutor struct {
	fetcher PageFetcher
}

// NewSequentialExecutor returns an executor without worker goroutines.
func NewSequentialExecutor(fetcher PageFetcher) Executor {
	return &sequentialExecutor{fetcher: fetcher}
}

func (e *sequentialExecutor) Execute(ctx context.Context, job *Job, identity string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	return job.Run(ctx, e.fetcher, identity), nil
}

func (e *sequentialExecutor) Close() {}

// pooledExecutor runs each job on a WorkerPool and waits for its
// completion message. The caller never touches the network itself.
type pooledExecutor struct {
	fetcher PageFetcher
	pool    *WorkerPool
	grace   time.Duration
}

// NewPooledExecutor returns an executor backed by a pool of size workers.
// Close gives in-flight jobs grace to finish before cancelling them.
func NewPooledExecutor(ctx context.Context, fetcher PageFetcher, size int, grace time.Duration, logger *slog.Logger) Executor {
	return &pooledExecutor{
		fetcher: fetcher,
		pool:    NewWorkerPool(ctx, size, logger),
		grace:   grace,
	}
}

func (e *pooledExecutor) Execute(ctx context.Context, job *Job, identity string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	// Buffered so a worker finishing after ctx is cancelled never blocks.
	done := make(chan Outcome, 1)

	err := e.pool.Submit(func(workerCtx context.Context) {
		done <- job.Run(workerCtx, e.fetcher, identity)
	})
	if err != nil {
		return Outcome{}, err
	}

	select {
	case out := <-done:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (e *pooledExecutor) Close() {
	e.pool.Shutdown(e.grace)
}
