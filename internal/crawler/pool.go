package crawler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrPoolClosed is returned by Submit after Shutdown.
var ErrPoolClosed = errors.New("worker pool is closed")

// WorkerPool runs tasks on at most size goroutines.
//
// Tasks receive a context that is cancelled when the pool is forced to
// stop, so a fetch in flight can be abandoned.
type WorkerPool struct {
	group   *errgroup.Group
	slots   chan struct{}
	closing chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	size    int
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewWorkerPool creates a pool of size workers bound to ctx.
// A size below one is raised to one.
func NewWorkerPool(ctx context.Context, size int, logger *slog.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		group:   &errgroup.Group{},
		slots:   make(chan struct{}, size),
		closing: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		size:    size,
		logger:  logger,
	}
}

// Size returns the maximum number of concurrent tasks.
func (p *WorkerPool) Size() int {
	return p.size
}

// Submit schedules task. It blocks while all workers are busy, and
// returns ErrPoolClosed if Shutdown starts before a worker frees up.
// The wait for a worker happens without holding the pool lock.
func (p *WorkerPool) Submit(task func(ctx context.Context)) error {
	select {
	case p.slots <- struct{}{}:
	case <-p.closing:
		return ErrPoolClosed
	case <-p.ctx.Done():
		return p.ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		<-p.slots
		return ErrPoolClosed
	}

	p.group.Go(func() error {
		defer func() { <-p.slots }()
		task(p.ctx)
		return nil
	})
	return nil
}

// Shutdown stops accepting tasks and waits up to grace for running ones.
// Tasks still running afterwards are cancelled and left behind; this is
// logged and not reported to the caller.
func (p *WorkerPool) Shutdown(grace time.Duration) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.closing)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		p.cancel()
	case <-timer.C:
		p.cancel()
		p.logger.Warn("worker pool did not drain in time, cancelling workers",
			"grace", grace,
		)
	}
}
