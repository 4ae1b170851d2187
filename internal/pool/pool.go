// Package pool provides a bounded worker pool for CPU-bound analysis and
// rasterization work. The queue depth is fixed: submissions beyond it are
// rejected immediately rather than queued unboundedly, so latency stays
// bounded under load and callers can apply their own retry policy.
package pool

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueFull is returned by Submit and Do when the queue depth threshold
// is exceeded. The condition is transient.
var ErrQueueFull = errors.New("pool: queue full")

// ErrClosed is returned when submitting to a closed pool.
var ErrClosed = errors.New("pool: closed")

type job struct {
	ctx context.Context
	fn  func(ctx context.Context) error
	res chan error
}

// Pool is a fixed-size worker pool with a bounded submission queue.
type Pool struct {
	jobs chan job

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a pool with the given number of workers and queue depth.
// Values below 1 are clamped to 1.
func New(workers, queueDepth int) *Pool {
	workers = max(workers, 1)
	queueDepth = max(queueDepth, 1)

	p := &Pool{jobs: make(chan job, queueDepth)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		// A job whose caller already gave up releases the slot without
		// running.
		if err := j.ctx.Err(); err != nil {
			j.res <- err
			continue
		}
		j.res <- j.fn(j.ctx)
	}
}

// Do submits fn and waits for it to finish. It returns ErrQueueFull without
// blocking when the queue is at capacity, ErrClosed after Close, and the
// context error when ctx is done before fn completes.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}

	j := job{ctx: ctx, fn: fn, res: make(chan error, 1)}
	select {
	case p.jobs <- j:
		p.mu.Unlock()
	default:
		p.mu.Unlock()
		return ErrQueueFull
	}

	select {
	case err := <-j.res:
		return err
	case <-ctx.Done():
		// The job still runs to completion in the worker; the result
		// channel is buffered so the worker never blocks on it.
		return ctx.Err()
	}
}

// QueueDepth returns the configured queue capacity.
func (p *Pool) QueueDepth() int {
	return cap(p.jobs)
}

// Close stops accepting work and waits for in-flight jobs to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
