// Package workerpool runs jobs on a bounded number of slots with a bounded wait queue.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

var (
	// ErrQueueFull is returned when every slot is busy and the wait queue is full.
	ErrQueueFull = errors.New("worker queue is full")

	// ErrClosed is returned for submissions after Close.
	ErrClosed = errors.New("worker pool is closed")
)

// Pool bounds concurrent work. Size jobs run at once and up to QueueSize more
// wait for a slot; anything beyond that is rejected with ErrQueueFull.
type Pool struct {
	admit  *semaphore.Weighted
	run    *semaphore.Weighted
	size   int
	queue  int
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool

	// OnAdmit is called with +1 when a job is admitted and -1 when it leaves.
	OnAdmit func(delta int)
	// OnReject is called when a job is rejected because the queue is full.
	OnReject func()
}

// New creates a pool with size slots and a wait queue of queueSize jobs.
func New(size, queueSize int) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		admit: semaphore.NewWeighted(int64(size + queueSize)),
		run:   semaphore.NewWeighted(int64(size)),
		size:  size,
		queue: queueSize,
	}
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return p.size
}

// QueueSize returns the number of jobs allowed to wait.
func (p *Pool) QueueSize() int {
	return p.queue
}

// Do runs fn on a pool slot and blocks until it returns. If ctx is cancelled
// while waiting for a slot, fn is not run and the context error is returned.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrClosed
	}
	if !p.admit.TryAcquire(1) {
		p.mu.RUnlock()
		if p.OnReject != nil {
			p.OnReject()
		}
		return ErrQueueFull
	}
	p.wg.Add(1)
	p.mu.RUnlock()

	if p.OnAdmit != nil {
		p.OnAdmit(1)
	}
	defer func() {
		p.admit.Release(1)
		if p.OnAdmit != nil {
			p.OnAdmit(-1)
		}
		p.wg.Done()
	}()

	if err := p.run.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for worker: %w", err)
	}
	defer p.run.Release(1)

	return fn(ctx)
}

// Close stops admitting jobs and waits for admitted ones to finish or ctx to end.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining worker pool: %w", ctx.Err())
	}
}
