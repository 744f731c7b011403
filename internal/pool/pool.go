// Package pool runs blocking work on a bounded set of goroutines so the
// caller's own goroutine only waits on a channel.
package pool

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

type Pool struct {
	sem  *semaphore.Weighted
	size int
}

func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

func (p *Pool) Size() int { return p.size }

type result[T any] struct {
	value T
	err   error
}

// Do waits for a free slot, runs fn on its own goroutine and waits for it
// to finish or for ctx to be done. fn receives ctx and must honor it; when
// Do returns early on cancellation the slot is released only once fn
// returns.
func Do[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	done := make(chan result[T], 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- result[T]{err: fmt.Errorf("job panicked: %v", r)}
			}
		}()
		value, err := fn(ctx)
		done <- result[T]{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Outcome is the result of one job submitted through All.
type Outcome[T any] struct {
	Value T
	Err   error
}

// All runs every job through the pool concurrently and returns the
// outcomes in submission order. One failing job does not cancel the others.
func All[T any](ctx context.Context, p *Pool, jobs []func(ctx context.Context) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job func(ctx context.Context) (T, error)) {
			defer wg.Done()
			value, err := Do(ctx, p, job)
			outcomes[i] = Outcome[T]{Value: value, Err: err}
		}(i, job)
	}
	wg.Wait()
	return outcomes
}
