// Package dispatch bridges synchronous callers into the event-client
// execution context. Callers submit a task from any goroutine and block for
// a bounded time; the task itself only ever runs on the single goroutine
// that drains Queue.
package dispatch

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds Invoke when the caller passes no explicit timeout.
const DefaultTimeout = 10 * time.Second

// ErrTimeout reports that an invocation was not completed within its bound.
// The task is not cancelled forcibly; it receives a deadline-carrying
// context and any late result is discarded.
var ErrTimeout = errors.New("dispatch: invocation timed out")

// Task is a unit of work that must execute inside the event-stream context.
type Task func(ctx context.Context) (interface{}, error)

type outcome struct {
	value interface{}
	err   error
}

// Invocation is one scheduled task together with its result slot. The result
// channel is buffered so the executing side never blocks on a caller that
// has already given up.
type Invocation struct {
	task     Task
	deadline time.Time
	done     chan outcome
}

// Run executes the task with a context capped at the invocation deadline and
// publishes the outcome. It must only be called from the goroutine that owns
// the event-stream context.
func (inv *Invocation) Run(ctx context.Context) {
	if !inv.deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, inv.deadline)
		defer cancel()
	}
	v, err := inv.task(ctx)
	inv.done <- outcome{value: v, err: err}
}

// Dispatcher carries invocations from caller goroutines to the event loop.
type Dispatcher struct {
	queue          chan *Invocation
	defaultTimeout time.Duration
}

// New constructs a Dispatcher whose queue holds up to buffer pending
// invocations before submitters start waiting.
func New(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 16
	}
	return &Dispatcher{
		queue:          make(chan *Invocation, buffer),
		defaultTimeout: DefaultTimeout,
	}
}

// Queue exposes pending invocations to the owning event loop. The loop must
// call Run on each received invocation.
func (d *Dispatcher) Queue() <-chan *Invocation {
	return d.queue
}

// Invoke schedules task onto the event-stream context and blocks until it
// completes or timeout elapses. A non-positive timeout selects the default.
// On timeout the task may still complete in the background; its result is
// then discarded. Invocations are independent: no ordering is guaranteed
// between concurrent callers.
func (d *Dispatcher) Invoke(ctx context.Context, task Task, timeout time.Duration) (interface{}, error) {
	if timeout <= 0 {
		timeout = d.defaultTimeout
	}

	inv := &Invocation{
		task:     task,
		deadline: time.Now().Add(timeout),
		done:     make(chan outcome, 1),
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case d.queue <- inv:
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case out := <-inv.done:
		return out.value, out.err
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
