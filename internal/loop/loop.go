package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// ErrStopped is returned by Do when the loop no longer accepts tasks.
var ErrStopped = errors.New("loop stopped")

// Loop is the single-threaded cooperative scheduler.
//
// Thread-safety model:
//   - Post, Do, After, Await, Join: safe from any goroutine
//   - Run, RunUntilIdle: called from exactly one goroutine at a time
//
// INVARIANTS:
//   - tasks execute one at a time in FIFO order
//   - pending counts async operations whose continuation has not run yet
type Loop struct {
	queue   *taskQueue
	pending atomic.Int64
}

// New creates an idle loop.
func New() *Loop {
	return &Loop{queue: newTaskQueue()}
}

// Post enqueues a task. Returns false once the loop has been stopped.
func (l *Loop) Post(t Task) bool {
	return l.queue.Enqueue(t)
}

// Run executes tasks until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	slog.Debug("loop starting")

	for {
		if t, ok := l.queue.TryDequeue(); ok {
			l.exec(t)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Debug("loop stopping: context cancelled")
			l.queue.Close()
			return ctx.Err()

		case <-l.queue.Wait():
			if l.queue.Closed() && l.queue.Len() == 0 {
				slog.Debug("loop stopping: queue closed")
				return nil
			}
		}
	}
}

// RunUntilIdle executes tasks on the calling goroutine until the queue is
// empty and no async operation is pending.
//
// Joins waiting on an unset latch are not pending: they resume only when
// some task sets the latch.
func (l *Loop) RunUntilIdle(ctx context.Context) error {
	for {
		if t, ok := l.queue.TryDequeue(); ok {
			l.exec(t)
			continue
		}

		if l.pending.Load() == 0 || l.queue.Closed() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.queue.Wait():
		}
	}
}

// Do runs fn on the loop and waits for it to finish.
//
// Must not be called from the loop goroutine itself: the task would wait
// for its own completion.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// After runs task on the loop once d has elapsed. Single-shot and not
// cancellable.
func (l *Loop) After(d time.Duration, task Task) {
	l.pending.Add(1)
	time.AfterFunc(d, func() {
		l.resume(task)
	})
}

// Join posts then once every latch has been set, in any order. then runs
// exactly once.
func (l *Loop) Join(then Task, latches ...*Latch) {
	if len(latches) == 0 {
		l.Post(then)
		return
	}

	var remaining atomic.Int32
	remaining.Store(int32(len(latches)))
	for _, latch := range latches {
		latch.OnSet(func() {
			if remaining.Add(-1) == 0 {
				l.Post(then)
			}
		})
	}
}

// Pending returns the number of async operations still in flight.
func (l *Loop) Pending() int64 {
	return l.pending.Load()
}

// Stop closes the queue. Run returns once the remaining tasks drain.
func (l *Loop) Stop() {
	l.queue.Close()
}

// resume posts the continuation of a pending operation.
func (l *Loop) resume(task Task) {
	if !l.Post(func() {
		defer l.pending.Add(-1)
		task()
	}) {
		l.pending.Add(-1)
	}
}

// exec runs one task. A panic is logged and the loop continues.
func (l *Loop) exec(t Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("loop task panicked", "panic", r)
		}
	}()
	t()
}

// Await runs work on a helper goroutine and resumes with then(result) on
// the loop.
func Await[T any](l *Loop, work func() T, then func(T)) {
	l.pending.Add(1)
	go func() {
		var result T
		ok := func() (ok bool) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("async work panicked", "panic", r)
				}
			}()
			result = work()
			return true
		}()
		if !ok {
			l.pending.Add(-1)
			return
		}
		l.resume(func() { then(result) })
	}()
}
