package loop

import "sync"

// Latch is a two-state one-shot gate: unset, then set forever.
//
// Waiters either select on Done or register a callback with OnSet. Set is
// idempotent and safe from any goroutine; callbacks run synchronously on
// the goroutine that calls Set, so a latch set from a loop task resumes its
// joins before that task returns.
type Latch struct {
	mu      sync.Mutex
	set     bool
	ch      chan struct{}
	waiters []func()
}

// NewLatch creates an unset latch.
func NewLatch() *Latch {
	return &Latch{ch: make(chan struct{})}
}

// Resolved returns a latch that is already set, for transitions that
// complete synchronously.
func Resolved() *Latch {
	l := NewLatch()
	l.Set()
	return l
}

// Set releases every current and future waiter.
func (l *Latch) Set() {
	l.mu.Lock()
	if l.set {
		l.mu.Unlock()
		return
	}
	l.set = true
	close(l.ch)
	waiters := l.waiters
	l.waiters = nil
	l.mu.Unlock()

	for _, w := range waiters {
		w()
	}
}

// OnSet runs fn once the latch is set. If it is already set, fn runs
// immediately on the calling goroutine.
func (l *Latch) OnSet(fn func()) {
	l.mu.Lock()
	if l.set {
		l.mu.Unlock()
		fn()
		return
	}
	l.waiters = append(l.waiters, fn)
	l.mu.Unlock()
}

// Done returns a channel closed once the latch is set.
func (l *Latch) Done() <-chan struct{} {
	return l.ch
}

// IsSet reports whether Set has been called.
func (l *Latch) IsSet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set
}
