// Package bus implements the named publish/subscribe hub every catalogview
// component communicates through.
//
// Handlers for one name run synchronously, in registration order, on the
// publishing goroutine, and complete before Dispatch returns. A failing
// handler is logged and does not stop the rest of the dispatch.
package bus

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Handler reacts to a dispatched event.
type Handler func(Event) error

// Observer sees every dispatched event before its handlers run.
type Observer func(Event)

type subscription struct {
	handler Handler
	removed bool
}

// Bus is the event hub. One instance is built by the composition root and
// injected into every component; there is no package-level bus.
type Bus struct {
	mu        sync.RWMutex
	handlers  map[string][]*subscription
	observers []Observer
}

// Option configures a Bus.
type Option func(*Bus)

// WithObserver adds an observer of every dispatch.
func WithObserver(o Observer) Option {
	return func(b *Bus) {
		b.observers = append(b.observers, o)
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{handlers: make(map[string][]*subscription)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers handler for name and returns a function that unregisters it.
func (b *Bus) On(name string, handler Handler) (unsubscribe func()) {
	sub := &subscription{handler: handler}

	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		sub.removed = true
		b.handlers[name] = slices.DeleteFunc(b.handlers[name], func(s *subscription) bool {
			return s == sub
		})
	}
}

// Dispatch invokes every handler registered for name, in registration order.
//
// Handlers iterate over a snapshot taken at the start of the dispatch, so
// registrations made during the dispatch take effect from the next one. A
// handler unregistered mid-dispatch is skipped if it has not run yet; no
// other handler is skipped or invoked twice.
func (b *Bus) Dispatch(name string, payload Payload) {
	ev := Event{Name: name, Payload: payload.Clone()}

	b.mu.RLock()
	subs := slices.Clone(b.handlers[name])
	observers := b.observers
	b.mu.RUnlock()

	for _, o := range observers {
		o(Event{Name: name, Payload: ev.Payload.Clone()})
	}

	for _, sub := range subs {
		b.mu.RLock()
		removed := sub.removed
		b.mu.RUnlock()
		if removed {
			continue
		}
		if err := invoke(sub.handler, Event{Name: name, Payload: ev.Payload.Clone()}); err != nil {
			slog.Error("bus handler failed", "event", name, "error", err)
		}
	}
}

// HandlerCount returns the number of handlers registered for name.
func (b *Bus) HandlerCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

// invoke runs one handler, converting a panic into an error.
func invoke(h Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ev)
}
