package hostws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/catalogview/internal/host"
)

// clientBuffer is how many messages may queue for one slow client before
// further messages to it are dropped.
const clientBuffer = 64

// Message is the wire form of a host event.
type Message struct {
	Type   string         `json:"type"`
	Target string         `json:"target,omitempty"`
	Detail map[string]any `json:"detail,omitempty"`
}

// NewMessage converts a host event. Detail values that cannot be encoded
// as JSON are sent as their string form.
func NewMessage(ev host.Event) Message {
	m := Message{Type: ev.Type}
	if ev.Target != nil {
		m.Target = ev.Target.ID()
	}
	if len(ev.Detail) > 0 {
		m.Detail = make(map[string]any, len(ev.Detail))
		for k, v := range ev.Detail {
			if _, err := json.Marshal(v); err != nil {
				v = fmt.Sprint(v)
			}
			m.Detail[k] = v
		}
	}
	return m
}

// Hub fans host events out to subscribers.
//
// Thread-safety: all methods are safe for concurrent use. Observe never
// blocks the loop; a subscriber whose buffer is full misses the message.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Message]struct{}
}

// NewHub creates a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Message]struct{})}
}

// Observe implements host.Observer.
func (h *Hub) Observe(ev host.Event) {
	msg := NewMessage(ev)

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			slog.Debug("host event dropped for slow subscriber", "type", msg.Type)
		}
	}
}

// Subscribe registers a subscriber. The returned cancel function removes
// it and closes the channel.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, clientBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
