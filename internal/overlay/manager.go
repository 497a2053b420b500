// Package overlay manages modal overlays, at most one of which is active.
//
// Exclusivity is a two-step protocol: Open never closes another overlay,
// so callers that need exclusivity check Active and Close first.
package overlay

import (
	"log/slog"
	"sync"

	"github.com/roach88/catalogview/internal/host"
	"github.com/roach88/catalogview/internal/loop"
)

type entry struct {
	root     *host.Node
	onCancel func()
}

// Manager is the registry of named overlays and owner of the single active
// slot.
//
// Registry membership is permanent; there is no unregister. onCancel is
// called outside the lock, but must not re-enter Open or Close for the
// same overlay.
type Manager struct {
	mu       sync.Mutex
	registry map[string]entry
	active   string
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{registry: make(map[string]entry)}
}

// Register adds an overlay. root is hidden until the overlay opens.
func (m *Manager) Register(name string, root *host.Node, onCancel func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.registry[name]; exists {
		return &Error{Code: ErrCodeDuplicate, Name: name}
	}
	if root != nil {
		root.AddClass(host.HiddenClass)
	}
	m.registry[name] = entry{root: root, onCancel: onCancel}
	return nil
}

// Open makes name the active overlay and returns a latch set once the open
// transition completes. Another active overlay is replaced, not closed.
func (m *Manager) Open(name string) (*loop.Latch, error) {
	m.mu.Lock()
	e, ok := m.registry[name]
	if !ok {
		m.mu.Unlock()
		return nil, &Error{Code: ErrCodeUnknown, Name: name}
	}
	if m.active != "" && m.active != name {
		slog.Debug("overlay replaced without close", "active", m.active, "opening", name)
	}
	m.active = name
	m.mu.Unlock()

	if e.root != nil {
		e.root.RemoveClass(host.HiddenClass)
	}
	return loop.Resolved(), nil
}

// Close deactivates name if it is the active overlay, hides its root and
// calls its onCancel. Returns false, and does nothing, otherwise.
func (m *Manager) Close(name string) bool {
	m.mu.Lock()
	if m.active == "" || m.active != name {
		m.mu.Unlock()
		return false
	}
	e := m.registry[name]
	m.active = ""
	m.mu.Unlock()

	if e.root != nil {
		e.root.AddClass(host.HiddenClass)
	}
	if e.onCancel != nil {
		e.onCancel()
	}
	return true
}

// CancelActive closes whichever overlay is active. Bound to the Escape key.
func (m *Manager) CancelActive() bool {
	name, ok := m.Active()
	if !ok {
		return false
	}
	return m.Close(name)
}

// Active returns the active overlay name.
func (m *Manager) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.active != ""
}

// IsActive reports whether name is the active overlay.
func (m *Manager) IsActive(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != "" && m.active == name
}
