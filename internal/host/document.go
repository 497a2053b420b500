package host

import (
	"slices"
	"sync"
)

// WindowID is the id of the global window target.
const WindowID = "window"

// Document owns the element tree and the global window target.
type Document struct {
	window *Node
	byID   map[string]*Node

	mu        sync.Mutex
	observers []Observer
}

// NewDocument creates an empty document with a window node.
func NewDocument() *Document {
	d := &Document{byID: make(map[string]*Node)}
	d.window = d.CreateElement("window")
	d.window.id = WindowID
	d.byID[WindowID] = d.window
	return d
}

// Window returns the global window target.
func (d *Document) Window() *Node {
	return d.window
}

// CreateElement creates a detached anonymous node.
func (d *Document) CreateElement(tag string) *Node {
	return &Node{tag: tag, doc: d}
}

// Element returns the node with the given id, creating a detached div with
// that id if none exists.
func (d *Document) Element(id string) *Node {
	if n, ok := d.byID[id]; ok {
		return n
	}
	n := d.CreateElement("div")
	n.id = id
	d.byID[id] = n
	return n
}

// GetElementByID returns the node with the given id, or nil.
func (d *Document) GetElementByID(id string) *Node {
	return d.byID[id]
}

// Observe registers fn to see every host event dispatched in the document.
// Safe from any goroutine.
func (d *Document) Observe(fn Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

func (d *Document) notify(ev Event) {
	d.mu.Lock()
	observers := slices.Clone(d.observers)
	d.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
}
