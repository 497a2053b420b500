package host

// Event is a host-platform structured event.
type Event struct {
	// Type is the host event name, e.g. "pagerendered" or "findagain".
	Type string

	// Detail carries the name-specific payload subset. May be nil.
	Detail map[string]any

	// Target is the node the event was dispatched at. Set by DispatchEvent.
	Target *Node
}

// Listener handles a host event.
type Listener func(Event)

// Observer is notified of every host event dispatched in a document.
type Observer func(Event)
