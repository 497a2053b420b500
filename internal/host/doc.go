// Package host models the host platform the viewer runs in: a small
// element tree with ids, text, attributes, class lists and event listeners,
// plus a global window node.
//
// Host events dispatched at a node run the node's listeners, bubble through
// its ancestors, and are then reported to document observers. Observers are
// how external tooling watches the viewer.
//
// Nodes are not safe for concurrent use; touch them only from the loop.
package host
