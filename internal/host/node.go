package host

import (
	"slices"
	"strings"
)

// HiddenClass is the class toggled to show and hide nodes.
const HiddenClass = "hidden"

// Node is an element in the host tree.
type Node struct {
	id        string
	tag       string
	text      string
	attrs     map[string]string
	classes   []string
	children  []*Node
	parent    *Node
	listeners map[string][]Listener
	doc       *Document
}

// ID returns the element id, or "" for anonymous nodes.
func (n *Node) ID() string { return n.id }

// Tag returns the element tag name.
func (n *Node) Tag() string { return n.tag }

// Document returns the document that created n.
func (n *Node) Document() *Document { return n.doc }

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes in document order.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// TextContent returns the node's own text followed by the text of its
// descendants.
func (n *Node) TextContent() string {
	if len(n.children) == 0 {
		return n.text
	}
	var b strings.Builder
	b.WriteString(n.text)
	for _, c := range n.children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// SetTextContent replaces all children with the given text.
func (n *Node) SetTextContent(s string) {
	n.Clear()
	n.text = s
}

// Clear removes all children and text.
func (n *Node) Clear() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.text = ""
}

// AppendChild attaches c as the last child of n, detaching it from any
// previous parent.
func (n *Node) AppendChild(c *Node) {
	if c.parent != nil {
		c.parent.removeChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) removeChild(c *Node) {
	n.children = slices.DeleteFunc(n.children, func(x *Node) bool { return x == c })
	c.parent = nil
}

// SetAttribute sets an attribute value.
func (n *Node) SetAttribute(name, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
}

// Attribute returns an attribute value and whether it is present.
func (n *Node) Attribute(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// AddClass adds a class if not already present.
func (n *Node) AddClass(name string) {
	if !n.HasClass(name) {
		n.classes = append(n.classes, name)
	}
}

// RemoveClass removes a class if present.
func (n *Node) RemoveClass(name string) {
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool { return c == name })
}

// SetClass adds the class when on is true and removes it otherwise.
func (n *Node) SetClass(name string, on bool) {
	if on {
		n.AddClass(name)
	} else {
		n.RemoveClass(name)
	}
}

// HasClass reports whether the class is present.
func (n *Node) HasClass(name string) bool {
	return slices.Contains(n.classes, name)
}

// Classes returns the class list in insertion order.
func (n *Node) Classes() []string {
	return slices.Clone(n.classes)
}

// Hidden reports whether the node carries the hidden class.
func (n *Node) Hidden() bool {
	return n.HasClass(HiddenClass)
}

// AddEventListener registers fn for events of the given type. Listeners run
// in registration order.
func (n *Node) AddEventListener(eventType string, fn Listener) {
	if n.listeners == nil {
		n.listeners = make(map[string][]Listener)
	}
	n.listeners[eventType] = append(n.listeners[eventType], fn)
}

// DispatchEvent delivers ev at n, bubbles it to every ancestor, then
// reports it to the document observers.
func (n *Node) DispatchEvent(ev Event) {
	ev.Target = n
	for cur := n; cur != nil; cur = cur.parent {
		for _, fn := range slices.Clone(cur.listeners[ev.Type]) {
			fn(ev)
		}
	}
	if n.doc != nil {
		n.doc.notify(ev)
	}
}

// Click dispatches a "click" event at n.
func (n *Node) Click() {
	n.DispatchEvent(Event{Type: "click"})
}
