package shell

import (
	"github.com/roach88/catalogview/internal/cart"
	"github.com/roach88/catalogview/internal/host"
)

// OpenEvent is the host event type announcing a new browsing context.
const OpenEvent = "open"

// DefaultOpener announces browsing contexts as host events on the window.
// Headless hosts never block them.
type DefaultOpener struct {
	Document       *host.Document
	ViewportHeight int
}

// Open implements cart.Opener.
func (o *DefaultOpener) Open(url, target string) cart.Window {
	o.Document.Window().DispatchEvent(host.Event{
		Type:   OpenEvent,
		Detail: map[string]any{"url": url, "target": target},
	})
	return openedWindow{height: o.ViewportHeight}
}

type openedWindow struct {
	height int
}

func (w openedWindow) Closed() bool     { return false }
func (w openedWindow) InnerHeight() int { return w.height }
