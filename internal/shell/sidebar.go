package shell

import (
	"github.com/roach88/catalogview/internal/bus"
	"github.com/roach88/catalogview/internal/host"
)

// View names a sidebar panel.
type View string

const (
	ViewThumbnail View = "thumbnail"
	ViewOutline   View = "outline"
	ViewCart      View = "cart"
)

// Sidebar element ids and classes.
const (
	OuterContainerID   = "outerContainer"
	ViewCartButtonID   = "viewCart"
	CartViewID         = "cartView"
	ThumbnailViewID    = "thumbnailView"
	OutlineViewID      = "outlineView"
	ThumbnailButtonID  = "viewThumbnail"
	OutlineButtonID    = "viewOutline"
	NotificationClass  = "cartNotification"
	ToggledButtonClass = "toggled"
)

type sidebarPanel struct {
	view   *host.Node
	button *host.Node
}

// Sidebar switches between the thumbnail, outline and cart panels and
// flags a non-empty cart on the cart button.
type Sidebar struct {
	bus    *bus.Bus
	outer  *host.Node
	panels map[View]sidebarPanel
	active View
}

// NewSidebar binds the sidebar buttons. The thumbnail panel starts active.
func NewSidebar(b *bus.Bus, doc *host.Document) *Sidebar {
	s := &Sidebar{
		bus:   b,
		outer: doc.Element(OuterContainerID),
		panels: map[View]sidebarPanel{
			ViewThumbnail: {doc.Element(ThumbnailViewID), doc.Element(ThumbnailButtonID)},
			ViewOutline:   {doc.Element(OutlineViewID), doc.Element(OutlineButtonID)},
			ViewCart:      {doc.Element(CartViewID), doc.Element(ViewCartButtonID)},
		},
	}
	for view, panel := range s.panels {
		panel.button.AddEventListener("click", func(host.Event) { s.SwitchView(view) })
	}
	s.apply(ViewThumbnail)
	return s
}

// OuterContainerNode exposes the sidebar's host target.
func (s *Sidebar) OuterContainerNode() *host.Node {
	return s.outer
}

// Active returns the visible panel.
func (s *Sidebar) Active() View {
	return s.active
}

// SwitchView shows view and announces the change on the bus. Switching to
// the active view does nothing.
func (s *Sidebar) SwitchView(view View) {
	if _, ok := s.panels[view]; !ok || view == s.active {
		return
	}
	s.apply(view)
	s.bus.Dispatch(bus.SidebarViewChanged, bus.Payload{bus.KeySource: s, "view": string(view)})
}

// ShowCartView reveals the cart panel.
func (s *Sidebar) ShowCartView() {
	s.SwitchView(ViewCart)
}

// SetCartNotification implements cart.Notifier.
func (s *Sidebar) SetCartNotification(nonEmpty bool) {
	s.panels[ViewCart].button.SetClass(NotificationClass, nonEmpty)
}

func (s *Sidebar) apply(view View) {
	s.active = view
	for v, panel := range s.panels {
		panel.view.SetClass(host.HiddenClass, v != view)
		panel.button.SetClass(ToggledButtonClass, v == view)
	}
}
