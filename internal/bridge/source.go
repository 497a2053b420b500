package bridge

import "github.com/roach88/catalogview/internal/host"

// PageView is a rendered page.
type PageView interface {
	PageNode() *host.Node
}

// TextLayer is a page's text layer.
type TextLayer interface {
	TextLayerNode() *host.Node
}

// Container is the scrolling page container.
type Container interface {
	ContainerNode() *host.Node
}

// OuterContainer is the element holding the sidebar and the viewer.
type OuterContainer interface {
	OuterContainerNode() *host.Node
}

// Viewer is the document viewer.
type Viewer interface {
	ViewerContainerNode() *host.Node
}

// Source is a publishing component that exposes every bridge target. Nil
// fields are missing targets.
type Source struct {
	Page            *host.Node
	TextLayer       *host.Node
	Container       *host.Node
	OuterContainer  *host.Node
	ViewerContainer *host.Node
}

// PageNode implements PageView.
func (s *Source) PageNode() *host.Node { return s.Page }

// TextLayerNode implements TextLayer.
func (s *Source) TextLayerNode() *host.Node { return s.TextLayer }

// ContainerNode implements Container.
func (s *Source) ContainerNode() *host.Node { return s.Container }

// OuterContainerNode implements OuterContainer.
func (s *Source) OuterContainerNode() *host.Node { return s.OuterContainer }

// ViewerContainerNode implements Viewer.
func (s *Source) ViewerContainerNode() *host.Node { return s.ViewerContainer }
