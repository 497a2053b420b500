package popup

import (
	"context"

	"github.com/roach88/catalogview/internal/host"
)

// Kind selects how UpdateField renders content.
type Kind int

const (
	KindText Kind = iota
	KindEmail
	KindURL
)

// Document is the loaded document as seen by the popups.
type Document interface {
	Metadata(ctx context.Context) (map[string]string, error)
}

// UpdateField writes content into node. Empty content leaves node
// unchanged.
func UpdateField(node *host.Node, kind Kind, content string) {
	if node == nil || content == "" {
		return
	}

	switch kind {
	case KindEmail:
		node.Clear()
		node.AppendChild(link(node, "mailto:"+content, "#", content))
	case KindURL:
		node.Clear()
		node.AppendChild(link(node, content, "_blank", content))
	default:
		node.SetTextContent(content)
	}
}

func link(owner *host.Node, href, target, text string) *host.Node {
	a := owner.Document().CreateElement("a")
	a.SetAttribute("href", href)
	a.SetAttribute("target", target)
	a.SetTextContent(text)
	return a
}
