// Package bridge re-broadcasts bus events as host events and routes the
// shopping actions.
//
// Each bus name has a fixed target (the window or a node exposed by the
// event's source) and a fixed detail shape. Events whose target cannot be
// resolved are dropped.
package bridge

import (
	"log/slog"
	"regexp"
	"time"

	"github.com/roach88/catalogview/internal/bus"
	"github.com/roach88/catalogview/internal/catalog"
	"github.com/roach88/catalogview/internal/host"
	"github.com/roach88/catalogview/internal/loop"
)

// DefaultInitialSearchDelay is the wait between pagesinit and the initial
// regex search.
const DefaultInitialSearchDelay = 50 * time.Millisecond

// InitialSearchQuery is the sentinel query of the initial regex search.
const InitialSearchQuery = "__"

// Actions receives the shopping events.
type Actions interface {
	ProductDetails(sku string)
	AddToCart(product *catalog.Product)
	ShowCart()
}

// Config tunes a Bridge.
type Config struct {
	// Regex is the initial search pattern, matched case-insensitively.
	// Empty disables the regex search.
	Regex string

	InitialSearchDelay time.Duration
}

type target int

const (
	targetWindow target = iota
	targetPage
	targetTextLayer
	targetContainer
	targetOuterContainer
	targetViewer
)

type route struct {
	name   string
	target target
	keys   []string
}

// routes is the bus → host table. find and pagesinit have extra handling.
var routes = []route{
	{bus.DocumentLoad, targetWindow, nil},
	{bus.PageRendered, targetPage, []string{"pageNumber", "cssTransform"}},
	{bus.TextLayerRendered, targetTextLayer, []string{"pageNumber"}},
	{bus.PageChange, targetContainer, []string{"pageNumber"}},
	{bus.PagesInit, targetContainer, nil},
	{bus.PagesLoaded, targetContainer, []string{"pagesCount"}},
	{bus.ScaleChange, targetWindow, []string{"scale", "presetValue"}},
	{bus.UpdateViewArea, targetWindow, []string{"location"}},
	{bus.Find, targetWindow, []string{"query", "phraseSearch", "caseSensitive", "highlightAll", "findPrevious"}},
	{bus.SidebarViewChanged, targetOuterContainer, []string{"view"}},
	{bus.PageMode, targetViewer, []string{"mode"}},
	{bus.NamedAction, targetViewer, []string{"action"}},
	{bus.PresentationModeChanged, targetWindow, []string{"active", "switchInProgress"}},
	{bus.OutlineLoaded, targetContainer, []string{"outlineCount"}},
}

// Bridge subscribes to the routed bus names for its lifetime.
type Bridge struct {
	loop    *loop.Loop
	bus     *bus.Bus
	doc     *host.Document
	actions Actions
	delay   time.Duration
	regex   *regexp.Regexp

	unsubscribe []func()
}

// New subscribes the bridge to every routed name and the action names.
func New(l *loop.Loop, b *bus.Bus, doc *host.Document, actions Actions, cfg Config) *Bridge {
	br := &Bridge{
		loop:    l,
		bus:     b,
		doc:     doc,
		actions: actions,
		delay:   cfg.InitialSearchDelay,
	}
	if br.delay <= 0 {
		br.delay = DefaultInitialSearchDelay
	}
	if cfg.Regex != "" {
		re, err := regexp.Compile("(?i)" + cfg.Regex)
		if err != nil {
			slog.Warn("initial search regex invalid", "regex", cfg.Regex, "error", err)
		} else {
			br.regex = re
		}
	}

	for _, r := range routes {
		br.unsubscribe = append(br.unsubscribe, b.On(r.name, br.forward(r)))
	}
	br.unsubscribe = append(br.unsubscribe,
		b.On(bus.ProductDetails, br.productDetails),
		b.On(bus.AddToCart, br.addToCart),
		b.On(bus.ShowCart, br.showCart),
	)
	return br
}

// Close removes every subscription.
func (b *Bridge) Close() {
	for _, fn := range b.unsubscribe {
		fn()
	}
	b.unsubscribe = nil
}

func (b *Bridge) forward(r route) bus.Handler {
	return func(ev bus.Event) error {
		eventType := r.name
		if r.name == bus.Find {
			if src, ok := ev.Payload.Source().(*host.Node); ok && src == b.doc.Window() {
				return nil
			}
			eventType += ev.Payload.String("type")
		}

		node := b.resolve(r.target, ev.Payload.Source())
		if node == nil {
			slog.Debug("host event dropped: no target", "event", ev.Name)
		} else {
			node.DispatchEvent(host.Event{Type: eventType, Detail: ev.Payload.Pick(r.keys...)})
		}

		if r.name == bus.PagesInit {
			b.scheduleInitialSearch()
		}
		return nil
	}
}

func (b *Bridge) resolve(t target, source any) *host.Node {
	switch t {
	case targetWindow:
		return b.doc.Window()
	case targetPage:
		if s, ok := source.(PageView); ok {
			return s.PageNode()
		}
	case targetTextLayer:
		if s, ok := source.(TextLayer); ok {
			return s.TextLayerNode()
		}
	case targetContainer:
		if s, ok := source.(Container); ok {
			return s.ContainerNode()
		}
	case targetOuterContainer:
		if s, ok := source.(OuterContainer); ok {
			return s.OuterContainerNode()
		}
	case targetViewer:
		if s, ok := source.(Viewer); ok {
			return s.ViewerContainerNode()
		}
	}
	return nil
}

func (b *Bridge) scheduleInitialSearch() {
	b.loop.After(b.delay, func() {
		payload := bus.Payload{
			bus.KeySource:   b,
			"isRegex":       b.regex != nil,
			"query":         InitialSearchQuery,
			"caseSensitive": false,
			"highlightAll":  true,
			"phraseSearch":  false,
		}
		if b.regex != nil {
			payload["regex"] = b.regex
		}
		b.bus.Dispatch(bus.RegexInitialSearch, payload)
	})
}

func (b *Bridge) productDetails(ev bus.Event) error {
	if b.actions != nil {
		b.actions.ProductDetails(ev.Payload.String(bus.KeySKU))
	}
	return nil
}

func (b *Bridge) addToCart(ev bus.Event) error {
	product, _ := ev.Payload[bus.KeyProduct].(*catalog.Product)
	if product == nil || b.actions == nil {
		return nil
	}
	b.actions.AddToCart(product)
	return nil
}

func (b *Bridge) showCart(bus.Event) error {
	if b.actions != nil {
		b.actions.ShowCart()
	}
	return nil
}
