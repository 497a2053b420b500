// Package shell is the composition root of a viewer session.
//
// New builds exactly one loop, document, bus, overlay manager, popup pair,
// cart, sidebar and host event bridge, and wires the shopping actions
// between them. Every component is reachable from the returned App.
package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/roach88/catalogview/internal/bridge"
	"github.com/roach88/catalogview/internal/bus"
	"github.com/roach88/catalogview/internal/cart"
	"github.com/roach88/catalogview/internal/catalog"
	"github.com/roach88/catalogview/internal/config"
	"github.com/roach88/catalogview/internal/host"
	"github.com/roach88/catalogview/internal/journal"
	"github.com/roach88/catalogview/internal/loop"
	"github.com/roach88/catalogview/internal/orders"
	"github.com/roach88/catalogview/internal/overlay"
	"github.com/roach88/catalogview/internal/popup"
)

// Element ids wired by the shell.
const (
	ViewerContainerID = "viewerContainer"
	PublisherButtonID = "publisherInfoButton"
	KeyDownEvent      = "keydown"
	EscapeKey         = "Escape"
)

// Option customizes New.
type Option func(*options)

type options struct {
	ctx        context.Context
	httpClient *http.Client
	lookup     popup.Fetcher
	images     catalog.ImageLoader
	submitter  cart.Submitter
	opener     cart.Opener
	publisher  cart.OrderPublisher
	sessions   cart.Generator
}

// WithContext sets the context passed to network calls.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithHTTPClient sets the client used by the default lookup, image loader
// and checkout submitter.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLookup replaces the product lookup.
func WithLookup(f popup.Fetcher) Option {
	return func(o *options) { o.lookup = f }
}

// WithImageLoader replaces the product image loader.
func WithImageLoader(l catalog.ImageLoader) Option {
	return func(o *options) { o.images = l }
}

// WithSubmitter replaces the checkout submitter.
func WithSubmitter(s cart.Submitter) Option {
	return func(o *options) { o.submitter = s }
}

// WithOpener replaces the browsing-context opener.
func WithOpener(op cart.Opener) Option {
	return func(o *options) { o.opener = op }
}

// WithOrderPublisher sets the order publisher, overriding checkout.amqp_uri.
func WithOrderPublisher(p cart.OrderPublisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithSessions sets the checkout session id generator.
func WithSessions(g cart.Generator) Option {
	return func(o *options) { o.sessions = g }
}

// App is one viewer session.
type App struct {
	Config         *config.Config
	Loop           *loop.Loop
	Document       *host.Document
	Bus            *bus.Bus
	Journal        *journal.Journal
	Overlays       *overlay.Manager
	ProductPopup   *popup.ProductPopup
	PublisherPopup *popup.PublisherPopup
	Cart           *cart.Cart
	Sidebar        *Sidebar
	Bridge         *bridge.Bridge

	// Viewer is the bridge source of the viewer container.
	Viewer *bridge.Source

	closers []io.Closer
}

// New builds a session from cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{ctx: context.Background()}
	for _, opt := range opts {
		opt(o)
	}

	jr, err := journal.Open()
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Loop:     loop.New(),
		Document: host.NewDocument(),
		Bus:      bus.New(bus.WithObserver(jr.Observe)),
		Journal:  jr,
		Overlays: overlay.NewManager(),
		closers:  []io.Closer{jr},
	}
	doc := a.Document

	lookupClient := o.httpClient
	if lookupClient == nil {
		lookupClient = &http.Client{Timeout: cfg.Shop.LookupTimeout}
	}
	if o.lookup == nil {
		o.lookup = catalog.NewLookup(catalog.WithHTTPClient(lookupClient), catalog.WithDebug(cfg.Viewer.Debug))
	}
	if o.images == nil {
		o.images = &catalog.HTTPImageLoader{Client: lookupClient}
	}

	a.ProductPopup, err = popup.NewProductPopup(popup.ProductConfig{
		Loop:           a.Loop,
		Bus:            a.Bus,
		Overlays:       a.Overlays,
		Document:       doc,
		Lookup:         o.lookup,
		Images:         o.images,
		MaxImageHeight: cfg.Viewer.MaxImageHeight(),
		Placeholder:    cfg.Viewer.PlaceholderImage,
		Context:        o.ctx,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.PublisherPopup, err = popup.NewPublisherPopup(popup.PublisherConfig{
		Loop:     a.Loop,
		Overlays: a.Overlays,
		Document: doc,
		Info:     publisherInfo(cfg.Publisher),
		Context:  o.ctx,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Sidebar = NewSidebar(a.Bus, doc)

	a.Cart = cart.New(cart.Config{
		Loop:            a.Loop,
		Document:        doc,
		Notifier:        a.Sidebar,
		Submitter:       a.submitter(o),
		Opener:          a.opener(o),
		Publisher:       a.orderPublisher(o),
		Sessions:        o.sessions,
		ClientID:        cfg.Shop.AccountID,
		CartURL:         cfg.Shop.CheckoutURL,
		PopupCheckDelay: cfg.Viewer.PopupCheckDelay,
		Context:         o.ctx,
	})

	a.Viewer = &bridge.Source{
		Container:       doc.Element(ViewerContainerID),
		OuterContainer:  a.Sidebar.OuterContainerNode(),
		ViewerContainer: doc.Element(ViewerContainerID),
	}
	a.Sidebar.outer.AppendChild(a.Viewer.Container)

	a.Bridge = bridge.New(a.Loop, a.Bus, doc, actions{a}, bridge.Config{
		Regex:              cfg.Shop.Regex,
		InitialSearchDelay: cfg.Viewer.InitialSearchDelay,
	})

	doc.Window().AddEventListener(KeyDownEvent, func(ev host.Event) {
		if key, _ := ev.Detail["key"].(string); key == EscapeKey {
			a.Overlays.CancelActive()
		}
	})
	doc.Element(PublisherButtonID).AddEventListener("click", func(host.Event) {
		a.PublisherPopup.Open()
	})

	return a, nil
}

func (a *App) submitter(o *options) cart.Submitter {
	if o.submitter != nil {
		return o.submitter
	}
	client := o.httpClient
	if client == nil {
		client = &http.Client{Timeout: a.Config.Checkout.Timeout}
	}
	return &cart.HTTPSubmitter{Client: client, ProxyURL: a.Config.Checkout.ProxyURL}
}

func (a *App) opener(o *options) cart.Opener {
	if o.opener != nil {
		return o.opener
	}
	return &DefaultOpener{Document: a.Document, ViewportHeight: a.Config.Viewer.ViewportHeight}
}

func (a *App) orderPublisher(o *options) cart.OrderPublisher {
	if o.publisher != nil {
		return o.publisher
	}
	uri := a.Config.Checkout.AMQPURI
	if uri == "" {
		return nil
	}
	p, err := orders.Dial(uri, a.Config.Checkout.Queue)
	if err != nil {
		slog.Warn("order publishing disabled", "error", err)
		return nil
	}
	a.closers = append(a.closers, p)
	return p
}

func publisherInfo(c config.PublisherConfig) popup.PublisherInfo {
	return popup.PublisherInfo{
		Company:  c.Company,
		Address1: c.Address1,
		Address2: c.Address2,
		City:     c.City,
		State:    c.State,
		Zip:      c.Zip,
		Country:  c.Country,
		Email:    c.Email,
		Phone:    c.Phone,
		Web:      c.Web,
	}
}

// SetDocument starts a new document: the cart is emptied and both popups
// are released. Must run on the loop.
func (a *App) SetDocument(doc popup.Document, url string) {
	a.Cart.Reset()
	a.ProductPopup.SetDocument(doc, url)
	a.PublisherPopup.SetDocument(doc, url)
}

// CartSnapshot is a point-in-time view of the cart.
type CartSnapshot struct {
	Items []cart.Item `json:"items"`
	Total string      `json:"total"`
}

// Snapshot reads the cart. Must run on the loop.
func (a *App) Snapshot() CartSnapshot {
	return CartSnapshot{Items: a.Cart.Items(), Total: a.Cart.Total()}
}

// Close releases the session's resources.
func (a *App) Close() error {
	if a.Bridge != nil {
		a.Bridge.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// actions routes the bridge's shopping events.
type actions struct {
	app *App
}

func (x actions) ProductDetails(sku string) {
	url := x.app.Config.Shop.LookupURL()
	if sku == "" || url == "" {
		slog.Warn("no product URL or valid SKU", "sku", sku)
		return
	}
	x.app.ProductPopup.Open(sku, url)
}

func (x actions) AddToCart(p *catalog.Product) {
	x.app.Cart.AddProduct(p)
	x.app.ProductPopup.Close()
}

func (x actions) ShowCart() {
	x.app.Sidebar.ShowCartView()
}
