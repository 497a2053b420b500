package shell

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/catalogview/internal/bus"
	"github.com/roach88/catalogview/internal/cart"
	"github.com/roach88/catalogview/internal/catalog"
	"github.com/roach88/catalogview/internal/config"
	"github.com/roach88/catalogview/internal/host"
	"github.com/roach88/catalogview/internal/popup"
)

type stubLookup struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
	urls     []string
}

func (s *stubLookup) Fetch(_ context.Context, sku, urlTemplate string) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, catalog.BuildURL(urlTemplate, sku))
	if p, ok := s.products[sku]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, &catalog.Error{Code: catalog.ErrCodeNotFound, SKU: sku}
}

type stubImages struct{}

func (stubImages) Load(context.Context, string) (catalog.Dimensions, error) {
	return catalog.Dimensions{Width: 100, Height: 100}, nil
}

type stubSubmitter struct {
	mu    sync.Mutex
	forms []cart.Form
}

func (s *stubSubmitter) Submit(_ context.Context, form cart.Form) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms = append(s.forms, form)
	return "http://shop/pay", nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Shop.ProductLookup = "http://shop/lookup?sku=[SKU]"
	cfg.Shop.AccountID = "acct-7"
	cfg.Viewer.InitialSearchDelay = time.Millisecond
	cfg.Viewer.PopupCheckDelay = time.Millisecond
	cfg.Publisher.Company = "Acme"
	return cfg
}

func newApp(t *testing.T, cfg *config.Config, opts ...Option) (*App, *stubLookup) {
	t.Helper()
	lookup := &stubLookup{products: map[string]*catalog.Product{
		"A1": {SKU: "A1", Name: "Lamp", Price: "10.00", Image: "http://img/a1.png"},
	}}
	opts = append([]Option{
		WithLookup(lookup),
		WithImageLoader(stubImages{}),
		WithSessions(cart.NewFixedGenerator("session-1")),
	}, opts...)

	app, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app, lookup
}

func idle(t *testing.T, app *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Loop.RunUntilIdle(ctx))
}

func TestApp_ProductDetailsToCart(t *testing.T) {
	app, lookup := newApp(t, testConfig())
	doc := app.Document

	app.Bus.Dispatch(bus.ProductDetails, bus.Payload{bus.KeySKU: "A1"})
	idle(t, app)
	assert.True(t, app.Overlays.IsActive(popup.ProductOverlay))
	assert.Empty(t, lookup.urls)

	app.SetDocument(nil, "catalog.pdf")
	idle(t, app)
	assert.Equal(t, []string{"http://shop/lookup?sku=A1"}, lookup.urls)
	assert.Equal(t, "Lamp", doc.Element("productNameField").TextContent())

	doc.Element(popup.ProductAddToCartID).Click()
	idle(t, app)

	assert.Equal(t, 1, app.Cart.Count("A1"))
	assert.Equal(t, ViewCart, app.Sidebar.Active())
	assert.False(t, doc.Element(CartViewID).Hidden())
	assert.True(t, doc.Element(ThumbnailViewID).Hidden())
	assert.True(t, doc.Element(ViewCartButtonID).HasClass(NotificationClass))
	_, active := app.Overlays.Active()
	assert.False(t, active)
	assert.Equal(t, "$ 10.00", doc.Element(cart.TotalID).TextContent())

	names, err := app.Journal.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{bus.ProductDetails, bus.ShowCart, bus.SidebarViewChanged, bus.AddToCart}, names)
}

func TestApp_ProductDetailsWithoutURL(t *testing.T) {
	cfg := testConfig()
	cfg.Shop.ProductLookup = ""
	app, _ := newApp(t, cfg)

	app.Bus.Dispatch(bus.ProductDetails, bus.Payload{bus.KeySKU: "A1"})
	app.Bus.Dispatch(bus.ProductDetails, bus.Payload{})

	_, active := app.Overlays.Active()
	assert.False(t, active)
}

func TestApp_EscapeCancelsOverlay(t *testing.T) {
	app, _ := newApp(t, testConfig())

	app.Document.Element(PublisherButtonID).Click()
	assert.True(t, app.Overlays.IsActive(popup.PublisherOverlay))

	app.Document.Window().DispatchEvent(host.Event{Type: KeyDownEvent, Detail: map[string]any{"key": "a"}})
	assert.True(t, app.Overlays.IsActive(popup.PublisherOverlay))

	app.Document.Window().DispatchEvent(host.Event{Type: KeyDownEvent, Detail: map[string]any{"key": EscapeKey}})
	_, active := app.Overlays.Active()
	assert.False(t, active)
}

func TestApp_PublisherPopupFills(t *testing.T) {
	app, _ := newApp(t, testConfig())

	app.SetDocument(nil, "catalog.pdf")
	app.Document.Element(PublisherButtonID).Click()
	idle(t, app)

	assert.Equal(t, "Acme", app.Document.Element("publisherCompanyField").TextContent())
}

func TestApp_ProductDetailsClosesPublisherPopup(t *testing.T) {
	app, _ := newApp(t, testConfig())
	doc := app.Document

	app.SetDocument(nil, "catalog.pdf")
	doc.Element(PublisherButtonID).Click()
	idle(t, app)
	require.True(t, app.Overlays.IsActive(popup.PublisherOverlay))

	app.Bus.Dispatch(bus.ProductDetails, bus.Payload{bus.KeySKU: "A1"})
	idle(t, app)

	assert.True(t, app.Overlays.IsActive(popup.ProductOverlay))
	assert.True(t, doc.Element(popup.PublisherOverlay).Hidden())
	assert.False(t, doc.Element(popup.ProductOverlay).Hidden())
	assert.False(t, doc.Element(popup.ProductBodyID).Hidden())

	doc.Element(popup.ProductCloseID).Click()
	_, active := app.Overlays.Active()
	assert.False(t, active)

	doc.Element(PublisherButtonID).Click()
	idle(t, app)
	doc.Element(popup.PublisherCloseID).Click()
	assert.True(t, doc.Element(popup.PublisherOverlay).Hidden())
}

func TestApp_CheckoutOpensRedirect(t *testing.T) {
	submitter := &stubSubmitter{}
	app, _ := newApp(t, testConfig(), WithSubmitter(submitter))

	var opened []map[string]any
	app.Document.Window().AddEventListener(OpenEvent, func(ev host.Event) {
		opened = append(opened, ev.Detail)
	})

	app.Cart.AddProduct(&catalog.Product{SKU: "A1", Price: "10.00"})
	app.Document.Element(cart.CheckoutID).Click()
	idle(t, app)

	require.Len(t, submitter.forms, 1)
	assert.Equal(t, "acct-7", submitter.forms[0].ClientID)
	assert.Equal(t, []map[string]any{{"url": "http://shop/pay", "target": "_blank"}}, opened)
	assert.Equal(t, 1, app.Cart.Len())
}

func TestApp_SetDocumentResetsCart(t *testing.T) {
	app, _ := newApp(t, testConfig())

	app.Cart.AddProduct(&catalog.Product{SKU: "A1", Price: "10.00"})
	app.SetDocument(nil, "next.pdf")

	assert.Equal(t, 0, app.Cart.Len())
	assert.False(t, app.Document.Element(ViewCartButtonID).HasClass(NotificationClass))
}

func TestApp_SidebarEventReachesOuterContainer(t *testing.T) {
	app, _ := newApp(t, testConfig())

	var views []any
	app.Document.Element(OuterContainerID).AddEventListener(bus.SidebarViewChanged, func(ev host.Event) {
		views = append(views, ev.Detail["view"])
	})

	app.Document.Element(OutlineButtonID).Click()
	app.Document.Element(OutlineButtonID).Click()
	app.Sidebar.ShowCartView()

	assert.Equal(t, []any{"outline", "cart"}, views)
}

func TestApp_PagesInitSearchesOnce(t *testing.T) {
	cfg := testConfig()
	cfg.Shop.Regex = "[0-9]{5}"
	app, _ := newApp(t, cfg)

	var containerEvents int
	app.Viewer.Container.AddEventListener(bus.PagesInit, func(host.Event) { containerEvents++ })

	app.Bus.Dispatch(bus.PagesInit, bus.Payload{bus.KeySource: app.Viewer})
	idle(t, app)

	assert.Equal(t, 1, containerEvents)
	n, err := app.Journal.Count(context.Background(), bus.RegexInitialSearch)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
