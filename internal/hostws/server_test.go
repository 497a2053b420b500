package hostws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/catalogview/internal/cart"
	"github.com/roach88/catalogview/internal/catalog"
	"github.com/roach88/catalogview/internal/config"
	"github.com/roach88/catalogview/internal/host"
	"github.com/roach88/catalogview/internal/shell"
	"github.com/roach88/catalogview/internal/testutil"
)

type fixture struct {
	app    *shell.App
	server *httptest.Server
	srv    *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	shop := testutil.NewCatalogServer()
	t.Cleanup(shop.Close)
	shop.AddProduct(catalog.Product{SKU: "A1", Name: "Desk Lamp", Price: "10.00"})

	cfg := config.Default()
	cfg.Shop.ProductLookup = shop.LookupTemplate()
	cfg.Checkout.ProxyURL = shop.CheckoutURL()
	cfg.Viewer.PopupCheckDelay = time.Millisecond
	cfg.Viewer.InitialSearchDelay = time.Millisecond

	app, err := shell.New(cfg, shell.WithSessions(cart.NewFixedGenerator("session-1")))
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		app.Loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	srv := New(app, cfg.Server)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &fixture{app: app, server: ts, srv: srv}
}

func (f *fixture) post(t *testing.T, name, body string) (int, map[string]string) {
	t.Helper()
	resp, err := http.Post(f.server.URL+"/bus/"+name, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (f *fixture) cart(t *testing.T) map[string]any {
	t.Helper()
	resp, err := http.Get(f.server.URL + "/cart")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestPublish_RejectsUnacceptedName(t *testing.T) {
	f := newFixture(t)

	status, body := f.post(t, "pagesinit", `{}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "pagesinit")
}

func TestPublish_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	status, body := f.post(t, "showcart", `{"sku":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "invalid JSON payload")
}

func TestPublish_EmptyBody(t *testing.T) {
	f := newFixture(t)

	status, body := f.post(t, "showcart", "")
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "showcart", body["name"])
}

func TestPublish_AddToCartNeedsCurrentProduct(t *testing.T) {
	f := newFixture(t)

	status, _ := f.post(t, "addtocart", `{"sku":"A1"}`)
	assert.Equal(t, http.StatusConflict, status)
}

func TestCart_EmptySnapshot(t *testing.T) {
	f := newFixture(t)

	snap := f.cart(t)
	assert.Equal(t, []any{}, snap["items"])
	assert.Equal(t, "0.00", snap["total"])
}

func TestProductDetailsThenAddToCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, _ := f.post(t, "productdetails", `{"sku":"A1"}`)
	require.Equal(t, http.StatusAccepted, status)
	require.NoError(t, f.app.Loop.Do(ctx, func() { f.app.SetDocument(nil, "catalog.pdf") }))

	require.Eventually(t, func() bool {
		var loaded bool
		f.app.Loop.Do(ctx, func() { loaded = f.app.ProductPopup.Product() != nil })
		return loaded
	}, 5*time.Second, 10*time.Millisecond)

	status, _ = f.post(t, "addtocart", `{"sku":"A1"}`)
	require.Equal(t, http.StatusAccepted, status)

	snap := f.cart(t)
	assert.Equal(t, "10.00", snap["total"])
	items, ok := snap["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "A1", item["sku"])
	assert.Equal(t, float64(1), item["count"])
}

func TestEventsStream(t *testing.T) {
	f := newFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.srv.Hub().Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	status, _ := f.post(t, "pagechange", `{"pageNumber":2}`)
	require.Equal(t, http.StatusAccepted, status)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pagechange", msg.Type)
	assert.Equal(t, shell.ViewerContainerID, msg.Target)
	assert.Equal(t, map[string]any{"pageNumber": float64(2)}, msg.Detail)

	conn.Close()
	assert.Eventually(t, func() bool { return f.srv.Hub().Subscribers() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	s := &Server{cfg: config.ServerConfig{AllowedOrigins: []string{"http://viewer.test"}}}

	req := httptest.NewRequest(http.MethodGet, "/ws/events", nil)
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "http://viewer.test")
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "http://evil.test")
	assert.False(t, s.checkOrigin(req))

	s.cfg.AllowedOrigins = []string{"*"}
	assert.True(t, s.checkOrigin(req))
}

func TestHub(t *testing.T) {
	h := NewHub()
	msgs, cancel := h.Subscribe()
	assert.Equal(t, 1, h.Subscribers())

	doc := host.NewDocument()
	h.Observe(host.Event{Type: "open", Target: doc.Window(), Detail: map[string]any{"url": "u", "bad": make(chan int)}})

	msg := <-msgs
	assert.Equal(t, "open", msg.Type)
	assert.Equal(t, host.WindowID, msg.Target)
	assert.Equal(t, "u", msg.Detail["url"])
	assert.IsType(t, "", msg.Detail["bad"])

	for range clientBuffer + 5 {
		h.Observe(host.Event{Type: "pagechange"})
	}
	assert.Len(t, msgs, clientBuffer)

	cancel()
	cancel()
	assert.Equal(t, 0, h.Subscribers())
}
