package cart

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/catalogview/internal/catalog"
	"github.com/roach88/catalogview/internal/host"
	"github.com/roach88/catalogview/internal/loop"
)

type recordingNotifier struct {
	calls []bool
}

func (n *recordingNotifier) SetCartNotification(nonEmpty bool) {
	n.calls = append(n.calls, nonEmpty)
}

func newTestCart(t *testing.T, cfg Config) (*Cart, *host.Document, *loop.Loop) {
	t.Helper()
	if cfg.Loop == nil {
		cfg.Loop = loop.New()
	}
	if cfg.Document == nil {
		cfg.Document = host.NewDocument()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = NewFixedGenerator("session-1")
	}
	if cfg.PopupCheckDelay == 0 {
		cfg.PopupCheckDelay = time.Millisecond
	}
	return New(cfg), cfg.Document, cfg.Loop
}

func runIdle(t *testing.T, l *loop.Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.RunUntilIdle(ctx))
}

func product(sku, price string) *catalog.Product {
	return &catalog.Product{SKU: sku, Name: "Item " + sku, Price: price, Image: "http://img/" + sku + ".png"}
}

func TestCart_AddProductMerges(t *testing.T) {
	notifier := &recordingNotifier{}
	c, doc, _ := newTestCart(t, Config{Notifier: notifier})

	c.AddProduct(product("A1", "10.00"))
	c.AddProduct(product("B2", "5.50"))
	c.AddProduct(product("A1", "10.00"))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Count("A1"))
	assert.Equal(t, 1, c.Count("B2"))
	assert.Equal(t, 0, c.Count("nope"))
	assert.Equal(t, "25.50", c.Total())
	assert.Equal(t, "$ 25.50", c.FormattedTotal())
	assert.Equal(t, "$ 25.50", doc.Element(TotalID).TextContent())
	assert.Equal(t, []bool{true, true, true}, notifier.calls)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "B2", items[0].SKU)
	assert.Equal(t, "A1", items[1].SKU)

	rendered := doc.Element(ProductsID).Children()
	require.Len(t, rendered, 2)
	first, _ := rendered[0].Attribute("data-sku")
	assert.Equal(t, "B2", first)
}

func TestCart_NilProductOnlyRenders(t *testing.T) {
	notifier := &recordingNotifier{}
	c, _, _ := newTestCart(t, Config{Notifier: notifier})

	c.AddProduct(nil)
	c.AddProduct(&catalog.Product{SKU: "  "})

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, []bool{false, false}, notifier.calls)
	assert.Equal(t, "$ 0.00", c.FormattedTotal())
}

func TestCart_KeyNormalization(t *testing.T) {
	c, _, _ := newTestCart(t, Config{})

	c.AddProduct(product("caf\u00e9", "1.00"))
	c.AddProduct(product(" cafe\u0301 ", "1.00"))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Count("caf\u00e9"))
}

func TestCart_RemoveProduct(t *testing.T) {
	notifier := &recordingNotifier{}
	c, doc, _ := newTestCart(t, Config{Notifier: notifier})

	c.AddProduct(product("A1", "10.00"))
	c.AddProduct(product("B2", "5.50"))

	c.RemoveProduct("missing")
	assert.Equal(t, 2, c.Len())

	c.RemoveProduct("A1")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.Count("A1"))
	assert.Equal(t, "$ 5.50", doc.Element(TotalID).TextContent())

	// The remove control of the remaining item.
	item := doc.Element(ProductsID).Children()[0]
	extra := item.Children()[3]
	extra.Children()[2].Click()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, doc.Element(ProductsID).Children())
	assert.Equal(t, "$ 0.00", doc.Element(TotalID).TextContent())
	assert.Equal(t, []bool{true, true, true, true, false}, notifier.calls)
}

func TestCart_CountInput(t *testing.T) {
	c, doc, _ := newTestCart(t, Config{})
	c.AddProduct(product("A1", "2.25"))

	count := doc.Element(ProductsID).Children()[0].Children()[3].Children()[0]
	require.True(t, count.HasClass("count"))

	tests := []struct {
		input string
		want  int
		total string
	}{
		{"3", 3, "$ 6.75"},
		{"0", 1, "$ 2.25"},
		{"", 1, "$ 2.25"},
		{"4", 4, "$ 9.00"},
		{"-2", 1, "$ 2.25"},
	}
	for _, tt := range tests {
		count.DispatchEvent(host.Event{Type: "input", Detail: map[string]any{"value": tt.input}})
		assert.Equal(t, tt.want, c.Count("A1"), tt.input)
		assert.Equal(t, tt.total, doc.Element(TotalID).TextContent(), tt.input)
		value, _ := count.Attribute("value")
		assert.Equal(t, c.Count("A1"), mustAtoi(t, value))
	}
}

func TestCart_RenderItem(t *testing.T) {
	c, doc, _ := newTestCart(t, Config{})

	p := product("A1", "3.50")
	p.Description = strings.Repeat("x", 250)
	c.AddProduct(p)

	item := doc.Element(ProductsID).Children()[0]
	children := item.Children()
	require.Len(t, children, 5)

	assert.Equal(t, "A1", children[0].TextContent())
	src, _ := children[1].Attribute("src")
	assert.Equal(t, "http://img/A1.png", src)
	assert.Equal(t, strings.Repeat("x", 200)+" ...", children[2].TextContent())
	assert.Equal(t, "$ 3.50", children[3].Children()[1].TextContent())
	assert.Equal(t, "hr", children[4].Tag())
}

func TestCart_Reset(t *testing.T) {
	c, doc, _ := newTestCart(t, Config{})
	c.AddProduct(product("A1", "10.00"))

	c.Reset()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Items())
	assert.Empty(t, doc.Element(ProductsID).Children())
	assert.Equal(t, "$ 0.00", doc.Element(TotalID).TextContent())
}

func TestCart_UnparsablePriceContributesNothing(t *testing.T) {
	c, _, _ := newTestCart(t, Config{})
	c.AddProduct(product("A1", "10.00"))
	c.AddProduct(product("B2", ""))

	assert.Equal(t, "10.00", c.Total())
}
