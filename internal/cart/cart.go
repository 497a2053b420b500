package cart

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/catalogview/internal/catalog"
	"github.com/roach88/catalogview/internal/host"
	"github.com/roach88/catalogview/internal/loop"
)

// InitialCount is the quantity of a newly inserted item.
const InitialCount = 1

// Element ids of the cart view.
const (
	ProductsID = "cartProducts"
	TotalID    = "cartTotal"
	CheckoutID = "cartCheckout"
)

// detailsPreview is the number of description characters shown per item.
const detailsPreview = 200

// DefaultPopupCheckDelay is how long checkout waits before checking
// whether the redirect window was blocked.
const DefaultPopupCheckDelay = 2 * time.Second

// Item is one cart line.
type Item struct {
	catalog.Product
	Count int `json:"count" msgpack:"count"`
}

// Notifier is told whether the cart holds anything after each mutation.
type Notifier interface {
	SetCartNotification(nonEmpty bool)
}

// Config holds the collaborators of a Cart.
type Config struct {
	Loop     *loop.Loop
	Document *host.Document
	Notifier Notifier

	// Checkout collaborators. Submitter and Opener are required for
	// Checkout; Publisher is optional.
	Submitter Submitter
	Opener    Opener
	Publisher OrderPublisher
	Sessions  Generator

	ClientID        string
	CartURL         string
	PopupCheckDelay time.Duration

	// Context is passed to network calls. Defaults to context.Background.
	Context context.Context
}

// Cart is the shopping cart aggregate.
//
// INVARIANTS:
//   - a SKU is in items iff it is in order
//   - every count is >= 1
type Cart struct {
	cfg   Config
	items map[string]*Item
	order []string

	products   *host.Node
	total      *host.Node
	countNodes map[string]*host.Node
}

// New creates an empty cart bound to the cart view elements.
func New(cfg Config) *Cart {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Sessions == nil {
		cfg.Sessions = UUIDv7Generator{}
	}
	if cfg.PopupCheckDelay <= 0 {
		cfg.PopupCheckDelay = DefaultPopupCheckDelay
	}

	c := &Cart{
		cfg:        cfg,
		items:      make(map[string]*Item),
		products:   cfg.Document.Element(ProductsID),
		total:      cfg.Document.Element(TotalID),
		countNodes: make(map[string]*host.Node),
	}
	cfg.Document.Element(CheckoutID).AddEventListener("click", func(host.Event) { c.Checkout() })
	c.updateTotal()
	return c
}

// Key normalizes a SKU into its cart key.
func Key(sku string) string {
	return norm.NFC.String(strings.TrimSpace(sku))
}

// AddProduct merges p into the cart. A known SKU has its count
// incremented; a new one is appended with InitialCount. A nil product only
// re-renders.
func (c *Cart) AddProduct(p *catalog.Product) {
	if p != nil {
		c.merge(p)
	}
	c.refresh()
}

func (c *Cart) merge(p *catalog.Product) {
	key := Key(p.SKU)
	if key == "" {
		slog.Warn("cart ignored product without sku")
		return
	}
	if item, ok := c.items[key]; ok {
		item.Count++
		return
	}
	item := &Item{Product: *p, Count: InitialCount}
	item.SKU = key
	c.items[key] = item
	c.order = append(c.order, key)
}

// RemoveProduct deletes sku from the cart. An unknown SKU only re-renders.
func (c *Cart) RemoveProduct(sku string) {
	key := Key(sku)
	if _, ok := c.items[key]; ok {
		delete(c.items, key)
		c.order = slices.DeleteFunc(c.order, func(k string) bool { return k == key })
	}
	c.refresh()
}

// SetCount sets the quantity of sku. Values below 1 clamp to 1.
func (c *Cart) SetCount(sku string, n int) {
	key := Key(sku)
	item, ok := c.items[key]
	if !ok {
		return
	}
	item.Count = max(n, 1)
	if node := c.countNodes[key]; node != nil {
		node.SetAttribute("value", strconv.Itoa(item.Count))
	}
	c.updateTotal()
}

// Reset empties the cart and its view.
func (c *Cart) Reset() {
	clear(c.items)
	c.order = nil
	c.refresh()
}

// Items returns copies of the cart lines, newest first.
func (c *Cart) Items() []Item {
	out := make([]Item, 0, len(c.order))
	for i := len(c.order) - 1; i >= 0; i-- {
		out = append(out, *c.items[c.order[i]])
	}
	return out
}

// Count returns the quantity of sku, or 0.
func (c *Cart) Count(sku string) int {
	if item, ok := c.items[Key(sku)]; ok {
		return item.Count
	}
	return 0
}

// Len returns the number of distinct SKUs.
func (c *Cart) Len() int {
	return len(c.order)
}

// Total returns Σ price×count with two fraction digits. Items without a
// parsable price contribute nothing.
func (c *Cart) Total() string {
	sum := apd.New(0, 0)
	for _, key := range c.order {
		item := c.items[key]
		if item.Price == "" {
			continue
		}
		price, err := catalog.ParsePrice(item.Price)
		if err != nil {
			slog.Debug("cart item price ignored", "sku", key, "error", err)
			continue
		}
		line, err := catalog.LineTotal(price, item.Count)
		if err == nil {
			err = catalog.AddTo(sum, line)
		}
		if err != nil {
			slog.Warn("cart total overflow", "sku", key, "error", err)
		}
	}

	out, err := catalog.FormatPrice(sum)
	if err != nil {
		slog.Warn("cart total unformattable", "error", err)
		return "0.00"
	}
	return out
}

// FormattedTotal returns the total as displayed: "$ " and two digits.
func (c *Cart) FormattedTotal() string {
	return "$ " + c.Total()
}

func (c *Cart) refresh() {
	if c.cfg.Notifier != nil {
		c.cfg.Notifier.SetCartNotification(len(c.order) > 0)
	}
	c.render()
	c.updateTotal()
}

func (c *Cart) updateTotal() {
	c.total.SetTextContent(c.FormattedTotal())
}

func (c *Cart) render() {
	c.products.Clear()
	clear(c.countNodes)
	for i := len(c.order) - 1; i >= 0; i-- {
		c.products.AppendChild(c.renderItem(c.items[c.order[i]]))
	}
}

func (c *Cart) renderItem(item *Item) *host.Node {
	doc := c.cfg.Document
	key := item.SKU

	el := func(tag, class string) *host.Node {
		n := doc.CreateElement(tag)
		n.AddClass(class)
		return n
	}

	sku := el("div", "title")
	sku.SetTextContent(item.SKU)
	sku.SetAttribute("title", item.SKU)

	img := el("img", "image")
	img.SetAttribute("src", item.Image)

	details := el("p", "product_details")
	details.SetTextContent(preview(item.Description) + " ...")

	count := el("input", "count")
	count.SetAttribute("type", "number")
	count.SetAttribute("min", "1")
	count.SetAttribute("value", strconv.Itoa(item.Count))
	count.AddEventListener("input", func(ev host.Event) {
		n, err := strconv.Atoi(strings.TrimSpace(detailString(ev, "value")))
		if err != nil {
			n = 1
		}
		c.SetCount(key, n)
	})
	c.countNodes[key] = count

	price := el("div", "price")
	price.SetTextContent("$ " + item.Price)

	remove := el("div", "remove")
	remove.AddEventListener("click", func(host.Event) { c.RemoveProduct(key) })

	extra := el("div", "item_extra")
	extra.AppendChild(count)
	extra.AppendChild(price)
	extra.AppendChild(remove)

	container := el("div", "product_item")
	container.SetAttribute("data-sku", key)
	container.AppendChild(sku)
	container.AppendChild(img)
	container.AppendChild(details)
	container.AppendChild(extra)
	container.AppendChild(doc.CreateElement("hr"))
	return container
}

// preview returns at most detailsPreview characters of s.
func preview(s string) string {
	if utf8.RuneCountInString(s) <= detailsPreview {
		return s
	}
	return string([]rune(s)[:detailsPreview])
}

func detailString(ev host.Event, key string) string {
	s, _ := ev.Detail[key].(string)
	return s
}
