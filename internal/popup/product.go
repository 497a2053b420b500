package popup

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/roach88/catalogview/internal/bus"
	"github.com/roach88/catalogview/internal/catalog"
	"github.com/roach88/catalogview/internal/host"
	"github.com/roach88/catalogview/internal/loop"
	"github.com/roach88/catalogview/internal/overlay"
)

// Element ids of the product popup.
const (
	ProductOverlay      = "productPopupOverlay"
	ProductSpinnerID    = "spinnerPopup"
	ProductBodyID       = "productPopup"
	ProductErrorID      = "errorPopup"
	ProductCloseID      = "productPopupClose"
	ProductErrorCloseID = "popupErrorClose"
	ProductAddToCartID  = "productAddToCart"
	ProductShowCartID   = "productShowCart"
	ProductImageFieldID = "productImageField"
)

// DefaultPlaceholder is shown when a product image cannot be loaded.
const DefaultPlaceholder = "images/noimage.png"

// productFieldIDs maps each text field to its element id, in fill order.
var productFieldIDs = []struct {
	field catalog.Field
	id    string
}{
	{catalog.FieldSKU, "productSkuField"},
	{catalog.FieldDescription, "productDescriptionField"},
	{catalog.FieldPrice, "productPriceField"},
	{catalog.FieldAvailable, "productAvailableField"},
	{catalog.FieldName, "productNameField"},
	{catalog.FieldWeight, "productWeightField"},
	{catalog.FieldUnit, "productUnitField"},
}

// Fetcher looks up a product. *catalog.Lookup implements it.
type Fetcher interface {
	Fetch(ctx context.Context, sku, urlTemplate string) (*catalog.Product, error)
}

// ProductConfig holds the collaborators of a ProductPopup.
type ProductConfig struct {
	Loop     *loop.Loop
	Bus      *bus.Bus
	Overlays *overlay.Manager
	Document *host.Document
	Lookup   Fetcher
	Images   catalog.ImageLoader

	// MaxImageHeight bounds the displayed image height in pixels. Zero
	// leaves images at their native size.
	MaxImageHeight float64

	// Placeholder is the image shown when the product image fails to load.
	Placeholder string

	// Context is passed to network calls. Defaults to context.Background.
	Context context.Context
}

// ProductPopup shows the details of one product.
type ProductPopup struct {
	cfg           ProductConfig
	dataAvailable *loop.Latch
	product       *catalog.Product

	spinner *host.Node
	body    *host.Node
	errBody *host.Node
	image   *host.Node
	fields  map[catalog.Field]*host.Node
}

type fetchResult struct {
	product *catalog.Product
	err     error
}

// NewProductPopup registers the product overlay and binds the popup's
// buttons. It fails if the overlay name is already registered.
func NewProductPopup(cfg ProductConfig) (*ProductPopup, error) {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = DefaultPlaceholder
	}

	doc := cfg.Document
	p := &ProductPopup{
		cfg:           cfg,
		dataAvailable: loop.NewLatch(),
		spinner:       doc.Element(ProductSpinnerID),
		body:          doc.Element(ProductBodyID),
		errBody:       doc.Element(ProductErrorID),
		image:         doc.Element(ProductImageFieldID),
		fields:        make(map[catalog.Field]*host.Node, len(productFieldIDs)),
	}
	for _, f := range productFieldIDs {
		p.fields[f.field] = doc.Element(f.id)
	}

	if err := cfg.Overlays.Register(ProductOverlay, doc.Element(ProductOverlay), p.reset); err != nil {
		return nil, fmt.Errorf("register product popup: %w", err)
	}
	p.reset()

	doc.Element(ProductAddToCartID).AddEventListener("click", func(host.Event) { p.AddToCart() })
	doc.Element(ProductShowCartID).AddEventListener("click", func(host.Event) { p.ShowCart() })
	doc.Element(ProductCloseID).AddEventListener("click", func(host.Event) { p.Close() })
	doc.Element(ProductErrorCloseID).AddEventListener("click", func(host.Event) { p.Close() })

	return p, nil
}

// SetDocument marks the document as available. Only the first call has an
// effect.
func (p *ProductPopup) SetDocument(_ Document, _ string) {
	p.dataAvailable.Set()
}

// Product returns the product currently shown, or nil.
func (p *ProductPopup) Product() *catalog.Product {
	return p.product
}

// Open shows the popup and looks up sku using urlTemplate once the
// document is available.
func (p *ProductPopup) Open(sku, urlTemplate string) {
	if name, active := p.cfg.Overlays.Active(); active {
		p.cfg.Overlays.Close(name)
		if name != ProductOverlay {
			p.reset()
		}
	}

	opened, err := p.cfg.Overlays.Open(ProductOverlay)
	if err != nil {
		slog.Error("product popup open failed", "error", err)
		return
	}

	p.cfg.Loop.Join(func() {
		p.fetch(sku, urlTemplate)
	}, opened, p.dataAvailable)
}

// Close hides the popup and resets its view.
func (p *ProductPopup) Close() {
	if !p.cfg.Overlays.Close(ProductOverlay) {
		p.reset()
	}
}

// AddToCart reveals the cart and adds the current product to it. Does
// nothing while no product is shown.
func (p *ProductPopup) AddToCart() {
	if p.product == nil {
		return
	}
	p.cfg.Bus.Dispatch(bus.ShowCart, bus.Payload{bus.KeySource: p})
	p.cfg.Bus.Dispatch(bus.AddToCart, bus.Payload{bus.KeySource: p, bus.KeyProduct: p.product})
}

// ShowCart reveals the cart and closes the popup.
func (p *ProductPopup) ShowCart() {
	p.cfg.Bus.Dispatch(bus.ShowCart, bus.Payload{bus.KeySource: p})
	p.Close()
}

func (p *ProductPopup) reset() {
	p.spinner.RemoveClass(host.HiddenClass)
	p.body.AddClass(host.HiddenClass)
	p.errBody.AddClass(host.HiddenClass)
	p.product = nil
}

func (p *ProductPopup) fetch(sku, urlTemplate string) {
	loop.Await(p.cfg.Loop, func() (res fetchResult) {
		defer func() {
			if r := recover(); r != nil {
				res = fetchResult{err: &catalog.Error{Code: catalog.ErrCodeTransport, SKU: sku, Err: fmt.Errorf("lookup panicked: %v", r)}}
			}
		}()
		product, err := p.cfg.Lookup.Fetch(p.cfg.Context, sku, urlTemplate)
		return fetchResult{product: product, err: err}
	}, p.apply)
}

func (p *ProductPopup) apply(res fetchResult) {
	switch catalog.Classify(res.err) {
	case catalog.OutcomeFound:
		p.product = res.product
		for _, f := range productFieldIDs {
			UpdateField(p.fields[f.field], KindText, res.product.Get(f.field))
		}
		p.loadImage(res.product.Image)

	case catalog.OutcomeNotFound:
		slog.Info("product not found", "error", res.err)
		p.showError()

	default:
		slog.Warn("product lookup failed", "error", res.err)
		p.showError()
	}
}

func (p *ProductPopup) loadImage(url string) {
	loop.Await(p.cfg.Loop, func() (res fetchImage) {
		defer func() {
			if r := recover(); r != nil {
				res = fetchImage{err: &catalog.Error{Code: catalog.ErrCodeImageLoad, URL: url, Err: fmt.Errorf("image load panicked: %v", r)}}
			}
		}()
		if p.cfg.Images == nil {
			return fetchImage{err: &catalog.Error{Code: catalog.ErrCodeImageLoad, URL: url}}
		}
		dim, err := p.cfg.Images.Load(p.cfg.Context, url)
		return fetchImage{dim: dim, err: err}
	}, func(res fetchImage) {
		if res.err != nil {
			slog.Debug("product image unavailable", "url", url, "error", res.err)
			p.image.SetAttribute("src", p.cfg.Placeholder)
		} else {
			maxHeight := p.cfg.MaxImageHeight
			if maxHeight <= 0 {
				maxHeight = float64(res.dim.Height)
			}
			size := catalog.FitToHeight(res.dim, maxHeight)
			p.image.SetAttribute("src", url)
			p.image.SetAttribute("width", formatPixels(size.Width))
			p.image.SetAttribute("height", formatPixels(size.Height))
		}
		p.showBody()
	})
}

type fetchImage struct {
	dim catalog.Dimensions
	err error
}

func (p *ProductPopup) showBody() {
	p.spinner.AddClass(host.HiddenClass)
	p.errBody.AddClass(host.HiddenClass)
	p.body.RemoveClass(host.HiddenClass)
}

func (p *ProductPopup) showError() {
	p.spinner.AddClass(host.HiddenClass)
	p.body.AddClass(host.HiddenClass)
	p.errBody.RemoveClass(host.HiddenClass)
}

func formatPixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
