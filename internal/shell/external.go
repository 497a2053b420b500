package shell

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/catalogview/internal/bus"
	"github.com/roach88/catalogview/internal/cart"
)

// ExternalNames are the bus names an outside observer may publish.
var ExternalNames = []string{
	bus.ProductDetails,
	bus.AddToCart,
	bus.ShowCart,
	bus.PageChange,
	bus.Find,
	bus.ScaleChange,
	bus.UpdateViewArea,
}

var (
	// ErrNameNotAccepted is returned for a bus name outside ExternalNames.
	ErrNameNotAccepted = errors.New("bus name not accepted")

	// ErrNoCurrentProduct is returned when addtocart names a sku that is
	// not the product shown in the product popup.
	ErrNoCurrentProduct = errors.New("sku is not the current product")
)

// Accepts reports whether name may be published from outside the session.
func Accepts(name string) bool {
	return slices.Contains(ExternalNames, name)
}

// Publish dispatches an externally supplied event on the bus. Must run on
// the loop.
//
// The event is published on behalf of the viewer container; a supplied
// source is ignored. addtocart carries a sku rather than a product: it
// resolves only to the product currently shown in the product popup.
func (a *App) Publish(name string, payload map[string]any) error {
	if !Accepts(name) {
		return fmt.Errorf("%w: %q", ErrNameNotAccepted, name)
	}

	p := bus.Payload{bus.KeySource: a.Viewer}
	for k, v := range payload {
		if k == bus.KeySource || k == bus.KeyProduct {
			continue
		}
		p[k] = v
	}

	if name == bus.AddToCart {
		sku := p.String(bus.KeySKU)
		current := a.ProductPopup.Product()
		if current == nil || cart.Key(current.SKU) != cart.Key(sku) {
			return fmt.Errorf("%w: %q", ErrNoCurrentProduct, sku)
		}
		cp := *current
		p = bus.Payload{bus.KeySource: a.Viewer, bus.KeyProduct: &cp}
	}

	a.Bus.Dispatch(name, p)
	return nil
}
