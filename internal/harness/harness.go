package harness

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"sync"
	"time"

	"github.com/roach88/catalogview/internal/bus"
	"github.com/roach88/catalogview/internal/cart"
	"github.com/roach88/catalogview/internal/config"
	"github.com/roach88/catalogview/internal/host"
	"github.com/roach88/catalogview/internal/shell"
	"github.com/roach88/catalogview/internal/testutil"
)

// DefaultSessionID is the checkout session id when a scenario sets none.
const DefaultSessionID = "session-1"

// StepTimeout bounds how long the loop may take to go idle after a step.
const StepTimeout = 10 * time.Second

// scenarioDelay replaces the viewer's timers so scenarios run quickly.
const scenarioDelay = time.Millisecond

// Harness is the scenario execution engine: one session, its fake shop and
// the host events it dispatched.
type Harness struct {
	app    *shell.App
	server *testutil.CatalogServer
	meta   metadataDocument

	mu     sync.Mutex
	events []HostEvent
}

// metadataDocument is the document handed to SetDocument.
type metadataDocument map[string]string

func (d metadataDocument) Metadata(context.Context) (map[string]string, error) {
	return maps.Clone(d), nil
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh session and shop for isolation. Step and
// assertion failures are reported in the result; an error is returned
// only when the session cannot be built.
//
// Execution flow:
// 1. Start the fake shop and serve the scenario catalog
// 2. Build the session configuration and the session
// 3. Run each step as a loop task, then run the loop until idle
// 4. Collect the journal trace and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	server := testutil.NewCatalogServer()
	defer server.Close()

	for _, p := range scenario.Catalog.Products {
		server.AddProduct(p)
	}
	server.SetCheckoutResponse(scenario.Catalog.Checkout)
	if scenario.Catalog.ImageWidth > 0 && scenario.Catalog.ImageHeight > 0 {
		server.SetImageSize(scenario.Catalog.ImageWidth, scenario.Catalog.ImageHeight)
	}

	cfg, err := scenarioConfig(scenario, server)
	if err != nil {
		return nil, err
	}

	sessionID := scenario.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	ctx := context.Background()
	app, err := shell.New(cfg,
		shell.WithContext(ctx),
		shell.WithSessions(cart.NewFixedGenerator(sessionID)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build session: %w", err)
	}
	defer app.Close()

	h := &Harness{
		app:    app,
		server: server,
		meta:   metadataDocument(scenario.Metadata),
	}
	app.Document.Observe(h.record)

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.runStep(ctx, step); err != nil {
			result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, step.Kind(), err))
		}
	}

	trace, err := app.Journal.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	result.Trace = trace
	result.HostEvents = h.hostEvents()

	// The loop is idle, so assertions read the session directly.
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h) {
		result.AddError(msg)
	}

	return result, nil
}

// scenarioConfig layers the scenario overrides on the defaults, with the
// shop endpoints pointing at server.
func scenarioConfig(scenario *Scenario, server *testutil.CatalogServer) (*config.Config, error) {
	cfg := config.Default()
	cfg.Viewer.InitialSearchDelay = scenarioDelay
	cfg.Viewer.PopupCheckDelay = scenarioDelay
	cfg.Shop.ProductLookup = server.LookupTemplate()
	cfg.Checkout.ProxyURL = server.CheckoutURL()

	if scenario.Config.Kind != 0 {
		if err := scenario.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply config overrides: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario config: %w", err)
	}
	return cfg, nil
}

// runStep executes step as a loop task and waits for the loop to go idle.
func (h *Harness) runStep(ctx context.Context, step Step) error {
	var stepErr error
	h.app.Loop.Post(func() {
		stepErr = h.execute(step)
	})

	ctx, cancel := context.WithTimeout(ctx, StepTimeout)
	defer cancel()
	if err := h.app.Loop.RunUntilIdle(ctx); err != nil {
		return errors.Join(stepErr, fmt.Errorf("loop did not go idle: %w", err))
	}
	return stepErr
}

func (h *Harness) execute(step Step) error {
	doc := h.app.Document

	switch step.Kind() {
	case StepDocument:
		h.app.SetDocument(h.meta, step.Document)

	case StepPublish:
		if shell.Accepts(step.Publish) {
			return h.app.Publish(step.Publish, step.Payload)
		}
		payload := bus.Payload{bus.KeySource: h.app.Viewer}
		maps.Copy(payload, step.Payload)
		h.app.Bus.Dispatch(step.Publish, payload)

	case StepClick:
		node := doc.GetElementByID(step.Click)
		if node == nil {
			return fmt.Errorf("no element %q", step.Click)
		}
		node.Click()

	case StepKey:
		doc.Window().DispatchEvent(host.Event{
			Type:   shell.KeyDownEvent,
			Detail: map[string]any{"key": step.Key},
		})

	case StepSetCount:
		input := h.cartControl(step.SetCount.SKU, "count")
		if input == nil {
			return fmt.Errorf("no cart item %q", step.SetCount.SKU)
		}
		input.DispatchEvent(host.Event{
			Type:   "input",
			Detail: map[string]any{"value": strconv.Itoa(step.SetCount.Count)},
		})

	case StepRemove:
		remove := h.cartControl(step.Remove, "remove")
		if remove == nil {
			return fmt.Errorf("no cart item %q", step.Remove)
		}
		remove.Click()

	case StepCheckout:
		doc.Element(cart.CheckoutID).Click()

	case StepReset:
		h.app.Cart.Reset()

	default:
		return fmt.Errorf("unknown step")
	}
	return nil
}

// cartControl finds the node with class in the rendered cart item for sku.
func (h *Harness) cartControl(sku, class string) *host.Node {
	key := cart.Key(sku)
	for _, item := range h.app.Document.Element(cart.ProductsID).Children() {
		if v, _ := item.Attribute("data-sku"); v != key {
			continue
		}
		return findByClass(item, class)
	}
	return nil
}

func findByClass(n *host.Node, class string) *host.Node {
	if n.HasClass(class) {
		return n
	}
	for _, c := range n.Children() {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func (h *Harness) record(ev host.Event) {
	var target string
	if ev.Target != nil {
		target = ev.Target.ID()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, HostEvent{
		Type:   ev.Type,
		Target: target,
		Detail: maps.Clone(ev.Detail),
	})
}

func (h *Harness) hostEvents() []HostEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HostEvent(nil), h.events...)
}

// Session reads, used by assertions.

func (h *Harness) CartCount(sku string) int { return h.app.Cart.Count(sku) }

func (h *Harness) CartLen() int { return h.app.Cart.Len() }

func (h *Harness) CartTotal() string { return h.app.Cart.Total() }

func (h *Harness) ActiveOverlay() (string, bool) { return h.app.Overlays.Active() }

func (h *Harness) Element(id string) *host.Node { return h.app.Document.GetElementByID(id) }

func (h *Harness) Submissions() []map[string][]string {
	subs := h.server.Submissions()
	out := make([]map[string][]string, len(subs))
	for i, s := range subs {
		out[i] = s
	}
	return out
}
