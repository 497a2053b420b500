package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/catalogview/internal/catalog"
	"github.com/roach88/catalogview/internal/testutil"
)

// Scenario defines an end-to-end session scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// SessionID is the checkout session id. Defaults to DefaultSessionID.
	SessionID string `yaml:"session_id,omitempty"`

	// Config overrides the session configuration. It is decoded over the
	// defaults, so only the keys present change.
	Config yaml.Node `yaml:"config,omitempty"`

	// Metadata is returned by the document's metadata request.
	Metadata map[string]string `yaml:"metadata,omitempty"`

	// Catalog is the fake shop.
	Catalog Catalog `yaml:"catalog,omitempty"`

	// Steps drive the session in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final session state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Catalog describes what the fake shop serves.
type Catalog struct {
	Products []catalog.Product         `yaml:"products,omitempty"`
	Checkout testutil.CheckoutResponse `yaml:"checkout,omitempty"`

	// ImageWidth and ImageHeight size every product image. Zero keeps the
	// server defaults.
	ImageWidth  int `yaml:"image_width,omitempty"`
	ImageHeight int `yaml:"image_height,omitempty"`
}

// Step is one interaction. Exactly one of its action fields is set.
type Step struct {
	Document string         `yaml:"document,omitempty"`
	Publish  string         `yaml:"publish,omitempty"`
	Payload  map[string]any `yaml:"payload,omitempty"`
	Click    string         `yaml:"click,omitempty"`
	Key      string         `yaml:"key,omitempty"`
	SetCount *SetCount      `yaml:"set_count,omitempty"`
	Remove   string         `yaml:"remove,omitempty"`
	Checkout bool           `yaml:"checkout,omitempty"`
	Reset    bool           `yaml:"reset,omitempty"`
}

// SetCount types a count into a cart item.
type SetCount struct {
	SKU   string `yaml:"sku"`
	Count int    `yaml:"count"`
}

// Step kinds.
const (
	StepDocument = "document"
	StepPublish  = "publish"
	StepClick    = "click"
	StepKey      = "key"
	StepSetCount = "set_count"
	StepRemove   = "remove"
	StepCheckout = "checkout"
	StepReset    = "reset"
)

// Kind returns the step's action, or "" when none or several are set.
func (s Step) Kind() string {
	var kinds []string
	if s.Document != "" {
		kinds = append(kinds, StepDocument)
	}
	if s.Publish != "" {
		kinds = append(kinds, StepPublish)
	}
	if s.Click != "" {
		kinds = append(kinds, StepClick)
	}
	if s.Key != "" {
		kinds = append(kinds, StepKey)
	}
	if s.SetCount != nil {
		kinds = append(kinds, StepSetCount)
	}
	if s.Remove != "" {
		kinds = append(kinds, StepRemove)
	}
	if s.Checkout {
		kinds = append(kinds, StepCheckout)
	}
	if s.Reset {
		kinds = append(kinds, StepReset)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Assertion validates session state or the trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// SKU selects a cart item (cart_count).
	SKU string `yaml:"sku,omitempty"`

	// Count is the expected number (cart_count, cart_len, trace_count,
	// checkout_submitted). For host_event, zero means at least one.
	Count int `yaml:"count,omitempty"`

	// Value is the expected string (cart_total, node_text, node_attr).
	Value string `yaml:"value,omitempty"`

	// Overlay is the expected active overlay; empty means none.
	Overlay string `yaml:"overlay,omitempty"`

	// Node is an element id (node_text, node_class, node_attr).
	Node string `yaml:"node,omitempty"`

	// Class is the class checked by node_class.
	Class string `yaml:"class,omitempty"`

	// Attr is the attribute checked by node_attr.
	Attr string `yaml:"attr,omitempty"`

	// Not inverts node_class, and makes host_event expect no match.
	Not bool `yaml:"not,omitempty"`

	// Event, Target and Detail select host events (host_event). Target is
	// an element id; empty matches any target. Detail is a subset match.
	Event  string         `yaml:"event,omitempty"`
	Target string         `yaml:"target,omitempty"`
	Detail map[string]any `yaml:"detail,omitempty"`

	// Name is a bus event name (trace_count).
	Name string `yaml:"name,omitempty"`

	// Names is the expected bus event order (trace_order).
	Names []string `yaml:"names,omitempty"`

	// Contains lists substrings of the last submitted cart contents
	// (checkout_submitted).
	Contains []string `yaml:"contains,omitempty"`

	// Fields are exact values of the last submitted form
	// (checkout_submitted).
	Fields map[string]string `yaml:"fields,omitempty"`
}

// Assertion type constants.
const (
	AssertCartCount         = "cart_count"
	AssertCartLen           = "cart_len"
	AssertCartTotal         = "cart_total"
	AssertOverlayActive     = "overlay_active"
	AssertNodeText          = "node_text"
	AssertNodeClass         = "node_class"
	AssertNodeAttr          = "node_attr"
	AssertHostEvent         = "host_event"
	AssertTraceOrder        = "trace_order"
	AssertTraceCount        = "trace_count"
	AssertCheckoutSubmitted = "checkout_submitted"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields so "assertion:" vs "assertions:" typos fail loudly
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Config.Kind != 0 && s.Config.Kind != yaml.MappingNode {
		return fmt.Errorf("config must be a mapping")
	}

	for i, p := range s.Catalog.Products {
		if p.SKU == "" {
			return fmt.Errorf("catalog.products[%d]: sku is required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(step, i); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, i); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(s Step, index int) error {
	switch s.Kind() {
	case "":
		return fmt.Errorf("steps[%d]: exactly one action is required", index)
	case StepSetCount:
		if s.SetCount.SKU == "" {
			return fmt.Errorf("steps[%d]: sku is required for set_count", index)
		}
	}
	if s.Payload != nil && s.Kind() != StepPublish {
		return fmt.Errorf("steps[%d]: payload is only valid with publish", index)
	}
	return nil
}

// validateAssertion checks that an assertion has the fields its type needs.
func validateAssertion(a Assertion, index int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	switch a.Type {
	case AssertCartCount:
		if a.SKU == "" {
			return fmt.Errorf("assertions[%d]: sku is required for cart_count", index)
		}
	case AssertCartLen, AssertCartTotal, AssertOverlayActive, AssertCheckoutSubmitted:
	case AssertNodeText:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for node_text", index)
		}
	case AssertNodeClass:
		if a.Node == "" || a.Class == "" {
			return fmt.Errorf("assertions[%d]: node and class are required for node_class", index)
		}
	case AssertNodeAttr:
		if a.Node == "" || a.Attr == "" {
			return fmt.Errorf("assertions[%d]: node and attr are required for node_attr", index)
		}
	case AssertHostEvent:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for host_event", index)
		}
	case AssertTraceOrder:
		if len(a.Names) == 0 {
			return fmt.Errorf("assertions[%d]: names list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
