package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/catalogview/internal/host"
)

type fakeSession struct {
	counts      map[string]int
	total       string
	overlay     string
	doc         *host.Document
	submissions []map[string][]string
}

func newFakeSession() *fakeSession {
	return &fakeSession{counts: map[string]int{}, doc: host.NewDocument()}
}

func (s *fakeSession) CartCount(sku string) int { return s.counts[sku] }
func (s *fakeSession) CartLen() int             { return len(s.counts) }
func (s *fakeSession) CartTotal() string        { return s.total }
func (s *fakeSession) ActiveOverlay() (string, bool) {
	return s.overlay, s.overlay != ""
}
func (s *fakeSession) Element(id string) *host.Node       { return s.doc.GetElementByID(id) }
func (s *fakeSession) Submissions() []map[string][]string { return s.submissions }

func evaluate(t *testing.T, s Session, result *Result, a Assertion) []string {
	t.Helper()
	if result == nil {
		result = NewResult()
	}
	return EvaluateAssertions(result, []Assertion{a}, s)
}

func TestAssertCart(t *testing.T) {
	s := newFakeSession()
	s.counts["A1"] = 2
	s.total = "20.00"

	assert.Empty(t, evaluate(t, s, nil, Assertion{Type: AssertCartCount, SKU: "A1", Count: 2}))
	assert.Empty(t, evaluate(t, s, nil, Assertion{Type: AssertCartLen, Count: 1}))
	assert.Empty(t, evaluate(t, s, nil, Assertion{Type: AssertCartTotal, Value: "20.00"}))

	errs := evaluate(t, s, nil, Assertion{Type: AssertCartCount, SKU: "A1", Count: 3})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "count of A1 = 3")
	assert.Contains(t, errs[0], "Actual: 2")
}

func TestAssertOverlayActive(t *testing.T) {
	s := newFakeSession()
	assert.Empty(t, evaluate(t, s, nil, Assertion{Type: AssertOverlayActive}))
	assert.Len(t, evaluate(t, s, nil, Assertion{Type: AssertOverlayActive, Overlay: "productPopupOverlay"}), 1)

	s.overlay = "productPopupOverlay"
	assert.Empty(t, evaluate(t, s, nil, Assertion{Type: AssertOverlayActive, Overlay: "productPopupOverlay"}))
	errs := evaluate(t, s, nil, Assertion{Type: AssertOverlayActive})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "overlay productPopupOverlay active")
}

func TestAssertNode(t *testing.T) {
	s := newFakeSession()
	n := s.doc.Element("cartTotal")
	n.SetTextContent("$ 5.00")
	n.AddClass("hidden")
	n.SetAttribute("width", "480")

	assert.Empty(t, evaluate(t, s, nil, Assertion{Type: AssertNodeText, Node: "cartTotal", Value: "$ 5.00"}))
	assert.Empty(t, evaluate(t, s, nil, Assertion{Type: AssertNodeClass, Node: "cartTotal", Class: "hidden"}))
	assert.Empty(t, evaluate(t, s, nil, Assertion{Type: AssertNodeClass, Node: "cartTotal", Class: "toggled", Not: true}))
	assert.Empty(t, evaluate(t, s, nil, Assertion{Type: AssertNodeAttr, Node: "cartTotal", Attr: "width", Value: "480"}))

	assert.Len(t, evaluate(t, s, nil, Assertion{Type: AssertNodeClass, Node: "cartTotal", Class: "hidden", Not: true}), 1)
	errs := evaluate(t, s, nil, Assertion{Type: AssertNodeAttr, Node: "cartTotal", Attr: "height", Value: "1"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "attribute not set")

	errs = evaluate(t, s, nil, Assertion{Type: AssertNodeText, Node: "missing", Value: "x"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not found")
}

func TestAssertHostEvent(t *testing.T) {
	result := NewResult()
	result.HostEvents = []HostEvent{
		{Type: "pagechange", Target: "viewerContainer", Detail: map[string]any{"pageNumber": int64(3)}},
		{Type: "pagechange", Target: "viewerContainer", Detail: map[string]any{"pageNumber": 4}},
		{Type: "scalechange", Target: "window", Detail: map[string]any{"scale": 1.5}},
	}
	s := newFakeSession()

	assert.Empty(t, evaluate(t, s, result, Assertion{Type: AssertHostEvent, Event: "pagechange"}))
	assert.Empty(t, evaluate(t, s, result, Assertion{Type: AssertHostEvent, Event: "pagechange", Count: 2}))
	assert.Empty(t, evaluate(t, s, result, Assertion{
		Type: AssertHostEvent, Event: "pagechange", Target: "viewerContainer",
		Detail: map[string]any{"pageNumber": 3}, Count: 1,
	}))
	assert.Empty(t, evaluate(t, s, result, Assertion{Type: AssertHostEvent, Event: "scalechange", Detail: map[string]any{"scale": 1.5}}))
	assert.Empty(t, evaluate(t, s, result, Assertion{Type: AssertHostEvent, Event: "open", Not: true}))

	assert.Len(t, evaluate(t, s, result, Assertion{Type: AssertHostEvent, Event: "pagechange", Target: "window"}), 1)
	assert.Len(t, evaluate(t, s, result, Assertion{Type: AssertHostEvent, Event: "scalechange", Detail: map[string]any{"scale": 1}}), 1)
	assert.Len(t, evaluate(t, s, result, Assertion{Type: AssertHostEvent, Event: "pagechange", Not: true}), 1)
	assert.Len(t, evaluate(t, s, result, Assertion{Type: AssertHostEvent, Event: "pagechange", Count: 1}), 1)
}

func TestAssertTraceOrder(t *testing.T) {
	result := NewResult()
	result.Trace = []string{"productdetails", "showcart", "sidebarviewchanged", "addtocart"}
	s := newFakeSession()

	assert.Empty(t, evaluate(t, s, result, Assertion{Type: AssertTraceOrder, Names: []string{"productdetails", "addtocart"}}))

	errs := evaluate(t, s, result, Assertion{Type: AssertTraceOrder, Names: []string{"addtocart", "showcart"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "addtocart (pos 4) should be before showcart (pos 2)")
	assert.Contains(t, errs[0], "[1] productdetails")

	errs = evaluate(t, s, result, Assertion{Type: AssertTraceOrder, Names: []string{"productdetails", "find"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "missing event: find")
}

func TestAssertTraceCount(t *testing.T) {
	result := NewResult()
	result.Trace = []string{"addtocart", "showcart", "addtocart"}
	s := newFakeSession()

	assert.Empty(t, evaluate(t, s, result, Assertion{Type: AssertTraceCount, Name: "addtocart", Count: 2}))
	assert.Empty(t, evaluate(t, s, result, Assertion{Type: AssertTraceCount, Name: "find", Count: 0}))

	errs := evaluate(t, s, result, Assertion{Type: AssertTraceCount, Name: "showcart", Count: 2})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "1 occurrences")
}

func TestAssertCheckoutSubmitted(t *testing.T) {
	s := newFakeSession()
	assert.Empty(t, evaluate(t, s, nil, Assertion{Type: AssertCheckoutSubmitted}))
	assert.Len(t, evaluate(t, s, nil, Assertion{Type: AssertCheckoutSubmitted, Contains: []string{"x"}}), 1)

	s.submissions = []map[string][]string{
		{"cartcontents": {"<sku>A1</sku>"}, "client_id": {"acct-7"}},
	}
	assert.Empty(t, evaluate(t, s, nil, Assertion{
		Type:     AssertCheckoutSubmitted,
		Count:    1,
		Contains: []string{"<sku>A1</sku>"},
		Fields:   map[string]string{"client_id": "acct-7"},
	}))

	errs := evaluate(t, s, nil, Assertion{Type: AssertCheckoutSubmitted, Count: 1, Fields: map[string]string{"cart_url": "x"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "form field cart_url")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: "final_state"}}, newFakeSession())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "final_state"`)
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(3, int64(3)))
	assert.True(t, valuesEqual(3.0, 3))
	assert.True(t, valuesEqual("a", "a"))
	assert.True(t, valuesEqual(nil, nil))
	assert.False(t, valuesEqual(1.5, 1))
	assert.False(t, valuesEqual("3", 3))
	assert.False(t, valuesEqual(nil, 0))
	assert.True(t, valuesEqual([]any{"a"}, []any{"a"}))
}
