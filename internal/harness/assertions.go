package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/catalogview/internal/host"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Trace    []string // Full bus trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, name := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, name)
		}
	}

	return buf.String()
}

// Session is the state assertions read.
type Session interface {
	CartCount(sku string) int
	CartLen() int
	CartTotal() string
	ActiveOverlay() (string, bool)
	Element(id string) *host.Node
	Submissions() []map[string][]string
}

// EvaluateAssertions evaluates all assertions against the result and the
// session. Returns a message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion, s Session) []string {
	var errs []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertCartCount:
			err = expectInt(a.Type, fmt.Sprintf("count of %s", a.SKU), a.Count, s.CartCount(a.SKU), result.Trace)
		case AssertCartLen:
			err = expectInt(a.Type, "cart items", a.Count, s.CartLen(), result.Trace)
		case AssertCartTotal:
			err = expectString(a.Type, "cart total", a.Value, s.CartTotal(), result.Trace)
		case AssertOverlayActive:
			err = assertOverlayActive(s, a, result.Trace)
		case AssertNodeText, AssertNodeClass, AssertNodeAttr:
			err = assertNode(s, a, result.Trace)
		case AssertHostEvent:
			err = assertHostEvent(result.HostEvents, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertCheckoutSubmitted:
			err = assertCheckoutSubmitted(s.Submissions(), a)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

func expectInt(kind, what string, expected, actual int, trace []string) error {
	if expected == actual {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%s = %d", what, expected),
		Actual:   fmt.Sprintf("%d", actual),
		Trace:    trace,
	}
}

func expectString(kind, what, expected, actual string, trace []string) error {
	if expected == actual {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%s = %q", what, expected),
		Actual:   fmt.Sprintf("%q", actual),
		Trace:    trace,
	}
}

// assertOverlayActive checks the active overlay. An empty overlay name
// expects none to be active.
func assertOverlayActive(s Session, a Assertion, trace []string) error {
	name, active := s.ActiveOverlay()
	if a.Overlay == "" && !active || active && name == a.Overlay {
		return nil
	}

	expected := "no active overlay"
	if a.Overlay != "" {
		expected = fmt.Sprintf("overlay %s active", a.Overlay)
	}
	actual := "no active overlay"
	if active {
		actual = fmt.Sprintf("overlay %s active", name)
	}
	return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: trace}
}

func assertNode(s Session, a Assertion, trace []string) error {
	node := s.Element(a.Node)
	if node == nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("element #%s", a.Node),
			Actual:   "not found",
		}
	}

	switch a.Type {
	case AssertNodeText:
		return expectString(a.Type, "text of #"+a.Node, a.Value, node.TextContent(), trace)

	case AssertNodeClass:
		if node.HasClass(a.Class) != a.Not {
			return nil
		}
		expected := fmt.Sprintf("#%s has class %s", a.Node, a.Class)
		if a.Not {
			expected = fmt.Sprintf("#%s without class %s", a.Node, a.Class)
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: expected,
			Actual:   fmt.Sprintf("classes %v", node.Classes()),
			Trace:    trace,
		}

	default:
		value, ok := node.Attribute(a.Attr)
		if ok && value == a.Value {
			return nil
		}
		actual := "attribute not set"
		if ok {
			actual = fmt.Sprintf("%q", value)
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("#%s[%s] = %q", a.Node, a.Attr, a.Value),
			Actual:   actual,
			Trace:    trace,
		}
	}
}

// assertHostEvent checks the host events of a type at a target. With a
// zero count any match passes; otherwise the number of matches must be
// exact. Not expects no match at all.
func assertHostEvent(events []HostEvent, a Assertion) error {
	matches := 0
	for _, ev := range events {
		if ev.Type != a.Event {
			continue
		}
		if a.Target != "" && ev.Target != a.Target {
			continue
		}
		if matchDetail(ev.Detail, a.Detail) {
			matches++
		}
	}

	switch {
	case a.Not && matches == 0:
		return nil
	case a.Not:
	case a.Count == 0 && matches > 0, a.Count > 0 && matches == a.Count:
		return nil
	}

	want := "at least 1"
	switch {
	case a.Not:
		want = "no"
	case a.Count > 0:
		want = fmt.Sprintf("%d", a.Count)
	}
	target := a.Target
	if target == "" {
		target = "any target"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s %s event(s) at %s with detail %v", want, a.Event, target, a.Detail),
		Actual:   fmt.Sprintf("%d matching, %d host events total", matches, len(events)),
	}
}

// assertTraceOrder checks if names appear in the specified order.
// Names don't need to be consecutive (intervening events are allowed).
func assertTraceOrder(trace []string, a Assertion) error {
	// Find first position of each expected name
	positions := make(map[string]int)
	for i, name := range trace {
		for _, expected := range a.Names {
			if name == expected && positions[expected] == 0 {
				positions[expected] = i + 1 // 1-indexed for readability
			}
		}
	}

	for _, name := range a.Names {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("all events present: %v", a.Names),
				Actual:   fmt.Sprintf("missing event: %s", name),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Names); i++ {
		prev := a.Names[i-1]
		curr := a.Names[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("events in order: %v", a.Names),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks if the name appears exactly the specified number of times.
func assertTraceCount(trace []string, a Assertion) error {
	count := 0
	for _, name := range trace {
		if name == a.Name {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Name),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertCheckoutSubmitted checks the number of checkout submissions and the
// contents of the last one.
func assertCheckoutSubmitted(subs []map[string][]string, a Assertion) error {
	if len(subs) != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d checkout submissions", a.Count),
			Actual:   fmt.Sprintf("%d", len(subs)),
		}
	}
	if len(a.Contains) == 0 && len(a.Fields) == 0 {
		return nil
	}
	if len(subs) == 0 {
		return &AssertionError{
			Type:     a.Type,
			Expected: "a submission to inspect",
			Actual:   "none",
		}
	}

	last := subs[len(subs)-1]
	first := func(key string) string {
		if vs := last[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	contents := first("cartcontents")
	for _, want := range a.Contains {
		if !strings.Contains(contents, want) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("cart contents containing %q", want),
				Actual:   contents,
			}
		}
	}

	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if got := first(k); got != a.Fields[k] {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("form field %s = %q", k, a.Fields[k]),
				Actual:   fmt.Sprintf("%q", got),
			}
		}
	}

	return nil
}

// matchDetail checks if actual contains all expected keys (subset match).
// Extra keys in actual are ignored.
func matchDetail(actual, expected map[string]any) bool {
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares detail values. Numbers compare by value so a YAML
// int matches an int64 or float64 payload.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	if a, ok := number(actual); ok {
		if e, ok := number(expected); ok {
			return a == e
		}
	}

	return reflect.DeepEqual(actual, expected)
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	}
	return 0, false
}
