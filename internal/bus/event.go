package bus

import "maps"

// Payload is the name-specific data carried by an Event.
type Payload map[string]any

// Event is a published bus event.
type Event struct {
	Name    string
	Payload Payload
}

// Source returns the publishing component, or nil.
func (p Payload) Source() any {
	return p[KeySource]
}

// String returns the value at key if it is a string.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bool returns the value at key if it is a bool.
func (p Payload) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Int returns the value at key converted to int when it holds any numeric
// type.
func (p Payload) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float32:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Get returns the raw value at key.
func (p Payload) Get(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}

// Pick returns a new map holding only the given keys that are present.
func (p Payload) Pick(keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := p[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Clone returns a shallow copy.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	return maps.Clone(p)
}
