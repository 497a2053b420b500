package journal

import (
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/catalogview/internal/bus"
	"github.com/roach88/catalogview/internal/host"
)

// encodePayload msgpack-encodes p without its source.
func encodePayload(p bus.Payload) ([]byte, error) {
	clean := make(map[string]any, len(p))
	for k, v := range p {
		if k == bus.KeySource {
			continue
		}
		if s, ok := sanitize(v); ok {
			clean[k] = s
		}
	}
	b, err := msgpack.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}

func decodePayload(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := msgpack.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}

// sanitize returns an encodable form of v, or false to drop it.
func sanitize(v any) (any, bool) {
	if isNil(v) {
		return nil, true
	}

	switch x := v.(type) {
	case bool, string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return x, true
	case []any:
		out := make([]any, 0, len(x))
		for _, e := range x {
			if s, ok := sanitize(e); ok {
				out = append(out, s)
			}
		}
		return out, true
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			if s, ok := sanitize(e); ok {
				out[k] = s
			}
		}
		return out, true
	case *host.Node:
		return "#" + x.ID(), true
	case fmt.Stringer:
		return x.String(), true
	case error:
		return x.Error(), true
	}

	if _, err := msgpack.Marshal(v); err != nil {
		return nil, false
	}
	return v, true
}

// sourceLabel names the publisher of an event.
func sourceLabel(src any) string {
	switch s := src.(type) {
	case nil:
		return ""
	case *host.Node:
		if s == nil {
			return ""
		}
		return "#" + s.ID()
	case string:
		return s
	default:
		return fmt.Sprintf("%T", src)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
