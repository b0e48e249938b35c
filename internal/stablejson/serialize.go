// Package stablejson produces a canonical JSON encoding of nested
// document values. Object keys are sorted, so two structurally equal
// documents serialize to the same string regardless of construction
// order. The output is used for equality comparison, not persistence.
package stablejson

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// circularMarker replaces a value that is currently being visited higher
// up the same serialization path. Emitting the marker instead of recursing
// guarantees termination on self-referencing documents.
const circularMarker = `"[Circular]"`

// Serialize returns the canonical encoding of v. It never panics: cyclic
// structures are cut with a circular marker and unrepresentable values
// fall back to their quoted fmt representation.
func Serialize(v any) string {
	var sb strings.Builder
	write(&sb, v, make(map[uintptr]bool))
	return sb.String()
}

// Equal reports whether a and b are structurally equal ignoring object
// key order.
func Equal(a, b any) bool {
	return Serialize(a) == Serialize(b)
}

func write(sb *strings.Builder, v any, visiting map[uintptr]bool) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")

	case map[string]any:
		id := identity(val)
		if id != 0 && visiting[id] {
			sb.WriteString(circularMarker)
			return
		}
		if id != 0 {
			visiting[id] = true
		}

		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			writePrimitive(sb, k)
			sb.WriteByte(':')
			write(sb, val[k], visiting)
		}
		sb.WriteByte('}')

		if id != 0 {
			delete(visiting, id)
		}

	case []any:
		id := identity(val)
		if id != 0 && visiting[id] {
			sb.WriteString(circularMarker)
			return
		}
		if id != 0 {
			visiting[id] = true
		}

		sb.WriteByte('[')
		for i, el := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			write(sb, el, visiting)
		}
		sb.WriteByte(']')

		if id != 0 {
			delete(visiting, id)
		}

	default:
		writePrimitive(sb, val)
	}
}

// writePrimitive encodes scalars through encoding/json so strings are
// escaped consistently with standard JSON output.
func writePrimitive(sb *strings.Builder, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprint(v))
	}
	sb.Write(b)
}

// identity returns a stable address for cycle tracking. Empty containers
// cannot participate in a cycle and may share a runtime base address, so
// they are excluded.
func identity(v any) uintptr {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Len() == 0 {
			return 0
		}
		return rv.Pointer()
	case reflect.Slice:
		if rv.Len() == 0 {
			return 0
		}
		return rv.Pointer()
	default:
		return 0
	}
}
