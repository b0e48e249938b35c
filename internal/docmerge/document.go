// Package docmerge composes a base prompt/configuration document with a
// tenant-supplied overlay. Array handling is driven by an injectable
// per-path policy set; everything else follows overlay-wins semantics
// with conflict reporting.
package docmerge

import "strings"

// Document is a JSON-shaped nested structure: maps, []any slices,
// strings, float64 numbers, bools, and nil.
type Document = map[string]any

// Copy returns a deep copy of doc. Mutating the copy never affects doc.
func Copy(doc Document) Document {
	if doc == nil {
		return Document{}
	}
	return copyMap(doc)
}

func copyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}
	return dst
}

func copySlice(src []any) []any {
	dst := make([]any, len(src))
	for i, v := range src {
		dst[i] = copyValue(v)
	}
	return dst
}

// copyValue deep-copies maps and slices; scalars are immutable and pass
// through unchanged.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		return copySlice(val)
	default:
		return v
	}
}

// Lookup resolves a dotted path ("output.size") against doc. The second
// return is false when any path segment is missing or a non-map value is
// traversed.
func Lookup(doc Document, path string) (any, bool) {
	if doc == nil || path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")
	var cur any = doc
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// StringAt returns the string value at a dotted path, or fallback when
// the path is absent or not a string.
func StringAt(doc Document, path, fallback string) string {
	v, ok := Lookup(doc, path)
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}
