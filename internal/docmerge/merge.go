package docmerge

import (
	"sort"

	"github.com/portraitforge/genjobs/internal/stablejson"
)

// Policy selects how two arrays at the same path are combined.
type Policy int

const (
	// PolicyReplace is the fail-safe default for arrays without an
	// explicit policy: the overlay value replaces the base value and the
	// path is reported so a deliberate policy can be assigned.
	PolicyReplace Policy = iota

	// PolicyUnion concatenates base then overlay and drops structural
	// duplicates, keeping the first occurrence.
	PolicyUnion

	// PolicyConcat concatenates base then overlay, duplicates allowed.
	PolicyConcat
)

func (p Policy) String() string {
	switch p {
	case PolicyUnion:
		return "union"
	case PolicyConcat:
		return "concat"
	default:
		return "replace"
	}
}

// PolicySet maps dotted document paths to their array merge policy.
// Paths not present fall back to PolicyReplace.
type PolicySet map[string]Policy

// Result is the outcome of one merge. Merged is always a fresh deep copy;
// neither input document is mutated. Conflicts and UnlistedArrayPaths are
// diagnostics, not errors: the merge always completes.
type Result struct {
	Merged Document

	// Conflicts lists paths where base and overlay both defined a value
	// whose canonical serializations differ. The overlay value won.
	Conflicts []string

	// UnlistedArrayPaths lists array-valued paths merged without an
	// explicit policy (overlay replaced base). Callers are expected to
	// surface these so new array-valued fields get a policy before they
	// ship.
	UnlistedArrayPaths []string
}

// Engine merges documents according to an injected policy set.
type Engine struct {
	policies PolicySet
}

// NewEngine creates an Engine. A nil policy set means every array path is
// unlisted.
func NewEngine(policies PolicySet) *Engine {
	return &Engine{policies: policies}
}

// Merge combines base with overlay. A nil overlay yields a deep copy of
// base with empty diagnostics. The function is pure and total for any
// JSON-shaped inputs; it never panics.
func (e *Engine) Merge(base, overlay Document) Result {
	res := Result{Merged: Copy(base)}
	if overlay == nil {
		return res
	}
	e.mergeInto(res.Merged, overlay, "", &res)
	return res
}

// mergeInto walks overlay keys against dst (already a fresh copy of the
// base subtree), mutating dst in place. Keys are visited in sorted order
// so diagnostics come out deterministic.
func (e *Engine) mergeInto(dst, overlay map[string]any, prefix string, res *Result) {
	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path := joinPath(prefix, key)
		ov := overlay[key]

		bv, exists := dst[key]
		if !exists {
			dst[key] = copyValue(ov)
			continue
		}

		if bm, ok := bv.(map[string]any); ok {
			if om, ok := ov.(map[string]any); ok {
				e.mergeInto(bm, om, path, res)
				continue
			}
		}

		if ba, ok := bv.([]any); ok {
			if oa, ok := ov.([]any); ok {
				dst[key] = e.mergeArrays(ba, oa, path, res)
				continue
			}
		}

		// Scalar or mixed-type collision: overlay wins.
		if !stablejson.Equal(bv, ov) {
			res.Conflicts = append(res.Conflicts, path)
		}
		dst[key] = copyValue(ov)
	}
}

func (e *Engine) mergeArrays(base, overlay []any, path string, res *Result) []any {
	switch e.policies[path] {
	case PolicyUnion:
		return unionArrays(base, overlay)
	case PolicyConcat:
		out := make([]any, 0, len(base)+len(overlay))
		out = append(out, base...)
		for _, el := range overlay {
			out = append(out, copyValue(el))
		}
		return out
	default:
		res.UnlistedArrayPaths = append(res.UnlistedArrayPaths, path)
		return copySlice(overlay)
	}
}

// unionArrays concatenates base then overlay and deduplicates by each
// element's canonical serialization, first occurrence wins. base elements
// were already deep-copied with the base document.
func unionArrays(base, overlay []any) []any {
	out := make([]any, 0, len(base)+len(overlay))
	seen := make(map[string]bool, len(base)+len(overlay))

	for _, el := range base {
		k := identityKey(el)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, el)
	}
	for _, el := range overlay {
		k := identityKey(el)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, copyValue(el))
	}
	return out
}

// identityKey distinguishes raw strings from values whose serialization
// happens to look the same, so "1" and 1 never collapse.
func identityKey(v any) string {
	if s, ok := v.(string); ok {
		return "str:" + s
	}
	return stablejson.Serialize(v)
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
