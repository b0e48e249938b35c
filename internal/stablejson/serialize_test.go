package stablejson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialize_KeyOrderInvariant(t *testing.T) {
	a := map[string]any{"a": 1.0, "b": 2.0}
	b := map[string]any{"b": 2.0, "a": 1.0}

	assert.Equal(t, Serialize(a), Serialize(b))
	assert.Equal(t, `{"a":1,"b":2}`, Serialize(a))
}

func TestSerialize_NestedKeysSorted(t *testing.T) {
	doc := map[string]any{
		"outer": map[string]any{"z": true, "a": nil},
		"list":  []any{"x", 1.0},
	}

	assert.Equal(t, `{"list":["x",1],"outer":{"a":null,"z":true}}`, Serialize(doc))
}

func TestSerialize_ArrayOrderPreserved(t *testing.T) {
	assert.NotEqual(t, Serialize([]any{1.0, 2.0}), Serialize([]any{2.0, 1.0}))
}

func TestSerialize_Primitives(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"string", "hi", `"hi"`},
		{"escaped string", `say "hi"`, `"say \"hi\""`},
		{"bool", true, "true"},
		{"float", 1.5, "1.5"},
		{"int", 7, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(tt.in))
		})
	}
}

func TestSerialize_CyclicMapTerminates(t *testing.T) {
	doc := map[string]any{"name": "loop"}
	doc["self"] = doc

	got := Serialize(doc)
	assert.Contains(t, got, `"[Circular]"`)
	assert.Equal(t, `{"name":"loop","self":"[Circular]"}`, got)
}

func TestSerialize_CyclicSliceTerminates(t *testing.T) {
	arr := make([]any, 1)
	arr[0] = arr

	assert.Equal(t, `["[Circular]"]`, Serialize(arr))
}

func TestSerialize_SharedNonCyclicValueNotMarked(t *testing.T) {
	shared := map[string]any{"k": "v"}
	doc := map[string]any{"first": shared, "second": shared}

	// The same subtree appearing twice as a sibling is not a cycle.
	assert.Equal(t, `{"first":{"k":"v"},"second":{"k":"v"}}`, Serialize(doc))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(
		map[string]any{"a": []any{1.0}, "b": "x"},
		map[string]any{"b": "x", "a": []any{1.0}},
	))
	assert.False(t, Equal(map[string]any{"a": 1.0}, map[string]any{"a": 2.0}))
}
