package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPreservesInsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("zebra", Int(1))
	obj.Set("alpha", Int(2))
	obj.Set("mango", Int(3))

	assert.Equal(t, []string{"zebra", "alpha", "mango"}, obj.Keys())

	// Re-setting an existing key keeps its position.
	obj.Set("alpha", Int(9))
	assert.Equal(t, []string{"zebra", "alpha", "mango"}, obj.Keys())

	v, ok := obj.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, Int(9), v)
}

func TestObjectDelete(t *testing.T) {
	obj := NewObjectFromPairs(
		P("a", Int(1)),
		P("b", Int(2)),
		P("c", Int(3)),
	)

	assert.True(t, obj.Delete("b"))
	assert.False(t, obj.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, obj.Keys())
	assert.False(t, obj.Has("b"))
	assert.Equal(t, 2, obj.Len())
}

func TestCloneIsDeep(t *testing.T) {
	inner := NewObjectFromPairs(P("w", Int(1)))
	obj := NewObjectFromPairs(
		P("fields", inner),
		P("list", Array{Int(1), Int(2)}),
	)

	clone := obj.Clone()
	innerClone, _ := clone.Get("fields")
	innerClone.(*Object).Set("w", Int(99))
	listClone, _ := clone.Get("list")
	listClone.(Array)[0] = Int(99)

	// Original untouched.
	v, _ := inner.Get("w")
	assert.Equal(t, Int(1), v)
	origList, _ := obj.Get("list")
	assert.Equal(t, Int(1), origList.(Array)[0])
}

func TestEqualIgnoresKeyOrder(t *testing.T) {
	a := NewObjectFromPairs(P("x", Int(1)), P("y", String("s")))
	b := NewObjectFromPairs(P("y", String("s")), P("x", Int(1)))
	assert.True(t, Equal(a, b))

	b.Set("x", Int(2))
	assert.False(t, Equal(a, b))
}

func TestEqualVariants(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null", Null{}, Null{}, true},
		{"null vs int", Null{}, Int(0), false},
		{"bool", Bool(true), Bool(true), true},
		{"int vs float", Int(1), Float(1), false},
		{"string", String("a"), String("a"), true},
		{"array", Array{Int(1)}, Array{Int(1)}, true},
		{"array length", Array{Int(1)}, Array{Int(1), Int(2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestSortedKeysUTF16Order(t *testing.T) {
	obj := NewObjectFromPairs(
		P("name", Int(0)),
		P("$child_of", Int(0)),
		P("fields", Int(0)),
		P("$source", Int(0)),
	)
	assert.Equal(t, []string{"$child_of", "$source", "fields", "name"}, obj.SortedKeys())
	// Insertion order untouched.
	assert.Equal(t, []string{"name", "$child_of", "fields", "$source"}, obj.Keys())
}
