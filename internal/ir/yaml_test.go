package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePreservesKeyOrder(t *testing.T) {
	docs, err := DecodeDocuments([]byte("zebra: 1\nalpha: 2\nmango: 3\n"))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	obj, ok := docs[0].(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"zebra", "alpha", "mango"}, obj.Keys())
}

func TestDecodeScalarTags(t *testing.T) {
	docs, err := DecodeDocuments([]byte(`
n: null
b: true
i: 42
f: 1.5
s: hello
quoted: "123"
hex: 0x1f
`))
	require.NoError(t, err)
	obj := docs[0].(*Object)

	tests := []struct {
		key  string
		want Value
	}{
		{"n", Null{}},
		{"b", Bool(true)},
		{"i", Int(42)},
		{"f", Float(1.5)},
		{"s", String("hello")},
		{"quoted", String("123")},
		{"hex", Int(31)},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, ok := obj.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestDecodeMultipleDocuments(t *testing.T) {
	docs, err := DecodeDocuments([]byte("name: one\n---\nname: two\n"))
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeDocuments([]byte("a: [unclosed\n"))
	assert.Error(t, err)
}

func TestYAMLRoundTrip(t *testing.T) {
	original := NewObjectFromPairs(
		P("name", String("add")),
		P("width", Int(32)),
		P("ratio", Float(0.5)),
		P("tricky", String("123")), // must stay a string through re-parse
		P("fields", NewObjectFromPairs(
			P("rd", Array{Int(11), Int(7)}),
		)),
		P("none", Null{}),
	)

	data, err := MarshalYAML(original)
	require.NoError(t, err)

	docs, err := DecodeDocuments(data)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, Equal(original, docs[0]), "round-trip changed the value:\n%s", data)

	// Order survives too.
	obj := docs[0].(*Object)
	assert.Equal(t, original.Keys(), obj.Keys())
}

func TestDecodeAliases(t *testing.T) {
	docs, err := DecodeDocuments([]byte("base: &b\n  w: 1\nother: *b\n"))
	require.NoError(t, err)
	obj := docs[0].(*Object)

	base, _ := obj.Get("base")
	other, _ := obj.Get("other")
	assert.True(t, Equal(base, other))
}
