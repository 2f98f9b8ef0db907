package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	a := NewObjectFromPairs(P("b", Int(2)), P("a", Int(1)))
	b := NewObjectFromPairs(P("a", Int(1)), P("b", Int(2)))

	aj, err := MarshalCanonical(a)
	require.NoError(t, err)
	bj, err := MarshalCanonical(b)
	require.NoError(t, err)

	assert.Equal(t, string(aj), string(bj))
	assert.Equal(t, `{"a":1,"b":2}`, string(aj))
}

func TestMarshalCanonicalValues(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null{}, "null"},
		{"true", Bool(true), "true"},
		{"int", Int(-42), "-42"},
		{"float", Float(0.5), "0.5"},
		{"string", String("hi"), `"hi"`},
		{"array", Array{Int(1), String("x")}, `[1,"x"]`},
		{"nested", NewObjectFromPairs(P("a", Array{NewObjectFromPairs(P("w", Int(1)))})), `{"a":[{"w":1}]}`},
		{"no html escaping", String("a<b&c>d"), `"a<b&c>d"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "é" as combining sequence (e + U+0301) normalizes to precomposed form.
	decomposed := String("é")
	precomposed := String("é")

	dj, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	pj, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(pj), string(dj))
}

func TestRecordHashStability(t *testing.T) {
	a := NewObjectFromPairs(P("name", String("add")), P("width", Int(32)))
	b := NewObjectFromPairs(P("width", Int(32)), P("name", String("add")))

	ha, err := RecordHash(a)
	require.NoError(t, err)
	hb, err := RecordHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb, "hash must not depend on key order")
	assert.Len(t, ha, 64)

	b.Set("width", Int(64))
	hc, err := RecordHash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}
