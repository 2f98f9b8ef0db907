package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTarget(t *testing.T) {
	tests := []struct {
		target      string
		wantFile    string
		wantPointer string
	}{
		{"base.yaml#/", "base.yaml", "/"},
		{"base.yaml#/fields/a", "base.yaml", "/fields/a"},
		{"base.yaml", "base.yaml", "/"},
		{"base.yaml#", "base.yaml", "/"},
		{"#/common", "", "/common"},
		{"inst/add.yaml#/encoding", "inst/add.yaml", "/encoding"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			file, pointer := SplitTarget(tt.target)
			assert.Equal(t, tt.wantFile, file)
			assert.Equal(t, tt.wantPointer, pointer)
		})
	}
}

func TestJoinPointer(t *testing.T) {
	assert.Equal(t, "/a", JoinPointer("/", "a"))
	assert.Equal(t, "/a", JoinPointer("", "a"))
	assert.Equal(t, "/a/b", JoinPointer("/a", "b"))
}

func TestDig(t *testing.T) {
	root := NewObjectFromPairs(
		P("fields", NewObjectFromPairs(
			P("a", NewObjectFromPairs(P("w", Int(1)))),
		)),
		P("list", Array{String("x"), String("y")}),
	)

	v, err := Dig(root, "/fields/a/w")
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)

	v, err = Dig(root, "/list/1")
	require.NoError(t, err)
	assert.Equal(t, String("y"), v)

	v, err = Dig(root, "/")
	require.NoError(t, err)
	assert.Same(t, root, v.(*Object))
}

func TestDigErrors(t *testing.T) {
	root := NewObjectFromPairs(P("list", Array{Int(1)}), P("n", Int(5)))

	tests := []struct {
		name    string
		pointer string
	}{
		{"missing key", "/nope"},
		{"index out of range", "/list/3"},
		{"non-numeric index", "/list/x"},
		{"descend into scalar", "/n/deeper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Dig(root, tt.pointer)
			assert.Error(t, err)
		})
	}
}
