package hierarchy

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchy_AddTypesAndIterate(t *testing.T) {
	first := NewType("HashBench")
	second := NewType("BaseBench")

	h := New()
	h.AddType(first)
	h.AddType(second)

	types := h.Types()
	require.Len(t, types, 2)
	assert.Same(t, first, types[0])
	assert.Same(t, second, types[1])

	top, err := h.Top()
	require.NoError(t, err)
	assert.Same(t, first, top)
}

func TestHierarchy_TopStaysFirstAdded(t *testing.T) {
	h := New(NewType("A"))
	for _, name := range []string{"B", "C", "D"} {
		h.AddType(NewType(name))
	}

	top, err := h.Top()
	require.NoError(t, err)
	assert.Equal(t, "A", top.Name)
	assert.Equal(t, 4, h.Len())
}

func TestHierarchy_TopOnEmptyHierarchy(t *testing.T) {
	h := New()

	top, err := h.Top()
	assert.Nil(t, top)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyHierarchy))
	assert.True(t, strings.Contains(err.Error(), "cannot get top"))
}

func TestHierarchy_HasMethod(t *testing.T) {
	first := NewType("HashBench", "foobar")
	second := NewType("BaseBench")

	h := New(first, second)
	assert.True(t, h.HasMethod("foobar"))
	assert.False(t, h.HasMethod("barfoo"))

	// Types are shared by pointer, so later declarations are visible.
	second.Declare("barfoo")
	assert.True(t, h.HasMethod("barfoo"))
}

func TestHierarchy_TypesReturnsCopy(t *testing.T) {
	h := New(NewType("A"))
	types := h.Types()
	types[0] = NewType("Z")

	top, err := h.Top()
	require.NoError(t, err)
	assert.Equal(t, "A", top.Name)
}

func TestType_DeclareOnZeroValue(t *testing.T) {
	var typ Type
	typ.Declare("benchFoo")
	assert.True(t, typ.HasMethod("benchFoo"))
	assert.False(t, typ.HasMethod("benchBar"))
}
