package history

import (
	"testing"

	"github.com/hupe1980/navmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_InsertRemoveBounds(t *testing.T) {
	l := NewList()
	a, b, c := entry("A"), entry("B"), entry("C")

	require.NoError(t, l.Insert(0, a))
	require.NoError(t, l.Insert(1, c))
	require.NoError(t, l.Insert(1, b))
	assert.Equal(t, []*core.Entry{a, b, c}, l.Entries())

	assert.ErrorIs(t, l.Insert(4, entry("X")), core.ErrIndexOutOfRange)
	assert.ErrorIs(t, l.Insert(-1, entry("X")), core.ErrIndexOutOfRange)

	_, err := l.RemoveAt(3)
	assert.ErrorIs(t, err, core.ErrIndexOutOfRange)

	removed, err := l.RemoveAt(1)
	require.NoError(t, err)
	assert.Same(t, b, removed)
	assert.Equal(t, []*core.Entry{a, c}, l.Entries())
}

func TestList_Move(t *testing.T) {
	l := NewList()
	a, b, c, d := entry("A"), entry("B"), entry("C"), entry("D")
	for i, e := range []*core.Entry{a, b, c, d} {
		require.NoError(t, l.Insert(i, e))
	}

	require.NoError(t, l.Move(0, 2))
	assert.Equal(t, []*core.Entry{b, c, a, d}, l.Entries())

	require.NoError(t, l.Move(3, 0))
	assert.Equal(t, []*core.Entry{d, b, c, a}, l.Entries())

	assert.ErrorIs(t, l.Move(0, 4), core.ErrIndexOutOfRange)
}

func TestList_SetAndIndexOf(t *testing.T) {
	l := NewList()
	a, b := entry("A"), entry("B")
	require.NoError(t, l.Insert(0, a))

	old, err := l.Set(0, b)
	require.NoError(t, err)
	assert.Same(t, a, old)
	assert.Equal(t, 0, l.IndexOf(b))
	assert.Equal(t, -1, l.IndexOf(a))
	assert.True(t, l.References(b.Unit))
	assert.False(t, l.References(a.Unit))
}

func TestList_SelectionInvariant(t *testing.T) {
	l := NewList()
	require.NoError(t, l.Validate())

	idx, sel := l.Selected()
	assert.Equal(t, -1, idx)
	assert.Nil(t, sel)

	a := entry("A")
	require.NoError(t, l.Insert(0, a))
	assert.Error(t, l.Validate(), "owner has not selected yet")

	require.NoError(t, l.SetSelected(0))
	require.NoError(t, l.Validate())
	idx, sel = l.Selected()
	assert.Equal(t, 0, idx)
	assert.Same(t, a, sel)

	assert.ErrorIs(t, l.SetSelected(1), core.ErrIndexOutOfRange)
	assert.ErrorIs(t, l.SetSelected(-2), core.ErrIndexOutOfRange)

	all := l.Reset()
	assert.Len(t, all, 1)
	require.NoError(t, l.Validate())
}
