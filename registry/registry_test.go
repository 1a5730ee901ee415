package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/engine"
	"github.com/hupe1980/navmesh/internal/testutil"
)

func newRegistry() (*Registry, *testutil.Factory) {
	factory := testutil.NewFactory().
		Register("Home", func() any { return testutil.NewUnitBuilder("Home").Build() }).
		Register("Doc", func() any { return testutil.NewUnitBuilder("Doc").Build() })

	reg := New(func(o *Options) {
		o.Engine = []func(o *engine.Options){engine.WithFactory(factory)}
	})
	return reg, factory
}

func TestNewNavigator(t *testing.T) {
	ctx := context.Background()
	reg, factory := newRegistry()

	nav, err := reg.NewNavigator("main")
	require.NoError(t, err)

	_, err = nav.Navigate(ctx, "Home", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, factory.Created("Home"))

	got, err := reg.Navigator("main")
	require.NoError(t, err)
	assert.Same(t, nav, got)

	s, ok := reg.Slot("main")
	assert.True(t, ok)
	assert.Equal(t, "main", s.Name())
}

func TestDuplicateNames(t *testing.T) {
	reg, _ := newRegistry()

	_, err := reg.NewNavigator("main")
	require.NoError(t, err)

	_, err = reg.NewNavigator("main")
	assert.ErrorIs(t, err, ErrSlotExists)

	_, err = reg.NewCollection("main")
	assert.ErrorIs(t, err, ErrSlotExists)

	_, err = reg.GetOrCreateSource("main")
	assert.ErrorIs(t, err, ErrSlotExists)

	_, err = reg.GetOrCreateSource("tabs")
	require.NoError(t, err)
	_, err = reg.NewCollection("tabs")
	assert.ErrorIs(t, err, ErrSlotExists)

	assert.ErrorIs(t, reg.Register(testutil.NewSlot("main")), ErrSlotExists)
}

func TestLookupErrors(t *testing.T) {
	reg, _ := newRegistry()

	_, err := reg.Navigator("missing")
	assert.ErrorIs(t, err, ErrSlotNotFound)
	_, err = reg.Collection("missing")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	_, err = reg.NewCollection("list")
	require.NoError(t, err)
	_, err = reg.Navigator("list")
	assert.ErrorIs(t, err, ErrWrongKind)

	_, err = reg.NewNavigator("main")
	require.NoError(t, err)
	_, err = reg.Collection("main")
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestPerCallOptionsOverrideDefaults(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry()
	other := testutil.NewFactory().Register("Other", func() any { return testutil.NewUnitBuilder("Other").Build() })

	nav, err := reg.NewNavigator("main", engine.WithFactory(other))
	require.NoError(t, err)

	_, err = nav.Navigate(ctx, "Other", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, other.Created("Other"))

	_, err = nav.Navigate(ctx, "Home", nil)
	assert.ErrorIs(t, err, core.ErrInstantiationFailed)
}

func TestRemoveResetsSlot(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry()

	c, err := reg.NewCollection("docs")
	require.NoError(t, err)
	_, err = c.Add(ctx, "Doc", 1)
	require.NoError(t, err)
	_, err = c.Add(ctx, "Doc", 2)
	require.NoError(t, err)

	require.NoError(t, reg.Remove(ctx, "docs"))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, reg.Len())

	assert.ErrorIs(t, reg.Remove(ctx, "docs"), ErrSlotNotFound)
}

func TestRegisterExternalSlot(t *testing.T) {
	ctx := context.Background()
	reg := New()
	slot := testutil.NewSlot("external")

	require.NoError(t, reg.Register(slot))
	require.NoError(t, reg.Remove(ctx, "external"))
	assert.Equal(t, 1, slot.Resets())
}

func TestSharedSource(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry()

	first, err := reg.GetOrCreateSource("tabs")
	require.NoError(t, err)
	second, err := reg.GetOrCreateSource("tabs")
	require.NoError(t, err)
	assert.Same(t, first, second)

	left := testutil.NewItemsPresenter()
	right := testutil.NewItemsPresenter()
	require.NoError(t, first.Attach(ctx, left))
	require.NoError(t, second.Attach(ctx, right))

	_, err = first.Add(ctx, "Doc", 1)
	require.NoError(t, err)
	assert.Len(t, left.Items(), 1)
	assert.Len(t, right.Items(), 1)

	got, ok := reg.Source("tabs")
	assert.True(t, ok)
	assert.Same(t, first, got)

	require.NoError(t, reg.RemoveSource(ctx, "tabs"))
	assert.Empty(t, left.Items())
	assert.Empty(t, right.Items())

	_, ok = reg.Source("tabs")
	assert.False(t, ok)
	assert.ErrorIs(t, reg.RemoveSource(ctx, "tabs"), ErrSlotNotFound)
}

func TestNamesSorted(t *testing.T) {
	reg, _ := newRegistry()

	_, _ = reg.NewNavigator("zeta")
	_, _ = reg.NewCollection("alpha")
	_, _ = reg.GetOrCreateSource("mid")

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.Names())
	assert.Equal(t, 3, reg.Len())
}

type failingSlot struct {
	*testutil.Slot
}

func (failingSlot) Reset(context.Context) error { return errors.New("stuck") }

func TestCloseJoinsErrors(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry()

	nav, err := reg.NewNavigator("main")
	require.NoError(t, err)
	_, err = nav.Navigate(ctx, "Home", nil)
	require.NoError(t, err)
	require.NoError(t, reg.Register(failingSlot{testutil.NewSlot("broken")}))

	err = reg.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset broken: stuck")
	assert.Nil(t, nav.Current())
	assert.Equal(t, 0, reg.Len())
}
