package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/internal/testutil"
	"github.com/hupe1980/navmesh/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tree struct {
	rec            *testutil.Recorder
	p, c1, c2, g   *testutil.Unit
	parent, child1 *core.Entry
	inner, deep    *testutil.Slot
}

// newTree builds P -> inner[C1 -> deep[G], C2].
func newTree() *tree {
	rec := testutil.NewRecorder()
	t := &tree{rec: rec}
	t.p = testutil.NewUnitBuilder("P").Recorder(rec).Build()
	t.c1 = testutil.NewUnitBuilder("C1").Recorder(rec).Build()
	t.c2 = testutil.NewUnitBuilder("C2").Recorder(rec).Build()
	t.g = testutil.NewUnitBuilder("G").Recorder(rec).Build()

	ge := core.NewEntry("G", t.g, nil, nil)
	t.deep = testutil.NewSlot("deep", ge)
	t.child1 = core.NewEntry("C1", t.c1, nil, nil)
	t.child1.SetChildren([]core.SlotHandle{t.deep})
	c2e := core.NewEntry("C2", t.c2, nil, nil)
	t.inner = testutil.NewSlot("inner", t.child1, c2e)
	t.parent = core.NewEntry("P", t.p, nil, nil)
	t.parent.SetChildren([]core.SlotHandle{t.inner})
	return t
}

func nav() core.Navigation {
	return core.Navigation{Slot: "main", Kind: core.NavigationNew, Key: "P"}
}

func TestCanDeactivate_LeavesFirst(t *testing.T) {
	tr := newTree()
	r, err := CanDeactivate(context.Background(), nav(), tr.parent)
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, []string{
		"G.CanDeactivate", "C1.CanDeactivate", "C2.CanDeactivate", "P.CanDeactivate",
	}, tr.rec.Calls())
}

func TestCanDeactivate_NestedRefusalStopsBeforeParent(t *testing.T) {
	tr := newTree()
	tr.c1.SetRefuseDeactivate(true)

	r, err := CanDeactivate(context.Background(), nav(), tr.parent)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Same(t, tr.child1, r.Entry)
	assert.Equal(t, "inner", r.Slot)
	assert.Equal(t, []string{"G.CanDeactivate", "C1.CanDeactivate"}, tr.rec.Calls())
	assert.Contains(t, r.Error(), "inner")
}

func TestCanDeactivate_NestedNavigationIsRetargeted(t *testing.T) {
	tr := newTree()
	_, err := CanDeactivate(context.Background(), nav(), tr.parent)
	require.NoError(t, err)

	navs := tr.g.Navigations()
	require.Len(t, navs, 1)
	assert.Equal(t, "deep", navs[0].Slot)
	assert.Equal(t, core.TypeKey("G"), navs[0].Key)
	assert.Equal(t, core.NavigationNew, navs[0].Kind)
}

func TestCanActivate_ParentFirst(t *testing.T) {
	tr := newTree()
	r, err := CanActivate(context.Background(), nav(), tr.parent)
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, []string{
		"P.CanActivate", "C1.CanActivate", "G.CanActivate", "C2.CanActivate",
	}, tr.rec.Calls())
}

func TestCanActivate_ParentRefusalSkipsChildren(t *testing.T) {
	tr := newTree()
	tr.p.SetRefuseActivate(true)
	r, err := CanActivate(context.Background(), nav(), tr.parent)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Same(t, tr.parent, r.Entry)
	assert.Equal(t, []string{"P.CanActivate"}, tr.rec.Calls())
}

func TestGuards_UnitBeforeCompanionFirstRefusalWins(t *testing.T) {
	rec := testutil.NewRecorder()
	unit := testutil.NewUnitBuilder("U").Recorder(rec).RefuseDeactivate().Build()
	companion := testutil.NewUnitBuilder("VM").Recorder(rec).Build()
	e := core.NewEntry("U", unit, companion, nil)

	r, err := CanDeactivate(context.Background(), nav(), e)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, []string{"U.CanDeactivate"}, rec.Calls())

	rec.Reset()
	r, err = CanActivate(context.Background(), nav(), e)
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, []string{"U.CanActivate", "VM.CanActivate"}, rec.Calls())
}

func TestGuards_ErrorIsNotARefusal(t *testing.T) {
	boom := errors.New("boom")
	u := testutil.NewUnitBuilder("U").GuardError(boom).Build()
	e := core.NewEntry("U", u, nil, nil)

	r, err := CanActivate(context.Background(), nav(), e)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, boom)

	r, err = CanDeactivate(context.Background(), nav(), e)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, boom)
}

func TestNotifications_Ordering(t *testing.T) {
	tr := newTree()
	ctx := context.Background()

	require.NoError(t, Leaving(ctx, nav(), tr.parent))
	assert.Equal(t, []string{"G.OnLeaving", "C1.OnLeaving", "C2.OnLeaving", "P.OnLeaving"}, tr.rec.Calls())

	tr.rec.Reset()
	require.NoError(t, Arriving(ctx, nav(), tr.parent))
	require.NoError(t, Arrived(ctx, nav(), tr.parent))
	assert.Equal(t, []string{
		"P.OnArriving", "C1.OnArriving", "G.OnArriving", "C2.OnArriving",
		"P.OnArrived", "C1.OnArrived", "G.OnArrived", "C2.OnArrived",
	}, tr.rec.Calls())
}

func TestNotifications_ErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	rec := testutil.NewRecorder()
	u := testutil.NewUnitBuilder("U").Recorder(rec).FailOn(testutil.CallArriving, boom).Build()
	c := testutil.NewUnitBuilder("VM").Recorder(rec).Build()
	e := core.NewEntry("U", u, c, nil)

	err := Arriving(context.Background(), nav(), e)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"U.OnArriving"}, rec.Calls())
}

func TestLoaded_RecoversPanics(t *testing.T) {
	rec := testutil.NewRecorder()
	u := testutil.NewUnitBuilder("U").Recorder(rec).PanicOnLoaded().Build()
	c := testutil.NewUnitBuilder("VM").Recorder(rec).Build()
	e := core.NewEntry("U", u, c, nil)

	assert.NotPanics(t, func() {
		Loaded(nav(), e, core.NewLoggerAdapter(logging.NoOpLogger{}))
	})
	assert.Equal(t, []string{"U.OnLoaded", "VM.OnLoaded"}, rec.Calls())
}

func TestRelease_ResetsAndDetachesChildren(t *testing.T) {
	tr := newTree()
	require.NoError(t, Release(context.Background(), tr.parent))
	assert.Equal(t, 1, tr.inner.Resets())
	assert.Empty(t, tr.parent.Children())
	assert.NoError(t, Release(context.Background(), nil))
}
