package navmesh_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/navmesh"
	"github.com/hupe1980/navmesh/config"
	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/engine"
	"github.com/hupe1980/navmesh/internal/testutil"
	"github.com/hupe1980/navmesh/registry"
)

func newFactory() *testutil.Factory {
	return testutil.NewFactory().
		Register("Home", func() any { return testutil.NewUnitBuilder("Home").Build() }).
		Register("Edit", func() any { return testutil.NewUnitBuilder("Edit").RefuseDeactivate().Build() }).
		Register("Doc", func() any { return testutil.NewUnitBuilder("Doc").Build() })
}

func TestMeshSharesFeedAcrossSlots(t *testing.T) {
	ctx := context.Background()
	mesh := navmesh.New(func(o *navmesh.Options) { o.Factory = newFactory() })

	var slots []string
	mesh.Subscribe(func(ev core.Event) { slots = append(slots, ev.Slot) }, core.EventNavigated)

	main, err := mesh.Navigator("main")
	require.NoError(t, err)
	docs, err := mesh.Collection("docs")
	require.NoError(t, err)

	_, err = main.Navigate(ctx, "Home", nil)
	require.NoError(t, err)
	_, err = docs.Add(ctx, "Doc", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"main", "docs"}, slots)
	assert.Same(t, mesh.Events(), main.Events())
}

func TestMeshFailureEvents(t *testing.T) {
	ctx := context.Background()
	mesh := navmesh.New(func(o *navmesh.Options) { o.Factory = newFactory() })

	var failures []*core.Failure
	mesh.Subscribe(func(ev core.Event) { failures = append(failures, ev.Failure) }, core.EventNavigationFailed)

	main, err := mesh.Navigator("main")
	require.NoError(t, err)
	_, err = main.Navigate(ctx, "Edit", nil)
	require.NoError(t, err)

	_, err = main.Navigate(ctx, "Home", nil)
	require.ErrorIs(t, err, core.ErrDeactivationRefused)
	require.Len(t, failures, 1)
	assert.Equal(t, core.KindDeactivationRefused, failures[0].Kind)
	assert.Equal(t, "Edit", fmt.Sprint(main.Current().Unit))
}

func TestMeshSelectOnInsertOption(t *testing.T) {
	ctx := context.Background()
	mesh := navmesh.New(func(o *navmesh.Options) {
		o.Factory = newFactory()
		o.SelectOnInsert = false
	})

	docs, err := mesh.Collection("docs")
	require.NoError(t, err)
	_, err = docs.Add(ctx, "Doc", 1)
	require.NoError(t, err)
	_, err = docs.Add(ctx, "Doc", 2)
	require.NoError(t, err)

	idx, _ := docs.Selected()
	assert.Equal(t, 0, idx)
}

func TestMeshSlotOptionsOverrideDefaults(t *testing.T) {
	ctx := context.Background()
	presenter := testutil.NewPresenter()
	mesh := navmesh.New(func(o *navmesh.Options) { o.Factory = newFactory() })

	main, err := mesh.Navigator("main", engine.WithPresenter(presenter))
	require.NoError(t, err)
	_, err = main.Navigate(ctx, "Home", nil)
	require.NoError(t, err)

	assert.Equal(t, "Home", fmt.Sprint(presenter.Content()))
}

func TestMeshSourcesAreShared(t *testing.T) {
	mesh := navmesh.New(func(o *navmesh.Options) { o.Factory = newFactory() })

	a, err := mesh.Source("tabs")
	require.NoError(t, err)
	b, err := mesh.Source("tabs")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = mesh.Navigator("tabs")
	assert.ErrorIs(t, err, registry.ErrSlotExists)
	assert.Equal(t, []string{"tabs"}, mesh.Registry().Names())
}

func TestMeshClose(t *testing.T) {
	ctx := context.Background()
	mesh := navmesh.New(func(o *navmesh.Options) { o.Factory = newFactory() })

	main, err := mesh.Navigator("main")
	require.NoError(t, err)
	_, err = main.Navigate(ctx, "Home", nil)
	require.NoError(t, err)

	require.NoError(t, mesh.Close(ctx))
	assert.Nil(t, main.Current())
	assert.Equal(t, 0, mesh.Registry().Len())
}

func TestMeshWithoutFactory(t *testing.T) {
	mesh := navmesh.New()
	main, err := mesh.Navigator("main")
	require.NoError(t, err)

	_, err = main.Navigate(context.Background(), "Home", nil)
	require.ErrorIs(t, err, core.ErrInstantiationFailed)
	assert.True(t, errors.Is(err, engine.ErrNoFactory))
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.SelectOnInsert = false

	mesh, err := navmesh.NewFromConfig(ctx, cfg, func(o *navmesh.Options) { o.Factory = newFactory() })
	require.NoError(t, err)
	t.Cleanup(func() { _ = mesh.Close(ctx) })

	docs, err := mesh.Collection("docs")
	require.NoError(t, err)
	_, err = docs.Add(ctx, "Doc", 1)
	require.NoError(t, err)
	_, err = docs.Add(ctx, "Doc", 2)
	require.NoError(t, err)

	idx, _ := docs.Selected()
	assert.Equal(t, 0, idx)
}

func TestNewFromConfigInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "xml"

	_, err := navmesh.NewFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func ExampleMesh() {
	ctx := context.Background()
	factory := core.FactoryFunc(func(_ context.Context, key core.TypeKey) (any, error) {
		return string(key) + "View", nil
	})

	mesh := navmesh.New(func(o *navmesh.Options) { o.Factory = factory })
	mesh.Subscribe(func(ev core.Event) {
		fmt.Println(ev.Type, ev.Slot, ev.Key)
	}, core.EventNavigated)

	main, _ := mesh.Navigator("main")
	_, _ = main.Navigate(ctx, "Home", nil)
	_, _ = main.Navigate(ctx, "Settings", nil)
	_, _ = main.GoBack(ctx)

	fmt.Println(main.Current().Unit, main.CanGoForward())
	// Output:
	// navigated main Home
	// navigated main Settings
	// navigated main Home
	// HomeView true
}
