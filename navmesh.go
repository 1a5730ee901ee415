// Package navmesh provides a high-level façade over the navigation engine.
// Most applications interact with this package by:
//  1. Creating a Mesh via New() or NewFromConfig() with a unit factory
//  2. Creating named slots (Navigator, Collection, Source) for their hosts
//  3. Navigating those slots and observing the shared event feed
//
// The façade delegates transitions to the engine package while keeping
// setup concise: every slot created through a Mesh shares the same factory,
// companion resolver, structure scanner, logger, tracer and event feed.
package navmesh

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/navmesh/config"
	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/engine"
	"github.com/hupe1980/navmesh/event"
	"github.com/hupe1980/navmesh/internal/telemetry"
	"github.com/hupe1980/navmesh/logging"
	"github.com/hupe1980/navmesh/registry"
)

// Options configures the Mesh instance.
type Options struct {
	// Factory creates units for navigation keys.
	Factory core.Factory

	// Companions pairs units with their logic objects (optional).
	Companions core.CompanionResolver

	// Scanner discovers nested slots hosted by units (optional).
	Scanner core.StructureScanner

	// Callbacks run at fixed points of every transition (optional).
	Callbacks *engine.CallbackManager

	// Tracer overrides the global tracer for transition spans (optional).
	Tracer trace.Tracer

	// SelectOnInsert selects entries as soon as they are added to a
	// collection.
	SelectOnInsert bool

	// DeferredDiscovery retries nested slot discovery once after the host
	// reports the unit visible.
	DeferredDiscovery bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating slots, the shared event feed and
// the slot registry.
type Mesh struct {
	opts     Options
	feed     *event.Feed
	registry *registry.Registry
	shutdown telemetry.Shutdown
}

// New creates a new Mesh with optional overrides.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		SelectOnInsert:    true,
		DeferredDiscovery: true,
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	feed := event.NewFeed(func(o *event.FeedOptions) { o.Logger = opts.Logger })

	m := &Mesh{opts: opts, feed: feed, shutdown: telemetry.Noop}
	m.registry = registry.New(func(o *registry.Options) {
		o.Logger = opts.Logger
		o.Engine = []func(o *engine.Options){m.engineDefaults}
	})
	return m
}

// NewFromConfig creates a Mesh whose logger, tracing and slot defaults come
// from cfg. Options applied by optFns take precedence over cfg.
func NewFromConfig(ctx context.Context, cfg config.Config, optFns ...func(o *Options)) (*Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     cfg.Level(),
		Format:    cfg.LogFormat,
		Output:    os.Stderr,
		AddSource: cfg.LogSource,
		Component: "navmesh",
	})

	shutdown, err := telemetry.Setup(ctx, cfg.TracingEndpoint(), cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	defaults := func(o *Options) {
		o.Logger = logger
		o.SelectOnInsert = cfg.SelectOnInsert
		o.DeferredDiscovery = cfg.DeferredDiscovery
	}

	m := New(append([]func(o *Options){defaults}, optFns...)...)
	m.shutdown = shutdown
	return m, nil
}

func (m *Mesh) engineDefaults(o *engine.Options) {
	o.Factory = m.opts.Factory
	o.Companions = m.opts.Companions
	o.Scanner = m.opts.Scanner
	o.Callbacks = m.opts.Callbacks
	o.Tracer = m.opts.Tracer
	o.SelectOnInsert = m.opts.SelectOnInsert
	o.DeferredDiscovery = m.opts.DeferredDiscovery
	o.Logger = m.opts.Logger
	o.Feed = m.feed
}

// Navigator creates a single-current slot named name.
func (m *Mesh) Navigator(name string, optFns ...func(o *engine.Options)) (*engine.Navigator, error) {
	return m.registry.NewNavigator(name, optFns...)
}

// Collection creates a multi-entry slot named name.
func (m *Mesh) Collection(name string, optFns ...func(o *engine.Options)) (*engine.Collection, error) {
	return m.registry.NewCollection(name, optFns...)
}

// Source returns the sync source shared under name, creating it on first use.
func (m *Mesh) Source(name string, optFns ...func(o *engine.Options)) (*engine.SyncSource, error) {
	return m.registry.GetOrCreateSource(name, optFns...)
}

// Events returns the feed every slot of the mesh publishes to.
func (m *Mesh) Events() *event.Feed { return m.feed }

// Subscribe registers fn for the given event types (all types when none are
// given) and returns the subscription ID accepted by Events().Cancel.
func (m *Mesh) Subscribe(fn func(core.Event), types ...core.EventType) string {
	return m.feed.SubscribeFunc(fn, types...)
}

// Registry exposes the named slots of the mesh.
func (m *Mesh) Registry() *registry.Registry { return m.registry }

// Close releases every slot and flushes pending spans.
func (m *Mesh) Close(ctx context.Context) error {
	return errors.Join(
		m.registry.Close(ctx),
		m.shutdown(ctx),
	)
}
