package engine

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/event"
	"github.com/hupe1980/navmesh/logging"
)

// TracerName is the instrumentation scope used for transition spans.
const TracerName = "github.com/hupe1980/navmesh/engine"

// ErrNoFactory is returned when a slot has to create a unit but was built
// without a core.Factory.
var ErrNoFactory = errors.New("no factory configured")

// Options configures a slot using the functional options pattern. Every
// collaborator has a default so a slot can be built with no options at all;
// only Factory is needed as soon as units have to be created.
//
// Example:
//
//	nav := NewNavigator("main", func(o *Options) {
//	    o.Factory = myFactory
//	    o.Presenter = myHost
//	    o.Logger = logger
//	})
type Options struct {
	// Factory creates units for keys that are not reused.
	Factory core.Factory

	// Companions resolves the companion of a freshly created unit.
	// Defaults to core.NoCompanions.
	Companions core.CompanionResolver

	// Scanner discovers the nested slots of presented units.
	// Defaults to core.NoChildSlots.
	Scanner core.StructureScanner

	// Presenter hosts the content of a Navigator.
	// Defaults to core.NopPresenter.
	Presenter core.Presenter

	// ItemsPresenter hosts the items of a Collection.
	// Defaults to core.NopItemsPresenter.
	ItemsPresenter core.ItemsPresenter

	// Feed receives the slot's events. A private feed is created when nil,
	// reachable through the slot's Events method.
	Feed *event.Feed

	// Callbacks are run at fixed points of every transition.
	Callbacks *CallbackManager

	// Logger provides structured logging. Defaults to a NoOp logger.
	Logger logging.Logger

	// Tracer starts one span per transition. Defaults to the global tracer
	// provider, which is a no-op unless the host installs one.
	Tracer trace.Tracer

	// SelectOnInsert selects an entry as soon as it is inserted into a
	// collection. When false the selection only moves to keep pointing at
	// the same entry (or to the first entry of an empty collection).
	SelectOnInsert bool

	// DeferredDiscovery enables the one-step deferral of nested slot
	// discovery: a scanner reporting core.ErrNotVisible is retried once
	// after the presenter's AwaitVisible. When disabled such a unit is
	// treated as hosting no nested slots.
	DeferredDiscovery bool
}

func defaultOptions() Options {
	return Options{
		Companions:        core.NoCompanions,
		Scanner:           core.NoChildSlots,
		Presenter:         core.NopPresenter{},
		ItemsPresenter:    core.NopItemsPresenter{},
		Logger:            logging.NoOpLogger{},
		SelectOnInsert:    true,
		DeferredDiscovery: true,
	}
}

func buildOptions(optFns []func(o *Options)) Options {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Factory == nil {
		opts.Factory = core.FactoryFunc(func(context.Context, core.TypeKey) (any, error) {
			return nil, ErrNoFactory
		})
	}
	if opts.Companions == nil {
		opts.Companions = core.NoCompanions
	}
	if opts.Scanner == nil {
		opts.Scanner = core.NoChildSlots
	}
	if opts.Presenter == nil {
		opts.Presenter = core.NopPresenter{}
	}
	if opts.ItemsPresenter == nil {
		opts.ItemsPresenter = core.NopItemsPresenter{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(TracerName)
	}
	if opts.Feed == nil {
		opts.Feed = event.NewFeed(func(fo *event.FeedOptions) { fo.Logger = opts.Logger })
	}
	return opts
}

// WithFactory sets the unit factory.
func WithFactory(f core.Factory) func(o *Options) {
	return func(o *Options) { o.Factory = f }
}

// WithPresenter sets the content presenter of a Navigator.
func WithPresenter(p core.Presenter) func(o *Options) {
	return func(o *Options) { o.Presenter = p }
}

// WithItemsPresenter sets the items presenter of a Collection.
func WithItemsPresenter(p core.ItemsPresenter) func(o *Options) {
	return func(o *Options) { o.ItemsPresenter = p }
}

// WithScanner sets the structure scanner.
func WithScanner(s core.StructureScanner) func(o *Options) {
	return func(o *Options) { o.Scanner = s }
}

// WithFeed routes the slot's events to feed.
func WithFeed(feed *event.Feed) func(o *Options) {
	return func(o *Options) { o.Feed = feed }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}
