package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/engine"
	"github.com/hupe1980/navmesh/logging"
)

var (
	// ErrSlotExists is returned when a name is already taken.
	ErrSlotExists = errors.New("slot already registered")
	// ErrSlotNotFound is returned when no slot is registered under a name.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrWrongKind is returned when a slot exists but is not of the
	// requested kind.
	ErrWrongKind = errors.New("slot has a different kind")
)

// Options configures a Registry.
type Options struct {
	// Engine options applied to every slot the registry creates, before the
	// per-call options.
	Engine []func(o *engine.Options)

	// Logger provides structured logging. Defaults to a NoOp logger.
	Logger logging.Logger
}

// Registry maps names to slots and sync sources. It is safe for concurrent use.
type Registry struct {
	opts    Options
	log     *core.LoggerAdapter
	mu      sync.RWMutex
	slots   map[string]core.SlotHandle
	sources map[string]*engine.SyncSource
}

// New creates an empty registry.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		opts:    opts,
		log:     core.NewLoggerAdapter(opts.Logger),
		slots:   make(map[string]core.SlotHandle),
		sources: make(map[string]*engine.SyncSource),
	}
}

func (r *Registry) engineOptions(optFns []func(o *engine.Options)) []func(o *engine.Options) {
	all := make([]func(o *engine.Options), 0, len(r.opts.Engine)+len(optFns))
	all = append(all, r.opts.Engine...)
	return append(all, optFns...)
}

// NewNavigator creates and registers a single-current slot.
func (r *Registry) NewNavigator(name string, optFns ...func(o *engine.Options)) (*engine.Navigator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.available(name); err != nil {
		return nil, err
	}
	nav := engine.NewNavigator(name, r.engineOptions(optFns)...)
	r.slots[name] = nav
	r.log.LogDebug("Slot registered", "slot", name, "kind", "navigator")
	return nav, nil
}

// NewCollection creates and registers a multi-entry slot.
func (r *Registry) NewCollection(name string, optFns ...func(o *engine.Options)) (*engine.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.available(name); err != nil {
		return nil, err
	}
	c := engine.NewCollection(name, r.engineOptions(optFns)...)
	r.slots[name] = c
	r.log.LogDebug("Slot registered", "slot", name, "kind", "collection")
	return c, nil
}

// Register adds an existing slot under its own name.
func (r *Registry) Register(slot core.SlotHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.available(slot.Name()); err != nil {
		return err
	}
	r.slots[slot.Name()] = slot
	r.log.LogDebug("Slot registered", "slot", slot.Name())
	return nil
}

// available must be called with mu held.
func (r *Registry) available(name string) error {
	if _, ok := r.slots[name]; ok {
		return fmt.Errorf("%w: %q", ErrSlotExists, name)
	}
	if _, ok := r.sources[name]; ok {
		return fmt.Errorf("%w: %q", ErrSlotExists, name)
	}
	return nil
}

// Slot returns the slot registered under name.
func (r *Registry) Slot(name string) (core.SlotHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[name]
	return s, ok
}

// Navigator returns the single-current slot registered under name.
func (r *Registry) Navigator(name string) (*engine.Navigator, error) {
	s, ok := r.Slot(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSlotNotFound, name)
	}
	nav, ok := s.(*engine.Navigator)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T", ErrWrongKind, name, s)
	}
	return nav, nil
}

// Collection returns the multi-entry slot registered under name.
func (r *Registry) Collection(name string) (*engine.Collection, error) {
	s, ok := r.Slot(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSlotNotFound, name)
	}
	c, ok := s.(*engine.Collection)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T", ErrWrongKind, name, s)
	}
	return c, nil
}

// Remove unregisters the slot and releases its history without consulting
// guards.
func (r *Registry) Remove(ctx context.Context, name string) error {
	r.mu.Lock()
	s, ok := r.slots[name]
	delete(r.slots, name)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, name)
	}
	r.log.LogDebug("Slot removed", "slot", name)
	return s.Reset(ctx)
}

// Names returns the sorted names of all registered slots and sources.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.slots)+len(r.sources))
	for name := range r.slots {
		names = append(names, name)
	}
	for name := range r.sources {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of registered slots and sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots) + len(r.sources)
}

// Source returns the sync source shared under name.
func (r *Registry) Source(name string) (*engine.SyncSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[name]
	return s, ok
}

// GetOrCreateSource returns the sync source shared under name, creating it
// with optFns on first use. Options are ignored for an existing source.
func (r *Registry) GetOrCreateSource(name string, optFns ...func(o *engine.Options)) (*engine.SyncSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sources[name]; ok {
		return s, nil
	}
	if _, ok := r.slots[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrSlotExists, name)
	}
	s := engine.NewSyncSource(name, r.engineOptions(optFns)...)
	r.sources[name] = s
	r.log.LogDebug("Source created", "slot", name)
	return s, nil
}

// RemoveSource unregisters the shared source and releases its entries.
func (r *Registry) RemoveSource(ctx context.Context, name string) error {
	r.mu.Lock()
	s, ok := r.sources[name]
	delete(r.sources, name)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, name)
	}
	r.log.LogDebug("Source removed", "slot", name, "presenters", s.Presenters())
	return s.Reset(ctx)
}

// Close removes every slot and source, releasing their histories.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	slots := make([]core.SlotHandle, 0, len(r.slots)+len(r.sources))
	for _, s := range r.slots {
		slots = append(slots, s)
	}
	for _, s := range r.sources {
		slots = append(slots, s)
	}
	r.slots = make(map[string]core.SlotHandle)
	r.sources = make(map[string]*engine.SyncSource)
	r.mu.Unlock()

	var errs []error
	for _, s := range slots {
		if err := s.Reset(ctx); err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
