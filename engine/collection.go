package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/history"
	"github.com/hupe1980/navmesh/lifecycle"
)

// Collection is a multi-entry slot: an ordered list of entries with one
// selected position, presented through one or more core.ItemsPresenter.
//
// Selection rules:
//   - the selection is -1 exactly when the collection is empty
//   - inserting selects the new entry when Options.SelectOnInsert is set
//   - removing an entry before the selection shifts it down by one
//   - removing the selected entry selects the previous entry, or the first
//     one when the removed entry was first
//
// SelectedChanged is raised at most once per public operation, carrying the
// selection reached at its end, and only when index or entry changed.
type Collection struct {
	*slot
	list *history.List

	// presenters is written under the gate and presentersMu; Presenters
	// reads it under presentersMu only, so handlers may call it.
	presentersMu sync.RWMutex
	presenters   []core.ItemsPresenter
}

// NewCollection creates a multi-entry slot presented by
// Options.ItemsPresenter.
func NewCollection(name string, optFns ...func(o *Options)) *Collection {
	opts := buildOptions(optFns)
	return newCollection(name, opts, []core.ItemsPresenter{opts.ItemsPresenter})
}

func newCollection(name string, opts Options, presenters []core.ItemsPresenter) *Collection {
	return &Collection{
		slot:       newSlot(name, opts),
		list:       history.NewList(),
		presenters: presenters,
	}
}

type selection struct {
	index int
	entry *core.Entry
}

func (c *Collection) snapshot() selection {
	i, e := c.list.Selected()
	return selection{index: i, entry: e}
}

// announce raises SelectedChanged when the selection differs from before.
func (c *Collection) announce(ctx context.Context, before selection) {
	after := c.snapshot()
	if after == before {
		return
	}
	if after.index >= 0 {
		for _, p := range c.presenters {
			if err := p.SelectItem(ctx, after.index, after.entry.Unit); err != nil {
				c.log.LogWarn("Presenter failed to select item", "index", after.index, "error", err)
			}
		}
	}
	c.publish(core.NewSelectedChangedEvent(c.name, after.index, after.entry))
}

// Insert activates the unit for key/parameter and inserts it at index,
// 0 <= index <= Len. There is no current entry to deactivate, so only
// activation guards are consulted.
func (c *Collection) Insert(ctx context.Context, index int, key core.TypeKey, parameter any) (*core.Entry, error) {
	if err := c.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.gate.release()
	defer c.announce(ctx, c.snapshot())

	return c.insert(ctx, index, key, parameter)
}

// Add inserts at the end of the collection.
func (c *Collection) Add(ctx context.Context, key core.TypeKey, parameter any) (*core.Entry, error) {
	if err := c.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.gate.release()
	defer c.announce(ctx, c.snapshot())

	return c.insert(ctx, c.list.Len(), key, parameter)
}

func (c *Collection) insert(ctx context.Context, index int, key core.TypeKey, parameter any) (*core.Entry, error) {
	nav := core.Navigation{Slot: c.name, Kind: core.NavigationInsert, Key: key, Parameter: parameter}
	t := c.begin(ctx, opInsert, nav)
	ctx = t.ctx

	if n := c.list.Len(); index < 0 || index > n {
		return nil, t.fail(core.KindIndexOutOfRange, fmt.Errorf("%w: index %d, length %d", core.ErrIndexOutOfRange, index, n))
	}

	c.publish(core.NewNavigatingEvent(nav))
	if err := t.callback(CallbackBeforeTransition, nil, nil); err != nil {
		return nil, t.fail(core.KindTransitionFailed, err)
	}

	c.setState(StateActivating)
	candidate, isNew, kind, err := c.resolve(ctx, key, parameter)
	if err != nil {
		return nil, t.fail(kind, err)
	}
	if !isNew {
		inherit(candidate, c.list.Entries())
	}
	candidateNav := nav.For(c.name, candidate)

	r, err := lifecycle.CanActivate(ctx, candidateNav, candidate)
	if f := t.guard(r, err, core.KindActivationRefused); f != nil {
		return nil, f
	}

	if isNew {
		if err := lifecycle.Arriving(ctx, candidateNav, candidate); err != nil {
			return nil, t.fail(core.KindTransitionFailed, err)
		}
	}

	if err := c.presentInsert(ctx, index, candidate.Unit); err != nil {
		return nil, t.fail(core.KindTransitionFailed, fmt.Errorf("insert item: %w", err))
	}
	if err := c.discover(ctx, candidate, c.awaiter()); err != nil {
		c.unpresentInsert(ctx, index, candidate.Unit)
		return nil, t.fail(core.KindTransitionFailed, err)
	}
	if isNew {
		if err := lifecycle.Arrived(ctx, candidateNav, candidate); err != nil {
			c.unpresentInsert(ctx, index, candidate.Unit)
			return nil, t.fail(core.KindTransitionFailed, err)
		}
	}

	c.setState(StateCommitting)
	sel, _ := c.list.Selected()
	if err := c.list.Insert(index, candidate); err != nil {
		c.unpresentInsert(ctx, index, candidate.Unit)
		return nil, t.fail(core.KindIndexOutOfRange, err)
	}
	switch {
	case c.opts.SelectOnInsert || sel < 0:
		sel = index
	case index <= sel:
		sel++
	}
	_ = c.list.SetSelected(sel)

	if isNew && c.registry.TryAdd(candidate.Key, candidate.Unit, candidate.Companion) {
		c.log.LogDebug("Selectable unit registered", "key", string(candidate.Key))
	}
	t.committed(candidate)

	lifecycle.Loaded(candidateNav, candidate, c.log)
	c.publish(core.NewNavigatedEvent(nav, candidate))
	t.done(candidate, isNew)

	return candidate, nil
}

// RemoveAt removes the entry at index after consulting its deactivation
// guards.
func (c *Collection) RemoveAt(ctx context.Context, index int) error {
	if err := c.gate.acquire(ctx); err != nil {
		return err
	}
	defer c.gate.release()
	defer c.announce(ctx, c.snapshot())

	return c.remove(ctx, index)
}

// Remove removes entry. It returns core.ErrEntryNotFound when entry is not
// part of the collection.
func (c *Collection) Remove(ctx context.Context, entry *core.Entry) error {
	if err := c.gate.acquire(ctx); err != nil {
		return err
	}
	defer c.gate.release()
	defer c.announce(ctx, c.snapshot())

	index := c.list.IndexOf(entry)
	if index < 0 {
		return fmt.Errorf("%w: %s in slot %q", core.ErrEntryNotFound, entry, c.name)
	}
	return c.remove(ctx, index)
}

// Clear removes every entry, last first. Entries whose guards refuse stay;
// the number of removed entries is returned together with the joined
// failures of the entries that stayed.
func (c *Collection) Clear(ctx context.Context) (int, error) {
	if err := c.gate.acquire(ctx); err != nil {
		return 0, err
	}
	defer c.gate.release()
	defer c.announce(ctx, c.snapshot())

	var (
		removed int
		errs    []error
	)
	for i := c.list.Len() - 1; i >= 0; i-- {
		if err := c.remove(ctx, i); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func (c *Collection) remove(ctx context.Context, index int) error {
	entry, err := c.list.At(index)
	if err != nil {
		t := c.begin(ctx, opRemove, core.Navigation{Slot: c.name, Kind: core.NavigationRemove})
		return t.fail(core.KindIndexOutOfRange, err)
	}

	nav := core.Navigation{Slot: c.name, Kind: core.NavigationRemove, Key: entry.Key, Parameter: entry.Parameter}
	t := c.begin(ctx, opRemove, nav)
	ctx = t.ctx

	c.publish(core.NewNavigatingEvent(nav))
	if err := t.callback(CallbackBeforeTransition, entry, nil); err != nil {
		return t.fail(core.KindTransitionFailed, err)
	}

	c.setState(StateDeactivating)
	r, err := lifecycle.CanDeactivate(ctx, nav, entry)
	if f := t.guard(r, err, core.KindDeactivationRefused); f != nil {
		return f
	}
	if err := lifecycle.Leaving(ctx, nav, entry); err != nil {
		return t.fail(core.KindTransitionFailed, err)
	}
	if err := c.presentRemove(ctx, index, entry.Unit); err != nil {
		return t.fail(core.KindTransitionFailed, fmt.Errorf("remove item: %w", err))
	}

	c.setState(StateCommitting)
	sel, _ := c.list.Selected()
	if _, err := c.list.RemoveAt(index); err != nil {
		return t.fail(core.KindIndexOutOfRange, err)
	}
	c.reselectAfterRemove(index, sel)
	c.evict(ctx, []*core.Entry{entry}, c.list.References)
	t.committed(entry)

	c.publish(core.NewNavigatedEvent(nav, entry))
	t.done(entry, false)
	return nil
}

// reselectAfterRemove restores the selection invariant after the entry at
// removed was taken out of a list whose selection was sel.
func (c *Collection) reselectAfterRemove(removed, sel int) {
	switch n := c.list.Len(); {
	case n == 0:
		sel = -1
	case removed < sel:
		sel--
	case removed == sel && sel > 0:
		sel--
	case removed == sel:
		sel = 0
	}
	_ = c.list.SetSelected(sel)
}

// SetSelected selects the entry at index; -1 is only valid when the
// collection is empty.
func (c *Collection) SetSelected(ctx context.Context, index int) error {
	if err := c.gate.acquire(ctx); err != nil {
		return err
	}
	defer c.gate.release()
	defer c.announce(ctx, c.snapshot())

	if index == -1 && c.list.Len() > 0 {
		return core.NewFailure(core.KindIndexOutOfRange, opSelect, c.name, "", nil,
			fmt.Errorf("%w: a non-empty collection keeps a selection", core.ErrIndexOutOfRange))
	}
	if err := c.list.SetSelected(index); err != nil {
		return core.NewFailure(core.KindIndexOutOfRange, opSelect, c.name, "", nil, err)
	}
	return nil
}

// Reset removes every entry without consulting guards or hooks.
func (c *Collection) Reset(ctx context.Context) error {
	if err := c.gate.acquire(ctx); err != nil {
		return err
	}
	defer c.gate.release()
	defer c.announce(ctx, c.snapshot())

	all := c.list.Reset()
	var errs []error
	for i := len(all) - 1; i >= 0; i-- {
		if err := c.presentRemove(ctx, i, all[i].Unit); err != nil {
			errs = append(errs, fmt.Errorf("remove item %d: %w", i, err))
		}
	}
	c.registry.Clear()
	c.evict(ctx, all, func(any) bool { return false })
	return errors.Join(errs...)
}

// ActiveEntries implements core.SlotHandle: every entry of a collection
// takes part in nested cascades.
func (c *Collection) ActiveEntries() []*core.Entry { return c.list.Entries() }

// Entries returns the entries in order.
func (c *Collection) Entries() []*core.Entry { return c.list.Entries() }

// Len returns the number of entries.
func (c *Collection) Len() int { return c.list.Len() }

// Selected returns the selected index and entry.
func (c *Collection) Selected() (int, *core.Entry) { return c.list.Selected() }

func (c *Collection) awaiter() any {
	for _, p := range c.presenters {
		if _, ok := p.(core.VisibilityAwaiter); ok {
			return p
		}
	}
	return nil
}

func (c *Collection) presentInsert(ctx context.Context, index int, unit any) error {
	for i, p := range c.presenters {
		if err := p.InsertItem(ctx, index, unit); err != nil {
			for _, done := range c.presenters[:i] {
				_ = done.RemoveItem(ctx, index, unit)
			}
			return err
		}
	}
	return nil
}

func (c *Collection) unpresentInsert(ctx context.Context, index int, unit any) {
	for _, p := range c.presenters {
		if err := p.RemoveItem(ctx, index, unit); err != nil {
			c.log.LogError("Rolling back inserted item failed", "index", index, "error", err)
		}
	}
}

func (c *Collection) presentRemove(ctx context.Context, index int, unit any) error {
	for i, p := range c.presenters {
		if err := p.RemoveItem(ctx, index, unit); err != nil {
			for _, done := range c.presenters[:i] {
				_ = done.InsertItem(ctx, index, unit)
			}
			return err
		}
	}
	return nil
}

var _ core.SlotHandle = (*Collection)(nil)
