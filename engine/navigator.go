package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/history"
	"github.com/hupe1980/navmesh/lifecycle"
)

// Navigator is a single-current slot: it shows exactly one unit at a time
// and keeps back/forward history in a history.Journal.
//
// Every public operation runs to completion before the next one on the same
// Navigator starts. Guards, hooks and event handlers run on the calling
// goroutine while the slot is locked, so they must not call back into the
// same Navigator.
type Navigator struct {
	*slot
	journal *history.Journal
}

// NewNavigator creates a single-current slot named name.
func NewNavigator(name string, optFns ...func(o *Options)) *Navigator {
	n := &Navigator{slot: newSlot(name, buildOptions(optFns))}
	n.journal = history.NewJournal(func(o *history.JournalOptions) {
		o.OnCanGoBackChanged = func(v bool) {
			n.publish(core.NewCanGoBackChangedEvent(n.name, v))
		}
		o.OnCanGoForwardChanged = func(v bool) {
			n.publish(core.NewCanGoForwardChangedEvent(n.name, v))
		}
	})
	return n
}

// activation describes what a single-current transition activates and how
// it is committed to the journal.
type activation struct {
	kind      core.NavigationKind
	key       core.TypeKey
	parameter any
	// target is the entry restored by back/forward/root navigation; nil
	// when the candidate has to be resolved.
	target *core.Entry
	// commit updates the journal and returns the entries that left it.
	commit func(candidate *core.Entry) ([]*core.Entry, error)
}

// Navigate shows the unit for key/parameter, reusing a registered selectable
// unit when one accepts the parameter. On success the new entry is
// returned; on refusal or failure a *core.Failure is returned and the slot
// is left exactly as it was.
func (n *Navigator) Navigate(ctx context.Context, key core.TypeKey, parameter any) (*core.Entry, error) {
	if err := n.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer n.gate.release()

	return n.run(ctx, opNavigate, activation{
		kind:      core.NavigationNew,
		key:       key,
		parameter: parameter,
		commit: func(candidate *core.Entry) ([]*core.Entry, error) {
			return n.journal.Navigate(candidate), nil
		},
	})
}

// Redirect navigates like Navigate but leaves no back entry for the previous
// current, so the replaced step cannot be revisited. The push and the drop
// are one journal update. The slot stays locked for the whole transition, so
// the dropped entry is always the one current when Redirect started.
func (n *Navigator) Redirect(ctx context.Context, key core.TypeKey, parameter any) (*core.Entry, error) {
	if err := n.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer n.gate.release()

	return n.run(ctx, opRedirect, activation{
		kind:      core.NavigationRedirect,
		key:       key,
		parameter: parameter,
		commit: func(candidate *core.Entry) ([]*core.Entry, error) {
			return n.journal.Redirect(candidate, nil), nil
		},
	})
}

// GoBack restores the previous entry. It returns core.ErrNoHistory, without
// raising any event, when there is nothing to go back to.
func (n *Navigator) GoBack(ctx context.Context) (*core.Entry, error) {
	if err := n.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer n.gate.release()

	target := n.journal.PeekBack()
	if target == nil {
		return nil, core.ErrNoHistory
	}
	return n.run(ctx, opGoBack, activation{
		kind:      core.NavigationBack,
		key:       target.Key,
		parameter: target.Parameter,
		target:    target,
		commit: func(*core.Entry) ([]*core.Entry, error) {
			return nil, n.journal.GoBack()
		},
	})
}

// GoForward restores the next entry. It returns core.ErrNoHistory when the
// forward stack is empty.
func (n *Navigator) GoForward(ctx context.Context) (*core.Entry, error) {
	if err := n.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer n.gate.release()

	target := n.journal.PeekForward()
	if target == nil {
		return nil, core.ErrNoHistory
	}
	return n.run(ctx, opGoForward, activation{
		kind:      core.NavigationForward,
		key:       target.Key,
		parameter: target.Parameter,
		target:    target,
		commit: func(*core.Entry) ([]*core.Entry, error) {
			return nil, n.journal.GoForward()
		},
	})
}

// NavigateToRoot makes the root entry current and discards every other
// entry. It returns core.ErrNoHistory when the back stack is empty.
func (n *Navigator) NavigateToRoot(ctx context.Context) (*core.Entry, error) {
	if err := n.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer n.gate.release()

	if !n.journal.CanGoBack() {
		return nil, core.ErrNoHistory
	}
	target := n.journal.Root()
	return n.run(ctx, opRoot, activation{
		kind:      core.NavigationRoot,
		key:       target.Key,
		parameter: target.Parameter,
		target:    target,
		commit: func(*core.Entry) ([]*core.Entry, error) {
			return n.journal.NavigateToRoot()
		},
	})
}

// run executes one single-current transition. The caller holds the gate.
func (n *Navigator) run(ctx context.Context, op string, a activation) (*core.Entry, error) {
	nav := core.Navigation{Slot: n.name, Kind: a.kind, Key: a.key, Parameter: a.parameter}
	t := n.begin(ctx, op, nav)
	ctx = t.ctx

	current := n.journal.Current()
	if current != nil {
		n.publish(core.NewNavigatingEvent(nav))
	}
	if err := t.callback(CallbackBeforeTransition, a.target, nil); err != nil {
		return nil, t.fail(core.KindTransitionFailed, err)
	}

	// 1. Deactivation guards, leaves first.
	if current != nil {
		n.setState(StateDeactivating)
		r, err := lifecycle.CanDeactivate(ctx, nav.For(n.name, current), current)
		if f := t.guard(r, err, core.KindDeactivationRefused); f != nil {
			return nil, f
		}
	}

	// 2. Candidate resolution.
	n.setState(StateActivating)
	candidate, isNew := a.target, false
	if candidate == nil {
		e, fresh, kind, err := n.resolve(ctx, a.key, a.parameter)
		if err != nil {
			return nil, t.fail(kind, err)
		}
		candidate, isNew = e, fresh
		if !isNew {
			inherit(candidate, n.entries())
		}
	}
	candidateNav := nav.For(n.name, candidate)

	// 3. Activation guards, parent first.
	r, err := lifecycle.CanActivate(ctx, candidateNav, candidate)
	if f := t.guard(r, err, core.KindActivationRefused); f != nil {
		return nil, f
	}

	// Restored entries are shown again, so they are notified like new ones.
	notify := isNew || a.target != nil

	// 4. Leaving / arriving.
	if current != nil {
		if err := lifecycle.Leaving(ctx, nav.For(n.name, current), current); err != nil {
			return nil, t.fail(core.KindTransitionFailed, err)
		}
	}
	if notify {
		if err := lifecycle.Arriving(ctx, candidateNav, candidate); err != nil {
			return nil, t.fail(core.KindTransitionFailed, err)
		}
	}

	// 5. Content swap.
	if err := n.opts.Presenter.SetContent(ctx, candidate.Unit); err != nil {
		return nil, t.fail(core.KindTransitionFailed, fmt.Errorf("set content: %w", err))
	}

	// 6. Nested slot discovery, 7. arrived.
	if err := n.discover(ctx, candidate, n.opts.Presenter); err != nil {
		n.restoreContent(ctx, current)
		return nil, t.fail(core.KindTransitionFailed, err)
	}
	if notify {
		if err := lifecycle.Arrived(ctx, candidateNav, candidate); err != nil {
			n.restoreContent(ctx, current)
			return nil, t.fail(core.KindTransitionFailed, err)
		}
	}

	// 8. Commit.
	n.setState(StateCommitting)
	evicted, err := a.commit(candidate)
	if err != nil {
		n.restoreContent(ctx, current)
		return nil, t.fail(core.KindTransitionFailed, fmt.Errorf("commit: %w", err))
	}
	n.evict(ctx, evicted, n.journal.References)
	if isNew && n.registry.TryAdd(candidate.Key, candidate.Unit, candidate.Companion) {
		n.log.LogDebug("Selectable unit registered", "key", string(candidate.Key))
	}
	t.committed(candidate)

	// 9. Loaded, navigated.
	lifecycle.Loaded(candidateNav, candidate, n.log)
	n.publish(core.NewNavigatedEvent(nav, candidate))
	t.done(candidate, isNew)

	return candidate, nil
}

// restoreContent puts the previous unit back after a failure that happened
// once the candidate had been swapped in.
func (n *Navigator) restoreContent(ctx context.Context, previous *core.Entry) {
	var unit any
	if previous != nil {
		unit = previous.Unit
	}
	if err := n.opts.Presenter.SetContent(ctx, unit); err != nil {
		n.log.LogError("Restoring previous content failed", "error", err)
	}
}

// Clear leaves the current entry and drops the whole history, consulting the
// deactivation guards of the current entry first.
func (n *Navigator) Clear(ctx context.Context) error {
	if err := n.gate.acquire(ctx); err != nil {
		return err
	}
	defer n.gate.release()

	if n.journal.Len() == 0 {
		return nil
	}

	current := n.journal.Current()
	nav := core.Navigation{Slot: n.name, Kind: core.NavigationRemove}
	if current != nil {
		nav = nav.For(n.name, current)
	}
	t := n.begin(ctx, opClear, nav)
	ctx = t.ctx

	if current != nil {
		n.setState(StateDeactivating)
		r, err := lifecycle.CanDeactivate(ctx, nav, current)
		if f := t.guard(r, err, core.KindDeactivationRefused); f != nil {
			return f
		}
		if err := lifecycle.Leaving(ctx, nav, current); err != nil {
			return t.fail(core.KindTransitionFailed, err)
		}
	}
	if err := n.opts.Presenter.SetContent(ctx, nil); err != nil {
		return t.fail(core.KindTransitionFailed, fmt.Errorf("set content: %w", err))
	}

	n.setState(StateCommitting)
	n.release(ctx, n.journal.Clear())
	t.committed(nil)
	t.done(nil, false)
	return nil
}

// Reset drops the whole history without consulting guards or hooks. It is
// called on nested slots whose owning entry has been evicted.
func (n *Navigator) Reset(ctx context.Context) error {
	if err := n.gate.acquire(ctx); err != nil {
		return err
	}
	defer n.gate.release()

	var errs []error
	if n.journal.Len() > 0 {
		if err := n.opts.Presenter.SetContent(ctx, nil); err != nil {
			errs = append(errs, fmt.Errorf("set content: %w", err))
		}
	}
	n.release(ctx, n.journal.Clear())
	return errors.Join(errs...)
}

func (n *Navigator) release(ctx context.Context, all []*core.Entry) {
	n.registry.Clear()
	n.evict(ctx, all, func(any) bool { return false })
}

// ActiveEntries implements core.SlotHandle: the current entry, if any.
func (n *Navigator) ActiveEntries() []*core.Entry {
	if c := n.journal.Current(); c != nil {
		return []*core.Entry{c}
	}
	return nil
}

// Current returns the current entry or nil.
func (n *Navigator) Current() *core.Entry { return n.journal.Current() }

// CanGoBack reports whether GoBack has an entry to restore.
func (n *Navigator) CanGoBack() bool { return n.journal.CanGoBack() }

// CanGoForward reports whether GoForward has an entry to restore.
func (n *Navigator) CanGoForward() bool { return n.journal.CanGoForward() }

// BackStack returns the back stack, root first.
func (n *Navigator) BackStack() []*core.Entry { return n.journal.Back() }

// ForwardStack returns the forward stack, next entry first.
func (n *Navigator) ForwardStack() []*core.Entry { return n.journal.Forward() }

func (n *Navigator) entries() []*core.Entry {
	out := n.journal.Back()
	if c := n.journal.Current(); c != nil {
		out = append(out, c)
	}
	return append(out, n.journal.Forward()...)
}

var _ core.SlotHandle = (*Navigator)(nil)
