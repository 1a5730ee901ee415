package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/navmesh/core"
)

// Refusal identifies the entry whose guard declined a transition.
type Refusal struct {
	Slot  string
	Entry *core.Entry
}

// Error implements error so a refusal can travel as a failure cause.
func (r *Refusal) Error() string {
	return fmt.Sprintf("refused by %s in slot %q", r.Entry, r.Slot)
}

// CanDeactivate asks entry and every active entry below it whether they may
// be left. Nested entries are asked before their parent. A refusal returns
// the refusing entry; a guard error aborts the walk.
func CanDeactivate(ctx context.Context, nav core.Navigation, entry *core.Entry) (*Refusal, error) {
	if entry == nil {
		return nil, nil
	}
	for _, child := range entry.Children() {
		for _, ce := range child.ActiveEntries() {
			r, err := CanDeactivate(ctx, nav.For(child.Name(), ce), ce)
			if r != nil || err != nil {
				return r, err
			}
		}
	}
	for _, g := range entry.Capabilities().DeactivationGuards {
		ok, err := g.CanDeactivate(ctx, nav)
		if err != nil {
			return nil, fmt.Errorf("can deactivate %s: %w", entry, err)
		}
		if !ok {
			return &Refusal{Slot: nav.Slot, Entry: entry}, nil
		}
	}
	return nil, nil
}

// CanActivate asks entry, then every active entry below it, whether they may
// become active.
func CanActivate(ctx context.Context, nav core.Navigation, entry *core.Entry) (*Refusal, error) {
	if entry == nil {
		return nil, nil
	}
	for _, g := range entry.Capabilities().ActivationGuards {
		ok, err := g.CanActivate(ctx, nav)
		if err != nil {
			return nil, fmt.Errorf("can activate %s: %w", entry, err)
		}
		if !ok {
			return &Refusal{Slot: nav.Slot, Entry: entry}, nil
		}
	}
	for _, child := range entry.Children() {
		for _, ce := range child.ActiveEntries() {
			r, err := CanActivate(ctx, nav.For(child.Name(), ce), ce)
			if r != nil || err != nil {
				return r, err
			}
		}
	}
	return nil, nil
}

// Leaving notifies entry and its nested entries, leaves first.
func Leaving(ctx context.Context, nav core.Navigation, entry *core.Entry) error {
	if entry == nil {
		return nil
	}
	for _, child := range entry.Children() {
		for _, ce := range child.ActiveEntries() {
			if err := Leaving(ctx, nav.For(child.Name(), ce), ce); err != nil {
				return err
			}
		}
	}
	for _, h := range entry.Capabilities().Leaving {
		if err := h.OnLeaving(ctx, nav); err != nil {
			return fmt.Errorf("leaving %s: %w", entry, err)
		}
	}
	return nil
}

// Arriving notifies entry and then its nested entries before content swaps.
func Arriving(ctx context.Context, nav core.Navigation, entry *core.Entry) error {
	return downward(ctx, nav, entry, "arriving", func(ctx context.Context, nav core.Navigation, e *core.Entry) error {
		for _, h := range e.Capabilities().Arriving {
			if err := h.OnArriving(ctx, nav); err != nil {
				return err
			}
		}
		return nil
	})
}

// Arrived notifies entry and then its nested entries after content swapped.
func Arrived(ctx context.Context, nav core.Navigation, entry *core.Entry) error {
	return downward(ctx, nav, entry, "arrived", func(ctx context.Context, nav core.Navigation, e *core.Entry) error {
		for _, h := range e.Capabilities().Arrived {
			if err := h.OnArrived(ctx, nav); err != nil {
				return err
			}
		}
		return nil
	})
}

func downward(ctx context.Context, nav core.Navigation, entry *core.Entry, phase string, visit func(context.Context, core.Navigation, *core.Entry) error) error {
	if entry == nil {
		return nil
	}
	if err := visit(ctx, nav, entry); err != nil {
		return fmt.Errorf("%s %s: %w", phase, entry, err)
	}
	for _, child := range entry.Children() {
		for _, ce := range child.ActiveEntries() {
			if err := downward(ctx, nav.For(child.Name(), ce), ce, phase, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

// Loaded raises the best-effort loaded notification on entry and its nested
// entries. Panics are recovered and reported through log; they never reach
// the caller.
func Loaded(nav core.Navigation, entry *core.Entry, log *core.LoggerAdapter) {
	if entry == nil {
		return
	}
	for _, l := range entry.Capabilities().Loaded {
		safeLoaded(l, nav, entry, log)
	}
	for _, child := range entry.Children() {
		for _, ce := range child.ActiveEntries() {
			Loaded(nav.For(child.Name(), ce), ce, log)
		}
	}
}

func safeLoaded(l core.LoadedListener, nav core.Navigation, entry *core.Entry, log *core.LoggerAdapter) {
	defer func() {
		if r := recover(); r != nil {
			log.LogErrorWithStack(fmt.Errorf("panic: %v", r), "Loaded listener panicked",
				"slot", nav.Slot, "key", string(entry.Key))
		}
	}()
	l.OnLoaded(nav)
}

// Release resets every nested slot attached to entry and detaches them. It
// is used when the entry's unit leaves every store of its slot.
func Release(ctx context.Context, entry *core.Entry) error {
	if entry == nil {
		return nil
	}
	var errs []error
	for _, child := range entry.DetachChildren() {
		if err := child.Reset(ctx); err != nil {
			errs = append(errs, fmt.Errorf("reset slot %q: %w", child.Name(), err))
		}
	}
	return errors.Join(errs...)
}
