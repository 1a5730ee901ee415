package core

import (
	"context"
	"reflect"
)

// ActivationGuard lets a unit or its companion veto becoming active.
//
// Returning false refuses the activation; returning an error aborts the
// transition as a KindTransitionFailed failure. Guards may block (for
// example to ask the user) and should observe ctx.
type ActivationGuard interface {
	CanActivate(ctx context.Context, nav Navigation) (bool, error)
}

// DeactivationGuard lets the active unit or its companion veto being left.
type DeactivationGuard interface {
	CanDeactivate(ctx context.Context, nav Navigation) (bool, error)
}

// Target is the "target test" capability of selectable units. A unit (or its
// companion) that implements Target is registered for reuse, and a later
// navigation to key/parameter reuses it when IsTarget reports true.
type Target interface {
	IsTarget(key TypeKey, parameter any) bool
}

// LeavingHook is notified before the active unit is replaced or removed.
type LeavingHook interface {
	OnLeaving(ctx context.Context, nav Navigation) error
}

// ArrivingHook is notified before a unit's content is swapped in.
type ArrivingHook interface {
	OnArriving(ctx context.Context, nav Navigation) error
}

// ArrivedHook is notified after a unit's content has been swapped in.
type ArrivedHook interface {
	OnArrived(ctx context.Context, nav Navigation) error
}

// LoadedListener is a best-effort notification raised once a transition has
// been committed. Panics raised by listeners are recovered and logged.
type LoadedListener interface {
	OnLoaded(nav Navigation)
}

// Capabilities is the resolved capability set of a unit and its companion.
// Each slice holds the unit's implementation first, followed by the
// companion's. It is computed once by Probe and cached on the Entry, so the
// engine never re-inspects types during a transition.
type Capabilities struct {
	ActivationGuards   []ActivationGuard
	DeactivationGuards []DeactivationGuard
	Leaving            []LeavingHook
	Arriving           []ArrivingHook
	Arrived            []ArrivedHook
	Loaded             []LoadedListener
}

// Probe resolves the capability set for unit and companion. A companion that
// is the same instance as the unit is only inspected once.
func Probe(unit, companion any) Capabilities {
	var caps Capabilities

	for _, obj := range participants(unit, companion) {
		if g, ok := obj.(ActivationGuard); ok {
			caps.ActivationGuards = append(caps.ActivationGuards, g)
		}
		if g, ok := obj.(DeactivationGuard); ok {
			caps.DeactivationGuards = append(caps.DeactivationGuards, g)
		}
		if h, ok := obj.(LeavingHook); ok {
			caps.Leaving = append(caps.Leaving, h)
		}
		if h, ok := obj.(ArrivingHook); ok {
			caps.Arriving = append(caps.Arriving, h)
		}
		if h, ok := obj.(ArrivedHook); ok {
			caps.Arrived = append(caps.Arrived, h)
		}
		if l, ok := obj.(LoadedListener); ok {
			caps.Loaded = append(caps.Loaded, l)
		}
	}

	return caps
}

// ResolveTarget returns the target-test capability for a unit/companion pair.
// The companion is preferred; onCompanion reports which side supplied it.
func ResolveTarget(unit, companion any) (target Target, onCompanion bool, ok bool) {
	if companion != nil {
		if t, ok := companion.(Target); ok {
			return t, true, true
		}
	}
	if unit != nil {
		if t, ok := unit.(Target); ok {
			return t, false, true
		}
	}
	return nil, false, false
}

// SameInstance reports whether a and b denote the same object. Values whose
// dynamic type is not comparable are never considered the same.
func SameInstance(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func participants(unit, companion any) []any {
	objs := make([]any, 0, 2)
	if unit != nil {
		objs = append(objs, unit)
	}
	if companion != nil && !SameInstance(unit, companion) {
		objs = append(objs, companion)
	}
	return objs
}
