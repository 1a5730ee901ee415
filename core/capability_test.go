package core

import (
	"context"
	"testing"
)

type guardedUnit struct{}

func (*guardedUnit) CanActivate(context.Context, Navigation) (bool, error)   { return true, nil }
func (*guardedUnit) CanDeactivate(context.Context, Navigation) (bool, error) { return true, nil }
func (*guardedUnit) OnArrived(context.Context, Navigation) error              { return nil }

type targetCompanion struct{ match any }

func (c *targetCompanion) IsTarget(_ TypeKey, parameter any) bool { return parameter == c.match }
func (c *targetCompanion) OnLeaving(context.Context, Navigation) error {
	return nil
}

type targetUnit struct{}

func (targetUnit) IsTarget(TypeKey, any) bool { return true }

func TestProbe_UnitThenCompanion(t *testing.T) {
	unit := &guardedUnit{}
	companion := &targetCompanion{}

	caps := Probe(unit, companion)
	if len(caps.ActivationGuards) != 1 || len(caps.DeactivationGuards) != 1 {
		t.Fatalf("expected unit guards to be resolved: %+v", caps)
	}
	if len(caps.Arrived) != 1 || len(caps.Leaving) != 1 {
		t.Fatalf("expected arrived from unit and leaving from companion: %+v", caps)
	}
	if len(caps.Arriving) != 0 || len(caps.Loaded) != 0 {
		t.Fatalf("unexpected hooks resolved: %+v", caps)
	}
}

func TestProbe_SameInstanceInspectedOnce(t *testing.T) {
	unit := &guardedUnit{}
	caps := Probe(unit, unit)
	if len(caps.ActivationGuards) != 1 {
		t.Fatalf("expected a single activation guard, got %d", len(caps.ActivationGuards))
	}
}

func TestResolveTarget_PrefersCompanion(t *testing.T) {
	companion := &targetCompanion{match: 2}

	target, onCompanion, ok := ResolveTarget(targetUnit{}, companion)
	if !ok || !onCompanion || target != Target(companion) {
		t.Fatalf("expected companion target, got %v %v %v", target, onCompanion, ok)
	}

	target, onCompanion, ok = ResolveTarget(targetUnit{}, nil)
	if !ok || onCompanion || target == nil {
		t.Fatalf("expected unit target, got %v %v %v", target, onCompanion, ok)
	}

	if _, _, ok := ResolveTarget(&guardedUnit{}, nil); ok {
		t.Fatal("unit without target test must not resolve")
	}
}

func TestSameInstance(t *testing.T) {
	a, b := &guardedUnit{}, &guardedUnit{}
	if !SameInstance(a, a) {
		t.Error("pointer should be the same instance as itself")
	}
	if SameInstance(a, b) {
		t.Error("distinct pointers must differ")
	}
	if SameInstance(nil, a) {
		t.Error("nil is never the same instance")
	}
	if SameInstance([]int{1}, []int{1}) {
		t.Error("non-comparable values are never the same instance")
	}
}
