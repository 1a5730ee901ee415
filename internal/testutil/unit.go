package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/navmesh/core"
)

// Recorder collects "<unit>.<call>" strings in call order. A single recorder
// is usually shared by every unit of a test so ordering across units can be
// asserted.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Record appends a call.
func (r *Recorder) Record(call string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Filter returns the recorded calls ending in one of the given call names.
func (r *Recorder) Filter(names ...string) []string {
	var out []string
	for _, c := range r.Calls() {
		for _, n := range names {
			if len(c) > len(n) && c[len(c)-len(n)-1:] == "."+n {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Call names recorded by Unit.
const (
	CallCanActivate   = "CanActivate"
	CallCanDeactivate = "CanDeactivate"
	CallLeaving       = "OnLeaving"
	CallArriving      = "OnArriving"
	CallArrived       = "OnArrived"
	CallLoaded        = "OnLoaded"
)

// Unit is a fake presentable unit implementing every guard and notification
// capability. Its behaviour is configured through UnitBuilder and may be
// changed between operations with the Set* methods.
type Unit struct {
	Name string

	mu               sync.Mutex
	rec              *Recorder
	refuseActivate   bool
	refuseDeactivate bool
	guardErr         error
	failures         map[string]error
	panicOnLoaded    bool
	navs             []core.Navigation
}

// String implements fmt.Stringer.
func (u *Unit) String() string { return u.Name }

// SetRefuseActivate toggles the activation guard result.
func (u *Unit) SetRefuseActivate(v bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.refuseActivate = v
}

// SetRefuseDeactivate toggles the deactivation guard result.
func (u *Unit) SetRefuseDeactivate(v bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.refuseDeactivate = v
}

// Navigations returns every navigation the unit was consulted with.
func (u *Unit) Navigations() []core.Navigation {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]core.Navigation(nil), u.navs...)
}

func (u *Unit) record(call string, nav core.Navigation) error {
	u.mu.Lock()
	u.navs = append(u.navs, nav)
	err := u.failures[call]
	u.mu.Unlock()
	u.rec.Record(u.Name + "." + call)
	return err
}

// CanActivate implements core.ActivationGuard.
func (u *Unit) CanActivate(_ context.Context, nav core.Navigation) (bool, error) {
	if err := u.record(CallCanActivate, nav); err != nil {
		return false, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.guardErr != nil {
		return false, u.guardErr
	}
	return !u.refuseActivate, nil
}

// CanDeactivate implements core.DeactivationGuard.
func (u *Unit) CanDeactivate(_ context.Context, nav core.Navigation) (bool, error) {
	if err := u.record(CallCanDeactivate, nav); err != nil {
		return false, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.guardErr != nil {
		return false, u.guardErr
	}
	return !u.refuseDeactivate, nil
}

// OnLeaving implements core.LeavingHook.
func (u *Unit) OnLeaving(_ context.Context, nav core.Navigation) error {
	return u.record(CallLeaving, nav)
}

// OnArriving implements core.ArrivingHook.
func (u *Unit) OnArriving(_ context.Context, nav core.Navigation) error {
	return u.record(CallArriving, nav)
}

// OnArrived implements core.ArrivedHook.
func (u *Unit) OnArrived(_ context.Context, nav core.Navigation) error {
	return u.record(CallArrived, nav)
}

// OnLoaded implements core.LoadedListener.
func (u *Unit) OnLoaded(nav core.Navigation) {
	_ = u.record(CallLoaded, nav)
	u.mu.Lock()
	p := u.panicOnLoaded
	u.mu.Unlock()
	if p {
		panic(fmt.Sprintf("%s: loaded listener failure", u.Name))
	}
}

// SelectableUnit is a Unit with a target test.
type SelectableUnit struct {
	*Unit
	match func(key core.TypeKey, parameter any) bool
}

// IsTarget implements core.Target.
func (s *SelectableUnit) IsTarget(key core.TypeKey, parameter any) bool {
	return s.match(key, parameter)
}

// UnitBuilder configures fake units with fluent chaining.
// Example:
//
//	u := NewUnitBuilder("Editor").Recorder(rec).RefuseDeactivate().Build()
type UnitBuilder struct {
	u *Unit
}

// NewUnitBuilder creates a builder for a unit named name.
func NewUnitBuilder(name string) *UnitBuilder {
	return &UnitBuilder{u: &Unit{Name: name, failures: map[string]error{}}}
}

// Recorder sets the shared call recorder (chainable).
func (b *UnitBuilder) Recorder(r *Recorder) *UnitBuilder { b.u.rec = r; return b }

// RefuseActivate makes CanActivate return false (chainable).
func (b *UnitBuilder) RefuseActivate() *UnitBuilder { b.u.refuseActivate = true; return b }

// RefuseDeactivate makes CanDeactivate return false (chainable).
func (b *UnitBuilder) RefuseDeactivate() *UnitBuilder { b.u.refuseDeactivate = true; return b }

// GuardError makes both guards fail with err (chainable).
func (b *UnitBuilder) GuardError(err error) *UnitBuilder { b.u.guardErr = err; return b }

// FailOn makes the named call return err (chainable).
func (b *UnitBuilder) FailOn(call string, err error) *UnitBuilder {
	b.u.failures[call] = err
	return b
}

// PanicOnLoaded makes OnLoaded panic (chainable).
func (b *UnitBuilder) PanicOnLoaded() *UnitBuilder { b.u.panicOnLoaded = true; return b }

// Build returns the configured unit.
func (b *UnitBuilder) Build() *Unit { return b.u }

// BuildSelectable returns the configured unit with a target test that
// accepts the parameters for which match reports true.
func (b *UnitBuilder) BuildSelectable(match func(parameter any) bool) *SelectableUnit {
	return &SelectableUnit{
		Unit:  b.u,
		match: func(_ core.TypeKey, parameter any) bool { return match(parameter) },
	}
}

// Equals is a target-test helper accepting parameters equal to want.
func Equals(want any) func(parameter any) bool {
	return func(parameter any) bool { return parameter == want }
}
