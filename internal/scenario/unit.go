package scenario

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/navmesh/core"
)

// behavior holds the guard outcomes shared by every unit of one key, so a
// guard step affects instances that already exist.
type behavior struct {
	mu               sync.Mutex
	refuseActivate   bool
	refuseDeactivate bool
}

func (b *behavior) set(activate, deactivate *bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if activate != nil {
		b.refuseActivate = *activate
	}
	if deactivate != nil {
		b.refuseDeactivate = *deactivate
	}
}

func (b *behavior) refusals() (activate, deactivate bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refuseActivate, b.refuseDeactivate
}

// Unit is the presentable unit created for scenario keys. It implements the
// activation and deactivation guards and remembers the parameter it was
// shown with.
type Unit struct {
	Key   core.TypeKey
	Seq   int
	Hosts []string

	behavior *behavior

	mu    sync.Mutex
	param any
}

// String returns "Key#Seq".
func (u *Unit) String() string { return fmt.Sprintf("%s#%d", u.Key, u.Seq) }

// Parameter returns the parameter the unit last arrived with.
func (u *Unit) Parameter() any {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.param
}

// CanActivate implements core.ActivationGuard.
func (u *Unit) CanActivate(context.Context, core.Navigation) (bool, error) {
	refuse, _ := u.behavior.refusals()
	return !refuse, nil
}

// CanDeactivate implements core.DeactivationGuard.
func (u *Unit) CanDeactivate(context.Context, core.Navigation) (bool, error) {
	_, refuse := u.behavior.refusals()
	return !refuse, nil
}

// OnArriving implements core.ArrivingHook.
func (u *Unit) OnArriving(_ context.Context, nav core.Navigation) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.param = nav.Parameter
	return nil
}

// SelectableUnit is reused for navigations to the same key with an equal
// parameter. Parameters compare by their printed form.
type SelectableUnit struct {
	*Unit
}

// IsTarget implements core.Target.
func (s *SelectableUnit) IsTarget(key core.TypeKey, parameter any) bool {
	return key == s.Key && fmt.Sprint(parameter) == fmt.Sprint(s.Parameter())
}

var (
	_ core.ActivationGuard   = (*Unit)(nil)
	_ core.DeactivationGuard = (*Unit)(nil)
	_ core.ArrivingHook      = (*Unit)(nil)
	_ core.Target            = (*SelectableUnit)(nil)
)
