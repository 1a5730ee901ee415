package selectable

import (
	"sync"

	"github.com/hupe1980/navmesh/core"
)

// Registration is one reusable unit. CompanionSelectable reports whether the
// target test lives on the companion rather than the unit.
type Registration struct {
	CompanionSelectable bool
	Key                 core.TypeKey
	Unit                any
	Companion           any

	target core.Target
}

// Matches runs the registration's target test.
func (r *Registration) Matches(key core.TypeKey, parameter any) bool {
	return r.Key == key && r.target.IsTarget(key, parameter)
}

// Registry is the per-slot selectable registry. Lookups honour registration
// order. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	items []*Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// TryAdd registers unit under key when the companion (preferred) or the unit
// implements core.Target. It reports whether the unit is registered after the
// call; registering the same unit twice keeps the first registration.
func (r *Registry) TryAdd(key core.TypeKey, unit, companion any) bool {
	target, onCompanion, ok := core.ResolveTarget(unit, companion)
	if !ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexLocked(unit) >= 0 {
		return true
	}
	r.items = append(r.items, &Registration{
		CompanionSelectable: onCompanion,
		Key:                 key,
		Unit:                unit,
		Companion:           companion,
		target:              target,
	})
	return true
}

// TryGet returns the first registration under key whose target test accepts
// parameter. Target tests run outside the registry lock.
func (r *Registry) TryGet(key core.TypeKey, parameter any) (*Registration, bool) {
	for _, reg := range r.Registrations() {
		if reg.Matches(key, parameter) {
			return reg, true
		}
	}
	return nil, false
}

// Remove deregisters the entry's unit. It reports whether a registration was
// removed.
func (r *Registry) Remove(entry *core.Entry) bool {
	if entry == nil {
		return false
	}
	return r.RemoveUnit(entry.Unit)
}

// RemoveUnit deregisters unit.
func (r *Registry) RemoveUnit(unit any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(unit)
	if i < 0 {
		return false
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return true
}

// Contains reports whether unit is registered.
func (r *Registry) Contains(unit any) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexLocked(unit) >= 0
}

// Registrations returns a snapshot in registration order.
func (r *Registry) Registrations() []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Registration(nil), r.items...)
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Clear drops every registration.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

func (r *Registry) indexLocked(unit any) int {
	for i, reg := range r.items {
		if core.SameInstance(reg.Unit, unit) {
			return i
		}
	}
	return -1
}
