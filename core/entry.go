package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TypeKey identifies a kind of presentable unit. Factories create units from
// a TypeKey and selectable units are registered under it.
type TypeKey string

// Entry is one committed navigation: the resolved unit, the key it was
// created from, the parameter supplied, the optional companion and the
// nested slots discovered under the unit once it became visible.
//
// Entries are immutable by convention except for the child slot list, which
// the engine attaches after discovery. The capability set is resolved once at
// construction.
type Entry struct {
	ID        string    `json:"id"`
	Key       TypeKey   `json:"key"`
	Unit      any       `json:"-"`
	Companion any       `json:"-"`
	Parameter any       `json:"parameter,omitempty"`
	Created   time.Time `json:"created"`

	caps     Capabilities
	mu       sync.RWMutex
	children []SlotHandle
}

// NewEntry creates an entry and probes the capabilities of unit and companion.
func NewEntry(key TypeKey, unit, companion, parameter any) *Entry {
	return &Entry{
		ID:        NewID(),
		Key:       key,
		Unit:      unit,
		Companion: companion,
		Parameter: parameter,
		Created:   time.Now().UTC(),
		caps:      Probe(unit, companion),
	}
}

// Capabilities returns the capability set resolved at construction.
func (e *Entry) Capabilities() Capabilities { return e.caps }

// Children returns a copy of the nested slots attached to this entry.
func (e *Entry) Children() []SlotHandle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]SlotHandle, len(e.children))
	copy(out, e.children)
	return out
}

// SetChildren replaces the nested slot list.
func (e *Entry) SetChildren(children []SlotHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.children = append([]SlotHandle(nil), children...)
}

// DetachChildren clears and returns the nested slot list.
func (e *Entry) DetachChildren() []SlotHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.children
	e.children = nil
	return out
}

// SameUnit reports whether e and other point at the same unit instance.
func (e *Entry) SameUnit(other *Entry) bool {
	if e == nil || other == nil {
		return false
	}
	return SameInstance(e.Unit, other.Unit)
}

// String implements fmt.Stringer.
func (e *Entry) String() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%v)", e.Key, e.Parameter)
}

// NewID generates a new unique identifier for entries, events and
// subscriptions.
func NewID() string { return uuid.NewString() }

// SlotHandle is the view a parent slot has of a nested slot discovered under
// one of its entries. It is implemented by every engine slot.
type SlotHandle interface {
	// Name returns the slot name used in events and logs.
	Name() string
	// ActiveEntries returns the entries that take part in hierarchical guard
	// and notification cascades: the current entry of a single-current slot
	// or every entry of a multi-entry slot.
	ActiveEntries() []*Entry
	// Reset releases the slot's history without consulting guards. It is
	// called when the entry owning the slot is evicted.
	Reset(ctx context.Context) error
}
