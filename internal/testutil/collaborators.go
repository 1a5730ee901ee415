package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/navmesh/core"
)

// ErrUnknownKey is returned by Factory for keys without a constructor.
var ErrUnknownKey = errors.New("testutil: unknown key")

// Factory is a map-backed core.Factory counting created instances.
type Factory struct {
	mu      sync.Mutex
	ctors   map[core.TypeKey]func() any
	created map[core.TypeKey]int
	err     error
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{
		ctors:   map[core.TypeKey]func() any{},
		created: map[core.TypeKey]int{},
	}
}

// Register binds key to a constructor (chainable).
func (f *Factory) Register(key core.TypeKey, ctor func() any) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors[key] = ctor
	return f
}

// Fail makes every later CreateInstance call return err.
func (f *Factory) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Created returns how many instances were created for key.
func (f *Factory) Created(key core.TypeKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[key]
}

// CreateInstance implements core.Factory.
func (f *Factory) CreateInstance(_ context.Context, key core.TypeKey) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ctor, ok := f.ctors[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	f.created[key]++
	return ctor(), nil
}

// Slot is a static core.SlotHandle used to model nested slots.
type Slot struct {
	name string

	mu      sync.Mutex
	entries []*core.Entry
	resets  int
}

// NewSlot creates a nested slot exposing entries as its active entries.
func NewSlot(name string, entries ...*core.Entry) *Slot {
	return &Slot{name: name, entries: entries}
}

// Name implements core.SlotHandle.
func (s *Slot) Name() string { return s.name }

// ActiveEntries implements core.SlotHandle.
func (s *Slot) ActiveEntries() []*core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*core.Entry(nil), s.entries...)
}

// Reset implements core.SlotHandle.
func (s *Slot) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	s.entries = nil
	return nil
}

// Resets returns how often Reset was called.
func (s *Slot) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

// Scanner is a scripted core.StructureScanner.
type Scanner struct {
	mu       sync.Mutex
	slots    map[any][]core.SlotHandle
	deferred map[any]bool
	scans    int
}

// NewScanner creates a scanner that discovers nothing until Attach is used.
func NewScanner() *Scanner {
	return &Scanner{slots: map[any][]core.SlotHandle{}, deferred: map[any]bool{}}
}

// Attach declares the nested slots hosted by unit (chainable).
func (s *Scanner) Attach(unit any, slots ...core.SlotHandle) *Scanner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[unit] = slots
	return s
}

// DeferOnce makes the next scan of unit report core.ErrNotVisible.
func (s *Scanner) DeferOnce(unit any) *Scanner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deferred[unit] = true
	return s
}

// Scans returns the number of DiscoverChildSlots calls.
func (s *Scanner) Scans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scans
}

// DiscoverChildSlots implements core.StructureScanner.
func (s *Scanner) DiscoverChildSlots(_ context.Context, unit any) ([]core.SlotHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans++
	if s.deferred[unit] {
		delete(s.deferred, unit)
		return nil, core.ErrNotVisible
	}
	return append([]core.SlotHandle(nil), s.slots[unit]...), nil
}
