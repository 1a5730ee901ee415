package history

import (
	"fmt"
	"sync"

	"github.com/hupe1980/navmesh/core"
)

// List is the multi-entry history store: an ordered list of entries plus a
// selected position with -1 <= selected < Len.
//
// The list never adjusts the selection on its own; the owning slot decides
// the new selected index after each mutation and restores the invariant
// selected == -1 iff the list is empty before its operation returns.
type List struct {
	mu       sync.RWMutex
	entries  []*core.Entry
	selected int
}

// NewList creates an empty list with no selection.
func NewList() *List {
	return &List{selected: -1}
}

func outOfRange(index, length int) error {
	return fmt.Errorf("%w: index %d, length %d", core.ErrIndexOutOfRange, index, length)
}

// Insert places entry at index, 0 <= index <= Len.
func (l *List) Insert(index int, entry *core.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index > len(l.entries) {
		return outOfRange(index, len(l.entries))
	}
	l.entries = append(l.entries, nil)
	copy(l.entries[index+1:], l.entries[index:])
	l.entries[index] = entry
	return nil
}

// RemoveAt removes and returns the entry at index, 0 <= index < Len.
func (l *List) RemoveAt(index int) (*core.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.entries) {
		return nil, outOfRange(index, len(l.entries))
	}
	removed := l.entries[index]
	copy(l.entries[index:], l.entries[index+1:])
	l.entries[len(l.entries)-1] = nil
	l.entries = l.entries[:len(l.entries)-1]
	return removed, nil
}

// Move relocates the entry at from so that it ends up at index to.
func (l *List) Move(from, to int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	if from < 0 || from >= n {
		return outOfRange(from, n)
	}
	if to < 0 || to >= n {
		return outOfRange(to, n)
	}
	if from == to {
		return nil
	}
	e := l.entries[from]
	if from < to {
		copy(l.entries[from:to], l.entries[from+1:to+1])
	} else {
		copy(l.entries[to+1:from+1], l.entries[to:from])
	}
	l.entries[to] = e
	return nil
}

// Set replaces the entry at index and returns the previous one.
func (l *List) Set(index int, entry *core.Entry) (*core.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.entries) {
		return nil, outOfRange(index, len(l.entries))
	}
	old := l.entries[index]
	l.entries[index] = entry
	return old, nil
}

// At returns the entry at index.
func (l *List) At(index int) (*core.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.entries) {
		return nil, outOfRange(index, len(l.entries))
	}
	return l.entries[index], nil
}

// IndexOf returns the position of entry (by identity) or -1.
func (l *List) IndexOf(entry *core.Entry) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexOfLocked(entry)
}

func (l *List) indexOfLocked(entry *core.Entry) int {
	for i, e := range l.entries {
		if e == entry {
			return i
		}
	}
	return -1
}

// Entries returns a copy of the entries in order.
func (l *List) Entries() []*core.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*core.Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Selected returns the selected index and entry (nil when -1).
func (l *List) Selected() (int, *core.Entry) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.selected < 0 || l.selected >= len(l.entries) {
		return -1, nil
	}
	return l.selected, l.entries[l.selected]
}

// SetSelected sets the selected index, -1 <= index < Len.
func (l *List) SetSelected(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < -1 || index >= len(l.entries) {
		return outOfRange(index, len(l.entries))
	}
	l.selected = index
	return nil
}

// Validate checks the selection invariant.
func (l *List) Validate() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.entries)
	switch {
	case l.selected < -1 || l.selected >= n:
		return outOfRange(l.selected, n)
	case n == 0 && l.selected != -1:
		return fmt.Errorf("history: empty list with selection %d", l.selected)
	case n > 0 && l.selected == -1:
		return fmt.Errorf("history: %d entries without selection", n)
	}
	return nil
}

// Reset empties the list, clears the selection and returns the entries.
func (l *List) Reset() []*core.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := l.entries
	l.entries = nil
	l.selected = -1
	return all
}

// References reports whether any entry points at unit.
func (l *List) References(unit any) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return referenced(l.entries, unit)
}
