package history

import (
	"sync"

	"github.com/hupe1980/navmesh/core"
)

// JournalOptions configures a Journal.
type JournalOptions struct {
	// OnCanGoBackChanged is called, outside the journal lock, whenever
	// CanGoBack flips.
	OnCanGoBackChanged func(canGoBack bool)
	// OnCanGoForwardChanged is called, outside the journal lock, whenever
	// CanGoForward flips.
	OnCanGoForwardChanged func(canGoForward bool)
}

// Journal is the single-current history store.
//
// Contract:
//   - Navigate always leaves the forward stack empty
//   - the oldest back entry is the root and is only evicted by
//     NavigateToRoot (which makes it current) or Clear
//   - CanGoBack/CanGoForward callbacks fire exactly when the value flips
type Journal struct {
	mu      sync.RWMutex
	current *core.Entry
	back    []*core.Entry // back[0] is the root, the last element is the top
	forward []*core.Entry // the last element is the top
	opts    JournalOptions
}

// NewJournal creates an empty journal.
func NewJournal(optFns ...func(o *JournalOptions)) *Journal {
	j := &Journal{}
	for _, fn := range optFns {
		fn(&j.opts)
	}
	return j
}

// mutate runs fn under the write lock and raises flip callbacks afterwards.
func (j *Journal) mutate(fn func() error) error {
	j.mu.Lock()
	backBefore, fwdBefore := len(j.back) > 0, len(j.forward) > 0
	err := fn()
	backAfter, fwdAfter := len(j.back) > 0, len(j.forward) > 0
	j.mu.Unlock()

	if backBefore != backAfter && j.opts.OnCanGoBackChanged != nil {
		j.opts.OnCanGoBackChanged(backAfter)
	}
	if fwdBefore != fwdAfter && j.opts.OnCanGoForwardChanged != nil {
		j.opts.OnCanGoForwardChanged(fwdAfter)
	}
	return err
}

// Navigate makes entry current, pushing the previous current onto the back
// stack. The forward stack is cleared and its entries are returned (top
// first) so the caller can evict them.
func (j *Journal) Navigate(entry *core.Entry) []*core.Entry {
	var cleared []*core.Entry
	_ = j.mutate(func() error {
		if j.current != nil {
			j.back = append(j.back, j.current)
		}
		j.current = entry
		cleared = reversed(j.forward)
		j.forward = nil
		return nil
	})
	return cleared
}

// Redirect makes entry current like Navigate and then drops the previous
// current from the back stack when match accepts it (a nil match accepts
// everything). Cleared forward entries and the dropped entry are returned.
// Flip callbacks compare the state before and after the whole redirect.
func (j *Journal) Redirect(entry *core.Entry, match func(prev *core.Entry) bool) []*core.Entry {
	var evicted []*core.Entry
	_ = j.mutate(func() error {
		prev := j.current
		if prev != nil {
			j.back = append(j.back, prev)
		}
		j.current = entry
		evicted = reversed(j.forward)
		j.forward = nil
		if prev != nil && (match == nil || match(prev)) {
			var removed *core.Entry
			removed, j.back = pop(j.back)
			evicted = append(evicted, removed)
		}
		return nil
	})
	return evicted
}

// GoBack moves the current entry onto the forward stack and restores the
// top of the back stack. It returns core.ErrNoHistory when the back stack
// is empty.
func (j *Journal) GoBack() error {
	return j.mutate(func() error {
		if len(j.back) == 0 {
			return core.ErrNoHistory
		}
		if j.current != nil {
			j.forward = append(j.forward, j.current)
		}
		j.current, j.back = pop(j.back)
		return nil
	})
}

// GoForward moves the current entry onto the back stack and restores the
// top of the forward stack. It returns core.ErrNoHistory when the forward
// stack is empty.
func (j *Journal) GoForward() error {
	return j.mutate(func() error {
		if len(j.forward) == 0 {
			return core.ErrNoHistory
		}
		if j.current != nil {
			j.back = append(j.back, j.current)
		}
		j.current, j.forward = pop(j.forward)
		return nil
	})
}

// NavigateToRoot makes the root current and empties both stacks. Every other
// entry, including the previous current, is returned as discarded. It
// returns core.ErrNoHistory when the back stack is empty.
func (j *Journal) NavigateToRoot() ([]*core.Entry, error) {
	var discarded []*core.Entry
	err := j.mutate(func() error {
		if len(j.back) == 0 {
			return core.ErrNoHistory
		}
		root := j.back[0]
		if j.current != nil {
			discarded = append(discarded, j.current)
		}
		discarded = append(discarded, reversed(j.back[1:])...)
		discarded = append(discarded, reversed(j.forward)...)
		j.current = root
		j.back = nil
		j.forward = nil
		return nil
	})
	return discarded, err
}

// RemovePrevious pops the top of the back stack without touching current.
func (j *Journal) RemovePrevious() (*core.Entry, bool) {
	var removed *core.Entry
	_ = j.mutate(func() error {
		if len(j.back) == 0 {
			return nil
		}
		removed, j.back = pop(j.back)
		return nil
	})
	return removed, removed != nil
}

// Clear empties the journal and returns every entry it held (current first,
// then back newest to oldest, then forward top first).
func (j *Journal) Clear() []*core.Entry {
	var all []*core.Entry
	_ = j.mutate(func() error {
		all = j.entriesLocked()
		j.current = nil
		j.back = nil
		j.forward = nil
		return nil
	})
	return all
}

// Current returns the current entry or nil.
func (j *Journal) Current() *core.Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.current
}

// Back returns a copy of the back stack, oldest (root) first.
func (j *Journal) Back() []*core.Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]*core.Entry(nil), j.back...)
}

// Forward returns a copy of the forward stack, next entry (top) first.
func (j *Journal) Forward() []*core.Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return reversed(j.forward)
}

// PeekBack returns the entry GoBack would restore.
func (j *Journal) PeekBack() *core.Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.back) == 0 {
		return nil
	}
	return j.back[len(j.back)-1]
}

// PeekForward returns the entry GoForward would restore.
func (j *Journal) PeekForward() *core.Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.forward) == 0 {
		return nil
	}
	return j.forward[len(j.forward)-1]
}

// Root returns the oldest back entry, or current when the back stack is empty.
func (j *Journal) Root() *core.Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.back) > 0 {
		return j.back[0]
	}
	return j.current
}

// CanGoBack reports whether the back stack is non-empty.
func (j *Journal) CanGoBack() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.back) > 0
}

// CanGoForward reports whether the forward stack is non-empty.
func (j *Journal) CanGoForward() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.forward) > 0
}

// Len returns the number of entries held, current included.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	n := len(j.back) + len(j.forward)
	if j.current != nil {
		n++
	}
	return n
}

// References reports whether any held entry points at unit.
func (j *Journal) References(unit any) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return referenced(j.entriesLocked(), unit)
}

func (j *Journal) entriesLocked() []*core.Entry {
	all := make([]*core.Entry, 0, len(j.back)+len(j.forward)+1)
	if j.current != nil {
		all = append(all, j.current)
	}
	all = append(all, reversed(j.back)...)
	all = append(all, reversed(j.forward)...)
	return all
}

func pop(stack []*core.Entry) (*core.Entry, []*core.Entry) {
	n := len(stack) - 1
	top := stack[n]
	stack[n] = nil
	return top, stack[:n]
}

func reversed(s []*core.Entry) []*core.Entry {
	if len(s) == 0 {
		return nil
	}
	out := make([]*core.Entry, len(s))
	for i, e := range s {
		out[len(s)-1-i] = e
	}
	return out
}

func referenced(entries []*core.Entry, unit any) bool {
	for _, e := range entries {
		if core.SameInstance(e.Unit, unit) {
			return true
		}
	}
	return false
}
