package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/navmesh/core"
)

// SyncSource is a collection shared by several presenters. Every attached
// core.ItemsPresenter mirrors the same entries and selection.
//
// Besides the guarded collection operations it offers structural
// rearrangements (Move and ReplaceAt) that bypass guards and notifications
// and keep the selection on the same entry.
type SyncSource struct {
	*Collection
}

// NewSyncSource creates a shared source with no presenters attached.
// Options.ItemsPresenter is ignored; use Attach.
func NewSyncSource(name string, optFns ...func(o *Options)) *SyncSource {
	return &SyncSource{Collection: newCollection(name, buildOptions(optFns), nil)}
}

// Attach adds p and replays the current entries and selection onto it.
// Attaching the same presenter twice is a no-op.
func (s *SyncSource) Attach(ctx context.Context, p core.ItemsPresenter) error {
	if err := s.gate.acquire(ctx); err != nil {
		return err
	}
	defer s.gate.release()

	for _, existing := range s.presenters {
		if core.SameInstance(existing, p) {
			return nil
		}
	}
	for i, e := range s.list.Entries() {
		if err := p.InsertItem(ctx, i, e.Unit); err != nil {
			return fmt.Errorf("attach presenter to %q: %w", s.name, err)
		}
	}
	if i, e := s.list.Selected(); i >= 0 {
		if err := p.SelectItem(ctx, i, e.Unit); err != nil {
			return fmt.Errorf("attach presenter to %q: %w", s.name, err)
		}
	}
	s.presentersMu.Lock()
	s.presenters = append(s.presenters, p)
	s.presentersMu.Unlock()
	return nil
}

// Detach removes p. It reports whether p was attached. The presenter keeps
// whatever items it shows.
func (s *SyncSource) Detach(ctx context.Context, p core.ItemsPresenter) (bool, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return false, err
	}
	defer s.gate.release()

	for i, existing := range s.presenters {
		if core.SameInstance(existing, p) {
			s.presentersMu.Lock()
			s.presenters = append(s.presenters[:i:i], s.presenters[i+1:]...)
			s.presentersMu.Unlock()
			return true, nil
		}
	}
	return false, nil
}

// Presenters returns the number of attached presenters.
func (s *SyncSource) Presenters() int {
	s.presentersMu.RLock()
	defer s.presentersMu.RUnlock()
	return len(s.presenters)
}

// Move relocates the entry at from to index to. No guard or hook runs.
func (s *SyncSource) Move(ctx context.Context, from, to int) error {
	if err := s.gate.acquire(ctx); err != nil {
		return err
	}
	defer s.gate.release()
	defer s.announce(ctx, s.snapshot())

	_, selected := s.list.Selected()
	if err := s.list.Move(from, to); err != nil {
		return core.NewFailure(core.KindIndexOutOfRange, opMove, s.name, "", nil, err)
	}
	for i, p := range s.presenters {
		if err := p.MoveItem(ctx, from, to); err != nil {
			for _, done := range s.presenters[:i] {
				_ = done.MoveItem(ctx, to, from)
			}
			_ = s.list.Move(to, from)
			return core.NewFailure(core.KindTransitionFailed, opMove, s.name, "", nil, fmt.Errorf("move item: %w", err))
		}
	}
	s.track(selected)
	return nil
}

// ReplaceAt puts entry at index and returns the entry it replaced. No guard
// or hook runs; the replaced entry is released once nothing references its
// unit. Entries are usually built with Resolve.
func (s *SyncSource) ReplaceAt(ctx context.Context, index int, entry *core.Entry) (*core.Entry, error) {
	if entry == nil {
		return nil, fmt.Errorf("replace in %q: nil entry", s.name)
	}
	if err := s.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.gate.release()
	defer s.announce(ctx, s.snapshot())

	_, selected := s.list.Selected()
	old, err := s.list.Set(index, entry)
	if err != nil {
		return nil, core.NewFailure(core.KindIndexOutOfRange, opReplace, s.name, entry.Key, entry.Parameter, err)
	}
	for i, p := range s.presenters {
		if err := p.ReplaceItem(ctx, index, old.Unit, entry.Unit); err != nil {
			for _, done := range s.presenters[:i] {
				_ = done.ReplaceItem(ctx, index, entry.Unit, old.Unit)
			}
			_, _ = s.list.Set(index, old)
			return nil, core.NewFailure(core.KindTransitionFailed, opReplace, s.name, entry.Key, entry.Parameter,
				fmt.Errorf("replace item: %w", err))
		}
	}

	if err := s.discover(ctx, entry, s.awaiter()); err != nil {
		s.log.LogWarn("Nested slot discovery failed for replaced entry", "key", string(entry.Key), "error", err)
	}
	s.registry.TryAdd(entry.Key, entry.Unit, entry.Companion)
	s.evict(ctx, []*core.Entry{old}, s.list.References)

	if selected == old {
		s.track(entry)
	} else {
		s.track(selected)
	}
	return old, nil
}

// Resolve builds an entry for key/parameter, reusing a registered unit when
// one accepts the parameter. No guard or hook runs and nothing is stored.
func (s *SyncSource) Resolve(ctx context.Context, key core.TypeKey, parameter any) (*core.Entry, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.gate.release()

	entry, _, kind, err := s.resolve(ctx, key, parameter)
	if err != nil {
		return nil, core.NewFailure(kind, opResolve, s.name, key, parameter, err)
	}
	return entry, nil
}

// track moves the selection onto entry's current position.
func (s *SyncSource) track(entry *core.Entry) {
	if entry == nil {
		return
	}
	if i := s.list.IndexOf(entry); i >= 0 {
		_ = s.list.SetSelected(i)
	}
}
