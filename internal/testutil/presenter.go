package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/navmesh/core"
)

// Presenter records content swaps and implements core.VisibilityAwaiter.
type Presenter struct {
	mu      sync.Mutex
	content any
	history []any
	failFor map[any]error
	awaits  int
}

// NewPresenter creates an empty presenter.
func NewPresenter() *Presenter { return &Presenter{failFor: map[any]error{}} }

// FailFor makes SetContent(unit) return err.
func (p *Presenter) FailFor(unit any, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failFor[unit] = err
}

// SetContent implements core.Presenter.
func (p *Presenter) SetContent(_ context.Context, unit any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failFor[unit]; err != nil && unit != nil {
		return err
	}
	p.content = unit
	p.history = append(p.history, unit)
	return nil
}

// AwaitVisible implements core.VisibilityAwaiter.
func (p *Presenter) AwaitVisible(context.Context, any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.awaits++
	return nil
}

// Content returns the unit currently presented.
func (p *Presenter) Content() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.content
}

// History returns every unit presented, in order.
func (p *Presenter) History() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.history...)
}

// Awaits returns how often AwaitVisible was called.
func (p *Presenter) Awaits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.awaits
}

// ItemsPresenter mirrors a multi-entry slot and records every operation as
// "<op> <index> <unit>".
type ItemsPresenter struct {
	mu       sync.Mutex
	items    []any
	selected int
	ops      []string
	failOn   map[string]error
}

// NewItemsPresenter creates an empty items presenter.
func NewItemsPresenter() *ItemsPresenter {
	return &ItemsPresenter{selected: -1, failOn: map[string]error{}}
}

// FailOn makes the named operation ("insert", "remove", "move", "replace",
// "select") return err.
func (p *ItemsPresenter) FailOn(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failOn[op] = err
}

func (p *ItemsPresenter) op(name string, index int, unit any) error {
	if err := p.failOn[name]; err != nil {
		return err
	}
	p.ops = append(p.ops, fmt.Sprintf("%s %d %v", name, index, unit))
	return nil
}

// InsertItem implements core.ItemsPresenter.
func (p *ItemsPresenter) InsertItem(_ context.Context, index int, unit any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.op("insert", index, unit); err != nil {
		return err
	}
	p.items = append(p.items, nil)
	copy(p.items[index+1:], p.items[index:])
	p.items[index] = unit
	return nil
}

// RemoveItem implements core.ItemsPresenter.
func (p *ItemsPresenter) RemoveItem(_ context.Context, index int, unit any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.op("remove", index, unit); err != nil {
		return err
	}
	p.items = append(p.items[:index], p.items[index+1:]...)
	return nil
}

// MoveItem implements core.ItemsPresenter.
func (p *ItemsPresenter) MoveItem(_ context.Context, from, to int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.op("move", from, to); err != nil {
		return err
	}
	u := p.items[from]
	p.items = append(p.items[:from], p.items[from+1:]...)
	p.items = append(p.items[:to], append([]any{u}, p.items[to:]...)...)
	return nil
}

// ReplaceItem implements core.ItemsPresenter.
func (p *ItemsPresenter) ReplaceItem(_ context.Context, index int, _ any, unit any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.op("replace", index, unit); err != nil {
		return err
	}
	p.items[index] = unit
	return nil
}

// SelectItem implements core.ItemsPresenter.
func (p *ItemsPresenter) SelectItem(_ context.Context, index int, unit any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.op("select", index, unit); err != nil {
		return err
	}
	p.selected = index
	return nil
}

// Items returns the presented units in order.
func (p *ItemsPresenter) Items() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.items...)
}

// Selected returns the last selected index.
func (p *ItemsPresenter) Selected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// Ops returns the recorded operations.
func (p *ItemsPresenter) Ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ops...)
}

var (
	_ core.Presenter         = (*Presenter)(nil)
	_ core.VisibilityAwaiter = (*Presenter)(nil)
	_ core.ItemsPresenter    = (*ItemsPresenter)(nil)
	_ core.StructureScanner  = (*Scanner)(nil)
	_ core.Factory           = (*Factory)(nil)
	_ core.SlotHandle        = (*Slot)(nil)
)
