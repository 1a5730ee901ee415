package core

import "context"

// Factory creates a new unit instance for a key. A failing factory makes the
// transition fail with KindInstantiationFailed.
type Factory interface {
	CreateInstance(ctx context.Context, key TypeKey) (any, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, key TypeKey) (any, error)

// CreateInstance calls f.
func (f FactoryFunc) CreateInstance(ctx context.Context, key TypeKey) (any, error) {
	return f(ctx, key)
}

// CompanionResolver locates or creates the companion paired with a unit.
// Returning (nil, nil) is valid and means the unit has no companion.
type CompanionResolver interface {
	ResolveCompanion(ctx context.Context, key TypeKey, unit any) (any, error)
}

// CompanionResolverFunc adapts a function to the CompanionResolver interface.
type CompanionResolverFunc func(ctx context.Context, key TypeKey, unit any) (any, error)

// ResolveCompanion calls f.
func (f CompanionResolverFunc) ResolveCompanion(ctx context.Context, key TypeKey, unit any) (any, error) {
	return f(ctx, key, unit)
}

// StructureScanner discovers the nested slots hosted by a unit. Scanners that
// need the host to finish a visibility pass first return ErrNotVisible; the
// engine then waits once via VisibilityAwaiter and scans again.
type StructureScanner interface {
	DiscoverChildSlots(ctx context.Context, unit any) ([]SlotHandle, error)
}

// StructureScannerFunc adapts a function to the StructureScanner interface.
type StructureScannerFunc func(ctx context.Context, unit any) ([]SlotHandle, error)

// DiscoverChildSlots calls f.
func (f StructureScannerFunc) DiscoverChildSlots(ctx context.Context, unit any) ([]SlotHandle, error) {
	return f(ctx, unit)
}

// Presenter is the host surface of a single-current slot.
type Presenter interface {
	SetContent(ctx context.Context, unit any) error
}

// ItemsPresenter is the host surface of a multi-entry slot.
type ItemsPresenter interface {
	InsertItem(ctx context.Context, index int, unit any) error
	RemoveItem(ctx context.Context, index int, unit any) error
	MoveItem(ctx context.Context, from, to int) error
	ReplaceItem(ctx context.Context, index int, old, unit any) error
	SelectItem(ctx context.Context, index int, unit any) error
}

// VisibilityAwaiter is implemented by presenters that can block until newly
// swapped content has been made visible by the host.
type VisibilityAwaiter interface {
	AwaitVisible(ctx context.Context, unit any) error
}

// NopPresenter discards content changes.
type NopPresenter struct{}

// SetContent implements Presenter.
func (NopPresenter) SetContent(context.Context, any) error { return nil }

// NopItemsPresenter discards item changes.
type NopItemsPresenter struct{}

// InsertItem implements ItemsPresenter.
func (NopItemsPresenter) InsertItem(context.Context, int, any) error { return nil }

// RemoveItem implements ItemsPresenter.
func (NopItemsPresenter) RemoveItem(context.Context, int, any) error { return nil }

// MoveItem implements ItemsPresenter.
func (NopItemsPresenter) MoveItem(context.Context, int, int) error { return nil }

// ReplaceItem implements ItemsPresenter.
func (NopItemsPresenter) ReplaceItem(context.Context, int, any, any) error { return nil }

// SelectItem implements ItemsPresenter.
func (NopItemsPresenter) SelectItem(context.Context, int, any) error { return nil }

// NoCompanions is a CompanionResolver that never pairs a companion.
var NoCompanions CompanionResolver = CompanionResolverFunc(func(context.Context, TypeKey, any) (any, error) {
	return nil, nil
})

// NoChildSlots is a StructureScanner that never discovers nested slots.
var NoChildSlots StructureScanner = StructureScannerFunc(func(context.Context, any) ([]SlotHandle, error) {
	return nil, nil
})
