// Package registry keeps the named slots and shared sync sources of an
// application.
//
// A Registry is an explicit value: hosts typically create one per window or
// per test and look slots up by name when wiring nested content. Slots are
// registered once; creating a second slot under the same name fails with
// ErrSlotExists. Sync sources are shared by name, so the first caller creates
// the source and later callers attach their presenters to it.
//
// Example:
//
//	reg := registry.New(func(o *registry.Options) {
//	    o.Engine = []func(*engine.Options){engine.WithFactory(factory)}
//	})
//	main, _ := reg.NewNavigator("main", engine.WithPresenter(host))
//	tabs := reg.GetOrCreateSource("documents")
package registry
