// Package core provides the foundational domain types and contracts used by
// navmesh. It defines the abstractions for:
//
//   - Entries (one committed navigation: unit, companion, parameter, nested slots)
//   - Capabilities (activation/deactivation guards, lifecycle hooks, target tests)
//   - Collaborators (factory, companion resolver, structure scanner, presenters)
//   - Failures (a single error taxonomy for refused or broken transitions)
//   - Events (immutable notifications raised by slots)
//
// The package intentionally keeps orchestration (engine), storage (history)
// and reuse bookkeeping (selectable) out of scope, exposing small interfaces
// so hosts can plug in their own instantiation and presentation layers.
package core
