// Package history houses the in-memory history stores used by navmesh slots.
//
//   - Journal is the single-current store: a current entry plus back and
//     forward stacks, for exclusive one-at-a-time slots.
//   - List is the multi-entry store: an ordered entry list with an explicit
//     selected position, for collection slots and synchronized sources.
//
// Stores only implement the stack/list semantics. Guards, notifications and
// eviction bookkeeping belong to the engine that owns the store. Both stores
// are safe for concurrent reads; snapshots are returned as copies.
package history
