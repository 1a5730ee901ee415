// Package lifecycle runs the guard and notification protocols over an entry
// and the nested slots discovered under it.
//
// Ordering rules:
//   - CanDeactivate and Leaving visit the leaves first, then the parent
//   - CanActivate, Arriving, Arrived and Loaded visit the parent first
//   - siblings are visited one after another in discovery order
//   - on every entry the unit is consulted before its companion
//
// Nested entries are consulted with a core.Navigation re-targeted at the
// nested slot and entry, keeping the Kind of the triggering navigation.
package lifecycle
