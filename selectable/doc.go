// Package selectable houses the reuse registry of a slot. Units (or their
// companions) that implement core.Target are registered after their first
// activation and a later navigation to the same key reuses the registered
// instance when its target test accepts the parameter.
//
// The registry holds references only; it never creates or releases units.
// Slots remove a registration once no history entry references the unit.
package selectable
