// Package testutil contains fakes and builders used across tests to reduce
// boilerplate when exercising slots: configurable units that record every
// guard and hook call, a map-backed factory, a scripted structure scanner,
// static nested slots and recording presenters. They are not intended for
// production usage.
package testutil
