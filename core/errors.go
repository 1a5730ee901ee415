package core

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a transition did not complete.
type FailureKind int

const (
	// KindTransitionFailed wraps any unexpected error raised by a guard, a
	// notification, the presenter or the scanner.
	KindTransitionFailed FailureKind = iota
	// KindDeactivationRefused means a deactivation guard returned false.
	KindDeactivationRefused
	// KindActivationRefused means an activation guard returned false.
	KindActivationRefused
	// KindInstantiationFailed means the factory could not create the unit.
	KindInstantiationFailed
	// KindCompanionResolutionFailed means the companion resolver failed.
	KindCompanionResolutionFailed
	// KindIndexOutOfRange means a history mutation used an invalid index.
	KindIndexOutOfRange
)

var (
	// ErrTransitionFailed matches failures of kind KindTransitionFailed.
	ErrTransitionFailed = errors.New("transition failed")
	// ErrDeactivationRefused matches failures of kind KindDeactivationRefused.
	ErrDeactivationRefused = errors.New("deactivation refused")
	// ErrActivationRefused matches failures of kind KindActivationRefused.
	ErrActivationRefused = errors.New("activation refused")
	// ErrInstantiationFailed matches failures of kind KindInstantiationFailed.
	ErrInstantiationFailed = errors.New("instantiation failed")
	// ErrCompanionResolutionFailed matches failures of kind KindCompanionResolutionFailed.
	ErrCompanionResolutionFailed = errors.New("companion resolution failed")
	// ErrIndexOutOfRange matches failures of kind KindIndexOutOfRange.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNoHistory is returned by back/forward/root navigation when the
	// required history stack is empty. No transition is attempted.
	ErrNoHistory = errors.New("no history to navigate")
	// ErrNotVisible is returned by a StructureScanner whose unit has not been
	// made visible by the host yet.
	ErrNotVisible = errors.New("unit not visible")
	// ErrEntryNotFound is returned when an entry is not part of a store.
	ErrEntryNotFound = errors.New("entry not found")
)

// String returns the string representation of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case KindTransitionFailed:
		return "transition_failed"
	case KindDeactivationRefused:
		return "deactivation_refused"
	case KindActivationRefused:
		return "activation_refused"
	case KindInstantiationFailed:
		return "instantiation_failed"
	case KindCompanionResolutionFailed:
		return "companion_resolution_failed"
	case KindIndexOutOfRange:
		return "index_out_of_range"
	default:
		return "unknown"
	}
}

// Sentinel returns the sentinel error matching the kind.
func (k FailureKind) Sentinel() error {
	switch k {
	case KindDeactivationRefused:
		return ErrDeactivationRefused
	case KindActivationRefused:
		return ErrActivationRefused
	case KindInstantiationFailed:
		return ErrInstantiationFailed
	case KindCompanionResolutionFailed:
		return ErrCompanionResolutionFailed
	case KindIndexOutOfRange:
		return ErrIndexOutOfRange
	default:
		return ErrTransitionFailed
	}
}

// IsRefusal reports whether the kind is an expected guard outcome rather than
// an error condition.
func (k FailureKind) IsRefusal() bool {
	return k == KindDeactivationRefused || k == KindActivationRefused
}

// Failure is the failure descriptor carried by NavigationFailed events and
// returned to callers. errors.Is matches both the kind sentinel and the
// wrapped cause.
type Failure struct {
	Kind      FailureKind `json:"kind"`
	Op        string      `json:"op"`
	Slot      string      `json:"slot"`
	Key       TypeKey     `json:"key,omitempty"`
	Parameter any         `json:"parameter,omitempty"`
	Err       error       `json:"-"`
}

// NewFailure creates a failure descriptor.
func NewFailure(kind FailureKind, op, slot string, key TypeKey, parameter any, err error) *Failure {
	return &Failure{Kind: kind, Op: op, Slot: slot, Key: key, Parameter: parameter, Err: err}
}

// Error implements error.
func (f *Failure) Error() string {
	target := f.Slot
	if f.Key != "" {
		target = fmt.Sprintf("%s/%s", f.Slot, f.Key)
	}
	if f.Err == nil {
		return fmt.Sprintf("navmesh: %s %s: %s", f.Op, target, f.Kind)
	}
	return fmt.Sprintf("navmesh: %s %s: %s: %v", f.Op, target, f.Kind, f.Err)
}

// Unwrap exposes the kind sentinel and the cause to errors.Is / errors.As.
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind.Sentinel()}
	}
	return []error{f.Kind.Sentinel(), f.Err}
}

// AsFailure extracts the first *Failure in err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
