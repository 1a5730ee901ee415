package core

import (
	"errors"
	"strings"
	"testing"
)

func TestFailure_IsMatchesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	f := NewFailure(KindInstantiationFailed, "navigate", "main", "Login", 1, cause)

	if !errors.Is(f, ErrInstantiationFailed) {
		t.Error("expected kind sentinel to match")
	}
	if !errors.Is(f, cause) {
		t.Error("expected cause to match")
	}
	if errors.Is(f, ErrActivationRefused) {
		t.Error("unexpected sentinel match")
	}
	if !strings.Contains(f.Error(), "main/Login") || !strings.Contains(f.Error(), "instantiation_failed") {
		t.Errorf("unexpected message: %s", f.Error())
	}
}

func TestFailure_RefusalWithoutCause(t *testing.T) {
	f := NewFailure(KindActivationRefused, "navigate", "main", "", nil, nil)
	if !errors.Is(f, ErrActivationRefused) {
		t.Error("expected sentinel match without cause")
	}
	if !f.Kind.IsRefusal() {
		t.Error("activation refusal should be a refusal")
	}
	if KindTransitionFailed.IsRefusal() {
		t.Error("transition failure is not a refusal")
	}
}

func TestAsFailure_Wrapped(t *testing.T) {
	f := NewFailure(KindIndexOutOfRange, "remove_at", "tabs", "", nil, nil)
	wrapped := errors.Join(errors.New("other"), f)

	got, ok := AsFailure(wrapped)
	if !ok || got != f {
		t.Fatalf("expected to extract failure, got %v", got)
	}
	if _, ok := AsFailure(errors.New("plain")); ok {
		t.Error("plain error is not a failure")
	}
}

func TestFailureKind_String(t *testing.T) {
	kinds := map[FailureKind]string{
		KindTransitionFailed:          "transition_failed",
		KindDeactivationRefused:       "deactivation_refused",
		KindActivationRefused:         "activation_refused",
		KindInstantiationFailed:       "instantiation_failed",
		KindCompanionResolutionFailed: "companion_resolution_failed",
		KindIndexOutOfRange:           "index_out_of_range",
		FailureKind(99):               "unknown",
	}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("kind %d: got %q want %q", int(k), k.String(), want)
		}
	}
}
