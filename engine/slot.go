package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/event"
	"github.com/hupe1980/navmesh/lifecycle"
	"github.com/hupe1980/navmesh/logging"
	"github.com/hupe1980/navmesh/selectable"
)

// State is the transition state of a slot.
type State int32

const (
	// StateIdle means no operation is running.
	StateIdle State = iota
	// StateDeactivating means deactivation guards are being consulted.
	StateDeactivating
	// StateActivating means the candidate is being resolved and guarded.
	StateActivating
	// StateCommitting means content has been swapped and history is being
	// updated.
	StateCommitting
	// StateFailed is held while a refused or failed transition is reported.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDeactivating:
		return "deactivating"
	case StateActivating:
		return "activating"
	case StateCommitting:
		return "committing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Operation names used in failures, spans and logs.
const (
	opNavigate  = "navigate"
	opRedirect  = "redirect"
	opGoBack    = "go_back"
	opGoForward = "go_forward"
	opRoot      = "navigate_to_root"
	opClear     = "clear"
	opInsert    = "insert"
	opRemove    = "remove"
	opSelect    = "select"
	opMove      = "move"
	opReplace   = "replace"
	opResolve   = "resolve"
)

// gate serializes the public operations of one slot. Waiting honours ctx.
type gate chan struct{}

func newGate() gate { return make(gate, 1) }

func (g gate) acquire(ctx context.Context) error {
	select {
	case g <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g gate) release() { <-g }

// slot is the state shared by every slot kind: name, collaborators, reuse
// registry, gate and transition state.
type slot struct {
	name     string
	opts     Options
	log      *core.LoggerAdapter
	registry *selectable.Registry
	gate     gate
	state    atomic.Int32
}

func newSlot(name string, opts Options) *slot {
	logger := opts.Logger
	if nl, ok := logger.(*logging.NavLogger); ok {
		logger = nl.WithComponent("engine").WithSlot(name)
	}
	return &slot{
		name:     name,
		opts:     opts,
		log:      core.NewLoggerAdapter(logger),
		registry: selectable.NewRegistry(),
		gate:     newGate(),
	}
}

// Name returns the slot name.
func (s *slot) Name() string { return s.name }

// State returns the current transition state.
func (s *slot) State() State { return State(s.state.Load()) }

// Events returns the feed the slot publishes to.
func (s *slot) Events() *event.Feed { return s.opts.Feed }

// Registry returns the slot's selectable reuse registry.
func (s *slot) Registry() *selectable.Registry { return s.registry }

func (s *slot) setState(st State) { s.state.Store(int32(st)) }

func (s *slot) publish(ev core.Event) { s.opts.Feed.Publish(ev) }

// resolve returns a reused or newly created entry for key/parameter. On
// error the failure kind to report is returned as well.
func (s *slot) resolve(ctx context.Context, key core.TypeKey, parameter any) (*core.Entry, bool, core.FailureKind, error) {
	if reg, ok := s.registry.TryGet(key, parameter); ok {
		s.log.LogDebug("Reusing selectable unit", "key", string(key), "companion_selectable", reg.CompanionSelectable)
		return core.NewEntry(key, reg.Unit, reg.Companion, parameter), false, 0, nil
	}

	unit, err := s.opts.Factory.CreateInstance(ctx, key)
	if err != nil {
		return nil, false, core.KindInstantiationFailed, err
	}
	if unit == nil {
		return nil, false, core.KindInstantiationFailed, fmt.Errorf("factory returned no unit for %q", key)
	}

	companion, err := s.opts.Companions.ResolveCompanion(ctx, key, unit)
	if err != nil {
		return nil, false, core.KindCompanionResolutionFailed, err
	}

	return core.NewEntry(key, unit, companion, parameter), true, 0, nil
}

// discover attaches the nested slots hosted by entry's unit. A scanner
// reporting core.ErrNotVisible is retried once after awaiter (when it
// implements core.VisibilityAwaiter) has waited for the content.
//
// Restored and reused entries already carry nested slots. Slots the scanner
// no longer reports are reset; when discovery is skipped they are kept.
func (s *slot) discover(ctx context.Context, entry *core.Entry, awaiter any) error {
	children, err := s.opts.Scanner.DiscoverChildSlots(ctx, entry.Unit)
	if errors.Is(err, core.ErrNotVisible) {
		if !s.opts.DeferredDiscovery {
			s.log.LogDebug("Unit not visible, skipping nested slot discovery", "key", string(entry.Key))
			return nil
		}
		if a, ok := awaiter.(core.VisibilityAwaiter); ok {
			if err := a.AwaitVisible(ctx, entry.Unit); err != nil {
				return fmt.Errorf("await visible: %w", err)
			}
		}
		children, err = s.opts.Scanner.DiscoverChildSlots(ctx, entry.Unit)
	}
	if err != nil {
		return fmt.Errorf("discover child slots: %w", err)
	}
	previous := entry.Children()
	entry.SetChildren(children)
	s.dropChildren(ctx, entry, previous, children)
	return nil
}

// dropChildren resets the slots of previous that are not in current.
func (s *slot) dropChildren(ctx context.Context, entry *core.Entry, previous, current []core.SlotHandle) {
	for _, old := range previous {
		if slices.ContainsFunc(current, func(h core.SlotHandle) bool { return core.SameInstance(h, old) }) {
			continue
		}
		if err := old.Reset(ctx); err != nil {
			s.log.LogWarn("Resetting dropped nested slot failed", "key", string(entry.Key), "slot", old.Name(), "error", err)
		}
	}
}

// evict releases entries that left the store. An entry whose unit is still
// referenced keeps its registration and nested slots.
func (s *slot) evict(ctx context.Context, entries []*core.Entry, referenced func(unit any) bool) {
	for _, e := range entries {
		if e == nil || referenced(e.Unit) {
			continue
		}
		if s.registry.Remove(e) {
			s.log.LogDebug("Selectable unit deregistered", "key", string(e.Key))
		}
		if err := lifecycle.Release(ctx, e); err != nil {
			s.log.LogWarn("Releasing nested slots failed", "key", string(e.Key), "error", err)
		}
	}
}

// inherit copies the nested slots of a stored entry for the same unit onto a
// reused candidate, so its activation cascade reaches them.
func inherit(candidate *core.Entry, stored []*core.Entry) {
	for _, e := range stored {
		if e.SameUnit(candidate) {
			if children := e.Children(); len(children) > 0 {
				candidate.SetChildren(children)
				return
			}
		}
	}
}

// transition tracks one running operation: its span, start time and the
// navigation reported in events and failures.
type transition struct {
	s     *slot
	ctx   context.Context
	op    string
	nav   core.Navigation
	span  trace.Span
	start time.Time
}

func (s *slot) begin(ctx context.Context, op string, nav core.Navigation) *transition {
	ctx, span := s.opts.Tracer.Start(ctx, "navmesh."+op,
		trace.WithAttributes(
			attribute.String("navmesh.slot", s.name),
			attribute.String("navmesh.op", op),
			attribute.String("navmesh.kind", string(nav.Kind)),
			attribute.String("navmesh.key", string(nav.Key)),
		),
	)
	return &transition{s: s, ctx: ctx, op: op, nav: nav, span: span, start: time.Now()}
}

func (t *transition) callback(typ CallbackType, entry *core.Entry, f *core.Failure) error {
	return t.s.opts.Callbacks.ExecuteCallbacks(t.ctx, typ, &CallbackContext{
		Navigation: t.nav,
		Entry:      entry,
		Failure:    f,
	})
}

// guard converts a cascade outcome into a failure.
func (t *transition) guard(r *lifecycle.Refusal, err error, refused core.FailureKind) *core.Failure {
	if err != nil {
		return t.fail(core.KindTransitionFailed, err)
	}
	if r != nil {
		return t.fail(refused, r)
	}
	return nil
}

// fail reports a refused or failed transition exactly once and returns the
// failure descriptor handed back to the caller.
func (t *transition) fail(kind core.FailureKind, err error) *core.Failure {
	s := t.s
	f := core.NewFailure(kind, t.op, s.name, t.nav.Key, t.nav.Parameter, err)
	s.setState(StateFailed)

	t.span.RecordError(f)
	t.span.SetAttributes(attribute.String("navmesh.failure", kind.String()))
	t.span.SetStatus(codes.Error, kind.String())

	if kind.IsRefusal() {
		s.log.LogInfo("Navigation refused", "op", t.op, "key", string(t.nav.Key), "kind", kind.String(), "reason", err)
	} else {
		s.log.LogErrorWithStack(f, "Navigation failed", "op", t.op, "key", string(t.nav.Key), "kind", kind.String())
	}
	s.log.LogTransition(t.op, string(t.nav.Key), time.Since(t.start), false, f)

	if cbErr := t.callback(CallbackOnFailure, nil, f); cbErr != nil {
		s.log.LogWarn("Failure callback returned an error", "op", t.op, "error", cbErr)
	}
	s.publish(core.NewNavigationFailedEvent(f))

	s.setState(StateIdle)
	t.span.End()
	return f
}

// done completes a successful transition.
func (t *transition) done(entry *core.Entry, isNew bool) {
	if entry != nil {
		t.span.SetAttributes(
			attribute.String("navmesh.entry_id", entry.ID),
			attribute.Bool("navmesh.reused", !isNew),
		)
	}
	t.span.SetStatus(codes.Ok, "")
	t.s.log.LogTransition(t.op, string(t.nav.Key), time.Since(t.start), true, nil)
	t.s.setState(StateIdle)
	t.span.End()
}

// committed runs the after-commit callbacks; the transition can no longer
// fail at that point.
func (t *transition) committed(entry *core.Entry) {
	if err := t.callback(CallbackAfterCommit, entry, nil); err != nil {
		t.s.log.LogWarn("After-commit callback returned an error", "op", t.op, "error", err)
	}
}
