package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hupe1980/navmesh"
	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/engine"
	"github.com/hupe1980/navmesh/logging"
)

// ErrExpectationMismatch is returned by Run when at least one step ended
// with an outcome other than the one it expected.
var ErrExpectationMismatch = errors.New("unexpected step outcome")

// errCreateRefused is returned by the scenario factory for fail_create units.
var errCreateRefused = errors.New("creation refused by scenario")

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Logger is passed to the mesh and every slot. Defaults to NoOp.
	Logger logging.Logger

	// Callbacks are installed on every slot (optional).
	Callbacks *engine.CallbackManager
}

// Runner replays scenarios.
type Runner struct {
	opts RunnerOptions
}

// NewRunner creates a Runner.
func NewRunner(optFns ...func(o *RunnerOptions)) *Runner {
	opts := RunnerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{opts: opts}
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int
	Step     Step
	Outcome  string
	Expected string
	Err      error
}

// Matched reports whether the step met its expectation. Steps without an
// expectation always match.
func (r StepResult) Matched() bool {
	return r.Expected == "" || r.Expected == r.Outcome
}

// SlotState is the final state of a slot.
type SlotState struct {
	Name     string
	Kind     string
	Current  string
	Back     []string
	Forward  []string
	Entries  []string
	Selected int
}

// Report is the result of a scenario run.
type Report struct {
	Scenario string
	Steps    []StepResult
	Events   []core.Event
	Slots    []SlotState
}

// Mismatches returns the steps that did not meet their expectation.
func (r *Report) Mismatches() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if !s.Matched() {
			out = append(out, s)
		}
	}
	return out
}

// run holds the live objects of one scenario run.
type run struct {
	sc          *Scenario
	mesh        *navmesh.Mesh
	behaviors   map[string]*behavior
	navigators  map[string]*engine.Navigator
	collections map[string]*engine.Collection
	sources     map[string]*engine.SyncSource

	mu  sync.Mutex
	seq map[core.TypeKey]int
}

// Run executes every step of sc in order. A failing step does not stop the
// run; the returned error wraps ErrExpectationMismatch when any step missed
// its expectation.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	rn := &run{
		sc:          sc,
		behaviors:   make(map[string]*behavior, len(sc.Units)),
		navigators:  make(map[string]*engine.Navigator),
		collections: make(map[string]*engine.Collection),
		sources:     make(map[string]*engine.SyncSource),
		seq:         make(map[core.TypeKey]int),
	}
	for _, u := range sc.Units {
		rn.behaviors[u.Key] = &behavior{refuseActivate: u.RefuseActivate, refuseDeactivate: u.RefuseDeactivate}
	}

	rn.mesh = navmesh.New(func(o *navmesh.Options) {
		o.Factory = core.FactoryFunc(rn.create)
		o.Scanner = core.StructureScannerFunc(rn.scan)
		o.Logger = r.opts.Logger
		o.Callbacks = r.opts.Callbacks
		if sc.SelectOnInsert != nil {
			o.SelectOnInsert = *sc.SelectOnInsert
		}
	})
	defer func() { _ = rn.mesh.Close(context.Background()) }()

	report := &Report{Scenario: sc.Name}
	var mu sync.Mutex
	id := rn.mesh.Subscribe(func(ev core.Event) {
		mu.Lock()
		defer mu.Unlock()
		report.Events = append(report.Events, ev)
	})
	defer rn.mesh.Events().Cancel(id)

	if err := rn.createSlots(); err != nil {
		return nil, err
	}

	for i, st := range sc.Steps {
		err := rn.exec(ctx, st)
		report.Steps = append(report.Steps, StepResult{
			Index:    i,
			Step:     st,
			Outcome:  Outcome(err),
			Expected: st.Expect,
			Err:      err,
		})
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	report.Slots = rn.states()

	if n := len(report.Mismatches()); n > 0 {
		return report, fmt.Errorf("%w: %d step(s)", ErrExpectationMismatch, n)
	}
	return report, nil
}

func (rn *run) createSlots() error {
	for _, s := range rn.sc.Slots {
		var err error
		switch s.Kind {
		case KindNavigator:
			rn.navigators[s.Name], err = rn.mesh.Navigator(s.Name)
		case KindCollection:
			rn.collections[s.Name], err = rn.mesh.Collection(s.Name)
		case KindSource:
			var src *engine.SyncSource
			src, err = rn.mesh.Source(s.Name)
			rn.sources[s.Name] = src
			if src != nil {
				rn.collections[s.Name] = src.Collection
			}
		}
		if err != nil {
			return fmt.Errorf("create slot %q: %w", s.Name, err)
		}
	}
	return nil
}

func (rn *run) create(_ context.Context, key core.TypeKey) (any, error) {
	spec, ok := rn.sc.Unit(string(key))
	if !ok {
		return nil, fmt.Errorf("no unit declared for %q", key)
	}
	if spec.FailCreate {
		return nil, errCreateRefused
	}

	rn.mu.Lock()
	rn.seq[key]++
	seq := rn.seq[key]
	rn.mu.Unlock()

	u := &Unit{Key: key, Seq: seq, Hosts: spec.Hosts, behavior: rn.behaviors[spec.Key]}
	if spec.Selectable {
		return &SelectableUnit{Unit: u}, nil
	}
	return u, nil
}

func (rn *run) scan(_ context.Context, unit any) ([]core.SlotHandle, error) {
	var u *Unit
	switch v := unit.(type) {
	case *Unit:
		u = v
	case *SelectableUnit:
		u = v.Unit
	default:
		return nil, nil
	}

	slots := make([]core.SlotHandle, 0, len(u.Hosts))
	for _, name := range u.Hosts {
		if s, ok := rn.mesh.Registry().Slot(name); ok {
			slots = append(slots, s)
		} else if s, ok := rn.mesh.Registry().Source(name); ok {
			slots = append(slots, s)
		}
	}
	return slots, nil
}

func (rn *run) exec(ctx context.Context, st Step) error {
	key := core.TypeKey(st.Key)

	switch st.Op {
	case OpGuard:
		rn.behaviors[st.Key].set(st.RefuseActivate, st.RefuseDeactivate)
		return nil
	case OpNavigate:
		_, err := rn.navigators[st.Slot].Navigate(ctx, key, st.Param)
		return err
	case OpRedirect:
		_, err := rn.navigators[st.Slot].Redirect(ctx, key, st.Param)
		return err
	case OpBack:
		_, err := rn.navigators[st.Slot].GoBack(ctx)
		return err
	case OpForward:
		_, err := rn.navigators[st.Slot].GoForward(ctx)
		return err
	case OpRoot:
		_, err := rn.navigators[st.Slot].NavigateToRoot(ctx)
		return err
	case OpClear:
		if nav, ok := rn.navigators[st.Slot]; ok {
			return nav.Clear(ctx)
		}
		_, err := rn.collections[st.Slot].Clear(ctx)
		return err
	case OpInsert:
		_, err := rn.collections[st.Slot].Insert(ctx, *st.Index, key, st.Param)
		return err
	case OpAdd:
		_, err := rn.collections[st.Slot].Add(ctx, key, st.Param)
		return err
	case OpRemove:
		return rn.collections[st.Slot].RemoveAt(ctx, *st.Index)
	case OpSelect:
		return rn.collections[st.Slot].SetSelected(ctx, *st.Index)
	case OpMove:
		return rn.sources[st.Slot].Move(ctx, *st.Index, *st.To)
	default:
		return fmt.Errorf("%w %q", ErrUnknownStep, st.Op)
	}
}

func (rn *run) states() []SlotState {
	out := make([]SlotState, 0, len(rn.sc.Slots))
	for _, s := range rn.sc.Slots {
		state := SlotState{Name: s.Name, Kind: s.Kind, Selected: -1}
		if nav, ok := rn.navigators[s.Name]; ok {
			state.Current = Label(nav.Current())
			state.Back = labels(nav.BackStack())
			state.Forward = labels(nav.ForwardStack())
		} else if c, ok := rn.collections[s.Name]; ok {
			state.Entries = labels(c.Entries())
			state.Selected, _ = c.Selected()
		}
		out = append(out, state)
	}
	return out
}

// Outcome maps an operation result to its scenario outcome.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, core.ErrNoHistory) {
		return OutcomeNoHistory
	}
	if f, ok := core.AsFailure(err); ok {
		return f.Kind.String()
	}
	return OutcomeError
}

// Label renders an entry as "Key#Seq(param)".
func Label(e *core.Entry) string {
	if e == nil {
		return "-"
	}
	if e.Parameter == nil {
		return fmt.Sprint(e.Unit)
	}
	return fmt.Sprintf("%v(%v)", e.Unit, e.Parameter)
}

func labels(entries []*core.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = Label(e)
	}
	return out
}

// Print writes a human readable report.
func (r *Report) Print(w io.Writer, withEvents bool) {
	fmt.Fprintf(w, "scenario %s\n", r.Scenario)

	for _, s := range r.Steps {
		mark := "ok  "
		if !s.Matched() {
			mark = "FAIL"
		}
		line := fmt.Sprintf("%s %2d %-8s %-10s %s", mark, s.Index, s.Step.Op, s.Step.Slot, describe(s.Step))
		fmt.Fprintf(w, "%s => %s", strings.TrimRight(line, " "), s.Outcome)
		if !s.Matched() {
			fmt.Fprintf(w, " (expected %s)", s.Expected)
		}
		fmt.Fprintln(w)
	}

	if withEvents {
		fmt.Fprintln(w, "events:")
		for _, ev := range r.Events {
			fmt.Fprintf(w, "  %s %s%s\n", ev.Slot, ev.Type, eventDetail(ev))
		}
	}

	fmt.Fprintln(w, "slots:")
	for _, s := range r.Slots {
		switch s.Kind {
		case KindNavigator:
			fmt.Fprintf(w, "  %s current=%s back=%v forward=%v\n", s.Name, s.Current, s.Back, s.Forward)
		default:
			fmt.Fprintf(w, "  %s entries=%v selected=%d\n", s.Name, s.Entries, s.Selected)
		}
	}
}

func describe(st Step) string {
	var parts []string
	if st.Key != "" {
		parts = append(parts, st.Key)
	}
	if st.Param != nil {
		parts = append(parts, fmt.Sprintf("param=%v", st.Param))
	}
	if st.Index != nil {
		parts = append(parts, fmt.Sprintf("index=%d", *st.Index))
	}
	if st.To != nil {
		parts = append(parts, fmt.Sprintf("to=%d", *st.To))
	}
	return strings.Join(parts, " ")
}

func eventDetail(ev core.Event) string {
	switch ev.Type {
	case core.EventNavigating, core.EventNavigated:
		return fmt.Sprintf(" %s %s", ev.Kind, ev.Key)
	case core.EventNavigationFailed:
		return fmt.Sprintf(" %s %s", ev.Failure.Kind, ev.Key)
	case core.EventSelectedChanged:
		return fmt.Sprintf(" %d", ev.Index)
	case core.EventCanGoBackChanged, core.EventCanGoForwardChanged:
		return fmt.Sprintf(" %t", ev.Value)
	default:
		return ""
	}
}
