package scenario

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/navmesh/core"
)

var (
	// ErrUnknownStep is returned for steps whose op is not recognised.
	ErrUnknownStep = errors.New("unknown step")
	// ErrInvalidScenario wraps every validation problem.
	ErrInvalidScenario = errors.New("invalid scenario")
)

// Slot kinds.
const (
	KindNavigator  = "navigator"
	KindCollection = "collection"
	KindSource     = "source"
)

// Step ops.
const (
	OpNavigate = "navigate"
	OpRedirect = "redirect"
	OpBack     = "back"
	OpForward  = "forward"
	OpRoot     = "root"
	OpClear    = "clear"
	OpInsert   = "insert"
	OpAdd      = "add"
	OpRemove   = "remove"
	OpSelect   = "select"
	OpMove     = "move"
	OpGuard    = "guard"
)

// Step outcomes besides the failure kinds.
const (
	OutcomeOK        = "ok"
	OutcomeNoHistory = "no_history"
	OutcomeError     = "error"
)

// Scenario is the root of a scenario file.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// SelectOnInsert overrides the collection default when set.
	SelectOnInsert *bool `yaml:"select_on_insert,omitempty"`

	Units []UnitSpec `yaml:"units"`
	Slots []SlotSpec `yaml:"slots"`
	Steps []Step     `yaml:"steps"`
}

// UnitSpec declares the behaviour of every unit created for Key.
type UnitSpec struct {
	Key              string `yaml:"key"`
	RefuseActivate   bool   `yaml:"refuse_activate,omitempty"`
	RefuseDeactivate bool   `yaml:"refuse_deactivate,omitempty"`

	// Selectable units are reused when navigated to with an equal parameter.
	Selectable bool `yaml:"selectable,omitempty"`

	// FailCreate makes the factory refuse to create the unit.
	FailCreate bool `yaml:"fail_create,omitempty"`

	// Hosts names the slots the unit contains.
	Hosts []string `yaml:"hosts,omitempty"`
}

// SlotSpec declares a named slot.
type SlotSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// Step is one operation of a scenario.
type Step struct {
	Slot  string `yaml:"slot,omitempty"`
	Op    string `yaml:"op"`
	Key   string `yaml:"key,omitempty"`
	Param any    `yaml:"param,omitempty"`
	Index *int   `yaml:"index,omitempty"`
	To    *int   `yaml:"to,omitempty"`

	// Guard toggles for the guard op.
	RefuseActivate   *bool `yaml:"refuse_activate,omitempty"`
	RefuseDeactivate *bool `yaml:"refuse_deactivate,omitempty"`

	Expect string `yaml:"expect,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// opKinds lists the slot kinds each op applies to. The guard op targets a
// unit key instead of a slot.
var opKinds = map[string][]string{
	OpNavigate: {KindNavigator},
	OpRedirect: {KindNavigator},
	OpBack:     {KindNavigator},
	OpForward:  {KindNavigator},
	OpRoot:     {KindNavigator},
	OpClear:    {KindNavigator, KindCollection, KindSource},
	OpInsert:   {KindCollection, KindSource},
	OpAdd:      {KindCollection, KindSource},
	OpRemove:   {KindCollection, KindSource},
	OpSelect:   {KindCollection, KindSource},
	OpMove:     {KindSource},
	OpGuard:    nil,
}

var needsKey = []string{OpNavigate, OpRedirect, OpInsert, OpAdd, OpGuard}

var needsIndex = []string{OpInsert, OpRemove, OpSelect, OpMove}

// Outcomes returns every outcome a step may expect.
func Outcomes() []string {
	out := []string{OutcomeOK, OutcomeNoHistory, OutcomeError}
	for k := core.KindTransitionFailed; k <= core.KindIndexOutOfRange; k++ {
		out = append(out, k.String())
	}
	return out
}

// Validate checks the scenario without running it. All problems are
// reported at once.
func (s *Scenario) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if s.Name == "" {
		add("scenario has no name")
	}

	slots := make(map[string]string, len(s.Slots))
	for i, sl := range s.Slots {
		switch {
		case sl.Name == "":
			add("slot %d: missing name", i)
		case slots[sl.Name] != "":
			add("slot %q: declared twice", sl.Name)
		}
		switch sl.Kind {
		case KindNavigator, KindCollection, KindSource:
		default:
			add("slot %q: unknown kind %q", sl.Name, sl.Kind)
		}
		slots[sl.Name] = sl.Kind
	}

	units := make(map[string]bool, len(s.Units))
	for i, u := range s.Units {
		switch {
		case u.Key == "":
			add("unit %d: missing key", i)
		case units[u.Key]:
			add("unit %q: declared twice", u.Key)
		}
		units[u.Key] = true
		for _, h := range u.Hosts {
			if _, ok := slots[h]; !ok {
				add("unit %q: hosts unknown slot %q", u.Key, h)
			}
		}
	}

	outcomes := Outcomes()
	for i, st := range s.Steps {
		kinds, known := opKinds[st.Op]
		if !known {
			errs = append(errs, fmt.Errorf("step %d: %w %q", i, ErrUnknownStep, st.Op))
			continue
		}
		if st.Op != OpGuard {
			kind, ok := slots[st.Slot]
			switch {
			case !ok:
				add("step %d: unknown slot %q", i, st.Slot)
			case !slices.Contains(kinds, kind):
				add("step %d: %s is not supported by %s %q", i, st.Op, kind, st.Slot)
			}
		}
		if slices.Contains(needsKey, st.Op) && !units[st.Key] {
			add("step %d: unknown unit %q", i, st.Key)
		}
		if slices.Contains(needsIndex, st.Op) && st.Index == nil {
			add("step %d: %s needs an index", i, st.Op)
		}
		if st.Op == OpMove && st.To == nil {
			add("step %d: move needs a target index", i)
		}
		if st.Expect != "" && !slices.Contains(outcomes, st.Expect) {
			add("step %d: unknown outcome %q", i, st.Expect)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
	}
	return nil
}

// Unit returns the declaration for key.
func (s *Scenario) Unit(key string) (UnitSpec, bool) {
	for _, u := range s.Units {
		if u.Key == key {
			return u, true
		}
	}
	return UnitSpec{}, false
}
