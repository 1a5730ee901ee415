package scenario

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/engine"
)

func load(t *testing.T, path string) *Scenario {
	t.Helper()
	sc, err := Load(path)
	require.NoError(t, err)
	return sc
}

func navigatedUnits(r *Report, slot string) []string {
	var out []string
	for _, ev := range r.Events {
		if ev.Type == core.EventNavigated && ev.Slot == slot {
			out = append(out, Label(ev.Entry))
		}
	}
	return out
}

func TestRunWizard(t *testing.T) {
	report, err := NewRunner().Run(context.Background(), load(t, "testdata/wizard.yaml"))
	require.NoError(t, err)
	assert.Empty(t, report.Mismatches())

	assert.Equal(t, []string{
		"Home#1",
		"Details#1(1)",
		"Details#2(2)",
		"Details#1(1)", // reused
		"Editor#1",
		"Details#1(1)",
		"Home#1",
	}, navigatedUnits(report, "main"))

	require.Len(t, report.Slots, 1)
	main := report.Slots[0]
	assert.Equal(t, "Home#1", main.Current)
	assert.Empty(t, main.Back)
	assert.Empty(t, main.Forward)
}

func TestRunTabs(t *testing.T) {
	report, err := NewRunner().Run(context.Background(), load(t, "testdata/tabs.yaml"))
	require.NoError(t, err)

	states := map[string]SlotState{}
	for _, s := range report.Slots {
		states[s.Name] = s
	}

	tabs := states["tabs"]
	assert.Equal(t, []string{"Doc#2(b)", "Doc#1(a)"}, tabs.Entries)
	assert.Equal(t, 0, tabs.Selected)

	// Removing the settings tab released its nested navigator.
	pages := states["settings-pages"]
	assert.Equal(t, "-", pages.Current)
	assert.Empty(t, pages.Back)
}

func TestRunReportsMismatches(t *testing.T) {
	sc, err := Parse([]byte(`
name: mismatch
units: [{key: A, refuse_activate: true}]
slots: [{name: main, kind: navigator}]
steps:
  - {slot: main, op: navigate, key: A, expect: ok}
  - {slot: main, op: forward}
`))
	require.NoError(t, err)

	report, err := NewRunner().Run(context.Background(), sc)
	require.ErrorIs(t, err, ErrExpectationMismatch)

	mismatches := report.Mismatches()
	require.Len(t, mismatches, 1)
	assert.Equal(t, 0, mismatches[0].Index)
	assert.Equal(t, "activation_refused", mismatches[0].Outcome)
	assert.ErrorIs(t, mismatches[0].Err, core.ErrActivationRefused)

	// Steps without an expectation always match.
	assert.Equal(t, OutcomeNoHistory, report.Steps[1].Outcome)
	assert.True(t, report.Steps[1].Matched())
}

func TestRunSelectOnInsertOverride(t *testing.T) {
	sc, err := Parse([]byte(`
name: no-select
select_on_insert: false
units: [{key: Doc}]
slots: [{name: docs, kind: collection}]
steps:
  - {slot: docs, op: add, key: Doc}
  - {slot: docs, op: add, key: Doc}
  - {slot: docs, op: insert, index: 0, key: Doc}
`))
	require.NoError(t, err)

	report, err := NewRunner().Run(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Doc#3", "Doc#1", "Doc#2"}, report.Slots[0].Entries)
	assert.Equal(t, 1, report.Slots[0].Selected)
}

func TestRunCallbacks(t *testing.T) {
	var messages []string
	callbacks := engine.NewCallbackManager()
	callbacks.RegisterCallback(engine.NewLoggingCallback(engine.CallbackOnFailure, func(m string) {
		messages = append(messages, m)
	}))

	runner := NewRunner(func(o *RunnerOptions) { o.Callbacks = callbacks })
	_, err := runner.Run(context.Background(), load(t, "testdata/wizard.yaml"))
	require.NoError(t, err)

	// instantiation failure and the refused back navigation
	assert.Len(t, messages, 2)
}

func TestRunInvalidScenario(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), &Scenario{})
	assert.ErrorIs(t, err, ErrInvalidScenario)
}

func TestReportPrint(t *testing.T) {
	report, err := NewRunner().Run(context.Background(), load(t, "testdata/wizard.yaml"))
	require.NoError(t, err)

	var buf bytes.Buffer
	report.Print(&buf, true)
	out := buf.String()

	assert.Contains(t, out, "scenario wizard")
	assert.Contains(t, out, "=> deactivation_refused")
	assert.Contains(t, out, "main navigation_failed instantiation_failed Broken")
	assert.Contains(t, out, "main can_go_back_changed true")
	assert.Contains(t, out, "main current=Home#1 back=[] forward=[]")
	assert.NotContains(t, out, "FAIL")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeNoHistory, Outcome(core.ErrNoHistory))
	assert.Equal(t, "transition_failed", Outcome(core.NewFailure(core.KindTransitionFailed, "navigate", "main", "A", nil, nil)))
	assert.Equal(t, OutcomeError, Outcome(context.Canceled))
}
