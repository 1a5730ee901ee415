package engine

import (
	"sync"
	"testing"

	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/event"
	"github.com/hupe1980/navmesh/internal/testutil"
)

// eventLog collects events published on a feed.
type eventLog struct {
	mu     sync.Mutex
	events []core.Event
}

func (l *eventLog) HandleEvent(ev core.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []core.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Event(nil), l.events...)
}

func (l *eventLog) types() []core.EventType {
	var out []core.EventType
	for _, ev := range l.all() {
		out = append(out, ev.Type)
	}
	return out
}

func (l *eventLog) ofType(t core.EventType) []core.Event {
	var out []core.Event
	for _, ev := range l.all() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// harness wires a slot to recording fakes.
type harness struct {
	rec       *testutil.Recorder
	factory   *testutil.Factory
	presenter *testutil.Presenter
	items     *testutil.ItemsPresenter
	scanner   *testutil.Scanner
	feed      *event.Feed
	events    *eventLog
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		rec:       testutil.NewRecorder(),
		factory:   testutil.NewFactory(),
		presenter: testutil.NewPresenter(),
		items:     testutil.NewItemsPresenter(),
		scanner:   testutil.NewScanner(),
		feed:      event.NewFeed(),
		events:    &eventLog{},
	}
	h.feed.Subscribe(h.events)
	return h
}

func (h *harness) options(extra ...func(o *Options)) []func(o *Options) {
	base := func(o *Options) {
		o.Factory = h.factory
		o.Presenter = h.presenter
		o.ItemsPresenter = h.items
		o.Scanner = h.scanner
		o.Feed = h.feed
	}
	return append([]func(o *Options){base}, extra...)
}

func (h *harness) navigator(extra ...func(o *Options)) *Navigator {
	return NewNavigator("main", h.options(extra...)...)
}

func (h *harness) collection(extra ...func(o *Options)) *Collection {
	return NewCollection("tabs", h.options(extra...)...)
}

// unit registers key with a fresh unit per creation.
func (h *harness) unit(key core.TypeKey) {
	h.factory.Register(key, func() any {
		return testutil.NewUnitBuilder(string(key)).Recorder(h.rec).Build()
	})
}

// fixed registers key so that every creation returns u.
func (h *harness) fixed(key core.TypeKey, u any) {
	h.factory.Register(key, func() any { return u })
}

func (h *harness) build(name string) *testutil.UnitBuilder {
	return testutil.NewUnitBuilder(name).Recorder(h.rec)
}

func keys(entries []*core.Entry) []core.TypeKey {
	out := make([]core.TypeKey, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}
