package event

import (
	"fmt"
	"sync"

	"github.com/hupe1980/navmesh/core"
	"github.com/hupe1980/navmesh/logging"
)

// Handler is a function that handles an event.
type Handler func(core.Event)

// Subscriber is an observer with identity. Pointer receivers are
// recommended so duplicate subscriptions can be detected.
type Subscriber interface {
	HandleEvent(ev core.Event)
}

// subscription represents a registered observer.
type subscription struct {
	id    string
	types map[core.EventType]struct{} // nil means every type
	sub   Subscriber
	fn    Handler
}

func (s subscription) wants(t core.EventType) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[t]
	return ok
}

func (s subscription) deliver(ev core.Event) {
	if s.sub != nil {
		s.sub.HandleEvent(ev)
		return
	}
	s.fn(ev)
}

// FeedOptions configures a Feed.
type FeedOptions struct {
	// Logger receives recovered handler panics. Defaults to NoOp.
	Logger logging.Logger
}

// Feed is a synchronous observer list. It is safe for concurrent use;
// handlers may subscribe or unsubscribe while an event is being published
// (changes apply to the next Publish).
type Feed struct {
	mu   sync.RWMutex
	subs []subscription
	log  *core.LoggerAdapter
}

// NewFeed creates an empty feed.
func NewFeed(optFns ...func(o *FeedOptions)) *Feed {
	opts := FeedOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Feed{log: core.NewLoggerAdapter(opts.Logger)}
}

// Subscribe registers s for the given event types (every type when none are
// given). It returns false, leaving the existing subscription untouched,
// when s is already subscribed.
func (f *Feed) Subscribe(s Subscriber, types ...core.EventType) bool {
	if s == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.subs {
		if existing.sub != nil && core.SameInstance(existing.sub, s) {
			return false
		}
	}
	f.subs = append(f.subs, subscription{id: core.NewID(), types: typeSet(types), sub: s})
	return true
}

// Unsubscribe removes s. It reports whether s was subscribed.
func (f *Feed) Unsubscribe(s Subscriber) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.subs {
		if existing.sub != nil && core.SameInstance(existing.sub, s) {
			f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
			return true
		}
	}
	return false
}

// SubscribeFunc registers fn for the given event types and returns a
// subscription ID usable with Cancel.
func (f *Feed) SubscribeFunc(fn Handler, types ...core.EventType) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := core.NewID()
	f.subs = append(f.subs, subscription{id: id, types: typeSet(types), fn: fn})
	return id
}

// Cancel removes the subscription with the given ID.
func (f *Feed) Cancel(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.subs {
		if existing.id == id {
			f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish delivers ev to every interested subscriber in subscription order.
func (f *Feed) Publish(ev core.Event) {
	f.mu.RLock()
	subs := make([]subscription, len(f.subs))
	copy(subs, f.subs)
	f.mu.RUnlock()

	for _, s := range subs {
		if s.wants(ev.Type) {
			f.safeCall(s, ev)
		}
	}
}

// Len returns the number of active subscriptions.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Clear removes all subscriptions.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = nil
}

func (f *Feed) safeCall(s subscription, ev core.Event) {
	defer func() {
		if r := recover(); r != nil {
			f.log.LogErrorWithStack(fmt.Errorf("%v", r), "event handler panicked",
				"event_type", string(ev.Type), "slot", ev.Slot, "subscription", s.id)
		}
	}()
	s.deliver(ev)
}

func typeSet(types []core.EventType) map[core.EventType]struct{} {
	if len(types) == 0 {
		return nil
	}
	set := make(map[core.EventType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}
