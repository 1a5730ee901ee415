package core

import "time"

// EventType names a slot notification.
type EventType string

const (
	// EventNavigating is raised before a transition consults its guards. It is
	// informational and cannot cancel the transition.
	EventNavigating EventType = "navigating"
	// EventNavigated is raised after a transition has been committed.
	EventNavigated EventType = "navigated"
	// EventNavigationFailed is raised once per refused or failed transition.
	EventNavigationFailed EventType = "navigation_failed"
	// EventSelectedChanged is raised when the selection of a multi-entry slot
	// changes, at most once per operation.
	EventSelectedChanged EventType = "selected_changed"
	// EventCanGoBackChanged is raised when CanGoBack flips.
	EventCanGoBackChanged EventType = "can_go_back_changed"
	// EventCanGoForwardChanged is raised when CanGoForward flips.
	EventCanGoForwardChanged EventType = "can_go_forward_changed"
)

// Event is the unit of notification raised by slots. After emission it
// should be treated as immutable. Which fields are populated depends on Type:
//   - navigating / navigated: Key, Parameter, Kind (Entry on navigated)
//   - navigation_failed: Failure
//   - selected_changed: Index and Entry (nil when nothing is selected)
//   - can_go_back_changed / can_go_forward_changed: Value
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Slot      string         `json:"slot"`
	Key       TypeKey        `json:"key,omitempty"`
	Parameter any            `json:"parameter,omitempty"`
	Kind      NavigationKind `json:"kind,omitempty"`
	Entry     *Entry         `json:"entry,omitempty"`
	Failure   *Failure       `json:"failure,omitempty"`
	Index     int            `json:"index"`
	Value     bool           `json:"value"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent creates a bare event of type t raised by slot.
func NewEvent(t EventType, slot string) Event {
	return Event{
		ID:        NewID(),
		Type:      t,
		Slot:      slot,
		Index:     -1,
		Timestamp: time.Now().UTC(),
	}
}

// NewNavigatingEvent announces the transition described by nav.
func NewNavigatingEvent(nav Navigation) Event {
	e := NewEvent(EventNavigating, nav.Slot)
	e.Key = nav.Key
	e.Parameter = nav.Parameter
	e.Kind = nav.Kind
	return e
}

// NewNavigatedEvent reports a committed transition to entry.
func NewNavigatedEvent(nav Navigation, entry *Entry) Event {
	e := NewEvent(EventNavigated, nav.Slot)
	e.Key = nav.Key
	e.Parameter = nav.Parameter
	e.Kind = nav.Kind
	e.Entry = entry
	return e
}

// NewNavigationFailedEvent reports a refused or failed transition.
func NewNavigationFailedEvent(f *Failure) Event {
	e := NewEvent(EventNavigationFailed, f.Slot)
	e.Key = f.Key
	e.Parameter = f.Parameter
	e.Failure = f
	return e
}

// NewSelectedChangedEvent reports the selection of a multi-entry slot.
func NewSelectedChangedEvent(slot string, index int, entry *Entry) Event {
	e := NewEvent(EventSelectedChanged, slot)
	e.Index = index
	e.Entry = entry
	return e
}

// NewCanGoBackChangedEvent reports a CanGoBack flip.
func NewCanGoBackChangedEvent(slot string, value bool) Event {
	e := NewEvent(EventCanGoBackChanged, slot)
	e.Value = value
	return e
}

// NewCanGoForwardChangedEvent reports a CanGoForward flip.
func NewCanGoForwardChangedEvent(slot string, value bool) Event {
	e := NewEvent(EventCanGoForwardChanged, slot)
	e.Value = value
	return e
}
