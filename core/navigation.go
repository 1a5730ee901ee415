package core

// NavigationKind classifies the operation that produced a transition.
type NavigationKind string

const (
	// NavigationNew is a forward navigation to a new or reused unit.
	NavigationNew NavigationKind = "new"
	// NavigationBack restores the previous entry from the back stack.
	NavigationBack NavigationKind = "back"
	// NavigationForward restores the next entry from the forward stack.
	NavigationForward NavigationKind = "forward"
	// NavigationRoot collapses history onto the root entry.
	NavigationRoot NavigationKind = "root"
	// NavigationRedirect replaces the current step without leaving a back entry.
	NavigationRedirect NavigationKind = "redirect"
	// NavigationInsert adds an entry to a multi-entry slot.
	NavigationInsert NavigationKind = "insert"
	// NavigationRemove removes an entry from a multi-entry slot.
	NavigationRemove NavigationKind = "remove"
)

// Navigation describes the transition a guard or hook is being consulted
// for. Key and Parameter always describe the entry the capability belongs
// to, which for nested slots differs from the navigation that triggered the
// cascade.
type Navigation struct {
	Slot      string
	Kind      NavigationKind
	Key       TypeKey
	Parameter any
}

// For returns a copy of nav re-targeted at entry within slot.
func (n Navigation) For(slot string, entry *Entry) Navigation {
	n.Slot = slot
	n.Key = entry.Key
	n.Parameter = entry.Parameter
	return n
}
