// Package engine implements the transition engine of navmesh: the slots a
// host places its content in, and the state machine that moves a slot from
// one entry to the next.
//
// # Slot Kinds
//
// Navigator:
//   - Shows exactly one unit at a time
//   - Keeps back/forward history with a root entry
//   - Navigate, Redirect, GoBack, GoForward, NavigateToRoot, Clear
//
// Collection:
//   - Shows an ordered list of units with one selected position
//   - Insert, Add, RemoveAt, Remove, Clear (partial), SetSelected
//
// SyncSource:
//   - A Collection mirrored onto several presenters (Attach/Detach)
//   - Structural Move and ReplaceAt that bypass guards and hooks
//
// # Transition
//
// A forward navigation on a Navigator runs these steps:
//
//  1. "navigating" is raised and the current entry is asked to deactivate,
//     nested slots first
//  2. the candidate is reused from the selectable registry or created
//     through the Factory and CompanionResolver
//  3. the candidate is asked to activate, nested slots last
//  4. leaving is raised on the current entry, arriving on a new candidate
//  5. the Presenter swaps the content
//  6. nested slots are discovered, waiting once for visibility if needed
//  7. arrived is raised on a new candidate
//  8. history is committed, evicted units are deregistered and released,
//     a new selectable candidate is registered
//  9. loaded listeners run best-effort and "navigated" is raised
//
// Any refusal or error before step 8 leaves history untouched, restores the
// previous content when it had already been swapped, raises
// "navigation_failed" once and returns a *core.Failure.
//
// # Concurrency Model
//
// Each slot serializes its public operations with a gate whose acquisition
// honours context cancellation. Guards, hooks, callbacks and event handlers
// run on the calling goroutine while the gate is held; they must not call
// back into the same slot. Independent slots share no mutable state and may
// transition concurrently.
//
// # Observability
//
//   - Events are published on an event.Feed (Options.Feed)
//   - Every transition runs inside an OpenTelemetry span named
//     "navmesh.<op>" with slot, key and kind attributes
//   - Outcomes are logged through the configured logging.Logger
//   - CallbackManager hooks run before guards, after commit and on failure
//
// # Usage
//
//	nav := engine.NewNavigator("main",
//	    engine.WithFactory(factory),
//	    engine.WithPresenter(host),
//	)
//	if _, err := nav.Navigate(ctx, "Orders", 42); err != nil {
//	    if errors.Is(err, core.ErrDeactivationRefused) {
//	        // the user kept editing
//	    }
//	}
package engine
