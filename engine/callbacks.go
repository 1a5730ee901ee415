package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/navmesh/core"
)

// CallbackType defines the points of a transition where callbacks run.
//
// Callbacks provide a flexible mechanism for hooking into transitions without
// implementing capabilities on every unit. Unlike event feed subscribers,
// before-transition callbacks run synchronously inside the slot gate and can
// abort the transition by returning an error.
//
// Available callback types:
//   - BeforeTransition: after "navigating" is raised, before any guard
//   - AfterCommit: once history has been committed, before "navigated"
//   - OnFailure: once per refused or failed transition
type CallbackType string

const (
	// CallbackBeforeTransition is triggered before guards are consulted.
	// Returning an error fails the transition with KindTransitionFailed.
	CallbackBeforeTransition CallbackType = "before_transition"

	// CallbackAfterCommit is triggered after history has been committed.
	// Errors are logged; the transition is already complete.
	CallbackAfterCommit CallbackType = "after_commit"

	// CallbackOnFailure is triggered when a transition is refused or fails.
	// Errors are logged.
	CallbackOnFailure CallbackType = "on_failure"
)

// CallbackContext carries the transition a callback runs for.
type CallbackContext struct {
	// Navigation describes the transition.
	Navigation core.Navigation

	// Entry is the candidate or restored entry. It is nil before the
	// candidate has been resolved.
	Entry *core.Entry

	// Failure is set for CallbackOnFailure.
	Failure *core.Failure

	// CallbackType indicates which callback type triggered this execution.
	CallbackType CallbackType

	// Metadata provides extensible storage shared by the callbacks of one
	// execution.
	Metadata map[string]any
}

// Callback defines the interface for transition hooks.
//
// Implementations should be fast: callbacks run synchronously while the
// slot is locked against other operations.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback wraps a function as a callback implementation.
//
// Example:
//
//	audit := NewFunctionCallback(
//	    CallbackAfterCommit,
//	    func(ctx context.Context, cc *CallbackContext) error {
//	        log.Printf("now showing %s", cc.Entry)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager holds the callbacks of one or more slots.
//
// Callbacks are executed in registration order, and any callback returning
// an error stops the remaining callbacks of that type. Registration is safe
// for concurrent use with execution.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates a new callback manager instance.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback to the manager for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks executes all registered callbacks for the specified type
// and returns the first error.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	if cm == nil {
		return nil
	}
	cm.mu.RLock()
	callbacks := append([]Callback(nil), cm.callbacks[callbackType]...)
	cm.mu.RUnlock()

	callbackCtx.CallbackType = callbackType
	if callbackCtx.Metadata == nil {
		callbackCtx.Metadata = map[string]any{}
	}
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return fmt.Errorf("%s callback: %w", callbackType, err)
		}
	}

	return nil
}

// LoggingCallback forwards transition callbacks to a logging function.
//
// Example:
//
//	callback := NewLoggingCallback(CallbackAfterCommit, func(msg string) {
//	    log.Printf("[NAV] %s", msg)
//	})
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the transition with slot, kind and target.
func (c *LoggingCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}
	nav := callbackCtx.Navigation
	message := fmt.Sprintf("[%s] slot=%s kind=%s key=%s", c.callbackType, nav.Slot, nav.Kind, nav.Key)
	if callbackCtx.Failure != nil {
		message += fmt.Sprintf(" failure=%s", callbackCtx.Failure.Kind)
	}
	c.logger(message)
	return nil
}

// KeyFilterCallback rejects transitions to keys not accepted by allow. It is
// a before-transition callback, useful to fence off parts of an application.
type KeyFilterCallback struct {
	allow func(key core.TypeKey) bool
}

// NewKeyFilterCallback creates a new key filter.
func NewKeyFilterCallback(allow func(key core.TypeKey) bool) *KeyFilterCallback {
	return &KeyFilterCallback{allow: allow}
}

// Type returns CallbackBeforeTransition.
func (c *KeyFilterCallback) Type() CallbackType {
	return CallbackBeforeTransition
}

// Execute rejects keys not accepted by the filter.
func (c *KeyFilterCallback) Execute(_ context.Context, callbackCtx *CallbackContext) error {
	key := callbackCtx.Navigation.Key
	if c.allow != nil && key != "" && !c.allow(key) {
		return fmt.Errorf("key %q is not allowed in slot %q", key, callbackCtx.Navigation.Slot)
	}
	return nil
}
