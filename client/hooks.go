package client

import (
	"context"
	"time"
)

// HookContext contains information about the batch insert being executed.
// This is passed to hooks to allow inspection and modification.
type HookContext struct {
	// Statement is the rendered INSERT statement
	Statement string

	// Table is the name of the target table
	Table string

	// Params are the flattened bound values, in placeholder order
	Params []interface{}

	// Rows is the number of rows in the batch
	Rows int

	// Inserted is the row count reported by the database (available in After hook)
	Inserted int

	// StartTime is when the batch execution began
	StartTime time.Time

	// Metadata allows hooks to store arbitrary data for passing between Before/After
	Metadata map[string]interface{}

	// TraceID is the unique identifier for this batch execution
	TraceID string

	// Result stores the reconciled generated values (available in After hook)
	Result []GeneratedValues

	// Error stores any error that occurred (available in After hook)
	Error error

	// Duration is the execution time (available in After hook)
	Duration time.Duration
}

// Hook is the interface that all hooks must implement.
// Hooks can inspect, modify, or abort batch execution.
type Hook interface {
	// Name returns the unique name of this hook
	Name() string

	// Before is called before the statement is sent.
	// Returning an error aborts the batch and returns the error.
	Before(ctx context.Context, hookCtx *HookContext) error

	// After is called after execution and key reconciliation (even if it failed).
	// Returning an error replaces any existing error.
	After(ctx context.Context, hookCtx *HookContext) error
}

// hookEntry wraps a Hook with its registration order for stable iteration.
type hookEntry struct {
	hook  Hook
	order int
}

// RegisterHook adds a hook to the executor's hook chain.
// Hooks are executed in FIFO order (first registered, first executed).
// If a hook with the same name already exists, it is replaced.
func (e *Executor) RegisterHook(hook Hook) {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()

	for i, entry := range e.hooks {
		if entry.hook.Name() == hook.Name() {
			// Replace existing hook, preserve order
			e.hooks[i].hook = hook
			e.logger.Info("hook replaced", String("hook", hook.Name()))
			return
		}
	}

	order := len(e.hooks)
	e.hooks = append(e.hooks, hookEntry{hook: hook, order: order})
	e.logger.Info("hook registered", String("hook", hook.Name()), Int("order", order))
}

// UnregisterHook removes a hook by name.
// Returns true if the hook was found and removed, false otherwise.
func (e *Executor) UnregisterHook(name string) bool {
	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()

	for i, entry := range e.hooks {
		if entry.hook.Name() == name {
			e.hooks = append(e.hooks[:i], e.hooks[i+1:]...)
			e.logger.Info("hook unregistered", String("hook", name))
			return true
		}
	}

	return false
}

// Hooks returns the names of all registered hooks in execution order.
func (e *Executor) Hooks() []string {
	e.hooksMu.RLock()
	defer e.hooksMu.RUnlock()

	names := make([]string, len(e.hooks))
	for i, entry := range e.hooks {
		names[i] = entry.hook.Name()
	}
	return names
}

func (e *Executor) snapshotHooks() []Hook {
	e.hooksMu.RLock()
	defer e.hooksMu.RUnlock()

	hooks := make([]Hook, len(e.hooks))
	for i, entry := range e.hooks {
		hooks[i] = entry.hook
	}
	return hooks
}

// executeBeforeHooks runs all Before hooks in order.
// If any hook returns an error, execution stops and the error is returned.
func (e *Executor) executeBeforeHooks(ctx context.Context, hookCtx *HookContext) error {
	for _, hook := range e.snapshotHooks() {
		if err := hook.Before(ctx, hookCtx); err != nil {
			e.logger.Debug("hook aborted batch",
				String("hook", hook.Name()),
				String("table", hookCtx.Table),
				Error("error", err))
			return err
		}
	}

	return nil
}

// executeAfterHooks runs all After hooks in order.
// All hooks are executed even if one returns an error.
// The last error returned (if any) is returned.
func (e *Executor) executeAfterHooks(ctx context.Context, hookCtx *HookContext) error {
	var lastErr error
	for _, hook := range e.snapshotHooks() {
		if err := hook.After(ctx, hookCtx); err != nil {
			e.logger.Debug("hook returned error in After",
				String("hook", hook.Name()),
				String("table", hookCtx.Table),
				Error("error", err))
			lastErr = err
		}
	}

	return lastErr
}
