package client

import (
	"fmt"
	"time"
)

// BatchState represents where a batch is in its build/execute/reconcile
// lifecycle. A batch is used once; it never returns to BUILDING.
type BatchState int

const (
	// BUILDING accepts new rows and values.
	BUILDING BatchState = iota
	// EXECUTING means the statement has been handed to the database;
	// the row set is fixed.
	EXECUTING
	// RECONCILED means generated keys have been mapped back onto rows.
	RECONCILED
	// FAILED means execution or key reconciliation returned an error.
	FAILED
)

// String returns the string representation of the batch state.
func (s BatchState) String() string {
	switch s {
	case BUILDING:
		return "BUILDING"
	case EXECUTING:
		return "EXECUTING"
	case RECONCILED:
		return "RECONCILED"
	case FAILED:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// StateTransition records a lifecycle change of a batch.
type StateTransition struct {
	From      BatchState
	To        BatchState
	Timestamp time.Time
	Duration  time.Duration // time spent in From
}

// stateMachine tracks the lifecycle of one batch. It is not safe for
// concurrent use; a batch has a single owner.
type stateMachine struct {
	current        BatchState
	lastTransition time.Time
	history        []StateTransition
}

func newStateMachine() stateMachine {
	return stateMachine{current: BUILDING, lastTransition: time.Now()}
}

// transitionTo moves to a new state, rejecting illegal transitions.
//
// Legal transitions:
//   - BUILDING → EXECUTING
//   - BUILDING → RECONCILED (statement executed by an external executor)
//   - BUILDING → FAILED
//   - EXECUTING → RECONCILED
//   - EXECUTING → FAILED
func (sm *stateMachine) transitionTo(next BatchState) error {
	if !isLegalTransition(sm.current, next) {
		return fmt.Errorf("illegal batch state transition: %s → %s", sm.current, next)
	}

	now := time.Now()
	sm.history = append(sm.history, StateTransition{
		From:      sm.current,
		To:        next,
		Timestamp: now,
		Duration:  now.Sub(sm.lastTransition),
	})
	sm.current = next
	sm.lastTransition = now
	return nil
}

func isLegalTransition(from, to BatchState) bool {
	switch from {
	case BUILDING:
		return to == EXECUTING || to == RECONCILED || to == FAILED
	case EXECUTING:
		return to == RECONCILED || to == FAILED
	default:
		return false
	}
}
