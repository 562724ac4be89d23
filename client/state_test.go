package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchStateString(t *testing.T) {
	tests := []struct {
		state    BatchState
		expected string
	}{
		{BUILDING, "BUILDING"},
		{EXECUTING, "EXECUTING"},
		{RECONCILED, "RECONCILED"},
		{FAILED, "FAILED"},
		{BatchState(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestLegalStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		from     BatchState
		to       BatchState
		shouldOK bool
	}{
		{"BUILDING to EXECUTING", BUILDING, EXECUTING, true},
		{"BUILDING to RECONCILED", BUILDING, RECONCILED, true},
		{"BUILDING to FAILED", BUILDING, FAILED, true},
		{"EXECUTING to RECONCILED", EXECUTING, RECONCILED, true},
		{"EXECUTING to FAILED", EXECUTING, FAILED, true},
		// Illegal transitions
		{"BUILDING to BUILDING", BUILDING, BUILDING, false},
		{"EXECUTING to BUILDING", EXECUTING, BUILDING, false},
		{"RECONCILED to BUILDING", RECONCILED, BUILDING, false},
		{"RECONCILED to FAILED", RECONCILED, FAILED, false},
		{"FAILED to EXECUTING", FAILED, EXECUTING, false},
		{"FAILED to RECONCILED", FAILED, RECONCILED, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shouldOK, isLegalTransition(tt.from, tt.to))
		})
	}
}

func TestStateMachineHistory(t *testing.T) {
	sm := newStateMachine()
	assert.Equal(t, BUILDING, sm.current)

	require.NoError(t, sm.transitionTo(EXECUTING))
	require.NoError(t, sm.transitionTo(RECONCILED))
	assert.Error(t, sm.transitionTo(FAILED))

	require.Len(t, sm.history, 2)
	assert.Equal(t, BUILDING, sm.history[0].From)
	assert.Equal(t, EXECUTING, sm.history[0].To)
	assert.Equal(t, RECONCILED, sm.history[1].To)
	assert.False(t, sm.history[1].Timestamp.Before(sm.history[0].Timestamp))
	assert.Equal(t, RECONCILED, sm.current)
}

func TestBatchFailIsIdempotent(t *testing.T) {
	b := NewBatchInsert(eventsTable(), false)
	b.fail()
	b.fail()

	assert.Equal(t, FAILED, b.State())
	assert.Len(t, b.Transitions(), 1)
}
