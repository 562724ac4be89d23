package client

import (
	"encoding/json"
	"fmt"
	"time"
)

// BatchError represents a batch insert failure detected by this package.
// Errors raised by the database driver are never wrapped in a BatchError;
// they reach the caller unchanged.
type BatchError struct {
	Code       string                 `json:"code"`
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details"`
	Cause      error                  `json:"cause,omitempty"`
	StackTrace []string               `json:"stack_trace,omitempty"`
	Timestamp  time.Time              `json:"timestamp,omitempty"`
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return e.FormatError(false)
}

// FormatError formats the error based on debug mode.
// When debugMode=false: returns simple "CODE: message" format.
// When debugMode=true: returns indented JSON with details and stack trace.
func (e *BatchError) FormatError(debugMode bool) string {
	if !debugMode {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (caused by: %s)", e.Code, e.Message, e.Cause.Error())
		}
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	errorData := map[string]interface{}{
		"code":    e.Code,
		"type":    e.Type,
		"message": e.Message,
	}

	if len(e.Details) > 0 {
		errorData["details"] = e.Details
	}

	if e.Cause != nil {
		errorData["cause"] = map[string]interface{}{"message": e.Cause.Error()}
	}

	if len(e.StackTrace) > 0 {
		errorData["stack_trace"] = e.StackTrace
	}

	if !e.Timestamp.IsZero() {
		errorData["timestamp"] = e.Timestamp.Format(time.RFC3339Nano)
	}

	b, _ := json.MarshalIndent(errorData, "", "  ")
	return string(b)
}

// Unwrap returns the underlying cause error.
func (e *BatchError) Unwrap() error {
	return e.Cause
}

// Is matches another *BatchError by code, so callers can compare against
// a template such as &BatchError{Code: CodeUnknownColumn}.
func (e *BatchError) Is(target error) bool {
	t, ok := target.(*BatchError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// Error codes.
const (
	CodeUnknownColumn     = "E_UNKNOWN_COLUMN"
	CodeNoCurrentRow      = "E_NO_CURRENT_ROW"
	CodeInvalidBatchState = "E_INVALID_BATCH_STATE"
	CodeMixedDefaults     = "E_MIXED_DEFAULTS"
	CodeNoDialect         = "E_NO_DIALECT"
	CodeEmptyBatch        = "E_EMPTY_BATCH"
	CodeNoColumns         = "E_NO_COLUMNS"
)

// ErrUnknownColumn creates an error for a value set on a column that does not
// belong to the batch's table.
func ErrUnknownColumn(table, column string) *BatchError {
	return &BatchError{
		Code:    CodeUnknownColumn,
		Type:    "CONFIGURATION_ERROR",
		Message: fmt.Sprintf("column '%s' does not belong to table '%s'", column, table),
		Details: map[string]interface{}{
			"table":  table,
			"column": column,
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrNoCurrentRow creates an error for Set calls made before AddBatch.
func ErrNoCurrentRow(table string) *BatchError {
	return &BatchError{
		Code:    CodeNoCurrentRow,
		Type:    "CONFIGURATION_ERROR",
		Message: "no open row: call AddBatch before setting values",
		Details: map[string]interface{}{
			"table": table,
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrInvalidBatchState creates an error for operations not allowed in the
// batch's current lifecycle state.
func ErrInvalidBatchState(operation string, actual BatchState) *BatchError {
	return &BatchError{
		Code:    CodeInvalidBatchState,
		Type:    "STATE_ERROR",
		Message: fmt.Sprintf("cannot %s: batch is %s", operation, actual),
		Details: map[string]interface{}{
			"operation": operation,
			"state":     actual.String(),
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrMixedDefaults creates an error when rows disagree on which columns take
// a database default and the dialect cannot express DEFAULT inside VALUES.
func ErrMixedDefaults(dialect, column string) *BatchError {
	return &BatchError{
		Code:    CodeMixedDefaults,
		Type:    "QUERY_ERROR",
		Message: fmt.Sprintf("column '%s' uses the database default in some rows only; %s has no DEFAULT keyword in VALUES", column, dialect),
		Details: map[string]interface{}{
			"dialect": dialect,
			"column":  column,
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrNoDialect creates an error for executors configured without a dialect.
func ErrNoDialect() *BatchError {
	return &BatchError{
		Code:       CodeNoDialect,
		Type:       "CONFIGURATION_ERROR",
		Message:    "executor has no dialect configured",
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrEmptyBatch creates an error for executing a batch without rows.
func ErrEmptyBatch(table string) *BatchError {
	return &BatchError{
		Code:    CodeEmptyBatch,
		Type:    "QUERY_ERROR",
		Message: fmt.Sprintf("batch for table '%s' has no rows", table),
		Details: map[string]interface{}{
			"table": table,
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrNoColumns creates an error for a batch whose rows bind no column at all.
func ErrNoColumns(table string) *BatchError {
	return &BatchError{
		Code:    CodeNoColumns,
		Type:    "QUERY_ERROR",
		Message: fmt.Sprintf("batch for table '%s' binds no columns", table),
		Details: map[string]interface{}{
			"table": table,
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// FormatError is a helper to format any error with debug mode support.
func FormatError(err error, debugMode bool) string {
	if err == nil {
		return ""
	}

	type debugFormatter interface {
		FormatError(bool) string
	}

	if formatter, ok := err.(debugFormatter); ok {
		return formatter.FormatError(debugMode)
	}

	return err.Error()
}
