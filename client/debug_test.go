package client

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorDebugModeToggle(t *testing.T) {
	opts := DefaultOptions()
	opts.Logger = NewNoopLogger()
	e := NewExecutor(nil, &opts)

	assert.False(t, e.IsDebugMode())
	e.EnableDebugMode()
	assert.True(t, e.IsDebugMode())
	e.DisableDebugMode()
	assert.False(t, e.IsDebugMode())

	opts.DebugMode = true
	assert.True(t, NewExecutor(nil, &opts).IsDebugMode())
}

func TestExecutorDebugInfo(t *testing.T) {
	opts := DefaultOptions()
	opts.Logger = NewNoopLogger()
	e := NewExecutor(nil, &opts)
	e.RegisterHook(NewMetricsHook())

	gen, _ := counter(1)
	b := NewBatchInsert(usersTable(gen), false)
	addRow(t, b, map[string]interface{}{"name": "alice"})
	_, _, err := e.Statement(b)
	require.NoError(t, err)

	info := e.GetDebugInfo()
	assert.Equal(t, Version, info["version"])
	assert.Equal(t, false, info["debugMode"])
	assert.Equal(t, []string{"metrics"}, info["hooks"])

	dialect := info["dialect"].(map[string]interface{})
	assert.Equal(t, "duckdb", dialect["name"])
	assert.Equal(t, true, dialect["returning"])

	cache := info["statementCache"].(map[string]interface{})
	assert.Equal(t, int64(1), cache["misses"])
	assert.Equal(t, int64(1), cache["currentSize"])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(e.DumpDebugInfoJSON()), &decoded))
	assert.Equal(t, "duckdb", decoded["dialect"].(map[string]interface{})["name"])
}

func TestCaptureStackTrace(t *testing.T) {
	err := ErrNoCurrentRow("users")
	require.NotEmpty(t, err.StackTrace)

	found := false
	for _, frame := range err.StackTrace {
		if strings.Contains(frame, "TestCaptureStackTrace") {
			found = true
			break
		}
	}
	assert.True(t, found, "stack trace should include the calling test")
}
