package client

import (
	"encoding/json"
	"fmt"
	"runtime"
)

// EnableDebugMode enables verbose error serialization and statement logging.
func (e *Executor) EnableDebugMode() {
	e.debugMode.Store(true)
	e.logger.Info("debug mode enabled")
}

// DisableDebugMode disables debug mode.
func (e *Executor) DisableDebugMode() {
	e.debugMode.Store(false)
	e.logger.Info("debug mode disabled")
}

// IsDebugMode returns whether debug mode is currently enabled.
func (e *Executor) IsDebugMode() bool {
	return e.debugMode.Load()
}

// GetDebugInfo returns a snapshot of executor state for debugging.
func (e *Executor) GetDebugInfo() map[string]interface{} {
	info := map[string]interface{}{
		"version":   Version,
		"debugMode": e.IsDebugMode(),
	}

	if e.dialect != nil {
		info["dialect"] = map[string]interface{}{
			"name":                  e.dialect.Name,
			"multipleGeneratedKeys": e.dialect.SupportsMultipleGeneratedKeys,
			"returning":             e.dialect.SupportsReturning,
			"defaultKeyword":        e.dialect.SupportsDefaultKeyword,
		}
	}

	stats := e.cache.Stats()
	info["statementCache"] = map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"evictions":   stats.Evictions,
		"currentSize": stats.CurrentSize,
	}

	info["hooks"] = e.Hooks()

	return info
}

// DumpDebugInfoJSON returns GetDebugInfo as indented JSON.
func (e *Executor) DumpDebugInfoJSON() string {
	info := e.GetDebugInfo()
	bytes, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal debug info: %s"}`, err.Error())
	}
	return string(bytes)
}

// captureStackTrace captures the current stack trace for error reporting.
func captureStackTrace() []string {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(3, pcs) // Skip captureStackTrace, the error constructor, and runtime.Callers

	frames := make([]string, 0, n)
	callersFrames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := callersFrames.Next()

		// Format: function (file:line)
		frames = append(frames, fmt.Sprintf("%s (%s:%d)",
			frame.Function,
			frame.File,
			frame.Line,
		))

		if !more {
			break
		}
	}

	return frames
}
