package client

import (
	"context"
	"sync/atomic"
)

// ============================================================================
// LoggingHook - Logs batch execution details
// ============================================================================

// LoggingHook logs batch execution with configurable detail levels.
type LoggingHook struct {
	logger        Logger
	logStatements bool // Log rendered SQL
	logGenerated  bool // Log reconciled generated values
	logDurations  bool // Log execution times
}

// NewLoggingHook creates a new logging hook with the given logger.
func NewLoggingHook(logger Logger, logStatements, logGenerated, logDurations bool) *LoggingHook {
	return &LoggingHook{
		logger:        logger,
		logStatements: logStatements,
		logGenerated:  logGenerated,
		logDurations:  logDurations,
	}
}

func (h *LoggingHook) Name() string {
	return "logging"
}

func (h *LoggingHook) Before(ctx context.Context, hookCtx *HookContext) error {
	if h.logStatements {
		h.logger.Debug("executing batch insert",
			String("statement", hookCtx.Statement),
			String("table", hookCtx.Table),
			Int("rows", hookCtx.Rows),
			String("trace_id", hookCtx.TraceID))
	}
	return nil
}

func (h *LoggingHook) After(ctx context.Context, hookCtx *HookContext) error {
	fields := []Field{
		String("table", hookCtx.Table),
		Int("rows", hookCtx.Rows),
		String("trace_id", hookCtx.TraceID),
	}

	if h.logDurations {
		fields = append(fields, Duration("duration", hookCtx.Duration))
	}

	if hookCtx.Error != nil {
		fields = append(fields, Error("error", hookCtx.Error))
		h.logger.Error("batch insert failed", fields...)
		return nil
	}

	fields = append(fields, Int("inserted", hookCtx.Inserted))
	if h.logGenerated {
		fields = append(fields, Field{Key: "generated", Value: generatedByName(hookCtx.Result)})
	}
	h.logger.Debug("batch insert completed", fields...)
	return nil
}

// generatedByName converts reconciled values to column-name keyed maps.
func generatedByName(result []GeneratedValues) []map[string]interface{} {
	out := make([]map[string]interface{}, len(result))
	for i, values := range result {
		m := make(map[string]interface{}, len(values))
		for col, v := range values {
			m[col.Name] = v
		}
		out[i] = m
	}
	return out
}

// ============================================================================
// MetricsHook - Collects performance metrics
// ============================================================================

// MetricsHook collects batch execution metrics using atomic counters.
type MetricsHook struct {
	TotalBatches    atomic.Uint64
	TotalRows       atomic.Uint64
	TotalInserted   atomic.Uint64
	TotalErrors     atomic.Uint64
	TotalDurationNs atomic.Uint64
}

// NewMetricsHook creates a new metrics collection hook.
func NewMetricsHook() *MetricsHook {
	return &MetricsHook{}
}

func (h *MetricsHook) Name() string {
	return "metrics"
}

func (h *MetricsHook) Before(ctx context.Context, hookCtx *HookContext) error {
	return nil
}

func (h *MetricsHook) After(ctx context.Context, hookCtx *HookContext) error {
	h.TotalBatches.Add(1)
	h.TotalRows.Add(uint64(hookCtx.Rows))
	h.TotalDurationNs.Add(uint64(hookCtx.Duration.Nanoseconds()))

	if hookCtx.Error != nil {
		h.TotalErrors.Add(1)
		return nil
	}
	if hookCtx.Inserted > 0 {
		h.TotalInserted.Add(uint64(hookCtx.Inserted))
	}
	return nil
}

// GetStats returns current metrics as a map.
func (h *MetricsHook) GetStats() map[string]interface{} {
	totalBatches := h.TotalBatches.Load()
	totalDur := h.TotalDurationNs.Load()

	avgDuration := int64(0)
	if totalBatches > 0 {
		avgDuration = int64(totalDur / totalBatches)
	}

	return map[string]interface{}{
		"total_batches":     totalBatches,
		"total_rows":        h.TotalRows.Load(),
		"total_inserted":    h.TotalInserted.Load(),
		"total_errors":      h.TotalErrors.Load(),
		"total_duration_ns": totalDur,
		"avg_duration_ns":   avgDuration,
		"avg_duration_ms":   float64(avgDuration) / 1_000_000,
		"total_duration_ms": float64(totalDur) / 1_000_000,
	}
}

// Reset clears all metrics.
func (h *MetricsHook) Reset() {
	h.TotalBatches.Store(0)
	h.TotalRows.Store(0)
	h.TotalInserted.Store(0)
	h.TotalErrors.Store(0)
	h.TotalDurationNs.Store(0)
}
