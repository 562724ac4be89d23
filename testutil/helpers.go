package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dan-strohschein/syndrdb-batch/client"
	"github.com/dan-strohschein/syndrdb-batch/schema"
)

// WithTimeout creates a context with timeout for tests.
// Default timeout is 10 seconds.
func WithTimeout(t *testing.T, timeout ...time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()

	duration := 10 * time.Second
	if len(timeout) > 0 {
		duration = timeout[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	t.Cleanup(cancel)

	return ctx, cancel
}

// NewBatch creates a batch for table holding rows, failing the test on any
// build error. Columns are set in table order so statements are stable.
func NewBatch(t testing.TB, table *schema.Table, rows ...map[string]interface{}) *client.BatchInsert {
	t.Helper()

	batch := client.NewBatchInsert(table, false)
	for _, row := range rows {
		if err := batch.AddBatch(); err != nil {
			t.Fatalf("AddBatch: %v", err)
		}
		for _, col := range table.Columns {
			v, ok := row[col.Name]
			if !ok {
				continue
			}
			if err := batch.Set(col, v); err != nil {
				t.Fatalf("Set(%s): %v", col.Name, err)
			}
		}
	}
	return batch
}

// NewTestExecutor creates an executor over mock with a silent logger.
func NewTestExecutor(mock *MockDB, dialect *client.Dialect) *client.Executor {
	opts := client.DefaultOptions()
	opts.Dialect = dialect
	opts.Logger = client.NewNoopLogger()
	return client.NewExecutor(mock.DB(), &opts)
}
