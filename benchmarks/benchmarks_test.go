package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/dan-strohschein/syndrdb-batch/client"
	"github.com/dan-strohschein/syndrdb-batch/testutil"
)

var batchSizes = []int{1, 10, 100, 1000}

// BenchmarkBuildBatch measures row accumulation and argument resolution.
func BenchmarkBuildBatch(b *testing.B) {
	for _, size := range batchSizes {
		b.Run(fmt.Sprintf("rows=%d", size), func(b *testing.B) {
			gen, _ := testutil.Counter(1)
			table := testutil.UsersTable(gen)
			rows := testutil.NewUserRowFactory().BuildList(size)

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				batch := client.NewBatchInsert(table, false)
				for _, row := range rows {
					if err := batch.AddBatch(); err != nil {
						b.Fatal(err)
					}
					if err := batch.SetByName("name", row["name"]); err != nil {
						b.Fatal(err)
					}
				}
				_ = batch.Parameters()
			}
		})
	}
}

// BenchmarkStatementRender compares cached and uncached INSERT rendering.
func BenchmarkStatementRender(b *testing.B) {
	for _, cacheSize := range []int{0, 100} {
		b.Run(fmt.Sprintf("cache=%d", cacheSize), func(b *testing.B) {
			gen, _ := testutil.Counter(1)
			table := testutil.UsersTable(gen)
			batch := testutil.NewBatch(b, table, testutil.NewUserRowFactory().BuildList(100)...)

			opts := client.DefaultOptions()
			opts.Logger = client.NewNoopLogger()
			opts.StatementCacheSize = cacheSize
			exec := client.NewExecutor(nil, &opts)

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, _, err := exec.Statement(batch); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkInsert measures a full execute and reconcile round trip against
// the in-process driver, with and without hooks.
func BenchmarkInsert(b *testing.B) {
	const size = 100

	for _, withHooks := range []bool{false, true} {
		b.Run(fmt.Sprintf("hooks=%t", withHooks), func(b *testing.B) {
			mock := testutil.NewMockDB()
			defer mock.Close()

			gen, _ := testutil.Counter(1)
			table := testutil.UsersTable(gen)
			rows := testutil.NewUserRowFactory().BuildList(size)

			probe := testutil.NewBatch(b, table, rows...)
			stmt, _, err := testutil.NewTestExecutor(mock, client.DuckDB()).Statement(probe)
			if err != nil {
				b.Fatal(err)
			}

			keys := make([][]interface{}, size)
			for i := range keys {
				keys[i] = []interface{}{int64(i + 1)}
			}
			mock.ExpectQuery(stmt).WillReturnRows([]string{"id"}, keys...).AnyTimes()

			exec := testutil.NewTestExecutor(mock, client.DuckDB())
			if withHooks {
				exec.RegisterHook(client.NewMetricsHook())
				exec.RegisterHook(client.NewLoggingHook(client.NewNoopLogger(), true, true, true))
			}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				batch := testutil.NewBatch(b, table, rows...)
				b.StartTimer()

				if _, err := exec.Insert(context.Background(), batch); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkAlignGeneratedKeys measures backward extrapolation from one key.
func BenchmarkAlignGeneratedKeys(b *testing.B) {
	raw := []interface{}{int64(1_000_000)}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = client.AlignGeneratedKeys(raw, 1000, false)
	}
}
