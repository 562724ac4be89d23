package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan-strohschein/syndrdb-batch/schema"
)

func eventsTable() *schema.Table {
	return schema.NewTable("events",
		&schema.Column{Name: "id", Type: schema.BIGINT, AutoIncrement: true},
		&schema.Column{Name: "kind", Type: schema.STRING},
		&schema.Column{Name: "status", Type: schema.STRING, Nullable: true, DatabaseDefault: "'new'"},
	)
}

func render(t *testing.T, d *Dialect, b *BatchInsert) string {
	t.Helper()
	layout, err := d.newInsertLayout(b)
	require.NoError(t, err)
	return d.renderInsert(layout)
}

func TestDialectByName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"duckdb", "duckdb"},
		{"DuckDB", "duckdb"},
		{"postgres", "postgres"},
		{"pgx", "postgres"},
		{"sqlite3", "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := DialectByName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Name)
		})
	}

	_, err := DialectByName("oracle")
	assert.Error(t, err)
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"users"`, QuoteIdentifier("users"))
	assert.Equal(t, `"a""b"`, QuoteIdentifier(`a"b`))
}

func TestRenderInsertPlaceholders(t *testing.T) {
	gen, _ := counter(1)
	table := usersTable(gen)

	tests := []struct {
		dialect  *Dialect
		expected string
	}{
		{
			DuckDB(),
			`INSERT INTO "users" ("name", "created_at") VALUES (?, ?), (?, ?) RETURNING "id"`,
		},
		{
			PostgreSQL(),
			`INSERT INTO "users" ("name", "created_at") VALUES ($1, $2), ($3, $4) RETURNING "id"`,
		},
		{
			SQLite(),
			`INSERT INTO "users" ("name", "created_at") VALUES (?, ?), (?, ?)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name, func(t *testing.T) {
			b := NewBatchInsert(table, false)
			addRow(t, b, map[string]interface{}{"name": "alice"})
			addRow(t, b, map[string]interface{}{"name": "bob"})
			assert.Equal(t, tt.expected, render(t, tt.dialect, b))
		})
	}
}

func TestRenderInsertIgnore(t *testing.T) {
	table := schema.NewTable("tags", &schema.Column{Name: "label", Type: schema.STRING})

	tests := []struct {
		dialect  *Dialect
		expected string
	}{
		{DuckDB(), `INSERT INTO "tags" ("label") VALUES (?) ON CONFLICT DO NOTHING`},
		{PostgreSQL(), `INSERT INTO "tags" ("label") VALUES ($1) ON CONFLICT DO NOTHING`},
		{SQLite(), `INSERT OR IGNORE INTO "tags" ("label") VALUES (?)`},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name, func(t *testing.T) {
			b := NewBatchInsert(table, true)
			addRow(t, b, map[string]interface{}{"label": "go"})
			assert.Equal(t, tt.expected, render(t, tt.dialect, b))
		})
	}
}

func TestRenderInsertDatabaseDefaults(t *testing.T) {
	t.Run("omitted in every row", func(t *testing.T) {
		b := NewBatchInsert(eventsTable(), false)
		addRow(t, b, map[string]interface{}{"kind": "click"})
		addRow(t, b, map[string]interface{}{"kind": "view"})

		assert.Equal(t,
			`INSERT INTO "events" ("kind") VALUES (?), (?)`,
			render(t, SQLite(), b))
	})

	t.Run("mixed rows use DEFAULT", func(t *testing.T) {
		b := NewBatchInsert(eventsTable(), false)
		addRow(t, b, map[string]interface{}{"kind": "click"})
		addRow(t, b, map[string]interface{}{"kind": "view", "status": "done"})

		assert.Equal(t,
			`INSERT INTO "events" ("kind", "status") VALUES ($1, DEFAULT), ($2, $3) RETURNING "id"`,
			render(t, PostgreSQL(), b))
		assert.Equal(t, []interface{}{"click", "view", "done"}, flattenParameters(b))
	})

	t.Run("mixed rows without DEFAULT keyword", func(t *testing.T) {
		b := NewBatchInsert(eventsTable(), false)
		addRow(t, b, map[string]interface{}{"kind": "click"})
		addRow(t, b, map[string]interface{}{"kind": "view", "status": "done"})

		_, err := SQLite().newInsertLayout(b)
		assert.ErrorIs(t, err, &BatchError{Code: CodeMixedDefaults})
	})
}

func TestInsertLayoutErrors(t *testing.T) {
	b := NewBatchInsert(eventsTable(), false)
	_, err := DuckDB().newInsertLayout(b)
	assert.ErrorIs(t, err, &BatchError{Code: CodeEmptyBatch})

	b = NewBatchInsert(eventsTable(), false)
	addRow(t, b, map[string]interface{}{"status": nil})
	_, err = DuckDB().newInsertLayout(b)
	assert.ErrorIs(t, err, &BatchError{Code: CodeNoColumns})
}

func TestLayoutSignature(t *testing.T) {
	gen, _ := counter(1)
	table := usersTable(gen)
	d := DuckDB()

	build := func(rows int, ignore bool) *insertLayout {
		b := NewBatchInsert(table, ignore)
		for i := 0; i < rows; i++ {
			addRow(t, b, map[string]interface{}{"name": "x"})
		}
		layout, err := d.newInsertLayout(b)
		require.NoError(t, err)
		return layout
	}

	assert.Equal(t, build(2, false).signature(d.Name), build(2, false).signature(d.Name))
	assert.NotEqual(t, build(2, false).signature(d.Name), build(3, false).signature(d.Name))
	assert.NotEqual(t, build(2, false).signature(d.Name), build(2, true).signature(d.Name))
	assert.NotEqual(t, build(2, false).signature(d.Name), build(2, false).signature("postgres"))
}

func TestCreateTable(t *testing.T) {
	table := eventsTable()

	assert.Equal(t, []string{
		`CREATE SEQUENCE IF NOT EXISTS "events_id_seq" START 1`,
		`CREATE TABLE IF NOT EXISTS "events" ("id" BIGINT PRIMARY KEY DEFAULT nextval('events_id_seq'), "kind" VARCHAR NOT NULL, "status" VARCHAR DEFAULT 'new')`,
	}, DuckDB().CreateTable(table))

	assert.Equal(t, []string{
		`CREATE TABLE IF NOT EXISTS "events" ("id" BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY, "kind" VARCHAR NOT NULL, "status" VARCHAR DEFAULT 'new')`,
	}, PostgreSQL().CreateTable(table))

	assert.Equal(t, []string{
		`CREATE TABLE IF NOT EXISTS "events" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "kind" VARCHAR NOT NULL, "status" VARCHAR DEFAULT 'new')`,
	}, SQLite().CreateTable(table))
}
