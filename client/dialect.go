package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/dan-strohschein/syndrdb-batch/schema"
)

// Placeholder selects the positional parameter style of a database.
type Placeholder int

const (
	// PlaceholderQuestion renders "?" (DuckDB, SQLite).
	PlaceholderQuestion Placeholder = iota
	// PlaceholderDollar renders "$1, $2, ..." (PostgreSQL).
	PlaceholderDollar
)

// Dialect describes how a database spells a multi-row INSERT and how its
// driver reports generated keys.
type Dialect struct {
	Name        string
	Placeholder Placeholder

	// SupportsMultipleGeneratedKeys is true when the driver returns one key
	// per inserted row. When false only the last key is returned and the
	// others are extrapolated.
	SupportsMultipleGeneratedKeys bool

	// SupportsReturning enables "RETURNING <auto-increment column>". Without
	// it keys come from sql.Result.LastInsertId.
	SupportsReturning bool

	// SupportsDefaultKeyword allows DEFAULT inside a VALUES tuple, which is
	// needed when rows disagree on which columns use the database default.
	SupportsDefaultKeyword bool

	// IgnorePrefix and IgnoreSuffix render insert-or-ignore.
	IgnorePrefix string
	IgnoreSuffix string

	// TypeNames maps column types to DDL type names.
	TypeNames map[schema.FieldType]string

	// autoIncrement renders DDL for an auto-increment column: statements to
	// run before CREATE TABLE and the column definition itself.
	autoIncrement func(table *schema.Table, col *schema.Column) (before []string, definition string)
}

var commonTypeNames = map[schema.FieldType]string{
	schema.INT:      "INTEGER",
	schema.BIGINT:   "BIGINT",
	schema.STRING:   "VARCHAR",
	schema.TEXT:     "TEXT",
	schema.FLOAT:    "DOUBLE",
	schema.BOOLEAN:  "BOOLEAN",
	schema.DATETIME: "TIMESTAMP",
	schema.UUID:     "UUID",
	schema.JSON:     "JSON",
}

// DuckDB returns the DuckDB dialect. Auto-increment columns are backed by a
// sequence and keys are read back with RETURNING.
func DuckDB() *Dialect {
	return &Dialect{
		Name:                          "duckdb",
		Placeholder:                   PlaceholderQuestion,
		SupportsMultipleGeneratedKeys: true,
		SupportsReturning:             true,
		SupportsDefaultKeyword:        true,
		IgnorePrefix:                  "INSERT INTO",
		IgnoreSuffix:                  " ON CONFLICT DO NOTHING",
		TypeNames:                     commonTypeNames,
		autoIncrement: func(table *schema.Table, col *schema.Column) ([]string, string) {
			seq := fmt.Sprintf("%s_%s_seq", table.Name, col.Name)
			return []string{fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START 1", QuoteIdentifier(seq))},
				fmt.Sprintf("%s BIGINT PRIMARY KEY DEFAULT nextval('%s')", QuoteIdentifier(col.Name), seq)
		},
	}
}

// PostgreSQL returns the PostgreSQL dialect.
func PostgreSQL() *Dialect {
	names := make(map[schema.FieldType]string, len(commonTypeNames))
	for k, v := range commonTypeNames {
		names[k] = v
	}
	names[schema.FLOAT] = "DOUBLE PRECISION"
	names[schema.JSON] = "JSONB"

	return &Dialect{
		Name:                          "postgres",
		Placeholder:                   PlaceholderDollar,
		SupportsMultipleGeneratedKeys: true,
		SupportsReturning:             true,
		SupportsDefaultKeyword:        true,
		IgnorePrefix:                  "INSERT INTO",
		IgnoreSuffix:                  " ON CONFLICT DO NOTHING",
		TypeNames:                     names,
		autoIncrement: func(_ *schema.Table, col *schema.Column) ([]string, string) {
			return nil, fmt.Sprintf("%s BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY", QuoteIdentifier(col.Name))
		},
	}
}

// SQLite returns the SQLite dialect. Its driver reports only the last
// inserted rowid, so batches rely on key extrapolation.
func SQLite() *Dialect {
	names := make(map[schema.FieldType]string, len(commonTypeNames))
	for k, v := range commonTypeNames {
		names[k] = v
	}
	names[schema.FLOAT] = "REAL"
	names[schema.UUID] = "TEXT"
	names[schema.JSON] = "TEXT"
	names[schema.DATETIME] = "DATETIME"

	return &Dialect{
		Name:                          "sqlite",
		Placeholder:                   PlaceholderQuestion,
		SupportsMultipleGeneratedKeys: false,
		SupportsReturning:             false,
		SupportsDefaultKeyword:        false,
		IgnorePrefix:                  "INSERT OR IGNORE INTO",
		TypeNames:                     names,
		autoIncrement: func(_ *schema.Table, col *schema.Column) ([]string, string) {
			return nil, fmt.Sprintf("%s INTEGER PRIMARY KEY AUTOINCREMENT", QuoteIdentifier(col.Name))
		},
	}
}

// DialectByName picks a dialect from a driver or database name.
func DialectByName(name string) (*Dialect, error) {
	switch strings.ToLower(name) {
	case "duckdb":
		return DuckDB(), nil
	case "postgres", "postgresql", "pgx", "pg":
		return PostgreSQL(), nil
	case "sqlite", "sqlite3":
		return SQLite(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", name)
	}
}

// QuoteIdentifier quotes a table or column name.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *Dialect) bindVar(n int) string {
	if d.Placeholder == PlaceholderDollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// insertLayout is the shape of a batch: which columns appear in the
// statement and which cells use DEFAULT. Two batches with equal layouts
// render the same SQL.
type insertLayout struct {
	table     *schema.Table
	ignore    bool
	returning *schema.Column
	columns   []*schema.Column
	// defaults[row][i] is true when columns[i] takes the database default in row.
	defaults [][]bool
}

// newInsertLayout derives the statement layout from resolved arguments.
// Columns that take the database default in every row are left out; a
// column that takes it in only some rows is rendered with DEFAULT there.
func (d *Dialect) newInsertLayout(batch *BatchInsert) (*insertLayout, error) {
	args := batch.Arguments()
	if len(args) == 0 {
		return nil, ErrEmptyBatch(batch.Table().Name)
	}

	layout := &insertLayout{table: batch.Table(), ignore: batch.Ignore()}
	if d.SupportsReturning {
		layout.returning = batch.Table().AutoIncrementColumn()
	}

	width := len(args[0])
	for i := 0; i < width; i++ {
		bound, omitted := 0, 0
		for _, rowArgs := range args {
			if rowArgs[i].Value.Bound() {
				bound++
			} else {
				omitted++
			}
		}
		if bound == 0 {
			continue
		}
		if omitted > 0 && !d.SupportsDefaultKeyword {
			return nil, ErrMixedDefaults(d.Name, args[0][i].Column.Name)
		}
		layout.columns = append(layout.columns, args[0][i].Column)
	}

	if len(layout.columns) == 0 {
		return nil, ErrNoColumns(batch.Table().Name)
	}

	layout.defaults = make([][]bool, len(args))
	for r, rowArgs := range args {
		mask := make([]bool, len(layout.columns))
		c := 0
		for _, a := range rowArgs {
			if c < len(layout.columns) && a.Column == layout.columns[c] {
				mask[c] = !a.Value.Bound()
				c++
			}
		}
		layout.defaults[r] = mask
	}
	return layout, nil
}

// signature hashes everything that affects the rendered SQL.
func (l *insertLayout) signature(dialect string) uint64 {
	var sb strings.Builder
	sb.WriteString(dialect)
	sb.WriteByte(0)
	sb.WriteString(l.table.Name)
	sb.WriteByte(0)
	if l.ignore {
		sb.WriteByte('i')
	}
	if l.returning != nil {
		sb.WriteString(l.returning.Name)
	}
	sb.WriteByte(0)
	for _, col := range l.columns {
		sb.WriteString(col.Name)
		sb.WriteByte(0)
	}
	for _, mask := range l.defaults {
		for _, omitted := range mask {
			if omitted {
				sb.WriteByte('d')
			} else {
				sb.WriteByte('p')
			}
		}
		sb.WriteByte('|')
	}
	return xxhash.Sum64([]byte(sb.String()))
}

// renderInsert builds the multi-row INSERT statement for layout.
func (d *Dialect) renderInsert(l *insertLayout) string {
	var sb strings.Builder

	prefix := "INSERT INTO"
	if l.ignore {
		prefix = d.IgnorePrefix
	}
	sb.WriteString(prefix)
	sb.WriteByte(' ')
	sb.WriteString(QuoteIdentifier(l.table.Name))
	sb.WriteString(" (")
	for i, col := range l.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(QuoteIdentifier(col.Name))
	}
	sb.WriteString(") VALUES ")

	n := 0
	for r, mask := range l.defaults {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for i, omitted := range mask {
			if i > 0 {
				sb.WriteString(", ")
			}
			if omitted {
				sb.WriteString("DEFAULT")
				continue
			}
			n++
			sb.WriteString(d.bindVar(n))
		}
		sb.WriteByte(')')
	}

	if l.ignore {
		sb.WriteString(d.IgnoreSuffix)
	}
	if l.returning != nil {
		sb.WriteString(" RETURNING ")
		sb.WriteString(QuoteIdentifier(l.returning.Name))
	}
	return sb.String()
}

// flattenParameters returns the bound values of every row in statement order.
func flattenParameters(batch *BatchInsert) []interface{} {
	var values []interface{}
	for _, rowParams := range batch.Parameters() {
		for _, p := range rowParams {
			values = append(values, p.Value)
		}
	}
	return values
}

// CreateTable renders the DDL needed to create table.
func (d *Dialect) CreateTable(table *schema.Table) []string {
	var stmts []string
	defs := make([]string, 0, len(table.Columns))

	for _, col := range table.Columns {
		if col.AutoIncrement && d.autoIncrement != nil {
			before, def := d.autoIncrement(table, col)
			stmts = append(stmts, before...)
			defs = append(defs, def)
			continue
		}

		typeName, ok := d.TypeNames[col.Type]
		if !ok {
			typeName = string(col.Type)
		}
		def := QuoteIdentifier(col.Name) + " " + typeName
		if !col.Nullable {
			def += " NOT NULL"
		}
		if col.HasDatabaseDefault() {
			def += " DEFAULT " + col.DatabaseDefault
		}
		defs = append(defs, def)
	}

	stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		QuoteIdentifier(table.Name), strings.Join(defs, ", ")))
	return stmts
}
