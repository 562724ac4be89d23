package schema

// FieldType represents the declared type of a table column.
type FieldType string

const (
	INT      FieldType = "INT"
	BIGINT   FieldType = "BIGINT"
	STRING   FieldType = "STRING"
	TEXT     FieldType = "TEXT"
	FLOAT    FieldType = "FLOAT"
	BOOLEAN  FieldType = "BOOLEAN"
	DATETIME FieldType = "DATETIME"
	UUID     FieldType = "UUID"
	JSON     FieldType = "JSON"
)

// IsInteger reports whether values of this type are whole numbers.
func (t FieldType) IsInteger() bool {
	return t == INT || t == BIGINT
}

// DefaultFunc computes a client-side default for a column.
// It is invoked once per row that has no explicit value.
type DefaultFunc func() interface{}

// Column describes a single column of a table.
// Columns are shared by reference; rows never own them.
type Column struct {
	Name string
	Type FieldType

	// AutoIncrement marks a column whose value is assigned by the database.
	AutoIncrement bool

	// Nullable allows NULL to be stored when no value or default applies.
	Nullable bool

	// ClientDefault computes a value on the client when a row omits the column.
	ClientDefault DefaultFunc

	// DatabaseDefault is the SQL default expression known to the database.
	// A non-empty value marks the column as omittable from INSERT parameters.
	DatabaseDefault string
}

// HasClientDefault reports whether the column carries a client-side generator.
func (c *Column) HasClientDefault() bool {
	return c.ClientDefault != nil
}

// HasDatabaseDefault reports whether the database supplies a default.
func (c *Column) HasDatabaseDefault() bool {
	return c.DatabaseDefault != ""
}

// Table is an ordered set of columns under one name.
type Table struct {
	Name    string
	Columns []*Column

	byName map[string]*Column
}

// NewTable creates a table with the columns in declaration order.
func NewTable(name string, columns ...*Column) *Table {
	t := &Table{
		Name:    name,
		Columns: columns,
		byName:  make(map[string]*Column, len(columns)),
	}
	for _, c := range columns {
		t.byName[c.Name] = c
	}
	return t
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	return t.byName[name]
}

// Contains reports whether col belongs to this table (by identity).
func (t *Table) Contains(col *Column) bool {
	if col == nil {
		return false
	}
	return t.byName[col.Name] == col
}

// AutoIncrementColumn returns the first auto-increment column, or nil
// when the table has none.
func (t *Table) AutoIncrementColumn() *Column {
	for _, c := range t.Columns {
		if c.AutoIncrement {
			return c
		}
	}
	return nil
}

// ColumnDefinition is the serialized form of a Column.
type ColumnDefinition struct {
	Name            string    `yaml:"name" json:"name"`
	Type            FieldType `yaml:"type" json:"type"`
	AutoIncrement   bool      `yaml:"autoIncrement,omitempty" json:"autoIncrement,omitempty"`
	Nullable        bool      `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	ClientDefault   string    `yaml:"clientDefault,omitempty" json:"clientDefault,omitempty"` // generator name
	DatabaseDefault string    `yaml:"databaseDefault,omitempty" json:"databaseDefault,omitempty"`
}

// TableDefinition is the serialized form of a Table.
type TableDefinition struct {
	Name    string             `yaml:"name" json:"name"`
	Columns []ColumnDefinition `yaml:"columns" json:"columns"`
}

// SchemaDefinition is a set of table definitions, as stored in a schema file.
type SchemaDefinition struct {
	Tables []TableDefinition `yaml:"tables" json:"tables"`
}

// Table returns the definition with the given name, or nil.
func (s *SchemaDefinition) Table(name string) *TableDefinition {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
