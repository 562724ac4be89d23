package client

import (
	"github.com/dan-strohschein/syndrdb-batch/schema"
)

// ValueKind tags how a column value was resolved for one row.
type ValueKind int

const (
	// ValueExplicit is a value supplied with Set.
	ValueExplicit ValueKind = iota
	// ValueComputed is a value produced by the column's client-side generator.
	ValueComputed
	// ValueDatabaseDefault means the column is left out of the parameter
	// list and the database applies its own default.
	ValueDatabaseDefault
	// ValueNull is sent as an explicit NULL.
	ValueNull
)

// String returns the string representation of the value kind.
func (k ValueKind) String() string {
	switch k {
	case ValueExplicit:
		return "EXPLICIT"
	case ValueComputed:
		return "COMPUTED"
	case ValueDatabaseDefault:
		return "DATABASE_DEFAULT"
	case ValueNull:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// ResolvedValue is the final value of one column in one row.
type ResolvedValue struct {
	Kind  ValueKind
	Value interface{}
}

// Bound reports whether the value is sent to the database as a parameter.
func (v ResolvedValue) Bound() bool {
	return v.Kind != ValueDatabaseDefault
}

// Argument pairs a column with its resolved value.
type Argument struct {
	Column *schema.Column
	Value  ResolvedValue
}

// Parameter is a column value that is bound into the INSERT statement.
type Parameter struct {
	Column *schema.Column
	Value  interface{}
}

type rowState int

const (
	rowOpen rowState = iota
	rowFrozen
)

// row holds the explicit values of one logical row in insertion order.
// Only the last row of a batch may be open; frozen rows are never written.
type row struct {
	state  rowState
	order  []*schema.Column
	values map[*schema.Column]interface{}
}

func newRow() *row {
	return &row{state: rowOpen, values: make(map[*schema.Column]interface{})}
}

func (r *row) set(col *schema.Column, value interface{}) {
	if _, exists := r.values[col]; !exists {
		r.order = append(r.order, col)
	}
	r.values[col] = value
}

func (r *row) empty() bool {
	return len(r.values) == 0
}

// explicit returns the value supplied for col. A nil value counts as absent.
func (r *row) explicit(col *schema.Column) (interface{}, bool) {
	v, ok := r.values[col]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// freeze returns an immutable snapshot of the row.
func (r *row) freeze() *row {
	frozen := &row{
		state:  rowFrozen,
		order:  make([]*schema.Column, len(r.order)),
		values: make(map[*schema.Column]interface{}, len(r.values)),
	}
	copy(frozen.order, r.order)
	for col, v := range r.values {
		frozen.values[col] = v
	}
	return frozen
}

// BatchInsert accumulates rows for a single multi-row INSERT into one table
// and maps database generated values back onto those rows after execution.
//
// A BatchInsert is used once: build rows, execute, reconcile, discard. It is
// not safe for concurrent use.
type BatchInsert struct {
	table        *schema.Table
	ignore       bool
	multipleKeys bool
	rows         []*row
	state        stateMachine

	// arguments and parameters are derived from rows on first read and
	// dropped whenever rows change.
	arguments  [][]Argument
	parameters [][]Parameter
	valid      bool
}

// NewBatchInsert creates an empty batch for table. With ignore set, the
// statement is rendered in the dialect's insert-or-ignore form.
func NewBatchInsert(table *schema.Table, ignore bool) *BatchInsert {
	return &BatchInsert{
		table:        table,
		ignore:       ignore,
		multipleKeys: true,
		state:        newStateMachine(),
	}
}

// Table returns the target table.
func (b *BatchInsert) Table() *schema.Table {
	return b.table
}

// Ignore reports whether the batch uses insert-or-ignore semantics.
func (b *BatchInsert) Ignore() bool {
	return b.ignore
}

// State returns the batch lifecycle state.
func (b *BatchInsert) State() BatchState {
	return b.state.current
}

// Transitions returns the lifecycle transitions recorded so far.
func (b *BatchInsert) Transitions() []StateTransition {
	return append([]StateTransition(nil), b.state.history...)
}

// SetMultipleGeneratedKeys records whether the driver returns one generated
// key per inserted row (true, the default) or only the last key of the batch.
func (b *BatchInsert) SetMultipleGeneratedKeys(supported bool) {
	b.multipleKeys = supported
}

// AddBatch starts a new row. A non-empty current row is frozen first; an
// empty current row is reused.
func (b *BatchInsert) AddBatch() error {
	if b.state.current != BUILDING {
		return ErrInvalidBatchState("add row", b.state.current)
	}

	if n := len(b.rows); n > 0 {
		last := b.rows[n-1]
		if last.state == rowOpen {
			if last.empty() {
				return nil
			}
			b.rows[n-1] = last.freeze()
		}
	}

	b.rows = append(b.rows, newRow())
	b.invalidate()
	return nil
}

// Set writes a value for col into the current row. Setting the same column
// twice keeps the last value. A nil value means "not supplied": the column's
// default applies.
func (b *BatchInsert) Set(col *schema.Column, value interface{}) error {
	if b.state.current != BUILDING {
		return ErrInvalidBatchState("set value", b.state.current)
	}
	if !b.table.Contains(col) {
		name := "<nil>"
		if col != nil {
			name = col.Name
		}
		return ErrUnknownColumn(b.table.Name, name)
	}

	cur := b.current()
	if cur == nil {
		return ErrNoCurrentRow(b.table.Name)
	}

	cur.set(col, value)
	b.invalidate()
	return nil
}

// SetByName is Set with the column looked up by name.
func (b *BatchInsert) SetByName(name string, value interface{}) error {
	col := b.table.Column(name)
	if col == nil {
		return ErrUnknownColumn(b.table.Name, name)
	}
	return b.Set(col, value)
}

// Len returns the number of rows that will be inserted.
func (b *BatchInsert) Len() int {
	return len(b.batchRows())
}

// Arguments resolves every row against the batch's column set. The result is
// computed once and reused until the rows change, so client-side generators
// run exactly once per row and column.
//
// Resolution order per column: explicit value, client-side generator,
// database default marker, NULL.
func (b *BatchInsert) Arguments() [][]Argument {
	if b.valid {
		return b.arguments
	}

	rows := b.batchRows()
	columns := b.resolvedColumns(rows)

	args := make([][]Argument, len(rows))
	for i, r := range rows {
		rowArgs := make([]Argument, len(columns))
		for j, col := range columns {
			rowArgs[j] = Argument{Column: col, Value: resolve(r, col)}
		}
		args[i] = rowArgs
	}

	params := make([][]Parameter, len(args))
	for i, rowArgs := range args {
		rowParams := make([]Parameter, 0, len(rowArgs))
		for _, a := range rowArgs {
			if !a.Value.Bound() {
				continue
			}
			rowParams = append(rowParams, Parameter{Column: a.Column, Value: a.Value.Value})
		}
		params[i] = rowParams
	}

	b.arguments = args
	b.parameters = params
	b.valid = true
	return args
}

// Parameters returns, per row, the values to bind. Columns resolved to the
// database default are absent rather than NULL.
func (b *BatchInsert) Parameters() [][]Parameter {
	b.Arguments()
	return b.parameters
}

func resolve(r *row, col *schema.Column) ResolvedValue {
	if v, ok := r.explicit(col); ok {
		return ResolvedValue{Kind: ValueExplicit, Value: v}
	}
	if col.HasClientDefault() {
		return ResolvedValue{Kind: ValueComputed, Value: col.ClientDefault()}
	}
	if col.HasDatabaseDefault() {
		return ResolvedValue{Kind: ValueDatabaseDefault}
	}
	return ResolvedValue{Kind: ValueNull}
}

// resolvedColumns returns, in table order, the columns set in any row plus
// every column that carries a default.
func (b *BatchInsert) resolvedColumns(rows []*row) []*schema.Column {
	columns := make([]*schema.Column, 0, len(b.table.Columns))
	for _, col := range b.table.Columns {
		if col.HasClientDefault() || col.HasDatabaseDefault() {
			columns = append(columns, col)
			continue
		}
		for _, r := range rows {
			if _, ok := r.values[col]; ok {
				columns = append(columns, col)
				break
			}
		}
	}
	return columns
}

// batchRows returns the rows that take part in the insert. An open row that
// never received a value is not one of them.
func (b *BatchInsert) batchRows() []*row {
	n := len(b.rows)
	if n > 0 && b.rows[n-1].state == rowOpen && b.rows[n-1].empty() {
		return b.rows[:n-1]
	}
	return b.rows
}

func (b *BatchInsert) current() *row {
	if n := len(b.rows); n > 0 && b.rows[n-1].state == rowOpen {
		return b.rows[n-1]
	}
	return nil
}

func (b *BatchInsert) invalidate() {
	b.arguments = nil
	b.parameters = nil
	b.valid = false
}

// fail moves the batch to FAILED; it is a no-op if the batch already ended.
func (b *BatchInsert) fail() {
	_ = b.state.transitionTo(FAILED)
}
