package client

import (
	"fmt"

	"github.com/dan-strohschein/syndrdb-batch/mapper"
	"github.com/dan-strohschein/syndrdb-batch/schema"
)

// KeyCursor is a forward-only sequence of generated keys, one column per
// record. *sql.Rows satisfies it.
type KeyCursor interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// GeneratedValues holds the values a single inserted row received from the
// database (the auto-increment key) or from client-side generators.
type GeneratedValues map[*schema.Column]interface{}

// Get returns the value generated for the named column.
func (g GeneratedValues) Get(name string) (interface{}, bool) {
	for col, v := range g {
		if col.Name == name {
			return v, true
		}
	}
	return nil, false
}

// GeneratedKeys drains cursor and maps the keys it returns, plus any values
// computed by client-side generators, back onto the batch's rows.
//
// inserted is the row count reported by the database. When the driver
// returns only the last key of a multi-row insert (see
// SetMultipleGeneratedKeys) the earlier keys are extrapolated backwards on
// the assumption that auto-increment values were assigned consecutively.
//
// Tables without an auto-increment column leave the cursor untouched. The
// result has one entry per row, in row order. Errors from the cursor are
// returned unchanged and move the batch to FAILED.
func (b *BatchInsert) GeneratedKeys(cursor KeyCursor, inserted int) ([]GeneratedValues, error) {
	if b.state.current != BUILDING && b.state.current != EXECUTING {
		return nil, ErrInvalidBatchState("reconcile generated keys", b.state.current)
	}

	autoInc := b.table.AutoIncrementColumn()
	var keys []interface{}
	if autoInc != nil {
		raw, err := drainKeys(cursor)
		if err != nil {
			b.fail()
			return nil, err
		}
		keys = AlignGeneratedKeys(raw, inserted, b.multipleKeys)
	}
	args := b.Arguments()

	n := len(keys)
	if len(args) > n {
		n = len(args)
	}

	result := make([]GeneratedValues, n)
	for i := range result {
		values := make(GeneratedValues)
		if i < len(keys) {
			values[autoInc] = keys[i]
		}
		if i < len(args) {
			for _, a := range args[i] {
				if a.Column.AutoIncrement || a.Value.Kind != ValueComputed || a.Value.Value == nil {
					continue
				}
				values[a.Column] = a.Value.Value
			}
		}
		result[i] = values
	}

	if err := b.state.transitionTo(RECONCILED); err != nil {
		return nil, err
	}
	return result, nil
}

func drainKeys(cursor KeyCursor) ([]interface{}, error) {
	var keys []interface{}
	for cursor.Next() {
		var key interface{}
		if err := cursor.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// AlignGeneratedKeys returns one key per inserted row.
//
// If the driver returns only the last key (supportsMultiple is false) and
// fewer keys than rows were read, the missing leading keys are filled in
// counting down from the first key read: for last key 107 and three rows the
// result is 105, 106, 107. Keys are returned untouched when the driver
// returns all keys, when at most one row was inserted, or when the first key
// is not an integer.
func AlignGeneratedKeys(raw []interface{}, inserted int, supportsMultiple bool) []interface{} {
	if supportsMultiple || inserted <= 1 || len(raw) == 0 || len(raw) >= inserted {
		return raw
	}

	anchor, err := mapper.NewResponseMapper().ToInt(raw[0])
	if err != nil {
		return raw
	}

	missing := inserted - len(raw)
	keys := make([]interface{}, 0, inserted)
	for i := 0; i < missing; i++ {
		keys = append(keys, anchor-int64(missing)+int64(i))
	}
	return append(keys, raw...)
}

// sliceCursor is a KeyCursor over values already in memory.
type sliceCursor struct {
	values []interface{}
	pos    int
}

// NewKeyCursor returns a KeyCursor that yields values in order. It is used
// for drivers that report keys through sql.Result.LastInsertId.
func NewKeyCursor(values ...interface{}) KeyCursor {
	return &sliceCursor{values: values, pos: -1}
}

func (c *sliceCursor) Next() bool {
	if c.pos+1 >= len(c.values) {
		c.pos = len(c.values)
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Scan(dest ...interface{}) error {
	if c.pos < 0 || c.pos >= len(c.values) {
		return fmt.Errorf("scan called without a current key")
	}
	if len(dest) != 1 {
		return fmt.Errorf("expected 1 destination, got %d", len(dest))
	}

	v := c.values[c.pos]
	switch d := dest[0].(type) {
	case *interface{}:
		*d = v
	case *int64:
		i, err := mapper.NewResponseMapper().ToInt(v)
		if err != nil {
			return err
		}
		*d = i
	default:
		return fmt.Errorf("unsupported scan destination %T", dest[0])
	}
	return nil
}

func (c *sliceCursor) Err() error {
	return nil
}
