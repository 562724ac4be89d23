package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dan-strohschein/syndrdb-batch/schema"
)

// Option modifies a row built by a RowFactory.
type Option func(map[string]interface{})

// RowFactory builds input rows (column name -> value) for batch tests.
// Default values that are functions are invoked on every Build.
type RowFactory struct {
	defaults map[string]interface{}
}

// NewRowFactory creates a new row factory with default values.
func NewRowFactory(defaults map[string]interface{}) *RowFactory {
	return &RowFactory{defaults: defaults}
}

// Build creates a single row with optional overrides.
func (f *RowFactory) Build(options ...Option) map[string]interface{} {
	data := make(map[string]interface{}, len(f.defaults))
	for k, v := range f.defaults {
		data[k] = v
	}

	for _, opt := range options {
		opt(data)
	}

	// Resolve lazy values (functions)
	for k, v := range data {
		switch fn := v.(type) {
		case func() int64:
			data[k] = fn()
		case func() string:
			data[k] = fn()
		case func() time.Time:
			data[k] = fn()
		case func() int:
			data[k] = fn()
		}
	}
	return data
}

// BuildList creates multiple rows.
func (f *RowFactory) BuildList(count int, options ...Option) []map[string]interface{} {
	results := make([]map[string]interface{}, count)
	for i := 0; i < count; i++ {
		results[i] = f.Build(options...)
	}
	return results
}

// WithField sets a specific column value.
func WithField(name string, value interface{}) Option {
	return func(data map[string]interface{}) {
		data[name] = value
	}
}

// WithFields sets multiple column values.
func WithFields(fields map[string]interface{}) Option {
	return func(data map[string]interface{}) {
		for k, v := range fields {
			data[k] = v
		}
	}
}

// Without removes a column so its default applies.
func Without(name string) Option {
	return func(data map[string]interface{}) {
		delete(data, name)
	}
}

var nameSequence uint64

// SequenceName generates unique names.
func SequenceName() string {
	n := atomic.AddUint64(&nameSequence, 1)
	return fmt.Sprintf("user%d", n)
}

// Counter returns a client-side default generator yielding start, start+1, ...
// and a function reporting how many times it was invoked.
func Counter(start int64) (schema.DefaultFunc, func() int64) {
	var next atomic.Int64
	next.Store(start)
	var calls atomic.Int64
	gen := func() interface{} {
		calls.Add(1)
		return next.Add(1) - 1
	}
	return gen, calls.Load
}

// UsersTable returns the table T(id auto-increment, name, created_at) where
// created_at is filled by the given client-side generator.
func UsersTable(createdAt schema.DefaultFunc) *schema.Table {
	return schema.NewTable("users",
		&schema.Column{Name: "id", Type: schema.BIGINT, AutoIncrement: true},
		&schema.Column{Name: "name", Type: schema.STRING},
		&schema.Column{Name: "created_at", Type: schema.BIGINT, ClientDefault: createdAt},
	)
}

// NewUserRowFactory creates a factory for rows of UsersTable.
func NewUserRowFactory() *RowFactory {
	return NewRowFactory(map[string]interface{}{
		"name": SequenceName,
	})
}
