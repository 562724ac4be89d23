package schema

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// GeneratorFactory builds a fresh DefaultFunc for one column.
// Factories are called once per column so stateful generators
// (sequences) keep independent state per column.
type GeneratorFactory func() DefaultFunc

// Generators maps generator names used in schema files to factories.
type Generators struct {
	factories map[string]GeneratorFactory
	mu        sync.RWMutex
}

// NewGenerators returns a registry preloaded with the builtin generators:
//   - uuid:     random UUID (v4) string
//   - uuidv7:   time-ordered UUID (v7) string
//   - now:      current UTC time
//   - sequence: per-column counter starting at 1
func NewGenerators() *Generators {
	g := &Generators{factories: make(map[string]GeneratorFactory)}

	g.Register("uuid", func() DefaultFunc {
		return func() interface{} { return uuid.NewString() }
	})
	g.Register("uuidv7", func() DefaultFunc {
		return func() interface{} {
			id, err := uuid.NewV7()
			if err != nil {
				return uuid.NewString()
			}
			return id.String()
		}
	})
	g.Register("now", func() DefaultFunc {
		return func() interface{} { return time.Now().UTC() }
	})
	g.Register("sequence", func() DefaultFunc {
		var n atomic.Int64
		return func() interface{} { return n.Add(1) }
	})

	return g
}

// Register adds or replaces a named generator.
func (g *Generators) Register(name string, factory GeneratorFactory) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.factories[name] = factory
}

// New instantiates the named generator.
func (g *Generators) New(name string) (DefaultFunc, error) {
	g.mu.RLock()
	factory, ok := g.factories[name]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown default generator %q (available: %v)", name, g.Names())
	}
	return factory(), nil
}

// Names lists registered generator names in sorted order.
func (g *Generators) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, 0, len(g.factories))
	for name := range g.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build converts a table definition into a Table, resolving client default
// generators by name. A nil registry uses NewGenerators().
func (d TableDefinition) Build(gens *Generators) (*Table, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("table definition has no name")
	}
	if gens == nil {
		gens = NewGenerators()
	}

	seen := make(map[string]bool, len(d.Columns))
	columns := make([]*Column, 0, len(d.Columns))
	for _, cd := range d.Columns {
		if cd.Name == "" {
			return nil, fmt.Errorf("table %s: column with empty name", d.Name)
		}
		if seen[cd.Name] {
			return nil, fmt.Errorf("table %s: duplicate column %s", d.Name, cd.Name)
		}
		seen[cd.Name] = true

		col := &Column{
			Name:            cd.Name,
			Type:            cd.Type,
			AutoIncrement:   cd.AutoIncrement,
			Nullable:        cd.Nullable,
			DatabaseDefault: cd.DatabaseDefault,
		}
		if col.AutoIncrement && !col.Type.IsInteger() {
			return nil, fmt.Errorf("table %s: auto-increment column %s must be INT or BIGINT, got %s", d.Name, cd.Name, cd.Type)
		}
		if cd.ClientDefault != "" {
			fn, err := gens.New(cd.ClientDefault)
			if err != nil {
				return nil, fmt.Errorf("table %s column %s: %w", d.Name, cd.Name, err)
			}
			col.ClientDefault = fn
		}
		columns = append(columns, col)
	}

	return NewTable(d.Name, columns...), nil
}
