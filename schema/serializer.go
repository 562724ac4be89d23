package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseSchema decodes a schema document. YAML and JSON are both accepted.
// Unknown keys are rejected so typos in column options surface early.
func ParseSchema(data []byte) (*SchemaDefinition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def SchemaDefinition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	for _, t := range def.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("failed to parse schema: table with empty name")
		}
		if len(t.Columns) == 0 {
			return nil, fmt.Errorf("failed to parse schema: table %s has no columns", t.Name)
		}
	}

	return &def, nil
}

// LoadSchema reads and parses a schema file.
func LoadSchema(path string) (*SchemaDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return ParseSchema(data)
}

// MarshalSchema encodes a schema document as YAML.
func MarshalSchema(def *SchemaDefinition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadTable loads a schema file and builds the named table.
func LoadTable(path, table string, gens *Generators) (*Table, error) {
	def, err := LoadSchema(path)
	if err != nil {
		return nil, err
	}
	td := def.Table(table)
	if td == nil {
		return nil, fmt.Errorf("table %s not found in %s", table, path)
	}
	return td.Build(gens)
}
