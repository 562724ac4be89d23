// Package codegen derives documents from table schemas.
package codegen

import (
	"encoding/json"
	"fmt"

	"github.com/dan-strohschein/syndrdb-batch/schema"
)

const draft07 = "http://json-schema.org/draft-07/schema#"

// JSONSchemaGenerator generates JSON Schema documents describing rows files
// accepted by the loader: a list of objects keyed by column name.
type JSONSchemaGenerator struct{}

// NewJSONSchemaGenerator creates a new JSON Schema generator.
func NewJSONSchemaGenerator() *JSONSchemaGenerator {
	return &JSONSchemaGenerator{}
}

// GenerateRows generates the schema of a rows file for one table.
func (g *JSONSchemaGenerator) GenerateRows(table *schema.Table) (string, error) {
	root := map[string]interface{}{
		"$schema":     draft07,
		"title":       table.Name,
		"description": fmt.Sprintf("Rows to insert into %s", table.Name),
		"type":        "array",
		"items":       g.RowSchema(table),
	}

	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema for table %s: %w", table.Name, err)
	}
	return string(data), nil
}

// GenerateMulti generates a rows-file schema for every table in a schema
// definition. Returns a map of table name to JSON Schema content.
func (g *JSONSchemaGenerator) GenerateMulti(def *schema.SchemaDefinition, gens *schema.Generators) (map[string]string, error) {
	schemas := make(map[string]string, len(def.Tables))

	for _, td := range def.Tables {
		table, err := td.Build(gens)
		if err != nil {
			return nil, err
		}
		doc, err := g.GenerateRows(table)
		if err != nil {
			return nil, err
		}
		schemas[table.Name] = doc
	}

	return schemas, nil
}

// RowSchema creates the object schema for a single row. A column is
// required only when nothing else can supply its value.
func (g *JSONSchemaGenerator) RowSchema(table *schema.Table) map[string]interface{} {
	properties := make(map[string]interface{}, len(table.Columns))
	required := make([]string, 0)

	for _, col := range table.Columns {
		properties[col.Name] = g.columnSchema(col)

		if !col.Nullable && !col.AutoIncrement && !col.HasClientDefault() && !col.HasDatabaseDefault() {
			required = append(required, col.Name)
		}
	}

	rowSchema := map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}

	if len(required) > 0 {
		rowSchema["required"] = required
	}

	return rowSchema
}

// columnSchema creates a JSON Schema type definition for a column.
func (g *JSONSchemaGenerator) columnSchema(col *schema.Column) map[string]interface{} {
	colSchema := make(map[string]interface{})

	var jsonType string
	switch col.Type {
	case schema.STRING, schema.TEXT:
		jsonType = "string"
	case schema.INT, schema.BIGINT:
		jsonType = "integer"
	case schema.FLOAT:
		jsonType = "number"
	case schema.BOOLEAN:
		jsonType = "boolean"
	case schema.DATETIME:
		jsonType = "string"
		colSchema["format"] = "date-time"
	case schema.UUID:
		jsonType = "string"
		colSchema["format"] = "uuid"
	case schema.JSON:
		jsonType = "object"
	default:
		jsonType = "string"
	}

	// null falls back to the column's default, so it is always accepted
	// where a default exists.
	if col.Nullable || col.AutoIncrement || col.HasClientDefault() || col.HasDatabaseDefault() {
		colSchema["type"] = []string{jsonType, "null"}
	} else {
		colSchema["type"] = jsonType
	}

	if col.HasDatabaseDefault() {
		colSchema["description"] = fmt.Sprintf("database default: %s", col.DatabaseDefault)
	}

	return colSchema
}
