package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan-strohschein/syndrdb-batch/schema"
)

func TestResponseMapper_ToString(t *testing.T) {
	mapper := NewResponseMapper()

	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"string", "hello", "hello"},
		{"bytes", []byte("raw"), "raw"},
		{"int", 42, "42"},
		{"uint8", uint8(7), "7"},
		{"float", 3.14, "3.14"},
		{"bool", true, "true"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapper.ToString(tt.input))
		})
	}
}

func TestResponseMapper_ToInt(t *testing.T) {
	mapper := NewResponseMapper()

	tests := []struct {
		name     string
		input    interface{}
		expected int64
		wantErr  bool
	}{
		{"int", 42, 42, false},
		{"int32", int32(42), 42, false},
		{"int64", int64(42), 42, false},
		{"uint64", uint64(42), 42, false},
		{"float64", 42.0, 42, false},
		{"json number", json.Number("107"), 107, false},
		{"bytes", []byte("9"), 9, false},
		{"string valid", "42", 42, false},
		{"string invalid", "not a number", 0, true},
		{"nil", nil, 0, true},
		{"struct", struct{}{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mapper.ToInt(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResponseMapper_ToBool(t *testing.T) {
	mapper := NewResponseMapper()

	tests := []struct {
		name     string
		input    interface{}
		expected bool
		wantErr  bool
	}{
		{"bool true", true, true, false},
		{"bool false", false, false, false},
		{"string true", "true", true, false},
		{"string false", "false", false, false},
		{"string 1", "1", true, false},
		{"string 0", "0", false, false},
		{"int 1", 1, true, false},
		{"int 0", 0, false, false},
		{"garbage", "maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mapper.ToBool(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResponseMapper_ToDateTime(t *testing.T) {
	mapper := NewResponseMapper()

	got, err := mapper.ToDateTime("2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), got)

	got, err = mapper.ToDateTime(int64(0))
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0).UTC(), got)

	_, err = mapper.ToDateTime("yesterday")
	assert.Error(t, err)
}

func TestResponseMapper_Coerce(t *testing.T) {
	mapper := NewResponseMapper()

	tests := []struct {
		name      string
		input     interface{}
		fieldType schema.FieldType
		expected  interface{}
	}{
		{"float to bigint", 3.0, schema.BIGINT, int64(3)},
		{"int to float", 2, schema.FLOAT, 2.0},
		{"string to bool", "yes", schema.BOOLEAN, true},
		{"int to text", 5, schema.TEXT, "5"},
		{"map to json", map[string]interface{}{"a": 1}, schema.JSON, `{"a":1}`},
		{"json string passthrough", `{"b":2}`, schema.JSON, `{"b":2}`},
		{"nil stays nil", nil, schema.INT, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mapper.Coerce(tt.input, tt.fieldType)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResponseMapper_CoerceRow(t *testing.T) {
	mapper := NewResponseMapper()
	table := schema.NewTable("t",
		&schema.Column{Name: "id", Type: schema.BIGINT, AutoIncrement: true},
		&schema.Column{Name: "score", Type: schema.FLOAT},
	)

	row, err := mapper.CoerceRow(table, map[string]interface{}{"score": 7})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"score": 7.0}, row)

	_, err = mapper.CoerceRow(table, map[string]interface{}{"nope": 1})
	assert.Error(t, err)

	_, err = mapper.CoerceRow(table, map[string]interface{}{"score": "high"})
	assert.Error(t, err)
}
