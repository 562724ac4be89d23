package mapper

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dan-strohschein/syndrdb-batch/schema"
)

// ResponseMapper converts loosely typed values (driver results, decoded
// input documents) into the Go types expected for a column type.
type ResponseMapper struct{}

// NewResponseMapper creates a new response mapper.
func NewResponseMapper() *ResponseMapper {
	return &ResponseMapper{}
}

// Coerce converts value to the Go representation of the given column type.
// nil passes through unchanged so callers can still fall back to defaults.
func (m *ResponseMapper) Coerce(value interface{}, fieldType schema.FieldType) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	switch fieldType {
	case schema.INT, schema.BIGINT:
		return m.ToInt(value)
	case schema.FLOAT:
		return m.ToFloat(value)
	case schema.BOOLEAN:
		return m.ToBool(value)
	case schema.DATETIME:
		return m.ToDateTime(value)
	case schema.STRING, schema.TEXT, schema.UUID:
		return m.ToString(value), nil
	case schema.JSON:
		if s, ok := value.(string); ok {
			return s, nil
		}
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("cannot encode %T as json: %w", value, err)
		}
		return string(b), nil
	default:
		return value, nil
	}
}

// CoerceRow converts every value of a decoded input row according to the
// table's declared column types. Unknown keys are returned as an error.
func (m *ResponseMapper) CoerceRow(table *schema.Table, row map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(row))
	for key, value := range row {
		col := table.Column(key)
		if col == nil {
			return nil, fmt.Errorf("column '%s' does not exist in table %s", key, table.Name)
		}
		mapped, err := m.Coerce(value, col.Type)
		if err != nil {
			return nil, fmt.Errorf("error mapping field '%s': %w", key, err)
		}
		out[key] = mapped
	}
	return out, nil
}

// ToString converts any value to a string.
func (m *ResponseMapper) ToString(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToInt converts a value to an int64.
func (m *ResponseMapper) ToInt(value interface{}) (int64, error) {
	if value == nil {
		return 0, fmt.Errorf("cannot convert nil to int")
	}

	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case []byte:
		return m.ToInt(string(v))
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert '%s' to int: %w", v, err)
		}
		return i, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

// ToFloat converts a value to a float64.
func (m *ResponseMapper) ToFloat(value interface{}) (float64, error) {
	if value == nil {
		return 0, fmt.Errorf("cannot convert nil to float")
	}

	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert '%s' to float: %w", v, err)
		}
		return f, nil
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float", value)
	}
}

// ToBool converts a value to a boolean.
func (m *ResponseMapper) ToBool(value interface{}) (bool, error) {
	if value == nil {
		return false, nil
	}

	switch v := value.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		switch v {
		case "true", "1", "yes", "y", "on":
			return true, nil
		case "false", "0", "no", "n", "off", "":
			return false, nil
		default:
			return false, fmt.Errorf("cannot convert '%s' to boolean", v)
		}
	default:
		return false, fmt.Errorf("cannot convert %T to boolean", value)
	}
}

// ToDateTime converts a value to a time.Time.
func (m *ResponseMapper) ToDateTime(value interface{}) (time.Time, error) {
	if value == nil {
		return time.Time{}, fmt.Errorf("cannot convert nil to datetime")
	}

	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		formats := []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05",
			"2006-01-02",
		}

		for _, format := range formats {
			if t, err := time.Parse(format, v); err == nil {
				return t, nil
			}
		}

		return time.Time{}, fmt.Errorf("cannot parse '%s' as datetime", v)
	case int, int32, int64:
		// Unix seconds
		ts, err := m.ToInt(v)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(ts, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to datetime", value)
	}
}
