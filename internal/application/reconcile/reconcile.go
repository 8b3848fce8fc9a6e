// Package reconcile maps an untyped output mapping onto a known schema for
// display. Live submissions and history records go through the same code.
package reconcile

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/doeshing/widgera/internal/domain"
)

// Reconcile returns one row per schema field, in schema order. Fields the
// output omits are shown as domain.MissingValue. The field type is carried
// for presentation only; values are never coerced. An empty output yields no
// rows so callers can suppress the result panel.
func Reconcile(fields domain.Schema, output domain.Output) []domain.DisplayRow {
	if len(output) == 0 {
		return nil
	}
	rows := make([]domain.DisplayRow, 0, len(fields))
	for _, f := range fields {
		value := domain.MissingValue
		if v, ok := output[f.Name]; ok {
			value = FormatValue(v)
		}
		rows = append(rows, domain.DisplayRow{Name: f.Name, Value: value, Type: f.Type})
	}
	return rows
}

// FormatValue converts a decoded JSON value to its display string. Numbers
// keep their wire text when decoded as json.Number; composite values are
// rendered as compact JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}
