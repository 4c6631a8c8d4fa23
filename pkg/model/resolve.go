package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	dateLayout,
}

// Initial computes the starting value of a field from a raw seed (a record
// value or the field default). Dates are reduced to their calendar day, a
// numeric zero is preserved and every other falsy seed becomes "".
func Initial(field Field, seed any) Value {
	if field.IsGroup() {
		return Resolve(field, seed)
	}
	if field.Type == FieldTypeDate && !isFalsy(seed) {
		return String(NormalizeDate(seed))
	}
	if field.Type == FieldTypeNumber && isZero(seed) {
		return Number(0)
	}
	if isFalsy(seed) {
		return String("")
	}
	return Resolve(field, seed)
}

// Resolve maps a raw JSON value onto the kind dictated by the field.
func Resolve(field Field, raw any) Value {
	if v, ok := raw.(Value); ok {
		return v.Clone()
	}
	switch field.Type {
	case FieldTypeGroup:
		return resolveRows(field.Nested, raw)
	case FieldTypeNumber:
		switch n := raw.(type) {
		case nil:
			return String("")
		case float64:
			return Number(n)
		case float32:
			return Number(float64(n))
		case int:
			return Number(float64(n))
		case int64:
			return Number(float64(n))
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return Number(f)
			}
			return String(n.String())
		case string:
			return ParseScalar(field, n)
		default:
			return String(fmt.Sprint(n))
		}
	case FieldTypeDate:
		if raw == nil {
			return String("")
		}
		return String(NormalizeDate(raw))
	case FieldTypeSelect:
		return String(referenceID(raw))
	default:
		return String(scalarText(raw))
	}
}

// ParseScalar converts user input for a scalar field. Number inputs that do
// not parse keep the raw text so nothing the user typed is lost.
func ParseScalar(field Field, raw string) Value {
	if field.Type != FieldTypeNumber {
		return String(raw)
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return String("")
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64); err == nil {
		return Number(f)
	}
	return String(raw)
}

// EmptyValue is the type-appropriate blank for a new group row.
func EmptyValue(field Field) Value {
	if field.IsGroup() {
		return Rows()
	}
	return String("")
}

// NormalizeDate reduces timestamps to a YYYY-MM-DD string in UTC. Values
// that do not parse are returned as text.
func NormalizeDate(raw any) string {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC().Format(dateLayout)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.UTC().Format(dateLayout)
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t.UTC().Format(dateLayout)
			}
		}
		return trimmed
	default:
		return scalarText(raw)
	}
}

// Export converts form state into plain data ordered by the schema. Fields
// missing from the state export their empty value.
func (vs Values) Export(fields []Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		value, ok := vs[field.Name]
		if !ok {
			value = EmptyValue(field)
		}
		out[field.Name] = exportValue(field, value)
	}
	return out
}

func exportValue(field Field, value Value) any {
	switch value.Kind() {
	case KindNumber:
		n, _ := value.Float()
		return n
	case KindRows:
		rows := value.RowsList()
		out := make([]map[string]any, len(rows))
		for i, row := range rows {
			out[i] = row.Export(field.Nested)
		}
		return out
	default:
		if field.IsGroup() {
			return []map[string]any{}
		}
		return value.Str()
	}
}

func resolveRows(fields []Field, raw any) Value {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []map[string]any:
		items = make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
	case []Values:
		return Rows(v...)
	}
	rows := make([]Values, 0, len(items))
	for _, item := range items {
		record, _ := item.(map[string]any)
		row := make(Values, len(fields))
		for _, field := range fields {
			row[field.Name] = Initial(field, record[field.Name])
		}
		rows = append(rows, row)
	}
	return Rows(rows...)
}

func referenceID(raw any) string {
	if record, ok := raw.(map[string]any); ok {
		for _, key := range []string{"_id", "id"} {
			if id, ok := record[key]; ok && id != nil {
				return scalarText(id)
			}
		}
		return ""
	}
	return scalarText(raw)
}

func scalarText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case Value:
		return v.Text()
	default:
		return fmt.Sprint(v)
	}
}

func isZero(raw any) bool {
	switch v := raw.(type) {
	case int:
		return v == 0
	case int64:
		return v == 0
	case float64:
		return v == 0
	case float32:
		return v == 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	case Value:
		n, ok := v.Float()
		return ok && n == 0
	}
	return false
}

func isFalsy(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case Value:
		return v.Kind() == KindString && v.Str() == ""
	}
	return isZero(raw)
}
