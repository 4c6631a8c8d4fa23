package table

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Record is one row of a list, decoded from API JSON. The list never
// mutates records.
type Record map[string]any

// ID returns the record identifier, preferring "_id" over "id".
func (r Record) ID() string {
	for _, key := range []string{"_id", "id"} {
		if v, ok := r[key]; ok && v != nil {
			return Text(v)
		}
	}
	return ""
}

// Lookup resolves a dotted accessor such as "dieta.nome". The final segment
// "length" reports the size of a slice, map or string.
func (r Record) Lookup(accessor string) (any, bool) {
	if accessor == "" {
		return nil, false
	}
	var current any = map[string]any(r)
	segments := strings.Split(accessor, ".")
	for i, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case Record:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			if segment == "length" && i == len(segments)-1 {
				return len(node), true
			}
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}
			current = node[index]
		case string:
			if segment == "length" && i == len(segments)-1 {
				return len([]rune(node)), true
			}
			return nil, false
		default:
			return nil, false
		}
	}
	return current, true
}

// Text renders a cell value the way a browser would stringify it. Missing
// values render as "".
func Text(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case fmt.Stringer:
		return value.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Text(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}
