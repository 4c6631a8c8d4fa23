package model

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind identifies which member of the Value union is populated.
type Kind uint8

const (
	KindString Kind = iota
	KindNumber
	KindRows
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindRows:
		return "rows"
	default:
		return "string"
	}
}

// Value is the state of a single field. The zero value is the empty string.
type Value struct {
	kind Kind
	str  string
	num  float64
	rows []Values
}

// Values maps field names to their current state.
type Values map[string]Value

// String wraps a scalar string.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number wraps a numeric scalar.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Rows wraps the ordered rows of a repeating group. The slice is copied.
func Rows(rows ...Values) Value {
	out := make([]Values, len(rows))
	copy(out, rows)
	return Value{kind: KindRows, rows: out}
}

// Kind reports the populated member.
func (v Value) Kind() Kind {
	return v.kind
}

// Str returns the string member or "" for other kinds.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// Float returns the number member.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// RowsList returns a copy of the row slice. Row maps are shared.
func (v Value) RowsList() []Values {
	if v.kind != KindRows {
		return nil
	}
	out := make([]Values, len(v.rows))
	copy(out, v.rows)
	return out
}

// IsEmpty reports whether the value counts as missing for required checks.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNumber:
		return false
	case KindRows:
		return len(v.rows) == 0
	default:
		return v.str == ""
	}
}

// Text renders scalars for display inside inputs. Rows render as "".
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindRows:
		return ""
	default:
		return v.str
	}
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	if v.kind != KindRows {
		return v
	}
	rows := make([]Values, len(v.rows))
	for i, row := range v.rows {
		rows[i] = row.Clone()
	}
	return Value{kind: KindRows, rows: rows}
}

// Equal compares kind and content, recursing into rows.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == other.num
	case KindRows:
		if len(v.rows) != len(other.rows) {
			return false
		}
		for i := range v.rows {
			if !v.rows[i].Equal(other.rows[i]) {
				return false
			}
		}
		return true
	default:
		return v.str == other.str
	}
}

// MarshalJSON encodes the populated member.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindRows:
		if v.rows == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.rows)
	default:
		return json.Marshal(v.str)
	}
}

// String implements fmt.Stringer for debugging output.
func (v Value) String() string {
	if v.kind == KindRows {
		return "rows(" + strconv.Itoa(len(v.rows)) + ")"
	}
	return v.Text()
}

// Clone returns a deep copy of the map.
func (vs Values) Clone() Values {
	if vs == nil {
		return nil
	}
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = v.Clone()
	}
	return out
}

// Equal compares two value maps.
func (vs Values) Equal(other Values) bool {
	if len(vs) != len(other) {
		return false
	}
	for k, v := range vs {
		o, ok := other[k]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}
