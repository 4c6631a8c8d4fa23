package render

import (
	"slices"
	"strings"
)

// HiddenField is a hidden input written inside a form, such as the
// per-workspace form token.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden trims name and pairs it with value.
func Hidden(name, value string) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: value}
}

// WithHidden returns a copy of o carrying fields. A field replaces an earlier
// one with the same name, fields without a name are dropped and the result is
// ordered by name.
func (o RenderOptions) WithHidden(fields ...HiddenField) RenderOptions {
	merged := slices.Clone(o.HiddenFields)
	for _, field := range fields {
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			continue
		}
		i := slices.IndexFunc(merged, func(h HiddenField) bool { return h.Name == field.Name })
		if i >= 0 {
			merged[i] = field
			continue
		}
		merged = append(merged, field)
	}
	slices.SortFunc(merged, func(a, b HiddenField) int { return strings.Compare(a.Name, b.Name) })
	o.HiddenFields = merged
	return o
}
