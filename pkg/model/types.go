package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidField marks schemas that violate the type gating rules. These are
// programming errors in page definitions, not user input problems.
var ErrInvalidField = errors.New("model: invalid field")

// FieldType enumerates the controls a field can render as.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
	FieldTypeTime   FieldType = "time"
	FieldTypeSelect FieldType = "select"
	FieldTypeGroup  FieldType = "repeatingGroup"
)

// ParseFieldType normalises type names, accepting the legacy dynamicTable
// alias for repeating groups.
func ParseFieldType(raw string) (FieldType, error) {
	switch strings.TrimSpace(raw) {
	case "", string(FieldTypeText):
		return FieldTypeText, nil
	case string(FieldTypeNumber):
		return FieldTypeNumber, nil
	case string(FieldTypeDate):
		return FieldTypeDate, nil
	case string(FieldTypeTime):
		return FieldTypeTime, nil
	case string(FieldTypeSelect):
		return FieldTypeSelect, nil
	case string(FieldTypeGroup), "dynamicTable":
		return FieldTypeGroup, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidField, raw)
	}
}

// UnmarshalText lets YAML and JSON decoders accept aliases.
func (t *FieldType) UnmarshalText(text []byte) error {
	parsed, err := ParseFieldType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Option is one entry of a select field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes a single form input. Options are populated only for select
// fields; Nested and AddLabel only for repeating groups.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Label       string            `json:"label" yaml:"label"`
	Type        FieldType         `json:"type" yaml:"type"`
	Required    bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Default     any               `json:"default,omitempty" yaml:"default,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	Nested      []Field           `json:"nestedFields,omitempty" yaml:"nestedFields,omitempty"`
	AddLabel    string            `json:"addButtonLabel,omitempty" yaml:"addButtonLabel,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// IsGroup reports whether the field holds nested rows.
func (f Field) IsGroup() bool {
	return f.Type == FieldTypeGroup
}

// Validate checks the type gating rules for a single field and, for groups,
// its nested schema.
func (f Field) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: field name is required", ErrInvalidField)
	}
	if _, err := ParseFieldType(string(f.Type)); err != nil {
		return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidField, f.Name, f.Type)
	}

	switch f.Type {
	case FieldTypeSelect:
		if f.Options == nil {
			return fmt.Errorf("%w: select field %q requires options", ErrInvalidField, f.Name)
		}
		if len(f.Nested) > 0 {
			return fmt.Errorf("%w: select field %q cannot declare nested fields", ErrInvalidField, f.Name)
		}
	case FieldTypeGroup:
		if len(f.Nested) == 0 {
			return fmt.Errorf("%w: group %q requires nested fields", ErrInvalidField, f.Name)
		}
		if f.Options != nil {
			return fmt.Errorf("%w: group %q cannot declare options", ErrInvalidField, f.Name)
		}
		if err := ValidateFields(f.Nested); err != nil {
			return fmt.Errorf("group %q: %w", f.Name, err)
		}
	default:
		if f.Options != nil || len(f.Nested) > 0 {
			return fmt.Errorf("%w: %s field %q cannot declare options or nested fields", ErrInvalidField, f.Type, f.Name)
		}
	}
	return nil
}

// ValidateFields validates every field and enforces unique names within the
// list. Nested lists are checked independently.
func ValidateFields(fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if err := field.Validate(); err != nil {
			return err
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("%w: duplicate field name %q", ErrInvalidField, field.Name)
		}
		seen[field.Name] = struct{}{}
	}
	return nil
}

// Lookup returns the field with the given name from the list.
func Lookup(fields []Field, name string) (Field, bool) {
	for _, field := range fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// CloneFields returns a deep copy of the schema list.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field
		if field.Options != nil {
			out[i].Options = append([]Option{}, field.Options...)
		}
		if field.Nested != nil {
			out[i].Nested = CloneFields(field.Nested)
		}
		if field.Metadata != nil {
			meta := make(map[string]string, len(field.Metadata))
			for k, v := range field.Metadata {
				meta[k] = v
			}
			out[i].Metadata = meta
		}
	}
	return out
}
