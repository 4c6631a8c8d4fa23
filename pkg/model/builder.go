package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
)

// Hint names read from schemas, without pkgopenapi.HintPrefix.
const (
	hintLabel       = "label"
	hintOrder       = "order"
	hintType        = "type"
	hintAddLabel    = "add-label"
	hintOptionsFrom = "options-from"

	// MetadataOptionsFrom names the resource a select field draws options from.
	MetadataOptionsFrom = "optionsFrom"
	// MetadataMin overrides the lower bound of a number control. An empty
	// value removes the bound.
	MetadataMin = "min"
)

// ExtensionPrefix is the namespace of the UI hints read from OpenAPI schemas.
const ExtensionPrefix = "x-farmdesk"

// ExtensionKeys lists the extension keys FromOpenAPI understands, sorted.
func ExtensionKeys() []string {
	hints := []string{hintAddLabel, hintLabel, hintOptionsFrom, hintOrder, hintType}
	keys := make([]string, len(hints))
	for i, hint := range hints {
		keys[i] = pkgopenapi.HintPrefix + hint
	}
	return keys
}

// ErrUnsupportedSchema is returned for schema shapes with no field mapping.
var ErrUnsupportedSchema = errors.New("model: unsupported schema")

// BuilderOption configures FromOpenAPI.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler func(string) string
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// FromOperation derives the field list from an operation's request body.
func FromOperation(op pkgopenapi.Operation, options ...BuilderOption) ([]Field, error) {
	fields, err := FromOpenAPI(op.RequestBody, options...)
	if err != nil {
		return nil, fmt.Errorf("model: operation %s: %w", op.ID, err)
	}
	return fields, nil
}

// FromOpenAPI derives fields from an object schema. Properties are ordered by
// the x-farmdesk-order extension, then by name.
func FromOpenAPI(schema pkgopenapi.Schema, options ...BuilderOption) ([]Field, error) {
	cfg := builderOptions{labeler: DefaultLabeler}
	for _, opt := range options {
		opt(&cfg)
	}
	if schema.Type != "object" && schema.Type != "" {
		return nil, fmt.Errorf("%w: root schema must be an object, got %q", ErrUnsupportedSchema, schema.Type)
	}
	fields, err := cfg.objectFields(schema)
	if err != nil {
		return nil, err
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (c builderOptions) objectFields(schema pkgopenapi.Schema) ([]Field, error) {
	if len(schema.Properties) == 0 {
		return nil, fmt.Errorf("%w: object without properties", ErrUnsupportedSchema)
	}
	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, oj := propertyOrder(schema.Properties[names[i]]), propertyOrder(schema.Properties[names[j]])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		_, isRequired := required[name]
		field, err := c.field(name, schema.Properties[name], isRequired)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (c builderOptions) field(name string, schema pkgopenapi.Schema, required bool) (Field, error) {
	field := Field{
		Name:     name,
		Label:    c.labeler(name),
		Required: required,
		Default:  schema.Default,
	}
	if label := schema.HintString(hintLabel); label != "" {
		field.Label = label
	} else if schema.Title != "" {
		field.Label = schema.Title
	}

	kind := schema.HintString(hintType)
	switch {
	case kind != "":
		parsed, err := ParseFieldType(kind)
		if err != nil {
			return Field{}, err
		}
		field.Type = parsed
	case len(schema.Enum) > 0:
		field.Type = FieldTypeSelect
	case schema.Type == "number" || schema.Type == "integer":
		field.Type = FieldTypeNumber
	case schema.Type == "array":
		field.Type = FieldTypeGroup
	case schema.Type == "string" && schema.Format == "date", schema.Type == "string" && schema.Format == "date-time":
		field.Type = FieldTypeDate
	case schema.Type == "string" && schema.Format == "time":
		field.Type = FieldTypeTime
	case schema.Type == "string", schema.Type == "boolean":
		field.Type = FieldTypeText
	default:
		return Field{}, fmt.Errorf("%w: property %q has type %q", ErrUnsupportedSchema, name, schema.Type)
	}

	switch field.Type {
	case FieldTypeSelect:
		field.Options = make([]Option, 0, len(schema.Enum))
		for _, value := range schema.Enum {
			text := scalarText(value)
			field.Options = append(field.Options, Option{Value: text, Label: text})
		}
		if source := schema.HintString(hintOptionsFrom); source != "" {
			field.Metadata = map[string]string{MetadataOptionsFrom: source}
		}
	case FieldTypeGroup:
		if schema.Items == nil || (schema.Items.Type != "object" && schema.Items.Type != "") {
			return Field{}, fmt.Errorf("%w: array %q must hold objects", ErrUnsupportedSchema, name)
		}
		nested, err := c.objectFields(*schema.Items)
		if err != nil {
			return Field{}, fmt.Errorf("array %q: %w", name, err)
		}
		field.Nested = nested
		field.AddLabel = schema.HintString(hintAddLabel)
		if field.AddLabel == "" {
			field.AddLabel = "Adicionar " + field.Label
		}
	}
	return field, nil
}

func propertyOrder(schema pkgopenapi.Schema) int {
	v, _ := schema.Hint(hintOrder)
	switch v := v.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 1 << 20
}
