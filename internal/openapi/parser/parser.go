// Package parser reads the farm API contract with kin-openapi and reduces it
// to the request-body schemas the form builder needs.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
)

const jsonMediaType = "application/json"

type Parser struct {
	validate bool
}

var _ pkgopenapi.Parser = (*Parser)(nil)

func New(options pkgopenapi.ParserOptions) pkgopenapi.Parser {
	return &Parser{validate: options.Validate}
}

// Operations returns every operation of doc keyed by operationId. Operations
// without one are keyed "<method>:<path>", for example "delete:/lotes/{id}".
// Two operations sharing an id is an error.
func (p *Parser) Operations(ctx context.Context, doc pkgopenapi.Document) (map[string]pkgopenapi.Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(doc.Raw()) == 0 {
		return nil, errors.New("openapi parser: empty document")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("openapi parser: %s: %w", doc.Location(), err)
	}
	if p.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: %s is invalid: %w", doc.Location(), err)
		}
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, fmt.Errorf("openapi parser: %s declares no paths", doc.Location())
	}

	operations := make(map[string]pkgopenapi.Operation)
	for _, path := range spec.Paths.InMatchingOrder() {
		item := spec.Paths.Value(path)
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			op, err := convertOperation(method, path, operation)
			if err != nil {
				return nil, fmt.Errorf("openapi parser: %w", err)
			}
			if prev, dup := operations[op.ID]; dup {
				return nil, fmt.Errorf("openapi parser: operation %q used by %s %s and %s %s", op.ID, prev.Method, prev.Path, op.Method, op.Path)
			}
			operations[op.ID] = op
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(operations) == 0 {
		return nil, fmt.Errorf("openapi parser: %s declares no operations", doc.Location())
	}
	return operations, nil
}

func convertOperation(method, path string, operation *openapi3.Operation) (pkgopenapi.Operation, error) {
	id := strings.TrimSpace(operation.OperationID)
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	op, err := pkgopenapi.NewOperation(id, method, path, requestSchema(operation.RequestBody))
	if err != nil {
		return pkgopenapi.Operation{}, err
	}
	op.Summary = operation.Summary
	return op, nil
}

// requestSchema prefers the JSON body and otherwise takes the first media
// type by name.
func requestSchema(body *openapi3.RequestBodyRef) pkgopenapi.Schema {
	if body == nil {
		return pkgopenapi.Schema{}
	}
	if body.Value == nil {
		return pkgopenapi.Schema{Ref: body.Ref}
	}
	content := body.Value.Content
	if media, ok := content[jsonMediaType]; ok {
		return convertSchema(media.Schema)
	}
	types := make([]string, 0, len(content))
	for name := range content {
		types = append(types, name)
	}
	if len(types) == 0 {
		return pkgopenapi.Schema{}
	}
	sort.Strings(types)
	return convertSchema(content[types[0]].Schema)
}

func convertSchema(ref *openapi3.SchemaRef) pkgopenapi.Schema {
	if ref == nil {
		return pkgopenapi.Schema{}
	}
	if ref.Value == nil {
		return pkgopenapi.Schema{Ref: ref.Ref}
	}
	src := ref.Value
	schema := pkgopenapi.Schema{
		Ref:         ref.Ref,
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Default:     src.Default,
		Extensions:  hints(src.Extensions),
	}
	if src.Type != nil && len(src.Type.Slice()) > 0 {
		schema.Type = src.Type.Slice()[0]
	}
	if len(src.Required) > 0 {
		schema.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		schema.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Properties) > 0 {
		schema.Properties = make(map[string]pkgopenapi.Schema, len(src.Properties))
		for name, property := range src.Properties {
			schema.Properties[name] = convertSchema(property)
		}
	}
	if src.Items != nil {
		items := convertSchema(src.Items)
		schema.Items = &items
	}
	return schema
}

// hints keeps only the x-farmdesk-* extensions.
func hints(raw map[string]any) map[string]any {
	var out map[string]any
	for key, value := range raw {
		if !strings.HasPrefix(key, pkgopenapi.HintPrefix) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[key] = value
	}
	return out
}
