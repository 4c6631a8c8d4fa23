package openapi

import (
	"errors"
	"sort"
	"strings"
)

// HintPrefix starts every UI hint carried on a contract schema, as in
// x-farmdesk-label.
const HintPrefix = "x-farmdesk-"

// Document is a raw contract and where it came from.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw so later edits by the caller do not leak in.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: " + src.Location() + " is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNewDocument panics if the document cannot be created.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

func (d Document) Source() Source { return d.source }

// Raw returns a copy of the payload.
func (d Document) Raw() []byte { return append([]byte(nil), d.raw...) }

func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Operation is one endpoint of the contract.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	RequestBody Schema
}

// NewOperation checks the identifying fields and upper-cases the method.
func NewOperation(id, method, path string, request Schema) (Operation, error) {
	switch {
	case id == "":
		return Operation{}, errors.New("openapi: operation id is required")
	case method == "":
		return Operation{}, errors.New("openapi: operation " + id + " has no method")
	case path == "":
		return Operation{}, errors.New("openapi: operation " + id + " has no path")
	}
	return Operation{ID: id, Method: strings.ToUpper(method), Path: path, RequestBody: request}, nil
}

// Collection is the first path segment: "/lotes/{id}" belongs to "lotes".
func (o Operation) Collection() string {
	segment, _, _ := strings.Cut(strings.TrimPrefix(o.Path, "/"), "/")
	return segment
}

// HasForm reports whether the request body is an object with properties,
// the only shape a field schema can be derived from.
func (o Operation) HasForm() bool {
	return (o.RequestBody.Type == "object" || o.RequestBody.Type == "") && len(o.RequestBody.Properties) > 0
}

// Schema is a request body or one of its nested properties.
type Schema struct {
	Ref         string
	Type        string
	Format      string
	Title       string
	Required    []string
	Properties  map[string]Schema
	Items       *Schema
	Enum        []any
	Description string
	Default     any
	// Extensions holds the x-farmdesk-* vendor extensions only.
	Extensions map[string]any
}

// Hint returns the x-farmdesk-<name> extension.
func (s Schema) Hint(name string) (any, bool) {
	v, ok := s.Extensions[HintPrefix+name]
	return v, ok
}

// HintString returns a string hint, trimmed, or "" when absent or not a
// string.
func (s Schema) HintString(name string) string {
	v, _ := s.Hint(name)
	text, _ := v.(string)
	return strings.TrimSpace(text)
}

// Hints lists the hint names declared on the schema, sorted.
func (s Schema) Hints() []string {
	names := make([]string, 0, len(s.Extensions))
	for key := range s.Extensions {
		if name, ok := strings.CutPrefix(key, HintPrefix); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
