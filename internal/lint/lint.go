// Package lint checks the x-farmdesk UI hints of an OpenAPI contract: unknown
// keys, values of the wrong kind, unknown field types and option sources that
// name no collection.
package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-farmdesk/pkg/api"
	"github.com/goliatone/go-farmdesk/pkg/model"
	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
)

// Violation is one problem found in a document.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// Linter checks operations against the known hints and collections.
type Linter struct {
	keys        map[string]struct{}
	collections map[string]struct{}
}

// New returns a linter. With no collections it accepts the farm API ones.
func New(collections ...string) *Linter {
	if len(collections) == 0 {
		collections = api.Collections()
	}
	l := &Linter{
		keys:        make(map[string]struct{}),
		collections: make(map[string]struct{}, len(collections)),
	}
	for _, key := range model.ExtensionKeys() {
		l.keys[key] = struct{}{}
	}
	for _, name := range collections {
		l.collections[name] = struct{}{}
	}
	return l
}

// Operations lints every operation request body, sorted by location.
func (l *Linter) Operations(operations map[string]pkgopenapi.Operation) []Violation {
	ids := make([]string, 0, len(operations))
	for id := range operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var result []Violation
	for _, id := range ids {
		result = append(result, l.schema([]string{"operation", id, "requestBody"}, operations[id].RequestBody)...)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Location == result[j].Location {
			return result[i].Message < result[j].Message
		}
		return result[i].Location < result[j].Location
	})
	return result
}

func (l *Linter) schema(path []string, schema pkgopenapi.Schema) []Violation {
	result := l.extensions(path, schema.Extensions)

	keys := make([]string, 0, len(schema.Properties))
	for key := range schema.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		result = append(result, l.schema(appendPath(path, "properties."+key), schema.Properties[key])...)
	}

	if schema.Items != nil {
		result = append(result, l.schema(appendPath(path, "items"), *schema.Items)...)
	}
	return result
}

func (l *Linter) extensions(path []string, extensions map[string]any) []Violation {
	keys := make([]string, 0, len(extensions))
	for key := range extensions {
		if strings.HasPrefix(key, model.ExtensionPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var result []Violation
	for _, key := range keys {
		if message := l.hint(key, extensions[key]); message != "" {
			result = append(result, Violation{Location: formatLocation(path), Message: message})
		}
	}
	return result
}

// hint validates one extension and returns a message, or "" when it is fine.
func (l *Linter) hint(key string, value any) string {
	if _, ok := l.keys[key]; !ok {
		return fmt.Sprintf("unsupported UI extension %q (supported: %s)", key, strings.Join(model.ExtensionKeys(), ", "))
	}

	if key == model.ExtensionPrefix+"-order" {
		switch value.(type) {
		case float64, int, int64:
			return ""
		}
		return fmt.Sprintf("%s must be a number (got %T)", key, value)
	}

	text, ok := value.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return fmt.Sprintf("%s must be a non-empty string (got %T)", key, value)
	}
	switch key {
	case model.ExtensionPrefix + "-type":
		if _, err := model.ParseFieldType(text); err != nil {
			return fmt.Sprintf("%s: unknown field type %q", key, text)
		}
	case model.ExtensionPrefix + "-options-from":
		if _, ok := l.collections[strings.Trim(text, "/ ")]; !ok {
			return fmt.Sprintf("%s: unknown collection %q", key, text)
		}
	}
	return ""
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	return append(next, segment)
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
