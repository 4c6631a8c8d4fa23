package pages

import (
	"sort"
	"strings"

	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

// Field metadata keys describing where a select field draws its options.
const (
	MetadataOptionsFrom  = model.MetadataOptionsFrom
	MetadataOptionsValue = "optionsValue"
	MetadataOptionsLabel = "optionsLabel"
)

const (
	defaultOptionValue = "_id"
	defaultOptionLabel = "nome"
)

// OptionSource names the collection a select field lists and the record keys
// used as option value and label. Collections of plain strings use the string
// for both.
type OptionSource struct {
	Resource string
	Value    string
	Label    string
}

// SourceOf returns the option source declared on a field.
func SourceOf(field model.Field) (OptionSource, bool) {
	resource := strings.TrimSpace(field.Metadata[MetadataOptionsFrom])
	if field.Type != model.FieldTypeSelect || resource == "" {
		return OptionSource{}, false
	}
	source := OptionSource{
		Resource: resource,
		Value:    strings.TrimSpace(field.Metadata[MetadataOptionsValue]),
		Label:    strings.TrimSpace(field.Metadata[MetadataOptionsLabel]),
	}
	if source.Value == "" {
		source.Value = defaultOptionValue
	}
	if source.Label == "" {
		source.Label = defaultOptionLabel
	}
	return source, true
}

// OptionResources lists, once each and sorted, every collection the page's
// select fields draw options from, nested groups included.
func (p Page) OptionResources() []string {
	seen := map[string]struct{}{}
	collectResources(p.Fields, seen)
	out := make([]string, 0, len(seen))
	for resource := range seen {
		out = append(out, resource)
	}
	sort.Strings(out)
	return out
}

func collectResources(fields []model.Field, seen map[string]struct{}) {
	for _, field := range fields {
		if source, ok := SourceOf(field); ok {
			seen[source.Resource] = struct{}{}
		}
		if field.IsGroup() {
			collectResources(field.Nested, seen)
		}
	}
}

// Options converts collection items into select options. Items that yield no
// value are skipped.
func (s OptionSource) Options(items []any) []model.Option {
	options := make([]model.Option, 0, len(items))
	for _, item := range items {
		var option model.Option
		switch v := item.(type) {
		case map[string]any:
			record := table.Record(v)
			option.Value = table.Text(v[s.Value])
			if option.Value == "" {
				option.Value = record.ID()
			}
			option.Label = table.Text(v[s.Label])
		default:
			option.Value = table.Text(v)
		}
		if option.Value == "" {
			continue
		}
		if option.Label == "" {
			option.Label = option.Value
		}
		options = append(options, option)
	}
	return options
}

// ResolveOptions returns a copy of fields whose sourced selects carry the
// options built from items, keyed by collection. Collections missing from
// items leave the declared options untouched.
func ResolveOptions(fields []model.Field, items map[string][]any) []model.Field {
	out := model.CloneFields(fields)
	resolveOptions(out, items)
	return out
}

func resolveOptions(fields []model.Field, items map[string][]any) {
	for i := range fields {
		if fields[i].IsGroup() {
			resolveOptions(fields[i].Nested, items)
			continue
		}
		source, ok := SourceOf(fields[i])
		if !ok {
			continue
		}
		if list, ok := items[source.Resource]; ok {
			fields[i].Options = source.Options(list)
		}
	}
}
