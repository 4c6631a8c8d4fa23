package vanilla

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-farmdesk/pkg/model"
)

const (
	selectPlaceholder = "Selecione"
	actionsHeader     = "Ações"
	removeLabel       = "X"
	defaultNumberMin  = "0"
)

// fieldRenderer walks a schema and writes one control per field. Groups
// recurse into a table of rows, so nesting depth is only bounded by the
// schema itself. Control names are dotted value paths ("modulos.0.categoria")
// and every element id sits under the form id so outside-click detection
// treats the whole tree as inside.
type fieldRenderer struct {
	formID string
	errors map[string][]string
	policy *bluemonday.Policy
	b      strings.Builder
}

func newFieldRenderer(formID string, errors map[string][]string, policy *bluemonday.Policy) *fieldRenderer {
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}
	return &fieldRenderer{formID: formID, errors: errors, policy: policy}
}

func (r *fieldRenderer) render(fields []model.Field, values model.Values) string {
	for _, field := range fields {
		r.field(field, field.Name, values[field.Name])
	}
	return r.b.String()
}

// field writes the labelled wrapper of a top-level control.
func (r *fieldRenderer) field(field model.Field, path string, value model.Value) {
	r.b.WriteString(`<div class="fd-field" id="`)
	r.b.WriteString(r.elementID(path + "/field"))
	r.b.WriteString(`">`)

	if field.IsGroup() {
		r.b.WriteString(`<span class="fd-label">`)
	} else {
		r.b.WriteString(`<label class="fd-label" for="`)
		r.b.WriteString(r.elementID(path))
		r.b.WriteString(`">`)
	}
	r.b.WriteString(r.label(field))
	if field.Required {
		r.b.WriteString(`<span class="fd-required">*</span>`)
	}
	if field.IsGroup() {
		r.b.WriteString(`</span>`)
	} else {
		r.b.WriteString(`</label>`)
	}

	r.control(field, path, value)
	r.fieldErrors(path)
	r.b.WriteString(`</div>`)
}

func (r *fieldRenderer) control(field model.Field, path string, value model.Value) {
	switch field.Type {
	case model.FieldTypeGroup:
		r.group(field, path, value.RowsList())
	case model.FieldTypeSelect:
		r.selectControl(field, path, value.Text())
	case model.FieldTypeNumber:
		r.input("number", field, path, value.Text())
	case model.FieldTypeDate:
		r.input("date", field, path, value.Text())
	case model.FieldTypeTime:
		r.input("time", field, path, value.Text())
	default:
		r.input("text", field, path, value.Text())
	}
}

func (r *fieldRenderer) input(kind string, field model.Field, path, value string) {
	r.b.WriteString(`<input class="fd-input" type="`)
	r.b.WriteString(kind)
	r.b.WriteString(`"`)
	r.attrs(field, path)
	if kind == "number" {
		lower := defaultNumberMin
		if v, ok := field.Metadata[model.MetadataMin]; ok {
			lower = v
		}
		if lower != "" {
			r.b.WriteString(` min="`)
			r.b.WriteString(html.EscapeString(lower))
			r.b.WriteString(`"`)
		}
		r.b.WriteString(` step="any"`)
	}
	r.b.WriteString(` value="`)
	r.b.WriteString(html.EscapeString(value))
	r.b.WriteString(`"`)
	if field.Placeholder != "" {
		r.b.WriteString(` placeholder="`)
		r.b.WriteString(html.EscapeString(field.Placeholder))
		r.b.WriteString(`"`)
	}
	r.b.WriteString(`>`)
}

func (r *fieldRenderer) selectControl(field model.Field, path, value string) {
	r.b.WriteString(`<select class="fd-input"`)
	r.attrs(field, path)
	r.b.WriteString(`><option value="" disabled`)
	if value == "" {
		r.b.WriteString(` selected`)
	}
	r.b.WriteString(`>`)
	r.b.WriteString(selectPlaceholder)
	r.b.WriteString(`</option>`)
	for _, option := range field.Options {
		r.b.WriteString(`<option value="`)
		r.b.WriteString(html.EscapeString(option.Value))
		r.b.WriteString(`"`)
		if value != "" && option.Value == value {
			r.b.WriteString(` selected`)
		}
		r.b.WriteString(`>`)
		r.b.WriteString(r.policy.Sanitize(option.Label))
		r.b.WriteString(`</option>`)
	}
	r.b.WriteString(`</select>`)
}

// group writes the editable table of a repeating group: one header per
// nested field, one row per value with its remove control, and the add
// control. Cells recurse through control, so nested groups render inline.
func (r *fieldRenderer) group(field model.Field, path string, rows []model.Values) {
	r.b.WriteString(`<div class="fd-group" id="`)
	r.b.WriteString(r.elementID(path))
	r.b.WriteString(`"><table class="fd-group-table"><thead><tr>`)
	for _, nested := range field.Nested {
		r.b.WriteString(`<th>`)
		r.b.WriteString(r.label(nested))
		r.b.WriteString(`</th>`)
	}
	r.b.WriteString(`<th>`)
	r.b.WriteString(actionsHeader)
	r.b.WriteString(`</th></tr></thead><tbody>`)

	for i, row := range rows {
		rowPath := path + "." + strconv.Itoa(i)
		r.b.WriteString(`<tr id="`)
		r.b.WriteString(r.elementID(rowPath))
		r.b.WriteString(`">`)
		for _, nested := range field.Nested {
			cellPath := rowPath + "." + nested.Name
			r.b.WriteString(`<td>`)
			r.control(nested, cellPath, row[nested.Name])
			r.fieldErrors(cellPath)
			r.b.WriteString(`</td>`)
		}
		r.b.WriteString(`<td><button class="fd-remove" type="submit" name="_op" value="remove:`)
		r.b.WriteString(html.EscapeString(path))
		r.b.WriteString(`:`)
		r.b.WriteString(strconv.Itoa(i))
		r.b.WriteString(`" formnovalidate id="`)
		r.b.WriteString(r.elementID(rowPath + "/remove"))
		r.b.WriteString(`">`)
		r.b.WriteString(removeLabel)
		r.b.WriteString(`</button></td></tr>`)
	}

	r.b.WriteString(`</tbody></table><button class="fd-add" type="submit" name="_op" value="add:`)
	r.b.WriteString(html.EscapeString(path))
	r.b.WriteString(`" formnovalidate id="`)
	r.b.WriteString(r.elementID(path + "/add"))
	r.b.WriteString(`">`)
	r.b.WriteString(r.policy.Sanitize(field.AddLabel))
	r.b.WriteString(`</button></div>`)
}

func (r *fieldRenderer) attrs(field model.Field, path string) {
	r.b.WriteString(` id="`)
	r.b.WriteString(r.elementID(path))
	r.b.WriteString(`" name="`)
	r.b.WriteString(html.EscapeString(path))
	r.b.WriteString(`"`)
	if field.Required {
		r.b.WriteString(` required`)
	}
	if len(r.errors[path]) > 0 {
		r.b.WriteString(` aria-invalid="true"`)
	}
}

func (r *fieldRenderer) fieldErrors(path string) {
	for _, message := range r.errors[path] {
		r.b.WriteString(`<p class="fd-field-error">`)
		r.b.WriteString(html.EscapeString(message))
		r.b.WriteString(`</p>`)
	}
}

func (r *fieldRenderer) label(field model.Field) string {
	label := field.Label
	if strings.TrimSpace(label) == "" {
		label = model.DefaultLabeler(field.Name)
	}
	return r.policy.Sanitize(label)
}

func (r *fieldRenderer) elementID(suffix string) string {
	return html.EscapeString(r.formID + "/" + suffix)
}
