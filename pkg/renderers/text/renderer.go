// Package text renders forms and lists as plain-text tables for terminals and
// logs.
package text

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/goliatone/go-farmdesk/pkg/form"
	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/render"
	pkgtable "github.com/goliatone/go-farmdesk/pkg/table"
)

// Format selects how tables are written.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// Option configures the renderer.
type Option func(*Renderer)

// WithFormat selects table, markdown or csv output. Unknown formats fall
// back to table.
func WithFormat(format Format) Option {
	return func(r *Renderer) {
		switch format {
		case FormatMarkdown, FormatCSV:
			r.format = format
		default:
			r.format = FormatTable
		}
	}
}

// WithStyle overrides the go-pretty box style.
func WithStyle(style table.Style) Option {
	return func(r *Renderer) {
		r.style = style
	}
}

// Renderer implements render.Renderer with go-pretty tables.
type Renderer struct {
	format Format
	style  table.Style
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a text renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{format: FormatTable, style: table.StyleLight}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name implements render.Renderer.
func (r *Renderer) Name() string { return "text" }

// ContentType implements render.Renderer.
func (r *Renderer) ContentType() string {
	if r.format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// RenderList writes one table row per record followed by a row count. The
// actions column is left out since a terminal cannot open menus.
func (r *Renderer) RenderList(_ context.Context, view pkgtable.View, options render.RenderOptions) ([]byte, error) {
	headers := view.Headers
	if view.HasActions && len(headers) > 0 {
		headers = headers[:len(headers)-1]
	}

	t := r.newWriter()
	if options.Title != "" {
		t.SetTitle(options.Title)
	}
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, row := range view.Rows {
		cells := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row.Cells) {
				cells[i] = row.Cells[i]
			}
		}
		t.AppendRow(cells)
	}

	var b strings.Builder
	b.WriteString(r.output(t))
	b.WriteByte('\n')
	if r.format == FormatTable {
		fmt.Fprintf(&b, "(%d registros)\n", len(view.Rows))
	}
	return []byte(b.String()), nil
}

// RenderForm writes the current values as a label/value table. Repeating
// groups render as nested tables inside their cell.
func (r *Renderer) RenderForm(_ context.Context, view form.View, options render.RenderOptions) ([]byte, error) {
	t := r.newWriter()
	if view.Title != "" {
		t.SetTitle(view.Title)
	}
	t.AppendHeader(table.Row{"Campo", "Valor"})
	for _, field := range view.Fields {
		t.AppendRow(table.Row{label(field), r.cell(field, view.Values[field.Name])})
	}
	paths := make([]string, 0, len(options.Errors))
	for path := range options.Errors {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	if len(paths) > 0 {
		t.AppendSeparator()
	}
	for _, path := range paths {
		for _, message := range options.Errors[path] {
			t.AppendRow(table.Row{path, message})
		}
	}

	var b strings.Builder
	b.WriteString(r.output(t))
	b.WriteByte('\n')
	for _, message := range options.FormErrors {
		b.WriteString(message)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func (r *Renderer) cell(field model.Field, value model.Value) string {
	if !field.IsGroup() {
		if field.Type == model.FieldTypeSelect {
			for _, option := range field.Options {
				if option.Value == value.Text() {
					return option.Label
				}
			}
		}
		return value.Text()
	}
	rows := value.RowsList()
	if len(rows) == 0 {
		return "-"
	}

	nested := table.NewWriter()
	nested.SetStyle(r.style)
	header := make(table.Row, len(field.Nested))
	for i, child := range field.Nested {
		header[i] = label(child)
	}
	nested.AppendHeader(header)
	for _, row := range rows {
		cells := make(table.Row, len(field.Nested))
		for i, child := range field.Nested {
			cells[i] = r.cell(child, row[child.Name])
		}
		nested.AppendRow(cells)
	}
	return nested.Render()
}

func (r *Renderer) newWriter() table.Writer {
	t := table.NewWriter()
	t.SetStyle(r.style)
	return t
}

func (r *Renderer) output(t table.Writer) string {
	switch r.format {
	case FormatMarkdown:
		return t.RenderMarkdown()
	case FormatCSV:
		return t.RenderCSV()
	default:
		return t.Render()
	}
}

func label(field model.Field) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return model.DefaultLabeler(field.Name)
}
