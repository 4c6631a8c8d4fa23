package pages

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

// ActionKind names what a row action does.
type ActionKind string

const (
	ActionEdit     ActionKind = "edit"
	ActionDelete   ActionKind = "delete"
	ActionNavigate ActionKind = "navigate"
)

// Page is one entity screen.
type Page struct {
	Name     string
	Resource string
	Title    string
	Nav      NavConfig
	Form     FormConfig
	Fields   []model.Field
	Columns  []ColumnConfig
	Actions  []ActionConfig
	// Source is the file the page was read from.
	Source string
}

// NavConfig is the sidebar entry of a page. Icon holds sanitized SVG.
type NavConfig struct {
	Label string `json:"label" yaml:"label"`
	Order int    `json:"order" yaml:"order"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// FormConfig holds the modal titles and the label of the create button.
type FormConfig struct {
	CreateTitle string `json:"createTitle" yaml:"createTitle"`
	EditTitle   string `json:"editTitle,omitempty" yaml:"editTitle,omitempty"`
	NewLabel    string `json:"newLabel,omitempty" yaml:"newLabel,omitempty"`
}

// ColumnConfig maps a header to a record accessor. Format names one of the
// built-in cell formats ("date", "currency", "decimal"); empty means plain
// text.
type ColumnConfig struct {
	Header   string `json:"header" yaml:"header"`
	Accessor string `json:"accessor" yaml:"accessor"`
	Format   string `json:"format,omitempty" yaml:"format,omitempty"`
}

// ActionConfig is one row menu entry. Href applies to navigate actions and
// may reference the record id as {id}. A non-empty Confirm makes the entry
// wait for the user to accept that question before it runs.
type ActionConfig struct {
	Kind    ActionKind `json:"kind" yaml:"kind"`
	Label   string     `json:"label" yaml:"label"`
	Href    string     `json:"href,omitempty" yaml:"href,omitempty"`
	Confirm string     `json:"confirm,omitempty" yaml:"confirm,omitempty"`
}

// URL expands Href for a record.
func (a ActionConfig) URL(record table.Record) string {
	return strings.ReplaceAll(a.Href, "{id}", url.QueryEscape(record.ID()))
}

// FormTitle returns the form heading for create or edit.
func (p Page) FormTitle(editing bool) string {
	if editing && p.Form.EditTitle != "" {
		return p.Form.EditTitle
	}
	return p.Form.CreateTitle
}

// NewLabel returns the label of the create button.
func (p Page) NewLabel() string {
	if p.Form.NewLabel != "" {
		return p.Form.NewLabel
	}
	return p.Form.CreateTitle
}

// ListColumns converts the column configuration into list columns.
func (p Page) ListColumns() []table.Column {
	columns := make([]table.Column, 0, len(p.Columns))
	for _, column := range p.Columns {
		columns = append(columns, table.Column{
			Header:   column.Header,
			Accessor: column.Accessor,
			Format:   formatter(column.Format),
		})
	}
	return columns
}

func (p Page) clone() Page {
	out := p
	out.Fields = model.CloneFields(p.Fields)
	out.Columns = append([]ColumnConfig(nil), p.Columns...)
	out.Actions = append([]ActionConfig(nil), p.Actions...)
	return out
}
