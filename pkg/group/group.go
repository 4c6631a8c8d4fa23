// Package group implements the repeatable group: an ordered list of rows that
// share one nested field schema. Every mutation reports the full updated
// sequence through the change callback, and nested groups report upward as a
// single field edit on their parent row.
package group

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-farmdesk/pkg/model"
)

var (
	// ErrIndex reports a row index outside the current sequence.
	ErrIndex = errors.New("group: row index out of range")
	// ErrUnknownField reports a field name absent from the row schema.
	ErrUnknownField = errors.New("group: unknown field")
)

// ChangeFunc receives the group name and the complete row sequence after a
// mutation.
type ChangeFunc func(name string, rows []model.Values)

// Group is the editable state of one repeating-group field. Mutations are
// copy-on-write: previously reported sequences and untouched rows are never
// modified.
type Group struct {
	field    model.Field
	rows     []model.Values
	onChange ChangeFunc
}

// New binds a repeating-group field to its current rows.
func New(field model.Field, rows []model.Values, onChange ChangeFunc) (*Group, error) {
	if !field.IsGroup() {
		return nil, fmt.Errorf("%w: %q is %s, not %s", model.ErrInvalidField, field.Name, field.Type, model.FieldTypeGroup)
	}
	if err := field.Validate(); err != nil {
		return nil, err
	}
	current := make([]model.Values, len(rows))
	copy(current, rows)
	return &Group{field: field, rows: current, onChange: onChange}, nil
}

// EmptyRow builds a row with type-appropriate blanks: "" for scalars and an
// empty sequence for nested groups.
func EmptyRow(fields []model.Field) model.Values {
	row := make(model.Values, len(fields))
	for _, field := range fields {
		row[field.Name] = model.EmptyValue(field)
	}
	return row
}

// Name returns the group field name.
func (g *Group) Name() string { return g.field.Name }

// Field returns the group schema.
func (g *Group) Field() model.Field { return g.field }

// Fields returns the row schema.
func (g *Group) Fields() []model.Field { return g.field.Nested }

// AddLabel returns the label for the add control.
func (g *Group) AddLabel() string { return g.field.AddLabel }

// Len returns the number of rows.
func (g *Group) Len() int { return len(g.rows) }

// Rows returns the current sequence. The slice is a copy; rows are shared
// and must be treated as read-only.
func (g *Group) Rows() []model.Values {
	out := make([]model.Values, len(g.rows))
	copy(out, g.rows)
	return out
}

// Add appends an empty row and returns the new sequence.
func (g *Group) Add() []model.Values {
	next := make([]model.Values, len(g.rows), len(g.rows)+1)
	copy(next, g.rows)
	next = append(next, EmptyRow(g.field.Nested))
	g.commit(next)
	return g.Rows()
}

// Remove excises the row at index, preserving the order of the rest. An index
// outside the sequence is a no-op and reports false without notifying.
func (g *Group) Remove(index int) ([]model.Values, bool) {
	if index < 0 || index >= len(g.rows) {
		return g.Rows(), false
	}
	next := make([]model.Values, 0, len(g.rows)-1)
	next = append(next, g.rows[:index]...)
	next = append(next, g.rows[index+1:]...)
	g.commit(next)
	return g.Rows(), true
}

// Edit replaces one field of one row.
func (g *Group) Edit(index int, name string, value model.Value) error {
	if index < 0 || index >= len(g.rows) {
		return fmt.Errorf("%w: %s[%d]", ErrIndex, g.field.Name, index)
	}
	if _, ok := model.Lookup(g.field.Nested, name); !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, g.field.Name, name)
	}

	row := make(model.Values, len(g.rows[index])+1)
	for k, v := range g.rows[index] {
		row[k] = v
	}
	row[name] = value

	next := make([]model.Values, len(g.rows))
	copy(next, g.rows)
	next[index] = row
	g.commit(next)
	return nil
}

// Set parses raw input for a scalar field and applies it with Edit.
func (g *Group) Set(index int, name, raw string) error {
	field, ok := model.Lookup(g.field.Nested, name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, g.field.Name, name)
	}
	if field.IsGroup() {
		return fmt.Errorf("%w: %s.%s is a group", model.ErrInvalidField, g.field.Name, name)
	}
	return g.Edit(index, name, model.ParseScalar(field, raw))
}

// Nested returns the group held by a repeating-group field of one row. Its
// mutations propagate to this group as a single Edit of that field.
func (g *Group) Nested(index int, name string) (*Group, error) {
	if index < 0 || index >= len(g.rows) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrIndex, g.field.Name, index)
	}
	field, ok := model.Lookup(g.field.Nested, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, g.field.Name, name)
	}
	current := g.rows[index][name].RowsList()
	return New(field, current, func(_ string, rows []model.Values) {
		// The parent sequence may have changed since the child was created;
		// a stale child edits by position like any other caller.
		_ = g.Edit(index, name, model.Rows(rows...))
	})
}

func (g *Group) commit(next []model.Values) {
	g.rows = next
	if g.onChange != nil {
		g.onChange(g.field.Name, g.Rows())
	}
}
