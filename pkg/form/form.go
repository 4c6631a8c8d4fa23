package form

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/goliatone/go-farmdesk/pkg/group"
	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/overlay"
)

const (
	defaultID   = "fd-form"
	labelCreate = "Cadastrar"
	labelEdit   = "Salvar"
	labelCancel = "Cancelar"
)

// SubmitFunc receives the aggregated values of a submitted form.
type SubmitFunc func(ctx context.Context, values model.Values) error

// Form holds the schema and edit state of one generic form. It is not safe
// for concurrent use; hosts serialise access per user session.
type Form struct {
	id          string
	title       string
	submitLabel string
	mode        Mode
	fields      []model.Field
	record      map[string]any
	values      model.Values

	onSubmit SubmitFunc
	onClose  func(Reason)

	open     bool
	bus      *overlay.Bus
	detector *overlay.Detector
}

// New validates the schema and initialises values from the record, if any,
// and the field defaults.
func New(fields []model.Field, onSubmit SubmitFunc, options ...Option) (*Form, error) {
	if err := model.ValidateFields(fields); err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	f := &Form{
		id:       defaultID,
		fields:   model.CloneFields(fields),
		onSubmit: onSubmit,
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	f.values = Initialize(f.fields, f.record)
	return f, nil
}

// Initialize computes the starting values for a schema. Record values win
// over field defaults.
func Initialize(fields []model.Field, record map[string]any) model.Values {
	values := make(model.Values, len(fields))
	for _, field := range fields {
		seed := field.Default
		if raw, ok := record[field.Name]; ok {
			seed = raw
		}
		values[field.Name] = model.Initial(field, seed)
	}
	return values
}

// ID returns the element identifier of the form.
func (f *Form) ID() string { return f.id }

// Mode reports whether the form creates or edits.
func (f *Form) Mode() Mode { return f.mode }

// Fields returns a copy of the schema.
func (f *Form) Fields() []model.Field { return model.CloneFields(f.fields) }

// Record returns the record the form was seeded with.
func (f *Form) Record() map[string]any { return f.record }

// IsOpen reports whether the form is showing.
func (f *Form) IsOpen() bool { return f.open }

// Values returns a deep copy of the current state.
func (f *Form) Values() model.Values { return f.values.Clone() }

// Value returns the current state of one top-level field.
func (f *Form) Value(name string) (model.Value, bool) {
	v, ok := f.values[name]
	return v, ok
}

// SetFields replaces the schema. Values are re-initialised only when the
// schema actually differs, so repeated calls with an equal schema keep edits.
func (f *Form) SetFields(fields []model.Field) error {
	if reflect.DeepEqual(f.fields, fields) {
		return nil
	}
	return f.Reset(fields, f.record, f.mode)
}

// Reset swaps schema, record and mode, discarding every residual edit.
func (f *Form) Reset(fields []model.Field, record map[string]any, mode Mode) error {
	if err := model.ValidateFields(fields); err != nil {
		return fmt.Errorf("form: %w", err)
	}
	f.fields = model.CloneFields(fields)
	f.record = record
	f.mode = mode
	f.values = Initialize(f.fields, f.record)
	return nil
}

// Open shows the form and starts outside-interaction detection.
func (f *Form) Open() {
	if f.open {
		return
	}
	f.open = true
	if f.bus != nil {
		f.detector = f.bus.Acquire(overlay.Within(f.id), func(overlay.Event) {
			f.Dismiss()
		})
	}
}

// Dismiss closes the form without submitting, discarding uncommitted edits.
func (f *Form) Dismiss() {
	f.close(ReasonDismissed)
}

// Cancel closes the form from its own cancel control.
func (f *Form) Cancel() {
	f.close(ReasonCancelled)
}

// Edit overwrites one top-level scalar with parsed user input.
func (f *Form) Edit(name, raw string) error {
	if !f.open {
		return ErrClosed
	}
	field, ok := model.Lookup(f.fields, name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if field.IsGroup() {
		return fmt.Errorf("%w: %s is a group", ErrPath, name)
	}
	f.values[name] = model.ParseScalar(field, raw)
	return nil
}

// EditPath edits a scalar addressed by a dotted path such as
// "modulos.0.componentes.1.quantidade".
func (f *Form) EditPath(path, raw string) error {
	segments := strings.Split(path, ".")
	if len(segments) == 1 {
		return f.Edit(path, raw)
	}
	if !f.open {
		return ErrClosed
	}
	if len(segments)%2 == 0 {
		return fmt.Errorf("%w: %q does not end at a field", ErrPath, path)
	}
	g, index, err := f.walk(segments[:len(segments)-1])
	if err != nil {
		return err
	}
	if err := g.Set(index, segments[len(segments)-1], raw); err != nil {
		return fmt.Errorf("form: edit %s: %w", path, err)
	}
	return nil
}

// Group returns the repeatable group addressed by path ("modulos" or
// "modulos.0.componentes"), bound to this form's state.
func (f *Form) Group(path string) (*group.Group, error) {
	if !f.open {
		return nil, ErrClosed
	}
	segments := strings.Split(path, ".")
	if len(segments)%2 == 0 {
		return nil, fmt.Errorf("%w: %q does not end at a group", ErrPath, path)
	}
	root, err := f.rootGroup(segments[0])
	if err != nil {
		return nil, err
	}
	if len(segments) == 1 {
		return root, nil
	}
	parent, index, err := f.walkFrom(root, segments[1:len(segments)-1])
	if err != nil {
		return nil, err
	}
	child, err := parent.Nested(index, segments[len(segments)-1])
	if err != nil {
		return nil, fmt.Errorf("form: group %s: %w", path, err)
	}
	return child, nil
}

// AddRow appends an empty row to the group at path.
func (f *Form) AddRow(path string) error {
	g, err := f.Group(path)
	if err != nil {
		return err
	}
	g.Add()
	return nil
}

// RemoveRow removes the row at index from the group at path. Removing an
// index that no longer exists is a no-op.
func (f *Form) RemoveRow(path string, index int) error {
	g, err := f.Group(path)
	if err != nil {
		return err
	}
	g.Remove(index)
	return nil
}

// Validate checks required fields, including those inside group rows.
func (f *Form) Validate() error {
	failures := make(map[string][]string)
	collectMissing(failures, "", f.fields, f.values)
	if len(failures) == 0 {
		return nil
	}
	return &ValidationError{Fields: failures}
}

// Submit validates and hands the values to the handler, then closes the form
// whatever the handler returned. A validation failure leaves the form open
// and never reaches the handler.
func (f *Form) Submit(ctx context.Context) error {
	if !f.open {
		return ErrClosed
	}
	if err := f.Validate(); err != nil {
		return err
	}
	values := f.values.Clone()

	var handlerErr error
	if f.onSubmit != nil {
		handlerErr = f.onSubmit(ctx, values)
	}
	f.close(ReasonSubmitted)
	if handlerErr != nil {
		return fmt.Errorf("form: submit: %w", handlerErr)
	}
	return nil
}

// View returns a snapshot for renderers.
func (f *Form) View() View {
	submit := f.submitLabel
	if submit == "" {
		submit = labelCreate
		if f.mode == ModeEdit {
			submit = labelEdit
		}
	}
	return View{
		ID:          f.id,
		Title:       f.title,
		SubmitLabel: submit,
		CancelLabel: labelCancel,
		Mode:        f.mode,
		Open:        f.open,
		Fields:      model.CloneFields(f.fields),
		Values:      f.values.Clone(),
	}
}

func (f *Form) close(reason Reason) {
	if !f.open {
		return
	}
	f.open = false
	f.detector.Release()
	f.detector = nil
	f.values = Initialize(f.fields, f.record)
	if f.onClose != nil {
		f.onClose(reason)
	}
}

func (f *Form) rootGroup(name string) (*group.Group, error) {
	field, ok := model.Lookup(f.fields, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if !field.IsGroup() {
		return nil, fmt.Errorf("%w: %s is not a group", ErrPath, name)
	}
	return group.New(field, f.values[name].RowsList(), func(name string, rows []model.Values) {
		f.values[name] = model.Rows(rows...)
	})
}

// walk resolves "group.index[.group.index...]" to the innermost group and row.
func (f *Form) walk(segments []string) (*group.Group, int, error) {
	root, err := f.rootGroup(segments[0])
	if err != nil {
		return nil, 0, err
	}
	return f.walkFrom(root, segments[1:])
}

func (f *Form) walkFrom(g *group.Group, segments []string) (*group.Group, int, error) {
	index, err := parseIndex(segments[0])
	if err != nil {
		return nil, 0, err
	}
	for i := 1; i+1 < len(segments); i += 2 {
		child, err := g.Nested(index, segments[i])
		if err != nil {
			return nil, 0, fmt.Errorf("form: %w", err)
		}
		next, err := parseIndex(segments[i+1])
		if err != nil {
			return nil, 0, err
		}
		g, index = child, next
	}
	return g, index, nil
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("%w: %q is not a row index", ErrPath, raw)
	}
	return index, nil
}

func collectMissing(out map[string][]string, prefix string, fields []model.Field, values model.Values) {
	for _, field := range fields {
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}
		value := values[field.Name]
		if field.Required && value.IsEmpty() {
			out[path] = append(out[path], RequiredMessage)
		}
		if field.IsGroup() {
			for i, row := range value.RowsList() {
				collectMissing(out, path+"."+strconv.Itoa(i), field.Nested, row)
			}
		}
	}
}
