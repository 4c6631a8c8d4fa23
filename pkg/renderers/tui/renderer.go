package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-farmdesk/pkg/form"
	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/render"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

const noneOption = "(nenhum)"

// Renderer drives forms and lists through terminal prompts. Forms are edited
// through the same form.Form operations the HTML host uses, so required
// checks and repeating-group semantics match.
type Renderer struct {
	driver   PromptDriver
	out      io.Writer
	format   Format
	messages Messages
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{format: FormatJSON, messages: defaultMessages}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format of RenderForm and RenderList.
func (r *Renderer) ContentType() string {
	if r.format == FormatText {
		return "text/plain"
	}
	return "application/json"
}

// RenderForm prompts for every field of view on a private form and returns
// the submitted values.
func (r *Renderer) RenderForm(ctx context.Context, view form.View, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	var submitted model.Values
	f, err := form.New(view.Fields, func(_ context.Context, values model.Values) error {
		submitted = values
		return nil
	}, form.WithMode(view.Mode), form.WithRecord(view.Values.Export(view.Fields)))
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	if err := r.Fill(ctx, f); err != nil {
		return nil, err
	}
	return r.serialize(view.Fields, submitted)
}

// RenderList asks the user to pick one row and returns its index and record
// id.
func (r *Renderer) RenderList(ctx context.Context, view table.View, options render.RenderOptions) ([]byte, error) {
	if len(view.Rows) == 0 {
		return nil, ErrNoRecords
	}
	labels := make([]string, len(view.Rows))
	for i, row := range view.Rows {
		labels[i] = strings.Join(row.Cells, " | ")
	}
	message := options.Title
	if message == "" {
		message = "Selecione um registro"
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: -1})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(view.Rows) {
		return nil, fmt.Errorf("tui: invalid selection %d", idx)
	}
	row := view.Rows[idx]
	if r.format == FormatText {
		return []byte(fmt.Sprintf("%d\t%s\n", row.Index, row.ID)), nil
	}
	return json.Marshal(map[string]any{"index": row.Index, "id": row.ID})
}

// Fill opens f when needed, prompts for each field and submits. Submission
// errors from the form's handler are returned as-is.
func (r *Renderer) Fill(ctx context.Context, f *form.Form) error {
	if r.driver == nil {
		return errors.New("tui: prompt driver is nil")
	}
	f.Open()
	for _, field := range f.Fields() {
		if err := r.promptField(ctx, f, field, field.Name); err != nil {
			f.Cancel()
			return err
		}
	}
	err := f.Submit(ctx)
	var (
		verr *form.ValidationError
		ferr render.FieldError
	)
	if errors.As(err, &verr) || (errors.As(err, &ferr) && len(ferr.FieldErrors()) > 0) {
		r.report(ctx, render.ErrorsFrom(f.Fields(), err))
	}
	return err
}

// report prints field messages by path, then messages no field claimed.
func (r *Renderer) report(ctx context.Context, mapping render.ErrorMapping) {
	paths := make([]string, 0, len(mapping.Fields))
	for path := range mapping.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		for _, message := range mapping.Fields[path] {
			_ = r.driver.Info(ctx, r.messages.Error+path+": "+message)
		}
	}
	for _, message := range mapping.Form {
		_ = r.driver.Info(ctx, r.messages.Error+message)
	}
}

func (r *Renderer) promptField(ctx context.Context, f *form.Form, field model.Field, path string) error {
	switch field.Type {
	case model.FieldTypeGroup:
		return r.promptGroup(ctx, f, field, path)
	case model.FieldTypeSelect:
		return r.promptSelect(ctx, f, field, path)
	default:
		return r.promptScalar(ctx, f, field, path)
	}
}

func (r *Renderer) promptScalar(ctx context.Context, f *form.Form, field model.Field, path string) error {
	current := valueAt(f.Values(), path)
	answer, err := r.driver.Input(ctx, InputConfig{
		Message:   displayLabel(field),
		Default:   current.Text(),
		Help:      field.Placeholder,
		Validator: scalarValidator(field),
	})
	if err != nil {
		return err
	}
	return f.EditPath(path, strings.TrimSpace(answer))
}

func (r *Renderer) promptSelect(ctx context.Context, f *form.Form, field model.Field, path string) error {
	current := valueAt(f.Values(), path).Text()

	var (
		labels []string
		values []string
	)
	if !field.Required {
		labels = append(labels, noneOption)
		values = append(values, "")
	}
	for _, option := range field.Options {
		labels = append(labels, option.Label)
		values = append(values, option.Value)
	}
	if len(labels) == 0 {
		return fmt.Errorf("tui: %s has no options", path)
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(field),
		Options:      labels,
		DefaultIndex: indexOf(values, current),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(values) {
		return fmt.Errorf("tui: invalid selection for %s", path)
	}
	return f.EditPath(path, values[idx])
}

// promptGroup re-prompts existing rows, offers to drop each one, then keeps
// adding rows while the user confirms.
func (r *Renderer) promptGroup(ctx context.Context, f *form.Form, field model.Field, path string) error {
	g, err := f.Group(path)
	if err != nil {
		return err
	}
	label := displayLabel(field)

	for i := 0; i < g.Len(); {
		keep, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("%s: manter linha %d?", label, i+1),
			Default: true,
		})
		if err != nil {
			return err
		}
		if !keep {
			if err := f.RemoveRow(path, i); err != nil {
				return err
			}
			g, err = f.Group(path)
			if err != nil {
				return err
			}
			continue
		}
		if err := r.promptRow(ctx, f, field, path, i); err != nil {
			return err
		}
		i++
	}

	addLabel := field.AddLabel
	if addLabel == "" {
		addLabel = "Adicionar " + label
	}
	for {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{Message: addLabel + "?"})
		if err != nil {
			return err
		}
		if !add {
			return nil
		}
		if err := f.AddRow(path); err != nil {
			return err
		}
		g, err = f.Group(path)
		if err != nil {
			return err
		}
		if err := r.promptRow(ctx, f, field, path, g.Len()-1); err != nil {
			return err
		}
	}
}

func (r *Renderer) promptRow(ctx context.Context, f *form.Form, field model.Field, path string, index int) error {
	_ = r.driver.Info(ctx, fmt.Sprintf("%s%s #%d", r.messages.Row, displayLabel(field), index+1))
	for _, nested := range field.Nested {
		if err := r.promptField(ctx, f, nested, path+"."+strconv.Itoa(index)+"."+nested.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) serialize(fields []model.Field, values model.Values) ([]byte, error) {
	exported := values.Export(fields)
	if r.format != FormatText {
		return json.Marshal(exported)
	}
	names := make([]string, 0, len(exported))
	for name := range exported {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		payload, err := json.Marshal(exported[name])
		if err != nil {
			return nil, fmt.Errorf("tui: encode %s: %w", name, err)
		}
		fmt.Fprintf(&b, "%s: %s\n", name, payload)
	}
	return []byte(b.String()), nil
}

func scalarValidator(field model.Field) func(string) error {
	return func(raw string) error {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			if field.Required {
				return errors.New(form.RequiredMessage)
			}
			return nil
		}
		switch field.Type {
		case model.FieldTypeNumber:
			if _, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64); err != nil {
				return fmt.Errorf("número inválido: %q", raw)
			}
		case model.FieldTypeDate:
			if _, err := time.Parse("2006-01-02", raw); err != nil {
				return fmt.Errorf("use o formato AAAA-MM-DD: %q", raw)
			}
		case model.FieldTypeTime:
			if _, err := time.Parse("15:04", raw); err != nil {
				return fmt.Errorf("use o formato HH:MM: %q", raw)
			}
		}
		return nil
	}
}

// valueAt follows a dotted path ("modulos.0.categoria") through values.
func valueAt(values model.Values, path string) model.Value {
	segments := strings.Split(path, ".")
	current := values
	for i := 0; i < len(segments); i++ {
		value, ok := current[segments[i]]
		if !ok {
			return model.Value{}
		}
		if i == len(segments)-1 {
			return value
		}
		index, err := strconv.Atoi(segments[i+1])
		rows := value.RowsList()
		if err != nil || index < 0 || index >= len(rows) {
			return model.Value{}
		}
		current = rows[index]
		i++
	}
	return model.Value{}
}

func displayLabel(field model.Field) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return model.DefaultLabeler(field.Name)
}
