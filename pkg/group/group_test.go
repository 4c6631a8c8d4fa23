package group_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-farmdesk/pkg/group"
	"github.com/goliatone/go-farmdesk/pkg/model"
)

func modulosField() model.Field {
	return model.Field{
		Name:     "modulos",
		Label:    "Módulos",
		Type:     model.FieldTypeGroup,
		AddLabel: "Adicionar Módulo",
		Nested: []model.Field{
			{Name: "categoria", Label: "Categoria", Type: model.FieldTypeSelect, Options: []model.Option{{Value: "Volumoso", Label: "Volumoso"}, {Value: "Concentrado", Label: "Concentrado"}}},
			{
				Name:     "componentes",
				Label:    "Componentes",
				Type:     model.FieldTypeGroup,
				AddLabel: "Adicionar Componente",
				Nested: []model.Field{
					{Name: "nome", Label: "Nome", Type: model.FieldTypeText},
					{Name: "quantidade", Label: "Quantidade", Type: model.FieldTypeNumber},
				},
			},
		},
	}
}

type recorder struct {
	calls [][]model.Values
}

func (r *recorder) onChange(_ string, rows []model.Values) {
	r.calls = append(r.calls, rows)
}

func (r *recorder) last(t *testing.T) []model.Values {
	t.Helper()
	if len(r.calls) == 0 {
		t.Fatalf("expected onChange to fire")
	}
	return r.calls[len(r.calls)-1]
}

func TestAddTwiceThenEditLeavesSiblingUntouched(t *testing.T) {
	rec := &recorder{}
	g, err := group.New(modulosField(), nil, rec.onChange)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	g.Add()
	g.Add()
	blank := model.Values{"categoria": model.String(""), "componentes": model.Rows()}
	if diff := cmp.Diff([]model.Values{blank, blank}, rec.last(t)); diff != "" {
		t.Fatalf("rows after add mismatch (-want +got):\n%s", diff)
	}

	if err := g.Edit(0, "categoria", model.String("Volumoso")); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	want := []model.Values{
		{"categoria": model.String("Volumoso"), "componentes": model.Rows()},
		blank,
	}
	if diff := cmp.Diff(want, rec.last(t)); diff != "" {
		t.Fatalf("rows after edit mismatch (-want +got):\n%s", diff)
	}
	if len(rec.calls) != 3 {
		t.Fatalf("expected 3 full-sequence notifications, got %d", len(rec.calls))
	}
}

func TestEditDoesNotMutatePreviousSequences(t *testing.T) {
	rec := &recorder{}
	g, _ := group.New(modulosField(), nil, rec.onChange)
	g.Add()
	before := rec.last(t)

	if err := g.Edit(0, "categoria", model.String("Concentrado")); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got := before[0]["categoria"].Str(); got != "" {
		t.Fatalf("previous sequence was mutated: %q", got)
	}
}

func TestRemovePreservesOrderAndIsNoOpOutOfRange(t *testing.T) {
	field := model.Field{
		Name:   "itens",
		Type:   model.FieldTypeGroup,
		Nested: []model.Field{{Name: "nome", Type: model.FieldTypeText}},
	}
	rows := []model.Values{
		{"nome": model.String("a")},
		{"nome": model.String("b")},
		{"nome": model.String("c")},
		{"nome": model.String("d")},
	}
	rec := &recorder{}
	g, err := group.New(field, rows, rec.onChange)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, ok := g.Remove(1)
	if !ok {
		t.Fatalf("expected removal")
	}
	want := []model.Values{rows[0], rows[2], rows[3]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("remove mismatch (-want +got):\n%s", diff)
	}

	if _, ok := g.Remove(2); !ok {
		t.Fatalf("expected removal of last row")
	}
	calls := len(rec.calls)
	if _, ok := g.Remove(2); ok {
		t.Fatalf("second removal of an absent row must be a no-op")
	}
	if len(rec.calls) != calls {
		t.Fatalf("no-op removal must not notify")
	}
	if g.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", g.Len())
	}
}

func TestNestedEditPropagatesAsSingleFieldEdit(t *testing.T) {
	rows := []model.Values{
		{"categoria": model.String("Volumoso"), "componentes": model.Rows()},
		{"categoria": model.String("Concentrado"), "componentes": model.Rows(model.Values{"nome": model.String("Milho"), "quantidade": model.Number(3)})},
	}
	rec := &recorder{}
	g, err := group.New(modulosField(), rows, rec.onChange)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	child, err := g.Nested(0, "componentes")
	if err != nil {
		t.Fatalf("Nested: %v", err)
	}
	child.Add()
	if err := child.Set(0, "quantidade", "12"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	want := []model.Values{
		{
			"categoria":   model.String("Volumoso"),
			"componentes": model.Rows(model.Values{"nome": model.String(""), "quantidade": model.Number(12)}),
		},
		rows[1],
	}
	if diff := cmp.Diff(want, rec.last(t)); diff != "" {
		t.Fatalf("propagated rows mismatch (-want +got):\n%s", diff)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("expected one parent notification per child change, got %d", len(rec.calls))
	}
}

func TestEditErrors(t *testing.T) {
	g, _ := group.New(modulosField(), nil, nil)
	if err := g.Edit(0, "categoria", model.String("x")); !errors.Is(err, group.ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
	g.Add()
	if err := g.Edit(0, "missing", model.String("x")); !errors.Is(err, group.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := g.Nested(0, "categoria"); !errors.Is(err, model.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField for scalar nested lookup, got %v", err)
	}
}

func TestNewRejectsScalarField(t *testing.T) {
	if _, err := group.New(model.Field{Name: "nome", Type: model.FieldTypeText}, nil, nil); !errors.Is(err, model.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}
