package model_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-farmdesk/pkg/model"
)

func TestInitialPreservesNumericZero(t *testing.T) {
	field := model.Field{Name: "producaoDiariaLeite", Type: model.FieldTypeNumber}

	got := model.Initial(field, float64(0))
	if diff := cmp.Diff(model.Number(0), got); diff != "" {
		t.Fatalf("zero default mismatch (-want +got):\n%s", diff)
	}
	if got.Text() != "0" {
		t.Fatalf("expected displayed value 0, got %q", got.Text())
	}
	if got := model.Initial(field, 0); got.Text() != "0" {
		t.Fatalf("int zero lost, got %q", got.Text())
	}
}

func TestInitialRules(t *testing.T) {
	cases := []struct {
		name  string
		field model.Field
		seed  any
		want  model.Value
	}{
		{"date from timestamp", model.Field{Name: "d", Type: model.FieldTypeDate}, "2024-03-05T14:30:00.000Z", model.String("2024-03-05")},
		{"date from time", model.Field{Name: "d", Type: model.FieldTypeDate}, time.Date(2023, 12, 1, 8, 0, 0, 0, time.UTC), model.String("2023-12-01")},
		{"date empty", model.Field{Name: "d", Type: model.FieldTypeDate}, "", model.String("")},
		{"text nil", model.Field{Name: "t", Type: model.FieldTypeText}, nil, model.String("")},
		{"text value", model.Field{Name: "t", Type: model.FieldTypeText}, "Mimosa", model.String("Mimosa")},
		{"number value", model.Field{Name: "n", Type: model.FieldTypeNumber}, 21.5, model.Number(21.5)},
		{"number missing", model.Field{Name: "n", Type: model.FieldTypeNumber}, nil, model.String("")},
		{"select object", model.Field{Name: "dieta", Type: model.FieldTypeSelect, Options: []model.Option{}}, map[string]any{"_id": "d1", "nome": "A"}, model.String("d1")},
		{"select false", model.Field{Name: "s", Type: model.FieldTypeSelect, Options: []model.Option{}}, false, model.String("")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := model.Initial(tc.field, tc.seed)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("initial mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveNestedRows(t *testing.T) {
	fields := dietFields()
	raw := []any{
		map[string]any{
			"categoria": "Volumoso",
			"componentes": []any{
				map[string]any{"nome": "Silagem", "quantidade": float64(12)},
			},
		},
	}

	got := model.Resolve(fields[1], raw)
	want := model.Rows(model.Values{
		"categoria": model.String("Volumoso"),
		"componentes": model.Rows(model.Values{
			"nome":       model.String("Silagem"),
			"quantidade": model.Number(12),
		}),
	})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseScalar(t *testing.T) {
	number := model.Field{Name: "q", Type: model.FieldTypeNumber}
	if got := model.ParseScalar(number, "12,5"); !got.Equal(model.Number(12.5)) {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if got := model.ParseScalar(number, "abc"); !got.Equal(model.String("abc")) {
		t.Fatalf("expected raw text kept, got %v", got)
	}
	if got := model.ParseScalar(number, " "); !got.Equal(model.String("")) {
		t.Fatalf("expected empty, got %v", got)
	}
	text := model.Field{Name: "t", Type: model.FieldTypeText}
	if got := model.ParseScalar(text, "10"); !got.Equal(model.String("10")) {
		t.Fatalf("text must stay string, got %v", got)
	}
}
