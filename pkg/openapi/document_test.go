package openapi

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewOperation(t *testing.T) {
	op, err := NewOperation("updateLote", "put", "/lotes/{id}", Schema{})
	if err != nil {
		t.Fatalf("new operation: %v", err)
	}
	if op.Method != "PUT" || op.Collection() != "lotes" {
		t.Fatalf("unexpected operation %+v (collection %q)", op, op.Collection())
	}
	if op.HasForm() {
		t.Fatalf("empty body has no form")
	}

	for _, tc := range []struct{ id, method, path string }{
		{"", "post", "/lotes"},
		{"createLote", "", "/lotes"},
		{"createLote", "post", ""},
	} {
		if _, err := NewOperation(tc.id, tc.method, tc.path, Schema{}); err == nil {
			t.Fatalf("expected error for %+v", tc)
		}
	}
}

func TestOperationCollection(t *testing.T) {
	cases := map[string]string{
		"/producao-leite/media": "producao-leite",
		"/animais":              "animais",
		"dietas/{id}":           "dietas",
		"/":                     "",
	}
	for path, want := range cases {
		if got := (Operation{Path: path}).Collection(); got != want {
			t.Fatalf("Collection(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestSchemaHints(t *testing.T) {
	schema := Schema{
		Type: "string",
		Extensions: map[string]any{
			"x-farmdesk-label":        "  Dieta ",
			"x-farmdesk-order":        float64(2),
			"x-farmdesk-options-from": "dietas",
		},
	}
	if got := schema.HintString("label"); got != "Dieta" {
		t.Fatalf("label hint = %q", got)
	}
	if got := schema.HintString("order"); got != "" {
		t.Fatalf("non-string hint should read as empty, got %q", got)
	}
	if v, ok := schema.Hint("order"); !ok || v != float64(2) {
		t.Fatalf("order hint = %v, %v", v, ok)
	}
	if diff := cmp.Diff([]string{"label", "options-from", "order"}, schema.Hints()); diff != "" {
		t.Fatalf("hints mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDocumentCopiesPayload(t *testing.T) {
	raw := []byte("openapi: 3.0.3")
	doc, err := NewDocument(SourceFromFile("api/openapi.yaml"), raw)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	raw[0] = 'X'
	if string(doc.Raw()) != "openapi: 3.0.3" || doc.Location() != "api/openapi.yaml" {
		t.Fatalf("unexpected document %q at %q", doc.Raw(), doc.Location())
	}
	if _, err := NewDocument(SourceFromFS("openapi.yaml"), nil); err == nil {
		t.Fatalf("expected empty document error")
	}
}

func TestSources(t *testing.T) {
	got := []string{
		SourceFromFile("api/../api/openapi.yaml").(fmt.Stringer).String(),
		SourceFromFS("/openapi.yaml").(fmt.Stringer).String(),
	}
	if diff := cmp.Diff([]string{"file:api/openapi.yaml", "fs:openapi.yaml"}, got); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
	if !NewParserOptions().Validate || NewParserOptions(WithValidation(false)).Validate {
		t.Fatalf("validation should default on and be switchable off")
	}
}
