package farmdesk

import (
	"context"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-farmdesk/internal/lint"
)

func TestContractFSContainsContract(t *testing.T) {
	if _, err := fs.ReadFile(ContractFS(), ContractName); err != nil {
		t.Fatalf("expected contract to be readable: %v", err)
	}
}

func TestOperationsFromBundledContract(t *testing.T) {
	operations, err := Operations(context.Background(), ContractSource())
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	for _, id := range []string{"createAnimal", "createDieta", "createLote", "updateProducaoLeite"} {
		if _, ok := operations[id]; !ok {
			t.Fatalf("expected operation %q", id)
		}
	}
	if violations := lint.New().Operations(operations); len(violations) > 0 {
		t.Fatalf("bundled contract has lint violations: %v", violations)
	}
}

func TestNewOrchestratorReadsBundledContract(t *testing.T) {
	fields, err := NewOrchestrator().FieldsFromOpenAPI(context.Background(), ContractSource(), "createLote")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"nome", "dieta"}, names); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestEmbeddedBundles(t *testing.T) {
	if _, err := fs.Stat(EmbeddedTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("expected form template: %v", err)
	}
	if _, err := fs.Stat(EmbeddedPages(), "lotes.yaml"); err != nil {
		t.Fatalf("expected lotes page: %v", err)
	}
}
