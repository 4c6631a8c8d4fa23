package parser_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-farmdesk/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
)

const contract = `
openapi: 3.0.3
info:
  title: Fazenda
  version: "1.0"
paths:
  /lotes:
    post:
      operationId: createLote
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [nome]
              properties:
                nome:
                  type: string
                  x-farmdesk-label: Nome do Lote
                dieta:
                  type: string
                  x-farmdesk-type: select
      responses:
        "201":
          description: created
  /lotes/{id}:
    delete:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "204":
          description: deleted
`

func TestOperationsExtractsRequestBodies(t *testing.T) {
	doc := pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFile("farm.yaml"), []byte(contract))
	p := parser.New(pkgopenapi.NewParserOptions())

	ops, err := p.Operations(context.Background(), doc)
	if err != nil {
		t.Fatalf("Operations: %v", err)
	}

	create, ok := ops["createLote"]
	if !ok {
		t.Fatalf("createLote missing, got %v", ops)
	}
	if create.Method != "POST" || create.Path != "/lotes" {
		t.Fatalf("unexpected operation %s %s", create.Method, create.Path)
	}
	nome := create.RequestBody.Properties["nome"]
	if nome.Extensions["x-farmdesk-label"] != "Nome do Lote" {
		t.Fatalf("label extension lost: %#v", nome.Extensions)
	}
	if len(create.RequestBody.Required) != 1 || create.RequestBody.Required[0] != "nome" {
		t.Fatalf("required list lost: %v", create.RequestBody.Required)
	}
	if _, ok := ops["delete:/lotes/{id}"]; !ok {
		t.Fatalf("expected synthesized id for delete operation")
	}
}

func TestOperationsRejectsEmptyDocument(t *testing.T) {
	p := parser.New(pkgopenapi.NewParserOptions())
	if _, err := p.Operations(context.Background(), pkgopenapi.Document{}); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestOperationsHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFile("farm.yaml"), []byte(contract))
	if _, err := parser.New(pkgopenapi.NewParserOptions()).Operations(ctx, doc); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestOperationsRejectsDuplicateIDs(t *testing.T) {
	const dup = `
openapi: 3.0.3
info:
  title: Fazenda
  version: "1.0"
paths:
  /lotes:
    post:
      operationId: saveLote
      responses:
        "201":
          description: created
  /lotes/{id}:
    put:
      operationId: saveLote
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: updated
`
	doc := pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFile("farm.yaml"), []byte(dup))
	_, err := parser.New(pkgopenapi.NewParserOptions(pkgopenapi.WithValidation(false))).Operations(context.Background(), doc)
	if err == nil || !strings.Contains(err.Error(), `"saveLote"`) {
		t.Fatalf("expected duplicate operation error, got %v", err)
	}
}
