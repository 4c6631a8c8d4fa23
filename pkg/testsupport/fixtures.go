// Package testsupport holds fixtures shared by package tests: the bundled
// page definitions and the farm API contract.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/goliatone/go-farmdesk/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
	"github.com/goliatone/go-farmdesk/pkg/pages"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// ContractPath returns the path of api/openapi.yaml regardless of the
// package the test runs in.
func ContractPath() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("api", "openapi.yaml")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "api", "openapi.yaml")
}

// LoadContract reads the farm API contract.
func LoadContract(t *testing.T) pkgopenapi.Document {
	t.Helper()

	path := ContractPath()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read contract: %v", err)
	}
	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFile(path), data)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

// ContractOperations parses the farm API contract.
func ContractOperations(t *testing.T) map[string]pkgopenapi.Operation {
	t.Helper()

	ops, err := parser.New(pkgopenapi.NewParserOptions()).Operations(Context(), LoadContract(t))
	if err != nil {
		t.Fatalf("parse contract: %v", err)
	}
	return ops
}

// MustLoadPage returns one of the embedded page definitions.
func MustLoadPage(t *testing.T, name string) pages.Page {
	t.Helper()

	store, err := pages.Load(nil)
	if err != nil {
		t.Fatalf("load pages: %v", err)
	}
	page, err := store.Page(name)
	if err != nil {
		t.Fatalf("page %q: %v", name, err)
	}
	return page
}
