package loader

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
)

const contract = "openapi: 3.0.3\n"

func TestLoadFromFS(t *testing.T) {
	l := New(pkgopenapi.NewLoaderOptions(pkgopenapi.WithFileSystem(fstest.MapFS{
		"openapi.yaml": {Data: []byte(contract)},
	})))

	doc, err := l.Load(context.Background(), pkgopenapi.SourceFromFS("openapi.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != contract || doc.Location() != "openapi.yaml" {
		t.Fatalf("unexpected document %q at %q", doc.Raw(), doc.Location())
	}

	_, err = l.Load(context.Background(), pkgopenapi.SourceFromFS("missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(path, []byte(contract), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := New(pkgopenapi.NewLoaderOptions()).Load(context.Background(), pkgopenapi.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != contract {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}
}

func TestLoadErrors(t *testing.T) {
	l := New(pkgopenapi.NewLoaderOptions())

	if _, err := l.Load(context.Background(), nil); err == nil {
		t.Fatalf("expected nil source error")
	}
	if _, err := l.Load(context.Background(), pkgopenapi.SourceFromFS("openapi.yaml")); err == nil {
		t.Fatalf("expected missing filesystem error")
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := l.Load(context.Background(), pkgopenapi.SourceFromFile(empty)); err == nil {
		t.Fatalf("expected empty document error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Load(ctx, pkgopenapi.SourceFromFile(empty)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
