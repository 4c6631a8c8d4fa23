// Package farmdesk exposes the farm desk engine from the module root: the
// embedded API contract, the OpenAPI loader and parser, and an orchestrator
// wired to both.
package farmdesk

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	internalLoader "github.com/goliatone/go-farmdesk/internal/openapi/loader"
	internalParser "github.com/goliatone/go-farmdesk/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
	"github.com/goliatone/go-farmdesk/pkg/orchestrator"
)

// ContractName is the name of the API contract inside ContractFS.
const ContractName = "openapi.yaml"

//go:embed api/openapi.yaml
var embeddedContract embed.FS

// ContractFS exposes the bundled OpenAPI contract of the farm API.
func ContractFS() fs.FS {
	sub, err := fs.Sub(embeddedContract, "api")
	if err != nil {
		return embeddedContract
	}
	return sub
}

// ContractSource identifies the bundled contract for loaders built with
// NewLoader.
func ContractSource() pkgopenapi.Source {
	return pkgopenapi.SourceFromFS(ContractName)
}

// NewLoader constructs a loader that resolves fs sources against the bundled
// contract unless another file system is given.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	options = append([]pkgopenapi.LoaderOption{pkgopenapi.WithFileSystem(ContractFS())}, options...)
	return internalLoader.New(pkgopenapi.NewLoaderOptions(options...))
}

// NewParser constructs a parser backed by the internal implementation.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return internalParser.New(pkgopenapi.NewParserOptions(options...))
}

// NewOrchestrator builds an orchestrator whose loader can read the bundled
// contract. Later options win.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	options = append([]orchestrator.Option{
		orchestrator.WithLoader(NewLoader()),
		orchestrator.WithParser(NewParser()),
	}, options...)
	return orchestrator.New(options...)
}

// Operations loads and parses a contract, keyed by operation id.
func Operations(ctx context.Context, source pkgopenapi.Source) (map[string]pkgopenapi.Operation, error) {
	doc, err := NewLoader().Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source.Location(), err)
	}
	operations, err := NewParser().Operations(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source.Location(), err)
	}
	return operations, nil
}
