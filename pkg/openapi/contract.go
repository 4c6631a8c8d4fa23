package openapi

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// SourceKind tells a Loader where to read a contract from.
type SourceKind string

const (
	// SourceKindFile reads from the local disk.
	SourceKindFile SourceKind = "file"
	// SourceKindFS reads from the loader's fs.FS, usually the embedded
	// contract.
	SourceKindFS SourceKind = "fs"
)

// Source identifies a contract document.
type Source interface {
	Kind() SourceKind
	Location() string
}

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }
func (s source) Location() string { return s.location }
func (s source) String() string   { return string(s.kind) + ":" + s.location }

// SourceFromFile points at a contract on disk.
func SourceFromFile(name string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(name)}
}

// SourceFromFS points at a contract inside the loader's fs.FS. Names use
// forward slashes as io/fs requires.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: path.Clean(strings.TrimPrefix(name, "/"))}
}

// Loader reads contract documents.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// Parser turns a document into operations keyed by operationId.
type Parser interface {
	Operations(ctx context.Context, doc Document) (map[string]Operation, error)
}

// LoaderOptions configure a Loader.
type LoaderOptions struct {
	// FileSystem serves SourceKindFS lookups.
	FileSystem fs.FS
}

type LoaderOption func(*LoaderOptions)

// WithFileSystem sets the fs.FS behind SourceKindFS sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) { opts.FileSystem = files }
}

func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	var cfg LoaderOptions
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ParserOptions configure a Parser.
type ParserOptions struct {
	// Validate runs the kin-openapi validator before operations are
	// extracted. It is on unless turned off with WithValidation(false).
	Validate bool
}

type ParserOption func(*ParserOptions)

func WithValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) { opts.Validate = enabled }
}

func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{Validate: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
