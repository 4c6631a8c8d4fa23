// Package loader reads contract documents from disk or from an fs.FS such as
// the embedded farm API contract.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
)

// Loader implements pkgopenapi.Loader.
type Loader struct {
	fs fs.FS
}

var _ pkgopenapi.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options pkgopenapi.LoaderOptions) pkgopenapi.Loader {
	return &Loader{fs: options.FileSystem}
}

// Load reads src. Empty documents and directories are rejected.
func (l *Loader) Load(ctx context.Context, src pkgopenapi.Source) (pkgopenapi.Document, error) {
	if src == nil {
		return pkgopenapi.Document{}, errors.New("openapi loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return pkgopenapi.Document{}, err
	}
	name := src.Location()
	if name == "" {
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: %s source has no location", src.Kind())
	}

	var read func(string) ([]byte, error)
	switch src.Kind() {
	case pkgopenapi.SourceKindFile:
		read = os.ReadFile
	case pkgopenapi.SourceKindFS:
		if l.fs == nil {
			return pkgopenapi.Document{}, errors.New("openapi loader: no filesystem configured for " + name)
		}
		read = func(name string) ([]byte, error) { return fs.ReadFile(l.fs, name) }
	default:
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: unsupported source kind %q", src.Kind())
	}

	data, err := read(name)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: read %s: %w", name, err)
	}
	return pkgopenapi.NewDocument(src, data)
}
