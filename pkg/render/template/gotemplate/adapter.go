// Package gotemplate renders the HTML templates with pongo2. Templates are
// read from an fs.FS (usually the embedded bundle) and optionally from a
// directory whose files shadow the bundled ones.
package gotemplate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	json "github.com/goccy/go-json"
)

const extension = ".tmpl"

type Option func(*Engine) error

// WithFS adds files as a template source.
func WithFS(files fs.FS) Option {
	return func(e *Engine) error {
		if files == nil {
			return errors.New("gotemplate: nil fs.FS")
		}
		e.loaders = append(e.loaders, pongo2.NewFSLoader(files))
		return nil
	}
}

// WithBaseDir adds a directory on disk as a template source. It is searched
// before any fs.FS.
func WithBaseDir(dir string) Option {
	return func(e *Engine) error {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return nil
		}
		loader, err := pongo2.NewLocalFileSystemLoader(dir)
		if err != nil {
			return fmt.Errorf("gotemplate: template dir %s: %w", dir, err)
		}
		e.loaders = append([]pongo2.TemplateLoader{loader}, e.loaders...)
		return nil
	}
}

// WithGlobals makes values available to every template.
func WithGlobals(values map[string]any) Option {
	return func(e *Engine) error {
		for key, value := range values {
			if key = strings.TrimSpace(key); key != "" {
				e.globals[key] = value
			}
		}
		return nil
	}
}

// Engine renders named templates and caches them once parsed.
type Engine struct {
	loaders []pongo2.TemplateLoader
	globals pongo2.Context
	set     *pongo2.TemplateSet

	mu    sync.Mutex
	cache map[string]*pongo2.Template
}

func New(options ...Option) (*Engine, error) {
	e := &Engine{globals: pongo2.Context{}, cache: map[string]*pongo2.Template{}}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if len(e.loaders) == 0 {
		return nil, errors.New("gotemplate: no template source, use WithFS or WithBaseDir")
	}
	e.set = pongo2.NewSet("farmdesk", e.loaders...)
	e.set.Globals.Update(e.globals)
	registerDefaultFilters()
	return e, nil
}

// RenderTemplate executes the template called name, adding ".tmpl" when the
// name has no extension, and copies the output to every writer in out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if !strings.HasSuffix(name, extension) {
		name += extension
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return execute(tmpl, name, data, out)
}

// RenderString executes source as an inline template. It is not cached.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	return execute(tmpl, "inline template", data, out)
}

// RegisterFilter adds a pongo2 filter. Filters are process-wide in pongo2,
// so a name can be registered only once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter needs a name and a function")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already registered", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %s: %w", name, err)
	}
	e.cache[name] = tmpl
	return tmpl, nil
}

func execute(tmpl *pongo2.Template, name string, data any, out []io.Writer) (string, error) {
	ctx, err := contextOf(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %s data: %w", name, err)
	}
	rendered, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %s: %w", name, err)
	}
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// contextOf turns data into a pongo2 context. Anything other than a map goes
// through JSON so templates see the same field names the API uses.
func contextOf(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var ctx pongo2.Context
	if err := json.Unmarshal(encoded, &ctx); err != nil {
		return nil, fmt.Errorf("template data must encode as an object: %w", err)
	}
	return ctx, nil
}
