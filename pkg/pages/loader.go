package pages

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-farmdesk/pkg/model"
)

// ErrUnknownPage is returned when a page name has no definition.
var ErrUnknownPage = errors.New("pages: unknown page")

// ErrInvalidPage marks definitions that fail validation.
var ErrInvalidPage = errors.New("pages: invalid page")

// Store holds the loaded pages. It is safe for concurrent use; Replace swaps
// the whole set at once.
type Store struct {
	mu    sync.RWMutex
	pages map[string]Page
	order []string
}

// NewStore builds a store from already validated pages.
func NewStore(pages ...Page) *Store {
	s := &Store{}
	s.set(pages)
	return s
}

// Page returns a copy of the named page.
func (s *Store) Page(name string) (Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, ok := s.pages[name]
	if !ok {
		return Page{}, fmt.Errorf("%w: %q", ErrUnknownPage, name)
	}
	return page.clone(), nil
}

// Pages returns every page ordered by navigation order, then name.
func (s *Store) Pages() []Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Page, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.pages[name].clone())
	}
	return out
}

// Names returns the page names in navigation order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len reports the number of pages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Replace swaps in the pages of other.
func (s *Store) Replace(other *Store) {
	if other == nil || other == s {
		return
	}
	pages := other.Pages()
	s.set(pages)
}

func (s *Store) set(pages []Page) {
	byName := make(map[string]Page, len(pages))
	for _, page := range pages {
		byName[page.Name] = page.clone()
	}
	order := make([]string, 0, len(byName))
	for name := range byName {
		order = append(order, name)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := byName[order[i]], byName[order[j]]
		if a.Nav.Order != b.Nav.Order {
			return a.Nav.Order < b.Nav.Order
		}
		return a.Name < b.Name
	})

	s.mu.Lock()
	s.pages = byName
	s.order = order
	s.mu.Unlock()
}

// LoadDir loads the definitions found in a directory.
func LoadDir(dir string) (*Store, error) {
	return Load(os.DirFS(dir))
}

// Load walks fsys and parses every .yaml or .yml file as one page. A nil
// filesystem loads the bundled definitions.
func Load(fsys fs.FS) (*Store, error) {
	if fsys == nil {
		fsys = EmbeddedFS()
	}
	var pages []Page
	seen := map[string]string{}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isPageFile(name) {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("pages: read %s: %w", name, err)
		}
		page, err := Parse(data, name)
		if err != nil {
			return err
		}
		if previous, dup := seen[page.Name]; dup {
			return fmt.Errorf("%w: %q defined in %s and %s", ErrInvalidPage, page.Name, previous, name)
		}
		seen[page.Name] = name
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewStore(pages...), nil
}

type pageFile struct {
	Name     string         `yaml:"name"`
	Resource string         `yaml:"resource"`
	Title    string         `yaml:"title"`
	Nav      NavConfig      `yaml:"nav"`
	Form     FormConfig     `yaml:"form"`
	Fields   []model.Field  `yaml:"fields"`
	Columns  []ColumnConfig `yaml:"columns"`
	Actions  []ActionConfig `yaml:"actions"`
}

// Parse decodes and validates a single page document.
func Parse(data []byte, source string) (Page, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Page{}, fmt.Errorf("%w: %s is empty", ErrInvalidPage, source)
	}
	var doc pageFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return Page{}, fmt.Errorf("pages: parse %s: %w", source, err)
	}

	page := Page{
		Name:     strings.TrimSpace(doc.Name),
		Resource: strings.TrimSpace(doc.Resource),
		Title:    strings.TrimSpace(doc.Title),
		Nav:      doc.Nav,
		Form:     doc.Form,
		Fields:   doc.Fields,
		Columns:  doc.Columns,
		Actions:  doc.Actions,
		Source:   source,
	}
	if page.Name == "" {
		page.Name = strings.TrimSuffix(path.Base(source), path.Ext(source))
	}
	if page.Resource == "" {
		page.Resource = page.Name
	}
	if page.Title == "" {
		page.Title = page.Nav.Label
	}
	if page.Nav.Label == "" {
		page.Nav.Label = page.Title
	}
	page.Nav.Icon = sanitizeIcon(page.Nav.Icon)
	prepareSelects(page.Fields)

	if err := validate(page); err != nil {
		return Page{}, fmt.Errorf("%s: %w", source, err)
	}
	return page, nil
}

// prepareSelects gives sourced selects an empty option list so the schema
// validates before the options are fetched.
func prepareSelects(fields []model.Field) {
	for i := range fields {
		if fields[i].IsGroup() {
			prepareSelects(fields[i].Nested)
			continue
		}
		if _, ok := SourceOf(fields[i]); ok && fields[i].Options == nil {
			fields[i].Options = []model.Option{}
		}
	}
}

func validate(page Page) error {
	if strings.ContainsAny(page.Name, "/ ") {
		return fmt.Errorf("%w: name %q must be a single path segment", ErrInvalidPage, page.Name)
	}
	if len(page.Fields) == 0 {
		return fmt.Errorf("%w: %q declares no fields", ErrInvalidPage, page.Name)
	}
	if err := model.ValidateFields(page.Fields); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidPage, page.Name, err)
	}
	if len(page.Columns) == 0 {
		return fmt.Errorf("%w: %q declares no columns", ErrInvalidPage, page.Name)
	}
	for _, column := range page.Columns {
		if strings.TrimSpace(column.Accessor) == "" {
			return fmt.Errorf("%w: %q column %q has no accessor", ErrInvalidPage, page.Name, column.Header)
		}
		if !knownFormat(column.Format) {
			return fmt.Errorf("%w: %q column %q has unknown format %q", ErrInvalidPage, page.Name, column.Header, column.Format)
		}
	}
	for _, action := range page.Actions {
		switch action.Kind {
		case ActionEdit, ActionDelete:
		case ActionNavigate:
			if strings.TrimSpace(action.Href) == "" {
				return fmt.Errorf("%w: %q action %q needs an href", ErrInvalidPage, page.Name, action.Label)
			}
		default:
			return fmt.Errorf("%w: %q action %q has unknown kind %q", ErrInvalidPage, page.Name, action.Label, action.Kind)
		}
		if strings.TrimSpace(action.Label) == "" {
			return fmt.Errorf("%w: %q has an action without label", ErrInvalidPage, page.Name)
		}
	}
	return nil
}

func isPageFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
