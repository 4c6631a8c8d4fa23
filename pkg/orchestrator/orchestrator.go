package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-farmdesk/internal/farm"
	internalLoader "github.com/goliatone/go-farmdesk/internal/openapi/loader"
	internalParser "github.com/goliatone/go-farmdesk/internal/openapi/parser"
	"github.com/goliatone/go-farmdesk/pkg/api"
	"github.com/goliatone/go-farmdesk/pkg/form"
	"github.com/goliatone/go-farmdesk/pkg/model"
	pkgopenapi "github.com/goliatone/go-farmdesk/pkg/openapi"
	"github.com/goliatone/go-farmdesk/pkg/overlay"
	"github.com/goliatone/go-farmdesk/pkg/pages"
	"github.com/goliatone/go-farmdesk/pkg/render"
	"github.com/goliatone/go-farmdesk/pkg/renderers/vanilla"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

const defaultRendererName = "vanilla"

// Source supplies the data behind a page.
type Source interface {
	Fields(ctx context.Context, page pages.Page) ([]model.Field, error)
	Records(ctx context.Context, page pages.Page) ([]table.Record, error)
}

var _ Source = (*farm.Service)(nil)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits one.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithPages sets the page definitions. The bundled pages are used otherwise.
func WithPages(store *pages.Store) Option {
	return func(o *Orchestrator) {
		o.pages = store
	}
}

// WithSource sets where fields and records come from.
func WithSource(source Source) Option {
	return func(o *Orchestrator) {
		o.source = source
	}
}

// WithClient uses the farm API as the source.
func WithClient(client *api.Client) Option {
	return func(o *Orchestrator) {
		o.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithThemeSelector resolves theme and variant names ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector, defaultTheme, defaultVariant string) Option {
	return func(o *Orchestrator) {
		o.themes = selector
		o.defaultTheme = defaultTheme
		o.defaultVariant = defaultVariant
	}
}

// WithLoader injects the OpenAPI loader used by FieldsFromOpenAPI.
func WithLoader(loader pkgopenapi.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects the OpenAPI parser used by FieldsFromOpenAPI.
func WithParser(parser pkgopenapi.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// Orchestrator coordinates pages, data and renderers. Missing dependencies
// fall back to the bundled pages, the vanilla renderer and an API client on
// the default base URL.
type Orchestrator struct {
	registry        *render.Registry
	defaultRenderer string
	pages           *pages.Store
	source          Source
	client          *api.Client
	logger          *zap.Logger
	themes          theme.ThemeSelector
	defaultTheme    string
	defaultVariant  string
	loader          pkgopenapi.Loader
	parser          pkgopenapi.Parser
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Mode selects what Generate renders.
type Mode int

const (
	ModeList Mode = iota
	ModeCreate
	ModeEdit
)

// Request describes one render of a page.
type Request struct {
	// Page names the page definition.
	Page string
	// Renderer names the renderer; empty uses the default.
	Renderer string
	// Mode selects the list or a create/edit form.
	Mode Mode
	// Record seeds the form. Ignored for lists.
	Record map[string]any
	// OnSubmit receives the values of a submitted form, for renderers that
	// drive the form themselves.
	OnSubmit form.SubmitFunc
	// ThemeName and ThemeVariant override the configured theme.
	ThemeName    string
	ThemeVariant string
	// RenderOptions carries per-request errors and hidden fields.
	RenderOptions render.RenderOptions
}

// Generate renders the list or a form of a page.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	page, err := o.Page(req.Page)
	if err != nil {
		return nil, err
	}
	renderer, err := o.Renderer(req.Renderer)
	if err != nil {
		return nil, err
	}
	options, err := o.Options(page, req.ThemeName, req.ThemeVariant, req.RenderOptions)
	if err != nil {
		return nil, err
	}

	if req.Mode == ModeList {
		list, err := o.NewList(ctx, page, nil)
		if err != nil {
			return nil, err
		}
		output, err := renderer.RenderList(ctx, list.View(), options)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: render list: %w", err)
		}
		return output, nil
	}

	mode := form.ModeCreate
	if req.Mode == ModeEdit {
		mode = form.ModeEdit
	}
	f, err := o.NewForm(ctx, page, FormConfig{Record: req.Record, Mode: mode, OnSubmit: req.OnSubmit})
	if err != nil {
		return nil, err
	}
	f.Open()
	output, err := renderer.RenderForm(ctx, f.View(), options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render form: %w", err)
	}
	return output, nil
}

// Page returns a page definition.
func (o *Orchestrator) Page(name string) (pages.Page, error) {
	page, err := o.pages.Page(name)
	if err != nil {
		return pages.Page{}, fmt.Errorf("orchestrator: %w", err)
	}
	return page, nil
}

// Pages returns the page store.
func (o *Orchestrator) Pages() *pages.Store {
	return o.pages
}

// FormConfig describes a form built by NewForm.
type FormConfig struct {
	ID       string
	Record   map[string]any
	Mode     form.Mode
	OnSubmit form.SubmitFunc
	Bus      *overlay.Bus
	OnClose  func(form.Reason)
}

// NewForm builds a closed form for a page, with select options fetched from
// the source.
func (o *Orchestrator) NewForm(ctx context.Context, page pages.Page, cfg FormConfig) (*form.Form, error) {
	fields, err := o.Fields(ctx, page)
	if err != nil {
		return nil, err
	}
	f, err := form.New(fields, cfg.OnSubmit,
		form.WithID(cfg.ID),
		form.WithTitle(page.FormTitle(cfg.Mode == form.ModeEdit)),
		form.WithMode(cfg.Mode),
		form.WithRecord(cfg.Record),
		form.WithOverlay(cfg.Bus),
		form.WithCloseHandler(cfg.OnClose),
	)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: page %q: %w", page.Name, err)
	}
	return f, nil
}

// Fields returns the page schema with options resolved.
func (o *Orchestrator) Fields(ctx context.Context, page pages.Page) ([]model.Field, error) {
	if o.source == nil {
		return model.CloneFields(page.Fields), nil
	}
	fields, err := o.source.Fields(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: fields of %q: %w", page.Name, err)
	}
	return fields, nil
}

// ActionBinder returns the handler of one configured row action. A nil
// binder, or a nil handler, leaves the action inert.
type ActionBinder func(page pages.Page, action pages.ActionConfig) table.ActionFunc

// NewList builds a list for a page and loads its records.
func (o *Orchestrator) NewList(ctx context.Context, page pages.Page, bind ActionBinder, options ...table.Option) (*table.List, error) {
	list := o.EmptyList(page, bind, options...)
	if err := o.Refresh(ctx, page, list); err != nil {
		return nil, err
	}
	return list, nil
}

// EmptyList builds a list for a page without loading records.
func (o *Orchestrator) EmptyList(page pages.Page, bind ActionBinder, options ...table.Option) *table.List {
	actions := make([]table.Action, 0, len(page.Actions))
	for _, action := range page.Actions {
		entry := table.Action{Label: action.Label, Confirm: action.Confirm}
		if bind != nil {
			entry.Handler = bind(page, action)
		}
		actions = append(actions, entry)
	}
	options = append([]table.Option{table.WithActions(actions...)}, options...)
	return table.New(page.ListColumns(), options...)
}

// Refresh reloads the records of a list. On failure the list keeps its
// previous records.
func (o *Orchestrator) Refresh(ctx context.Context, page pages.Page, list *table.List) error {
	if o.source == nil {
		return nil
	}
	records, err := o.source.Records(ctx, page)
	if err != nil {
		return fmt.Errorf("orchestrator: records of %q: %w", page.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	list.SetRecords(records)
	return nil
}

// Renderer resolves a renderer by name, falling back to the default and then
// to the first registered renderer.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	renderer, err := o.registry.Default()
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

// Options fills the page-derived render options: page name, list title and
// the resolved theme.
func (o *Orchestrator) Options(page pages.Page, themeName, variant string, base render.RenderOptions) (render.RenderOptions, error) {
	options := base
	options.Page = page.Name
	if options.Title == "" {
		options.Title = page.Title
	}
	if options.Theme == nil {
		cfg, err := o.Theme(themeName, variant)
		if err != nil {
			return render.RenderOptions{}, err
		}
		options.Theme = cfg
	}
	return options, nil
}

// Theme resolves a theme selection into renderer configuration. Without a
// selector it returns nil.
func (o *Orchestrator) Theme(name, variant string) (*theme.RendererConfig, error) {
	if o.themes == nil {
		return nil, nil
	}
	if name == "" {
		name = o.defaultTheme
	}
	if variant == "" {
		variant = o.defaultVariant
	}
	selection, err := o.themes.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return render.ThemeConfig(selection), nil
}

// FieldsFromOpenAPI derives a field schema from the request body of an
// OpenAPI operation.
func (o *Orchestrator) FieldsFromOpenAPI(ctx context.Context, source pkgopenapi.Source, operationID string) ([]model.Field, error) {
	if operationID == "" {
		return nil, errors.New("orchestrator: operation id is required")
	}
	doc, err := o.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load document: %w", err)
	}
	operations, err := o.parser.Operations(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse operations: %w", err)
	}
	op, ok := operations[operationID]
	if !ok {
		return nil, fmt.Errorf("orchestrator: operation %q not found", operationID)
	}
	fields, err := model.FromOperation(op)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build fields: %w", err)
	}
	return fields, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalLoader.New(pkgopenapi.NewLoaderOptions())
	}
	if o.parser == nil {
		o.parser = internalParser.New(pkgopenapi.NewParserOptions())
	}
	if o.pages == nil {
		store, err := pages.Load(nil)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: load pages: %w", err)
			store = pages.NewStore()
		}
		o.pages = store
	}
	if o.source == nil && o.client != nil {
		o.source = farm.New(o.client, farm.WithLogger(o.logger))
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
