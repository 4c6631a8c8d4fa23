package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-farmdesk/pkg/form"
	"github.com/goliatone/go-farmdesk/pkg/render"
	"github.com/goliatone/go-farmdesk/pkg/render/template/gotemplate"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

const (
	rendererName       = "vanilla"
	defaultAssetPrefix = "/assets"
	emptyListMessage   = "Nenhum registro encontrado."
)

// Templates executes named templates. *gotemplate.Engine satisfies it.
type Templates interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// Option configures the vanilla renderer.
type Option func(*config)

type config struct {
	templateFS   fs.FS
	templatesDir string
	templates    Templates
	policy       *bluemonday.Policy
	assetPrefix  string
	brand        string
}

// WithTemplatesFS overrides the embedded template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(dir string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(dir)
	}
}

// WithTemplateRenderer injects a ready-made template engine. It wins over
// WithTemplatesFS and WithTemplatesDir.
func WithTemplateRenderer(renderer Templates) Option {
	return func(cfg *config) {
		cfg.templates = renderer
	}
}

// WithSanitizer replaces the policy applied to labels. The default strips
// every tag.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithAssetPrefix sets the URL prefix the stylesheet is served under.
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimRight(strings.TrimSpace(prefix), "/"); trimmed != "" {
			cfg.assetPrefix = trimmed
		}
	}
}

// WithBrand sets the sidebar title.
func WithBrand(brand string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(brand); trimmed != "" {
			cfg.brand = trimmed
		}
	}
}

// Renderer produces HTML for forms, lists and whole pages using pongo2
// templates. Field controls are written by a Go tree-walk so repeating groups
// of any depth share one code path.
type Renderer struct {
	templates   Templates
	policy      *bluemonday.Policy
	assetPrefix string
	brand       string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a renderer backed by the embedded templates unless an
// option overrides them.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:  TemplatesFS(),
		policy:      bluemonday.StrictPolicy(),
		assetPrefix: defaultAssetPrefix,
		brand:       "Rações FJLC",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	templates := cfg.templates
	if templates == nil {
		engineOptions := []gotemplate.Option{
			gotemplate.WithFS(cfg.templateFS),
		}
		if cfg.templatesDir != "" {
			engineOptions = append(engineOptions, gotemplate.WithBaseDir(cfg.templatesDir))
		}
		engine, err := gotemplate.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:   templates,
		policy:      cfg.policy,
		assetPrefix: cfg.assetPrefix,
		brand:       cfg.brand,
	}, nil
}

// Name implements render.Renderer.
func (r *Renderer) Name() string {
	return rendererName
}

// ContentType implements render.Renderer.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// RenderForm renders the modal form. A closed form renders as nothing.
func (r *Renderer) RenderForm(_ context.Context, view form.View, options render.RenderOptions) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}
	if !view.Open {
		return nil, nil
	}

	controls := newFieldRenderer(view.ID, options.Errors, r.policy).render(view.Fields, view.Values)

	hidden := make([]map[string]any, 0, len(options.HiddenFields))
	for _, field := range options.HiddenFields {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	data := map[string]any{
		"form": map[string]any{
			"id":     view.ID,
			"title":  view.Title,
			"submit": view.SubmitLabel,
			"cancel": view.CancelLabel,
			"mode":   view.Mode.String(),
		},
		"action":      formAction(options.Page),
		"controls":    controls,
		"hidden":      hidden,
		"form_errors": options.FormErrors,
	}

	out, err := r.templates.RenderTemplate("templates/form.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render form %q: %w", view.ID, err)
	}
	return []byte(out), nil
}

// RenderList renders the record table with its per-row menus.
func (r *Renderer) RenderList(_ context.Context, view table.View, options render.RenderOptions) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}

	rows := make([]map[string]any, 0, len(view.Rows))
	for _, row := range view.Rows {
		actions := make([]map[string]any, 0, len(row.Actions))
		for _, action := range row.Actions {
			actions = append(actions, map[string]any{"id": action.ID, "label": action.Label})
		}
		rows = append(rows, map[string]any{
			"index":      row.Index,
			"id":         row.ID,
			"cells":      row.Cells,
			"menu_open":  row.MenuOpen,
			"menu_id":    row.MenuID,
			"trigger_id": row.TriggerID,
			"actions":    actions,
		})
	}

	data := map[string]any{
		"list": map[string]any{
			"id":          view.ID,
			"headers":     view.Headers,
			"rows":        rows,
			"has_actions": view.HasActions,
			"columns":     len(view.Headers),
		},
		"title": options.Title,
		"empty": emptyListMessage,
	}
	if c := view.Confirm; c != nil {
		data["confirm"] = map[string]any{
			"id":        c.ID,
			"message":   c.Message,
			"label":     c.Label,
			"accept_id": c.AcceptID,
			"reject_id": c.RejectID,
		}
	}

	out, err := r.templates.RenderTemplate("templates/list.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render list %q: %w", view.ID, err)
	}
	return []byte(out), nil
}

// NavItem is one sidebar entry. Icon is trusted SVG markup.
type NavItem struct {
	Name  string
	Label string
	URL   string
	Icon  string
}

// Page is the shell around a list and an optional open form.
type Page struct {
	Name      string
	Title     string
	Heading   string
	NewURL    string
	NewLabel  string
	EventsURL string
	Nav       []NavItem
	List      []byte
	Form      []byte
	Options   render.RenderOptions
}

// RenderPage renders a complete HTML document around RenderMain's output.
func (r *Renderer) RenderPage(ctx context.Context, page Page) ([]byte, error) {
	main, err := r.RenderMain(ctx, page)
	if err != nil {
		return nil, err
	}
	return r.renderShell("templates/page.tmpl", page, map[string]any{"main": string(main)})
}

// RenderMain renders only the #fd-main region, which live updates patch in
// place.
func (r *Renderer) RenderMain(_ context.Context, page Page) ([]byte, error) {
	return r.renderShell("templates/main.tmpl", page, nil)
}

func (r *Renderer) renderShell(name string, page Page, extra map[string]any) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}

	nav := make([]map[string]any, 0, len(page.Nav))
	for _, item := range page.Nav {
		nav = append(nav, map[string]any{
			"name":   item.Name,
			"label":  item.Label,
			"url":    item.URL,
			"icon":   item.Icon,
			"active": item.Name == page.Name,
		})
	}

	data := map[string]any{
		"brand":      r.brand,
		"title":      page.Title,
		"heading":    page.Heading,
		"new_url":    page.NewURL,
		"new_label":  page.NewLabel,
		"events_url": page.EventsURL,
		"nav":        nav,
		"list":       string(page.List),
		"form":       string(page.Form),
		"stylesheet": r.assetPrefix + "/" + StylesheetName,
		"theme":      themeContext(page.Options),
	}
	for key, value := range extra {
		data[key] = value
	}

	out, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render %s: %w", name, err)
	}
	return []byte(out), nil
}

func themeContext(options render.RenderOptions) map[string]any {
	cfg := options.Theme
	if cfg == nil {
		return map[string]any{}
	}
	ctx := map[string]any{
		"name":    cfg.Theme,
		"variant": cfg.Variant,
		"style":   cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		if href := cfg.AssetURL("stylesheet"); href != "" {
			ctx["stylesheet"] = href
		}
	}
	return ctx
}

// cssVarsStyle renders CSS variables as a sorted inline style declaration.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}

func formAction(page string) string {
	page = strings.Trim(strings.TrimSpace(page), "/")
	if page == "" {
		return ""
	}
	return "/" + page + "/form"
}
