package render

import (
	"fmt"
	"path"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// Themes is a theme.ThemeSelector over an in-memory set of manifests.
// Unknown names fall back to the configured default theme and variant.
type Themes struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Themes)(nil)

// NewThemes registers the manifests and selects defaultTheme when a request
// names no theme.
func NewThemes(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*Themes, error) {
	t := &Themes{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	for _, manifest := range manifests {
		if err := t.Register(manifest); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Register adds or replaces a manifest.
func (t *Themes) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return fmt.Errorf("render: theme manifest name is required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.manifests[strings.TrimSpace(manifest.Name)] = manifest
	return nil
}

// Select resolves a theme and variant. Empty arguments use the defaults; a
// variant the manifest does not declare resolves to the base tokens.
func (t *Themes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = t.defaultTheme
	}
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = t.defaultVariant
	}

	t.mu.RLock()
	manifest, ok := t.manifests[name]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("render: unknown theme %q", name)
	}
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// ThemeConfig flattens a selection into the renderer-facing configuration.
// Variant tokens, templates and asset files override the base manifest;
// every token is also exposed as a "--<token>" CSS variable.
func ThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := copyStrings(manifest.Tokens)
	partials := copyStrings(manifest.Templates)
	files := copyStrings(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, variant.Tokens)
		partials = mergeStrings(partials, variant.Templates)
		files = mergeStrings(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if prefix == "" {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func mergeStrings(base, overrides map[string]string) map[string]string {
	if base == nil {
		base = make(map[string]string, len(overrides))
	}
	for key, value := range overrides {
		base[key] = value
	}
	return base
}
