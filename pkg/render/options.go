package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request data that renderers use to customise output
// without touching engine state.
type RenderOptions struct {
	// Page names the page being rendered; renderers use it to build action
	// URLs.
	Page string
	// Title overrides the heading of list output.
	Title string
	// Errors surfaces validation feedback keyed by dotted value path
	// ("modulos.0.categoria").
	Errors map[string][]string
	// FormErrors are messages that could not be tied to a field.
	FormErrors []string
	// HiddenFields are written as hidden inputs inside forms, ordered by
	// name. Use WithHidden to add them.
	HiddenFields []HiddenField
	// Theme carries resolved tokens, CSS variables and asset URLs for
	// renderers that support theming.
	Theme *theme.RendererConfig
}
